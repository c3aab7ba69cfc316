package reads

import "bytes"

// ClipAdapter trims a trailing adapter/vector sequence from seq if found
// within the last searchWindow bases, the read-ingestion supplement named
// in spec.md's "Out of scope" list (adapter clipping) that a complete
// pipeline still needs ahead of Store.Push. Grounded on the trim-by-length
// idiom of grailbio-bio's fastq.Read.Trim, generalized to a search over
// known adapter sequences instead of a fixed suffix count, and on the
// adapter/vector screening step of
// original_source/tools/skesa/assembler.hpp's read preparation.
func ClipAdapter(seq []byte, adapters [][]byte, searchWindow int) []byte {
	if searchWindow <= 0 || searchWindow > len(seq) {
		searchWindow = len(seq)
	}
	tail := seq[len(seq)-searchWindow:]
	best := -1
	for _, ad := range adapters {
		if len(ad) == 0 {
			continue
		}
		if idx := bytes.Index(tail, ad); idx >= 0 {
			pos := len(seq) - searchWindow + idx
			if best < 0 || pos < best {
				best = pos
			}
		}
	}
	if best < 0 {
		return seq
	}
	return seq[:best]
}
