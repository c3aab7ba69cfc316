// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package taxindex

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/dbgasm/kmerval"
)

// DBSSEntry pairs a canonical k-mer with the tax ids observed carrying it.
// Taxids is typically small (one genome's worth of tax ids at one k-mer);
// the on-disk form stores it as an (offset, count) pair into one shared
// flat tax-id array rather than inline per k-mer, keeping the sorted
// k-mer/counter rows fixed-width.
type DBSSEntry struct {
	Kmer   kmerval.Kmer
	Taxids []uint32
}

// offsetCountOffsets mirrors varint-GB.go's offsets table: the byte
// positions (MSB-first) peeled off to variable-length-encode a uint64.
var offsetCountOffsets = []uint8{56, 48, 40, 32, 24, 16, 8, 0}

func byteLength(n uint64) uint8 {
	for blen := uint8(1); blen < 8; blen++ {
		if n < uint64(1)<<(8*blen) {
			return blen
		}
	}
	return 8
}

// putOffsetCount encodes (offset, count) into 2-16 bytes, Adapted from
// varint-GB.go's PutUint64s: bits 3-5 and bits 0-2 of the returned control
// byte record how many bytes (minus one) the offset and the count used, so the pair round-trips
// without a fixed width.
func putOffsetCount(buf []byte, offset, count uint64) (ctrl byte, n int) {
	blen := byteLength(offset)
	ctrl |= byte(blen - 1)
	for _, off := range offsetCountOffsets[8-blen:] {
		buf[n] = byte((offset >> off) & 0xff)
		n++
	}
	ctrl <<= 3
	blen = byteLength(count)
	ctrl |= byte(blen - 1)
	for _, off := range offsetCountOffsets[8-blen:] {
		buf[n] = byte((count >> off) & 0xff)
		n++
	}
	return
}

func offsetCountLen(ctrl byte) int {
	return int((ctrl>>3)&0x7) + 1 + int(ctrl&0x7) + 1
}

// getOffsetCount is the inverse of putOffsetCount.
func getOffsetCount(ctrl byte, buf []byte) (offset, count uint64, n int) {
	blenOffset := int((ctrl>>3)&0x7) + 1
	blenCount := int(ctrl&0x7) + 1
	for i := 0; i < blenOffset; i++ {
		offset = (offset << 8) | uint64(buf[n])
		n++
	}
	for i := 0; i < blenCount; i++ {
		count = (count << 8) | uint64(buf[n])
		n++
	}
	return
}

// WriteDBSS writes a DBSS file: a DBS header + k-mer list (via WriteDBS's
// inner helpers), then one (offset,count) control-byte record per k-mer
// into the shared tax-id array described in §6.
func WriteDBSS(w io.Writer, k int, names []string, entries []DBSSEntry) error {
	sortEntries(entries)

	h := Header{Version: Version, K: k, Canonical: true, NumKmers: uint64(len(entries)), Names: names}
	if err := writeHeader(w, dbssMagic, h); err != nil {
		return err
	}
	kmers := make([]kmerval.Kmer, len(entries))
	for i, e := range entries {
		kmers[i] = e.Kmer
	}
	if err := writeKmerList(w, k, kmers); err != nil {
		return err
	}

	var taxids []uint32
	ctrlBuf := make([]byte, 16)
	for _, e := range entries {
		offset := uint64(len(taxids))
		count := uint64(len(e.Taxids))
		ctrl, n := putOffsetCount(ctrlBuf, offset, count)
		if _, err := w.Write([]byte{ctrl}); err != nil {
			return errors.Wrap(err, "write offset/count control byte")
		}
		if _, err := w.Write(ctrlBuf[:n]); err != nil {
			return errors.Wrap(err, "write offset/count")
		}
		taxids = append(taxids, e.Taxids...)
	}

	if err := binary.Write(w, be, uint64(len(taxids))); err != nil {
		return errors.Wrap(err, "write num_taxids")
	}
	for _, t := range taxids {
		if err := binary.Write(w, be, t); err != nil {
			return errors.Wrap(err, "write taxid")
		}
	}
	return nil
}

func sortEntries(entries []DBSSEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Kmer.Less(entries[j-1].Kmer); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// ReadDBSS reads a DBSS file back into its header and per-k-mer tax id
// annotations.
func ReadDBSS(r io.Reader) (Header, []DBSSEntry, error) {
	h, err := readHeader(r, dbssMagic)
	if err != nil {
		return Header{}, nil, err
	}
	kmers, err := readKmerList(r, h.K, h.NumKmers)
	if err != nil {
		return Header{}, nil, err
	}

	offsets := make([]uint64, h.NumKmers)
	counts := make([]uint64, h.NumKmers)
	ctrlByte := make([]byte, 1)
	valBuf := make([]byte, 16)
	for i := range kmers {
		if _, err := io.ReadFull(r, ctrlByte); err != nil {
			return Header{}, nil, errors.Wrap(err, "read offset/count control byte")
		}
		n := offsetCountLen(ctrlByte[0])
		if _, err := io.ReadFull(r, valBuf[:n]); err != nil {
			return Header{}, nil, errors.Wrap(err, "read offset/count")
		}
		offset, count, _ := getOffsetCount(ctrlByte[0], valBuf[:n])
		offsets[i] = offset
		counts[i] = count
	}

	var numTaxids uint64
	if err := binary.Read(r, be, &numTaxids); err != nil {
		return Header{}, nil, errors.Wrap(err, "read num_taxids")
	}
	taxids := make([]uint32, numTaxids)
	for i := range taxids {
		if err := binary.Read(r, be, &taxids[i]); err != nil {
			return Header{}, nil, errors.Wrap(err, "read taxid")
		}
	}

	entries := make([]DBSSEntry, len(kmers))
	for i, km := range kmers {
		off, cnt := offsets[i], counts[i]
		if off+cnt > numTaxids {
			return Header{}, nil, errors.New("taxindex: taxid offset/count out of range")
		}
		entries[i] = DBSSEntry{Kmer: km, Taxids: append([]uint32(nil), taxids[off:off+cnt]...)}
	}
	return h, entries, nil
}
