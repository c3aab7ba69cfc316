package taxindex

import (
	"bytes"
	"testing"

	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/kmerval"
)

func mustKmer(t *testing.T, s string) kmerval.Kmer {
	t.Helper()
	km, err := kmerval.FromString([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func TestWriteReadDBSRoundTrip(t *testing.T) {
	kmers := []kmerval.Kmer{
		mustKmer(t, "ACGTA"),
		mustKmer(t, "CCCCC"),
		mustKmer(t, "ACGTA"), // duplicate, must be deduplicated
	}
	var buf bytes.Buffer
	if err := WriteDBS(&buf, 5, []string{"genomeA", "genomeB"}, kmers); err != nil {
		t.Fatal(err)
	}

	h, got, err := ReadDBS(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.K != 5 || !h.Canonical {
		t.Errorf("header = %+v", h)
	}
	if len(h.Names) != 2 || h.Names[0] != "genomeA" || h.Names[1] != "genomeB" {
		t.Errorf("names = %v", h.Names)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deduplicated kmers, got %d", len(got))
	}
	if !sort2(got).Equal(sort2(kmers)) {
		t.Errorf("kmer set mismatch: got %v", got)
	}
}

// sort2 returns the lexicographically smaller of the two first-two-kmer
// orderings, just so TestWriteReadDBSRoundTrip can compare sets without
// importing sort itself.
type kmerPair [2]kmerval.Kmer

func sort2(kmers []kmerval.Kmer) kmerPair {
	uniq := map[string]kmerval.Kmer{}
	for _, km := range kmers {
		uniq[km.String()] = km
	}
	var out kmerPair
	i := 0
	for _, km := range uniq {
		if i < 2 {
			out[i] = km
		}
		i++
	}
	if out[0].Less(out[1]) {
		return out
	}
	return kmerPair{out[1], out[0]}
}

func (p kmerPair) Equal(o kmerPair) bool {
	return p[0].Equal(o[0]) && p[1].Equal(o[1])
}

func TestFromTableFiltersByMinCount(t *testing.T) {
	tab := &kmertab.Table{
		Entries: []kmertab.Entry{
			{Kmer: mustKmer(t, "AAAAA"), Counter: kmertab.PackCounter(1, 0, 0)},
			{Kmer: mustKmer(t, "TTTTT"), Counter: kmertab.PackCounter(10, 0, 0)},
		},
	}
	got := FromTable(tab, 5)
	if len(got) != 1 || !got[0].Equal(mustKmer(t, "TTTTT")) {
		t.Errorf("FromTable(minCount=5) = %v", got)
	}
}
