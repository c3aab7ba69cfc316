package taxindex

import (
	"bytes"
	"testing"
)

func TestWriteReadDBSSRoundTrip(t *testing.T) {
	entries := []DBSSEntry{
		{Kmer: mustKmer(t, "CCCCC"), Taxids: []uint32{7}},
		{Kmer: mustKmer(t, "ACGTA"), Taxids: []uint32{1, 2, 3}},
		{Kmer: mustKmer(t, "GGGGG"), Taxids: nil},
	}
	var buf bytes.Buffer
	if err := WriteDBSS(&buf, 5, []string{"genomeA"}, entries); err != nil {
		t.Fatal(err)
	}

	h, got, err := ReadDBSS(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.K != 5 || h.NumKmers != 3 {
		t.Errorf("header = %+v", h)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// entries come back sorted by canonical k-mer.
	for i := 1; i < len(got); i++ {
		if !got[i-1].Kmer.Less(got[i].Kmer) {
			t.Errorf("entries not sorted at %d", i)
		}
	}
	byKmer := map[string][]uint32{}
	for _, e := range got {
		byKmer[e.Kmer.String()] = e.Taxids
	}
	if len(byKmer["ACGTA"]) != 3 {
		t.Errorf("ACGTA taxids = %v", byKmer["ACGTA"])
	}
	if len(byKmer["CCCCC"]) != 1 || byKmer["CCCCC"][0] != 7 {
		t.Errorf("CCCCC taxids = %v", byKmer["CCCCC"])
	}
	if len(byKmer["GGGGG"]) != 0 {
		t.Errorf("GGGGG taxids = %v", byKmer["GGGGG"])
	}
}

func TestOffsetCountRoundTrip(t *testing.T) {
	cases := [][2]uint64{
		{0, 0},
		{255, 256},
		{1 << 40, 1},
		{0, 1 << 55},
	}
	buf := make([]byte, 16)
	for _, c := range cases {
		ctrl, n := putOffsetCount(buf, c[0], c[1])
		offset, count, m := getOffsetCount(ctrl, buf[:n])
		if m != n {
			t.Errorf("length mismatch for %v: put %d, got %d", c, n, m)
		}
		if offset != c[0] || count != c[1] {
			t.Errorf("roundtrip(%v) = (%d, %d)", c, offset, count)
		}
	}
}
