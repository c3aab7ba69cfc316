package kmertab

import (
	"bytes"
	"testing"

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

func TestWriteReadRoundTrip(t *testing.T) {
	tab := &Table{
		Entries: []Entry{
			{Kmer: mustKmer(t, "ACGTA"), Counter: PackCounter(5, 0x0F, 30000)},
			{Kmer: mustKmer(t, "CCCCC"), Counter: PackCounter(2, 0x00, 65535)},
		},
		Bins:     []HistBin{{Count: 2, Size: 1}, {Count: 5, Size: 1}},
		Stranded: true,
	}
	var buf bytes.Buffer
	if err := Write(&buf, 5, tab); err != nil {
		t.Fatal(err)
	}
	k, got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if k != 5 {
		t.Errorf("k = %d, want 5", k)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	for i, e := range tab.Entries {
		if !got.Entries[i].Kmer.Equal(e.Kmer) || got.Entries[i].Counter != e.Counter {
			t.Errorf("entry %d round trip mismatch: got %+v want %+v", i, got.Entries[i], e)
		}
	}
	if !got.Stranded {
		t.Errorf("expected Stranded=true")
	}
}

func TestConcatenatedGraphs(t *testing.T) {
	t1 := &Table{Entries: []Entry{{Kmer: mustKmer(t, "AAAAA"), Counter: PackCounter(1, 0, 0)}}}
	t2 := &Table{Entries: []Entry{{Kmer: mustKmer(t, "AAAAAAA"), Counter: PackCounter(1, 0, 0)}}}

	var buf bytes.Buffer
	if err := Write(&buf, 5, t1); err != nil {
		t.Fatal(err)
	}
	if err := Write(&buf, 7, t2); err != nil {
		t.Fatal(err)
	}

	k1, got1, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	k2, got2, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != 5 || k2 != 7 {
		t.Errorf("got k=%d,%d want 5,7", k1, k2)
	}
	if !got1.Entries[0].Kmer.Equal(t1.Entries[0].Kmer) {
		t.Errorf("first graph entry mismatch")
	}
	if !got2.Entries[0].Kmer.Equal(t2.Entries[0].Kmer) {
		t.Errorf("second graph entry mismatch")
	}
}

func TestQuantizePlusFraction(t *testing.T) {
	if q := QuantizePlusFraction(1.0); q != 65535 {
		t.Errorf("QuantizePlusFraction(1.0) = %d, want 65535", q)
	}
	if q := QuantizePlusFraction(0.0); q != 0 {
		t.Errorf("QuantizePlusFraction(0.0) = %d, want 0", q)
	}
	if q := QuantizePlusFraction(0.5); q < 32000 || q > 33000 {
		t.Errorf("QuantizePlusFraction(0.5) = %d, want ~32768", q)
	}
}

func TestPackCounterFields(t *testing.T) {
	c := PackCounter(42, 0xAB, 12345)
	e := Entry{Counter: c}
	if e.Count() != 42 {
		t.Errorf("Count() = %d, want 42", e.Count())
	}
	if e.BranchMask() != 0xAB {
		t.Errorf("BranchMask() = %x, want ab", e.BranchMask())
	}
	if got := uint16(e.PlusFraction() * 65535); got != 12345 {
		t.Errorf("PlusFraction round trip got %d want 12345", got)
	}
}

func TestTableFindSorted(t *testing.T) {
	tab := &Table{Entries: []Entry{
		{Kmer: mustKmer(t, "AAAA")},
		{Kmer: mustKmer(t, "CCCC")},
		{Kmer: mustKmer(t, "GGGG")},
	}}
	tab.Sort()
	if idx := tab.Find(mustKmer(t, "CCCC")); idx != 1 {
		t.Errorf("Find(CCCC) = %d, want 1", idx)
	}
	if idx := tab.Find(mustKmer(t, "TTTT")); idx != -1 {
		t.Errorf("Find(TTTT) = %d, want -1", idx)
	}
}
