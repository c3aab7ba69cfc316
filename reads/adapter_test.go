package reads

import "testing"

func TestClipAdapterTrimsSuffix(t *testing.T) {
	seq := []byte("ACGTACGTAGATCGGAAGAGC")
	out := ClipAdapter(seq, [][]byte{[]byte("AGATCGGAAGAGC")}, len(seq))
	if string(out) != "ACGTACGT" {
		t.Errorf("got %q, want ACGTACGT", out)
	}
}

func TestClipAdapterNoMatch(t *testing.T) {
	seq := []byte("ACGTACGT")
	out := ClipAdapter(seq, [][]byte{[]byte("TTTTTTTTTTTT")}, len(seq))
	if string(out) != string(seq) {
		t.Errorf("expected unchanged sequence, got %q", out)
	}
}
