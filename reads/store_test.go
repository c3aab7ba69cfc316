package reads

import "testing"

func TestPushRead(t *testing.T) {
	s := NewStore()
	idx, err := s.Push([]byte("ACGTACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	if got := string(s.Read(0)); got != "ACGTACGT" {
		t.Errorf("Read round trip got %q", got)
	}
	if s.ReadNum() != 1 {
		t.Errorf("ReadNum = %d, want 1", s.ReadNum())
	}
	if s.TotalSeq() != 8 {
		t.Errorf("TotalSeq = %d, want 8", s.TotalSeq())
	}
}

func TestPushMultipleReads(t *testing.T) {
	s := NewStore()
	s.Push([]byte("AAAA"))
	s.Push([]byte("CCCCCC"))
	s.Push([]byte("GGG"))
	if string(s.Read(0)) != "AAAA" || string(s.Read(1)) != "CCCCCC" || string(s.Read(2)) != "GGG" {
		t.Fatalf("reads decoded incorrectly: %q %q %q", s.Read(0), s.Read(1), s.Read(2))
	}
}

func TestPushPairedMate(t *testing.T) {
	s := NewStore()
	ia, ib, err := s.PushPaired([]byte("AAAA"), []byte("TTTT"))
	if err != nil {
		t.Fatal(err)
	}
	if ia != 0 || ib != 1 {
		t.Fatalf("expected (0,1), got (%d,%d)", ia, ib)
	}
	mate, ok := s.Mate(0)
	if !ok || mate != 1 {
		t.Errorf("Mate(0) = %d,%v want 1,true", mate, ok)
	}
	mate, ok = s.Mate(1)
	if !ok || mate != 0 {
		t.Errorf("Mate(1) = %d,%v want 0,true", mate, ok)
	}
}

func TestIllegalBaseRejected(t *testing.T) {
	s := NewStore()
	if _, err := s.Push([]byte("ACGN")); err != ErrIllegalBase {
		t.Errorf("expected ErrIllegalBase, got %v", err)
	}
}

func TestN50(t *testing.T) {
	s := NewStore()
	mustPush(t, s, 100)
	mustPush(t, s, 50)
	mustPush(t, s, 10)
	n50 := s.N50(50)
	if n50 <= 0 {
		t.Errorf("N50 should be positive, got %d", n50)
	}
}

func mustPush(t *testing.T, s *Store, n int) {
	t.Helper()
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = "ACGT"[i%4]
	}
	if _, err := s.Push(seq); err != nil {
		t.Fatal(err)
	}
}
