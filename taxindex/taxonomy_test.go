package taxindex

import "testing"

func TestLCA(t *testing.T) {
	// tree: 1 (root) -> 2 -> {3, 4}; 2 -> 5 -> 6
	tax := &Taxonomy{
		rootNode: 1,
		Nodes: map[uint32]uint32{
			1: 1,
			2: 1,
			3: 2,
			4: 2,
			5: 2,
			6: 5,
		},
	}

	cases := []struct {
		a, b, want uint32
	}{
		{3, 4, 2},
		{3, 3, 3},
		{0, 4, 4},
		{6, 3, 2},
		{6, 5, 5},
	}
	for _, c := range cases {
		if got := tax.LCA(c.a, c.b); got != c.want {
			t.Errorf("LCA(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLCAOf(t *testing.T) {
	tax := &Taxonomy{
		rootNode: 1,
		Nodes: map[uint32]uint32{
			1: 1,
			2: 1,
			3: 2,
			4: 2,
			5: 2,
		},
	}
	if got := tax.LCAOf([]uint32{3, 4, 5}); got != 2 {
		t.Errorf("LCAOf = %d, want 2", got)
	}
	if got := tax.LCAOf(nil); got != 0 {
		t.Errorf("LCAOf(nil) = %d, want 0", got)
	}
}

func TestLCACache(t *testing.T) {
	tax := &Taxonomy{
		rootNode: 1,
		Nodes:    map[uint32]uint32{1: 1, 2: 1, 3: 2, 4: 2},
	}
	tax.CacheLCA()
	if got := tax.LCA(3, 4); got != 2 {
		t.Fatalf("LCA = %d", got)
	}
	if _, ok := tax.lcaCache[pack2uint32(3, 4)]; !ok {
		t.Errorf("expected cached result")
	}
	// second call should hit the cache path (same result either way).
	if got := tax.LCA(3, 4); got != 2 {
		t.Errorf("cached LCA = %d", got)
	}
}
