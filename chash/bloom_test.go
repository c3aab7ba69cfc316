package chash

import "testing"

func TestBloomFilterInsertDetectsNew(t *testing.T) {
	b := NewBloomFilter(1024, 3)

	isNew, above, existing := b.Insert(12345, 2)
	if !isNew || existing {
		t.Errorf("first insert: got isNew=%v existing=%v, want isNew=true existing=false", isNew, existing)
	}
	if above {
		t.Errorf("first insert: got aboveThreshold=true with minCount=2, want false")
	}

	isNew, above, existing = b.Insert(12345, 2)
	if isNew || !existing {
		t.Errorf("second insert: got isNew=%v existing=%v, want isNew=false existing=true", isNew, existing)
	}
	if !above {
		t.Errorf("second insert: expected aboveThreshold once count reaches minCount=2")
	}
}

func TestBloomFilterSaturates(t *testing.T) {
	b := NewBloomFilter(64, 1)
	for i := 0; i < int(counterMax)+10; i++ {
		b.Insert(999, 1)
	}
	if got := b.Estimate(999); got != counterMax {
		t.Errorf("Estimate() = %d, want saturated at %d", got, counterMax)
	}
}

func TestBloomFilterDistinctHashesDontInterfere(t *testing.T) {
	b := NewBloomFilter(4096, 2)
	b.Insert(111, 1)
	b.Insert(111, 1)
	b.Insert(111, 1)

	// Hash 222 lands in the same block as 111 (both have a zero high half)
	// but not on all of 111's counters, so its minimum estimate stays below
	// 111's.
	if got := b.Estimate(222); got >= b.Estimate(111) {
		t.Errorf("Estimate(222)=%d should be below Estimate(111)=%d for an unrelated hash", got, b.Estimate(111))
	}
}
