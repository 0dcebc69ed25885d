package bees

import "testing"

func TestPoolRecycles(t *testing.T) {
	p := NewPool()

	a := p.Acquire()
	a.ID = 7
	a.Age = 500
	a.HasNectar = true

	p.Release(a)
	if p.Size() != 1 {
		t.Fatalf("pool size = %d, want 1", p.Size())
	}

	b := p.Acquire()
	if b != a {
		t.Fatal("pool allocated instead of recycling")
	}
	if b.ID != 0 || b.Age != 0 || b.HasNectar {
		t.Errorf("recycled bee not zeroed: %+v", b)
	}
	if p.Size() != 0 {
		t.Errorf("pool size = %d after acquire, want 0", p.Size())
	}
}

func TestPoolGrowsWhenEmpty(t *testing.T) {
	p := NewPool()
	a := p.Acquire()
	b := p.Acquire()
	if a == nil || b == nil || a == b {
		t.Error("empty pool did not allocate distinct bees")
	}
}
