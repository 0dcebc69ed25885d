package entropy

import "testing"

func TestSeededDeterminism(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 100; i++ {
		if a.Float() != b.Float() {
			t.Fatalf("seeded streams diverged at draw %d", i)
		}
	}
}

func TestSeededDifferentSeeds(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.Float() != b.Float() {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical streams")
	}
}

func TestRangeBounds(t *testing.T) {
	s := NewSeeded(7)
	for i := 0; i < 1000; i++ {
		v := s.Range(2.5, 3.5)
		if v < 2.5 || v >= 3.5 {
			t.Fatalf("Range(2.5, 3.5) = %g out of bounds", v)
		}
	}
}

func TestIntNBounds(t *testing.T) {
	s := NewSeeded(7)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.IntN(5)
		if v < 0 || v >= 5 {
			t.Fatalf("IntN(5) = %d out of bounds", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("IntN(5) hit %d distinct values in 1000 draws, want 5", len(seen))
	}
}

func TestChanceExtremes(t *testing.T) {
	s := NewSeeded(9)
	for i := 0; i < 100; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !s.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
		if s.Chance(-0.5) {
			t.Fatal("Chance(-0.5) returned true")
		}
	}
}
