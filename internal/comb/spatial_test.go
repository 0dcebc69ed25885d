package comb

import (
	"sort"
	"testing"
)

func TestSpatialQueryRange(t *testing.T) {
	s := NewSpatialGrid(20, 20, 4)
	s.Insert(1, HexCoord{Q: 5, R: 5})
	s.Insert(2, HexCoord{Q: 6, R: 5})
	s.Insert(3, HexCoord{Q: 15, R: 15})

	got := s.QueryRange(HexCoord{Q: 5, R: 5}, 2, 0)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("QueryRange = %v, want [1 2]", got)
	}
}

func TestSpatialQueryExcludesSelf(t *testing.T) {
	s := NewSpatialGrid(20, 20, 4)
	s.Insert(7, HexCoord{Q: 3, R: 3})
	s.Insert(8, HexCoord{Q: 3, R: 4})

	got := s.QueryRange(HexCoord{Q: 3, R: 3}, 3, 7)
	if len(got) != 1 || got[0] != 8 {
		t.Errorf("QueryRange excluding 7 = %v, want [8]", got)
	}
}

func TestSpatialQueryCrossesBuckets(t *testing.T) {
	// Two entities adjacent across a bucket boundary must both be found.
	s := NewSpatialGrid(20, 20, 4)
	s.Insert(1, HexCoord{Q: 3, R: 2})
	s.Insert(2, HexCoord{Q: 4, R: 2})

	got := s.QueryRange(HexCoord{Q: 3, R: 2}, 1, 0)
	if len(got) != 2 {
		t.Errorf("cross-bucket query found %v, want both entities", got)
	}
}

func TestSpatialCountAt(t *testing.T) {
	s := NewSpatialGrid(10, 10, 4)
	at := HexCoord{Q: 2, R: 2}
	s.Insert(1, at)
	s.Insert(2, at)
	s.Insert(3, HexCoord{Q: 2, R: 3}) // Same bucket, different cell

	if got := s.CountAt(at); got != 2 {
		t.Errorf("CountAt = %d, want 2", got)
	}
}

func TestSpatialClear(t *testing.T) {
	s := NewSpatialGrid(10, 10, 4)
	s.Insert(1, HexCoord{Q: 1, R: 1})
	s.Clear()
	if got := s.QueryRange(HexCoord{Q: 1, R: 1}, 5, 0); len(got) != 0 {
		t.Errorf("query after Clear = %v, want empty", got)
	}
}
