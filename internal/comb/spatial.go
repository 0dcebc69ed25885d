package comb

// SpatialGrid buckets entities by position for cheap proximity queries.
// The hive rebuilds it every tick from the bees that are inside and
// fully arrived on a cell.
type SpatialGrid struct {
	bucketSize int
	cols       int
	rows       int
	buckets    [][]spatialEntry
}

type spatialEntry struct {
	id uint64
	at HexCoord
}

// NewSpatialGrid creates a spatial grid covering a columns × rows comb.
// bucketSize is the bucket edge length in cells.
func NewSpatialGrid(columns, rows, bucketSize int) *SpatialGrid {
	if bucketSize < 1 {
		bucketSize = 1
	}
	cols := (columns + bucketSize - 1) / bucketSize
	rows = (rows + bucketSize - 1) / bucketSize
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	buckets := make([][]spatialEntry, cols*rows)
	for i := range buckets {
		buckets[i] = make([]spatialEntry, 0, 8)
	}

	return &SpatialGrid{
		bucketSize: bucketSize,
		cols:       cols,
		rows:       rows,
		buckets:    buckets,
	}
}

// Clear removes all entries, keeping bucket capacity for reuse.
func (s *SpatialGrid) Clear() {
	for i := range s.buckets {
		s.buckets[i] = s.buckets[i][:0]
	}
}

// Insert records an entity at the given coordinate.
func (s *SpatialGrid) Insert(id uint64, at HexCoord) {
	idx := s.bucketIndex(at)
	s.buckets[idx] = append(s.buckets[idx], spatialEntry{id: id, at: at})
}

// QueryRange returns the IDs of all entities within hex distance radius
// of center, excluding the given ID.
func (s *SpatialGrid) QueryRange(center HexCoord, radius int, exclude uint64) []uint64 {
	result := make([]uint64, 0, 16)

	// Offset-to-bucket mapping is rectangular, so scan the bucket range
	// covering the bounding box and filter by true hex distance.
	bucketRadius := radius/s.bucketSize + 1
	centerCol := clampInt(center.Q/s.bucketSize, 0, s.cols-1)
	centerRow := clampInt(center.R/s.bucketSize, 0, s.rows-1)

	for dc := -bucketRadius; dc <= bucketRadius; dc++ {
		for dr := -bucketRadius; dr <= bucketRadius; dr++ {
			col := centerCol + dc
			row := centerRow + dr
			if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
				continue
			}
			for _, e := range s.buckets[row*s.cols+col] {
				if e.id == exclude {
					continue
				}
				if Distance(center, e.at) <= radius {
					result = append(result, e.id)
				}
			}
		}
	}

	return result
}

// CountAt returns the number of entities recorded exactly at the coordinate.
func (s *SpatialGrid) CountAt(at HexCoord) int {
	n := 0
	for _, e := range s.buckets[s.bucketIndex(at)] {
		if e.at == at {
			n++
		}
	}
	return n
}

func (s *SpatialGrid) bucketIndex(at HexCoord) int {
	col := clampInt(at.Q/s.bucketSize, 0, s.cols-1)
	row := clampInt(at.R/s.bucketSize, 0, s.rows-1)
	return row*s.cols + col
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
