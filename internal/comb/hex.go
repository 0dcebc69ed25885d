// Package comb provides the hexagonal comb: the cell grid, cell
// lifecycle state machine, and the spatial structures (proximity grid,
// A* pathfinder) the bees navigate with.
//
// Coordinates are odd-q offset coordinates (q = column, r = row) over a
// rectangular columns × rows box. Neighbor offsets depend on column
// parity; distances are computed by converting to cube coordinates.
package comb

// HexCoord is a position on the comb in offset coordinates.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Neighbor offsets for odd-q offset layout, indexed by column parity.
var hexNeighborOffsets = [2][6]HexCoord{
	// Even columns.
	{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {0, 1}},
	// Odd columns.
	{{1, 1}, {1, 0}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}},
}

// Neighbors returns the six adjacent coordinates. Callers must bounds-check
// against the grid; edge cells simply have some neighbors outside it.
func (h HexCoord) Neighbors() [6]HexCoord {
	offsets := hexNeighborOffsets[h.Q&1]
	var result [6]HexCoord
	for i, d := range offsets {
		result[i] = HexCoord{Q: h.Q + d.Q, R: h.R + d.R}
	}
	return result
}

// cube converts an offset coordinate to cube coordinates (x, y, z).
func (h HexCoord) cube() (x, y, z int) {
	x = h.Q
	z = h.R - (h.Q-(h.Q&1))/2
	y = -x - z
	return
}

// Distance returns the hex-grid distance between two coordinates.
func Distance(a, b HexCoord) int {
	ax, ay, az := a.cube()
	bx, by, bz := b.cube()
	dx := abs(ax - bx)
	dy := abs(ay - by)
	dz := abs(az - bz)
	return (dx + dy + dz) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
