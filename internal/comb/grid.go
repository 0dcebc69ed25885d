package comb

import "fmt"

// Grid holds every cell of the comb, keyed by coordinate. The grid has a
// fixed size; cells are created once and never destroyed.
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`

	Cells map[HexCoord]*Cell `json:"-"`

	// Entrance cells sit on one configured edge. Bees cross between
	// inside and outside only through these.
	Entrances []HexCoord `json:"entrances"`

	entranceSet map[HexCoord]bool
}

// NewGrid creates a columns × rows comb with entrances centered on the
// given side ("top", "bottom", "left", "right").
func NewGrid(columns, rows int, entranceSide string, entranceCount int) *Grid {
	g := &Grid{
		Columns:     columns,
		Rows:        rows,
		Cells:       make(map[HexCoord]*Cell, columns*rows),
		entranceSet: make(map[HexCoord]bool),
	}

	for q := 0; q < columns; q++ {
		for r := 0; r < rows; r++ {
			coord := HexCoord{Q: q, R: r}
			g.Cells[coord] = &Cell{Coord: coord, State: StateEmpty}
		}
	}

	g.placeEntrances(entranceSide, entranceCount)
	return g
}

func (g *Grid) placeEntrances(side string, count int) {
	if count < 1 {
		count = 1
	}

	along := g.Columns
	if side == "left" || side == "right" {
		along = g.Rows
	}
	if count > along {
		count = along
	}
	start := (along - count) / 2

	for i := 0; i < count; i++ {
		var coord HexCoord
		switch side {
		case "top":
			coord = HexCoord{Q: start + i, R: 0}
		case "left":
			coord = HexCoord{Q: 0, R: start + i}
		case "right":
			coord = HexCoord{Q: g.Columns - 1, R: start + i}
		default: // bottom
			coord = HexCoord{Q: start + i, R: g.Rows - 1}
		}
		g.Entrances = append(g.Entrances, coord)
		g.entranceSet[coord] = true
	}
}

// Get returns the cell at the given coordinate, or nil if out of bounds.
func (g *Grid) Get(coord HexCoord) *Cell {
	return g.Cells[coord]
}

// InBounds reports whether the coordinate lies within the comb.
func (g *Grid) InBounds(coord HexCoord) bool {
	return coord.Q >= 0 && coord.Q < g.Columns && coord.R >= 0 && coord.R < g.Rows
}

// IsEntrance reports whether the coordinate is an entrance cell.
func (g *Grid) IsEntrance(coord HexCoord) bool {
	return g.entranceSet[coord]
}

// Center returns the coordinate closest to the comb's geometric center.
func (g *Grid) Center() HexCoord {
	return HexCoord{Q: g.Columns / 2, R: g.Rows / 2}
}

// NearestEntrance returns the entrance closest to from by hex distance.
// ok is false when the grid has no entrances.
func (g *Grid) NearestEntrance(from HexCoord) (HexCoord, bool) {
	if len(g.Entrances) == 0 {
		return HexCoord{}, false
	}
	best := g.Entrances[0]
	bestDist := Distance(from, best)
	for _, e := range g.Entrances[1:] {
		if d := Distance(from, e); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, true
}

// ResetOccupancy clears the transient per-tick occupancy of every cell.
func (g *Grid) ResetOccupancy() {
	for _, c := range g.Cells {
		c.Occupancy = 0
	}
}

// CellCount returns the number of cells in the grid.
func (g *Grid) CellCount() int {
	return len(g.Cells)
}

// String returns a short summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, entrances=%d)", g.Columns, g.Rows, len(g.Entrances))
}
