package hive

import (
	"sort"

	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
)

// A cell already claimed by this many storing bees is excluded from
// storage candidate sets.
const maxStoreClaimants = 2

// FindStorageCell picks where incoming cargo should go. With zoning
// enabled, honey gravitates to the upper/outer comb and pollen to a
// mid-distance ring around the brood core; the choice is randomized
// among the top five candidates so foragers do not all beeline to the
// identical cell.
func (h *Hive) FindStorageCell(content comb.CellState, near comb.HexCoord) (comb.HexCoord, bool) {
	// Preferred: cells of the same content type with room left.
	if target, ok := h.nearestTopUp(content, near); ok {
		return target, ok
	}

	empties := h.emptyStorageCandidates()
	if len(empties) == 0 {
		return comb.HexCoord{}, false
	}

	if !h.cfg.SeparateBroodAndHoney || content == comb.StateWater {
		return nearestOf(empties, near), true
	}

	type scored struct {
		coord comb.HexCoord
		score float64
	}
	center := h.grid.Center()
	maxDist := comb.Distance(comb.HexCoord{Q: 0, R: 0}, center)
	if maxDist < 1 {
		maxDist = 1
	}

	ranked := make([]scored, 0, len(empties))
	for _, coord := range empties {
		normDist := float64(comb.Distance(coord, center)) / float64(maxDist)
		if normDist > 1 {
			normDist = 1
		}
		normRow := float64(coord.R) / float64(h.grid.Rows-1)

		var score float64
		switch content {
		case comb.StateNectar:
			// Honey stores: up and out, away from the brood nest.
			score = 0.6*normDist + 0.4*(1-normRow)
		case comb.StatePollen:
			// Bee bread: a ring at mid distance, close to the larvae
			// that eat it but not inside the nest.
			score = 1 - 2*absFloat(normDist-0.5)
		default:
			score = 1 - normDist
		}
		ranked = append(ranked, scored{coord: coord, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		// Stable order for equal scores keeps seeded runs reproducible.
		if ranked[i].coord.Q != ranked[j].coord.Q {
			return ranked[i].coord.Q < ranked[j].coord.Q
		}
		return ranked[i].coord.R < ranked[j].coord.R
	})

	top := len(ranked)
	if top > 5 {
		top = 5
	}
	return ranked[h.rng.IntN(top)].coord, true
}

// nearestTopUp finds the closest partially filled store of the same
// content type.
func (h *Hive) nearestTopUp(content comb.CellState, near comb.HexCoord) (comb.HexCoord, bool) {
	return h.FindNearestCell(near, func(cell *comb.Cell) bool {
		max := comb.MaxFoodContent
		switch content {
		case comb.StateWater:
			if cell.State != comb.StateWater {
				return false
			}
			max = comb.MaxWaterContent
		case comb.StateNectar:
			if cell.State != comb.StateNectar && cell.State != comb.StateHoney {
				return false
			}
		case comb.StatePollen:
			if cell.State != comb.StatePollen {
				return false
			}
		default:
			return false
		}
		if cell.ContentAmount >= max {
			return false
		}
		return h.storeClaimants(cell.Coord) < maxStoreClaimants
	})
}

func (h *Hive) emptyStorageCandidates() []comb.HexCoord {
	var out []comb.HexCoord
	for coord, cell := range h.grid.Cells {
		if cell.State != comb.StateEmpty || cell.Dirty || h.grid.IsEntrance(coord) {
			continue
		}
		if h.storeClaimants(coord) >= maxStoreClaimants {
			continue
		}
		out = append(out, coord)
	}
	return out
}

func (h *Hive) storeClaimants(target comb.HexCoord) int {
	return bees.CountAssigned(h, target, bees.TaskStoring)
}

func nearestOf(coords []comb.HexCoord, near comb.HexCoord) comb.HexCoord {
	best := coords[0]
	bestDist := comb.Distance(near, best)
	for _, c := range coords[1:] {
		if d := comb.Distance(near, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
