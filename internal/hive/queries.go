package hive

import (
	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/entropy"
)

// The hive is the context object every bee receives; these methods
// satisfy bees.Colony. They are called from within Update, so they must
// not take the hive lock.

var _ bees.Colony = (*Hive)(nil)

func (h *Hive) Grid() *comb.Grid         { return h.grid }
func (h *Hive) Rand() entropy.Source     { return h.rng }
func (h *Hive) SimTime() float64         { return h.simTime }
func (h *Hive) Temperature() float64     { return h.temperature }
func (h *Hive) MaxBeesPerCell() int      { return h.cfg.MaxBeesPerCell }
func (h *Hive) MovementSpeed() float64   { return h.cfg.MovementSpeed }
func (h *Hive) AgingRate() float64       { return h.cfg.AgingRate }
func (h *Hive) Bees() []*bees.Bee        { return h.beeList }
func (h *Hive) Queen() *bees.Bee         { return h.queen }
func (h *Hive) CorpseCount() int         { return h.corpseCount }
func (h *Hive) HungryLarvaCount() int    { return h.hungryLarvae }
func (h *Hive) DirtyCellCount() int      { return h.dirtyCells }
func (h *Hive) StoredFoodRatio() float64 { return h.storedRatio }
func (h *Hive) WaterStoreLevel() float64 { return h.waterLevel }

func (h *Hive) OptimalTemperature() float64 { return h.cfg.OptimalTemperature }
func (h *Hive) StorageFullRatio() float64   { return h.cfg.StorageFullRatio }
func (h *Hive) ForagerDeathChance() float64 { return h.cfg.ForagerDeathChance }

// FindPath routes between two cells. With pathfinding disabled in the
// config, bees fall back to a greedy straight-line walk.
func (h *Hive) FindPath(start, goal comb.HexCoord, preferEmpty bool) []comb.HexCoord {
	if h.cfg.PathfindingEnabled {
		return h.pathfinder.FindPath(start, goal, preferEmpty)
	}
	return h.greedyPath(start, goal)
}

// greedyPath steps toward the goal picking the neighbor that shrinks
// the distance, skipping full cells. Good enough for tiny grids; may
// fail where A* would not.
func (h *Hive) greedyPath(start, goal comb.HexCoord) []comb.HexCoord {
	var path []comb.HexCoord
	at := start
	limit := h.grid.Columns + h.grid.Rows

	for steps := 0; at != goal && steps < limit; steps++ {
		best := at
		bestDist := comb.Distance(at, goal)
		for _, n := range at.Neighbors() {
			cell := h.grid.Get(n)
			if cell == nil {
				continue
			}
			if n != goal && cell.IsFull(h.cfg.MaxBeesPerCell) {
				continue
			}
			if d := comb.Distance(n, goal); d < bestDist {
				best, bestDist = n, d
			}
		}
		if best == at {
			return nil // Stuck.
		}
		at = best
		path = append(path, at)
	}
	if at != goal {
		return nil
	}
	return path
}

// FindNearestCell returns the closest cell satisfying pred, scanning
// the whole comb. The grid is small; an index would not pay for itself.
func (h *Hive) FindNearestCell(from comb.HexCoord, pred func(*comb.Cell) bool) (comb.HexCoord, bool) {
	bestDist := -1
	var best comb.HexCoord
	for coord, cell := range h.grid.Cells {
		if !pred(cell) {
			continue
		}
		d := comb.Distance(from, coord)
		if bestDist < 0 || d < bestDist {
			best, bestDist = coord, d
		}
	}
	return best, bestDist >= 0
}

// BeesNear returns the IDs of bees within radius cells of the
// coordinate, from the per-tick proximity index.
func (h *Hive) BeesNear(at comb.HexCoord, radius int) []uint64 {
	return h.spatial.QueryRange(at, radius, 0)
}

// LayEgg places an egg for the queen and records it in the daily
// summary.
func (h *Hive) LayEgg(at comb.HexCoord) bool {
	cell := h.grid.Get(at)
	if cell == nil || !cell.SetEgg(h.cfg.EggDuration) {
		return false
	}
	h.today.EggsLaid++
	return true
}

// RecordForagingTrip notes a completed trip for the rate window and the
// daily summary.
func (h *Hive) RecordForagingTrip() {
	h.foragingTimes = append(h.foragingTimes, h.simTime)
	h.pruneForagingTimes()
	h.today.ForagingTrips++
}

func (h *Hive) pruneForagingTimes() {
	cutoff := h.simTime - 3600
	i := 0
	for i < len(h.foragingTimes) && h.foragingTimes[i] < cutoff {
		i++
	}
	if i > 0 {
		h.foragingTimes = h.foragingTimes[i:]
	}
}

// RecordStored notes deposited cargo in the daily summary.
func (h *Hive) RecordStored(content comb.CellState, amount float64) {
	switch content {
	case comb.StateNectar:
		h.today.NectarStored += amount
	case comb.StatePollen:
		h.today.PollenStored += amount
	case comb.StateWater:
		h.today.WaterStored += amount
	}
}

// RecordNursing notes one larva fed.
func (h *Hive) RecordNursing() {
	h.today.LarvaeFed++
}
