package bees

import (
	"github.com/talgya/apiary/internal/comb"
)

// Contention caps keep the colony believable: a target only supports so
// many workers before the rest pick something else.
const (
	maxQueenAttendants   = 3
	maxNursesPerLarva    = 2
	maxLarvaCellVisitors = 3
	maxCleaners          = 1
	maxRegulators        = 5
	maxCappers           = 1

	// Corpse handling scales up under load: normally one undertaker per
	// corpse, up to four each once the hive is in crisis.
	corpseCrisisThreshold = 20
	undertakersPerCorpse  = 1
	crisisUndertakers     = 4

	// Temperature band around optimal before regulation kicks in.
	temperatureTolerance = 2.0

	lowWaterReserve = 3.0
)

// assignTask walks the priority ladder top to bottom; the first rule
// that matches wins. Every target-seeking rule counts current claimants
// before committing.
func (b *Bee) assignTask(c Colony) {
	if b.Kind == KindQueen {
		b.assignQueenTask(c)
		return
	}

	// Leftover cargo from an interrupted trip gets stored first.
	if b.CarriesForage() && b.tryStoreCargo(c) {
		return
	}

	young := b.IsYoung()
	activity := c.ActivityLevel()

	if young {
		if b.tryAttendQueen(c) {
			return
		}
		if b.tryNurse(c) {
			return
		}
	}

	// Corpses are a biohazard: any worker, any time of day.
	if b.tryUndertake(c) {
		return
	}

	if b.tryClean(c, 0.5) {
		return
	}
	if b.tryRegulate(c) {
		return
	}

	if activity < 0.1 {
		b.assignNightTask(c)
		return
	}

	if !young && activity > 0.5 {
		if b.tryCap(c) {
			return
		}
		if b.tryCollectWater(c) {
			return
		}
		if b.tryForage(c) {
			return
		}
	}

	// Fallback: older workers still pitch in on brood care.
	if !young && b.tryNurse(c) {
		return
	}
	if b.tryLocalWork(c) {
		return
	}
	b.wanderToward(c)
}

// assignNightTask handles the low-activity hours: rest, or quietly do
// indoor work at raised probabilities.
func (b *Bee) assignNightTask(c Colony) {
	rng := c.Rand()

	if rng.Chance(0.3) {
		b.Task = TaskResting
		b.TargetCell = b.Pos()
		b.HasTarget = true
		b.TaskElapsed = 0
		b.ValidateTimer = targetCheckInterval
		b.TaskTimer = rng.Range(10, 30)
		return
	}

	if b.tryClean(c, 0.8) {
		return
	}
	if b.tryRegulate(c) {
		return
	}
	if rng.Chance(0.6) && b.tryNurse(c) {
		return
	}
	if b.tryLocalWork(c) {
		return
	}

	// Nothing to do: doze briefly.
	b.DecisionTimer = rng.Range(2, 5)
}

func (b *Bee) tryAttendQueen(c Colony) bool {
	queen := c.Queen()
	if queen == nil || queen == b {
		return false
	}
	if CountTask(c, TaskAttending) >= maxQueenAttendants {
		return false
	}

	// Stand on an open cell beside her.
	target, ok := openNeighbor(c, queen.Pos())
	if !ok {
		return false
	}
	return b.startTask(c, TaskAttending, target)
}

func (b *Bee) tryNurse(c Colony) bool {
	if c.HungryLarvaCount() == 0 {
		return false
	}

	target, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		if cell.State != comb.StateLarvaeHungry {
			return false
		}
		if cell.Occupancy >= maxLarvaCellVisitors {
			return false
		}
		return CountAssigned(c, cell.Coord, TaskNursing, TaskCollectingFood) < maxNursesPerLarva
	})
	if !ok {
		return false
	}

	if b.HasFood {
		return b.startTask(c, TaskNursing, target)
	}

	// Pick up larva food first.
	food, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		return cell.HasEdibleFood()
	})
	if !ok {
		return false
	}
	return b.startTask(c, TaskCollectingFood, food)
}

func (b *Bee) tryUndertake(c Colony) bool {
	total := c.CorpseCount()
	if total == 0 {
		return false
	}

	perCorpse := undertakersPerCorpse
	if total >= corpseCrisisThreshold {
		perCorpse = crisisUndertakers
	}

	target, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		if cell.DeadBees == 0 {
			return false
		}
		return CountAssigned(c, cell.Coord, TaskUndertaking) < perCorpse*cell.DeadBees
	})
	if !ok {
		return false
	}
	return b.startTask(c, TaskUndertaking, target)
}

func (b *Bee) tryClean(c Colony, gate float64) bool {
	if c.DirtyCellCount() == 0 || !c.Rand().Chance(gate) {
		return false
	}

	target, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		if !cell.Dirty {
			return false
		}
		return CountAssigned(c, cell.Coord, TaskCleaning) < maxCleaners
	})
	if !ok {
		return false
	}
	return b.startTask(c, TaskCleaning, target)
}

func (b *Bee) tryRegulate(c Colony) bool {
	diff := c.Temperature() - c.OptimalTemperature()
	if diff < temperatureTolerance && diff > -temperatureTolerance {
		return false
	}
	if CountTask(c, TaskRegulating) >= maxRegulators {
		return false
	}

	grid := c.Grid()
	var anchor comb.HexCoord
	if diff > 0 {
		// Too hot: fan near the entrance to push air out.
		entrance, ok := grid.NearestEntrance(b.Pos())
		if !ok {
			return false
		}
		anchor = entrance
	} else {
		// Too cold: cluster over the brood at the comb center.
		anchor = grid.Center()
	}

	target, ok := openNeighbor(c, anchor)
	if !ok {
		return false
	}
	return b.startTask(c, TaskRegulating, target)
}

func (b *Bee) tryCap(c Colony) bool {
	target, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		if cell.State != comb.StateHoneyComplete {
			return false
		}
		return CountAssigned(c, cell.Coord, TaskCapping) < maxCappers
	})
	if !ok {
		return false
	}
	return b.startTask(c, TaskCapping, target)
}

func (b *Bee) tryCollectWater(c Colony) bool {
	hot := c.Temperature() > c.OptimalTemperature()+1
	if !hot && c.WaterStoreLevel() >= lowWaterReserve {
		return false
	}

	entrance, ok := c.Grid().NearestEntrance(b.Pos())
	if !ok {
		return false
	}
	return b.startTask(c, TaskCollectingWater, entrance)
}

func (b *Bee) tryForage(c Colony) bool {
	// A stuffed hive stops foraging rather than overfilling.
	if c.StoredFoodRatio() >= c.StorageFullRatio() {
		return false
	}

	entrance, ok := c.Grid().NearestEntrance(b.Pos())
	if !ok {
		return false
	}
	return b.startTask(c, TaskForaging, entrance)
}

// tryLocalWork scans the six neighbor cells for anything actionable
// before the bee gives up and idles.
func (b *Bee) tryLocalWork(c Colony) bool {
	grid := c.Grid()
	for _, n := range b.Pos().Neighbors() {
		cell := grid.Get(n)
		if cell == nil {
			continue
		}
		switch {
		case cell.Dirty && CountAssigned(c, n, TaskCleaning) < maxCleaners:
			return b.startTask(c, TaskCleaning, n)
		case cell.DeadBees > 0 && CountAssigned(c, n, TaskUndertaking) < cell.DeadBees:
			return b.startTask(c, TaskUndertaking, n)
		case cell.State == comb.StateHoneyComplete && CountAssigned(c, n, TaskCapping) < maxCappers:
			return b.startTask(c, TaskCapping, n)
		case cell.State == comb.StateLarvaeHungry && b.HasFood &&
			CountAssigned(c, n, TaskNursing) < maxNursesPerLarva:
			return b.startTask(c, TaskNursing, n)
		}
	}
	return false
}

// wanderToward drifts the bee toward the nearest known work cell, or a
// random non-crowded neighbor, instead of standing still.
func (b *Bee) wanderToward(c Colony) {
	grid := c.Grid()

	work, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		return cell.Dirty || cell.DeadBees > 0 || cell.State == comb.StateLarvaeHungry
	})
	if ok && work != b.Pos() {
		if b.startTask(c, TaskWandering, work) {
			return
		}
	}

	neighbors := b.Pos().Neighbors()
	start := c.Rand().IntN(len(neighbors))
	for i := 0; i < len(neighbors); i++ {
		n := neighbors[(start+i)%len(neighbors)]
		cell := grid.Get(n)
		if cell == nil || cell.IsFull(c.MaxBeesPerCell()) || grid.IsEntrance(n) {
			continue
		}
		b.startTask(c, TaskWandering, n)
		return
	}
	// Boxed in; stay put until the next decision.
}

// openNeighbor finds a non-full cell on or beside the anchor.
func openNeighbor(c Colony, anchor comb.HexCoord) (comb.HexCoord, bool) {
	grid := c.Grid()
	if cell := grid.Get(anchor); cell != nil && !cell.IsFull(c.MaxBeesPerCell()) {
		return anchor, true
	}
	for _, n := range anchor.Neighbors() {
		cell := grid.Get(n)
		if cell != nil && !cell.IsFull(c.MaxBeesPerCell()) {
			return n, true
		}
	}
	return comb.HexCoord{}, false
}
