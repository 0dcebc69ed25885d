package bees

import (
	"github.com/talgya/apiary/internal/comb"
)

// timeoutFor returns the timeout budget for a task, in sim-seconds.
// Exceeding it force-cancels the task so no bee ever wedges.
func timeoutFor(t Task) float64 {
	switch t {
	case TaskForaging, TaskCollectingWater:
		return 300
	case TaskDisposing, TaskResting:
		return 180
	case TaskStoring, TaskUndertaking, TaskNursing, TaskRegulating, TaskAttending:
		return 120
	case TaskCollectingFood, TaskCleaning, TaskCapping:
		return 90
	default:
		return 60
	}
}

// onReachDestination fires once when the bee settles on its target cell
// and starts the work phase of the task.
func (b *Bee) onReachDestination(c Colony) {
	rng := c.Rand()

	switch b.Task {
	case TaskWandering:
		b.setIdle()
	case TaskLayingEgg:
		b.TaskTimer = 3
	case TaskAttending:
		b.TaskTimer = 6
	case TaskCollectingFood:
		b.TaskTimer = 2
	case TaskNursing:
		b.TaskTimer = 4
	case TaskUndertaking:
		b.TaskTimer = 2
	case TaskDisposing:
		b.TaskTimer = 2
	case TaskCleaning:
		b.TaskTimer = 5
	case TaskRegulating:
		b.TaskTimer = rng.Range(8, 15)
	case TaskResting:
		b.TaskTimer = rng.Range(10, 30)
	case TaskCapping:
		b.TaskTimer = 4
	case TaskForaging, TaskCollectingWater:
		// At the entrance, about to head out.
		b.TaskTimer = 1
	case TaskStoring:
		b.TaskTimer = 3
	default:
		b.setIdle()
	}
}

// targetStillValid re-checks that the task's target is still sensible.
// Polled every targetCheckInterval seconds; a stale target cancels the
// task rather than letting the bee finish pointless work.
func (b *Bee) targetStillValid(c Colony) bool {
	if b.Outside || !b.HasTarget {
		return true
	}
	cell := c.Grid().Get(b.TargetCell)
	if cell == nil {
		return false
	}

	switch b.Task {
	case TaskAttending:
		queen := c.Queen()
		return queen != nil && comb.Distance(b.TargetCell, queen.Pos()) <= 2
	case TaskNursing:
		return cell.State == comb.StateLarvaeHungry
	case TaskCollectingFood:
		return cell.HasEdibleFood()
	case TaskUndertaking:
		return cell.DeadBees > 0
	case TaskCleaning:
		return cell.Dirty
	case TaskCapping:
		return cell.State == comb.StateHoneyComplete
	case TaskLayingEgg:
		return cell.UsableForBrood()
	case TaskStoring:
		return storable(cell, b)
	case TaskRegulating:
		// Hysteresis: stop regulating once within a degree of optimal.
		diff := c.Temperature() - c.OptimalTemperature()
		return diff > 1 || diff < -1
	default:
		return true
	}
}

// storable reports whether the cell can still accept the bee's cargo.
func storable(cell *comb.Cell, b *Bee) bool {
	switch {
	case b.HasWater:
		return (cell.State == comb.StateEmpty && !cell.Dirty) ||
			(cell.State == comb.StateWater && cell.ContentAmount < comb.MaxWaterContent)
	case b.HasNectar:
		switch cell.State {
		case comb.StateEmpty:
			return !cell.Dirty
		case comb.StateNectar, comb.StateHoney:
			return cell.ContentAmount < comb.MaxFoodContent
		}
		return false
	case b.HasPollen:
		switch cell.State {
		case comb.StateEmpty:
			return !cell.Dirty
		case comb.StatePollen:
			return cell.ContentAmount < comb.MaxFoodContent
		}
		return false
	}
	return false
}

// completeTask applies the task's side effects when its work timer
// expires.
func (b *Bee) completeTask(c Colony) {
	rng := c.Rand()
	grid := c.Grid()

	switch b.Task {
	case TaskLayingEgg:
		if c.LayEgg(b.Pos()) {
			b.EggsLaid++
			b.EggTimes = append(b.EggTimes, c.SimTime())
			b.pruneEggTimes(c.SimTime())
		}
		b.setIdle()

	case TaskAttending:
		b.setIdle()

	case TaskCollectingFood:
		cell := grid.Get(b.TargetCell)
		if cell != nil && cell.HasEdibleFood() && cell.Consume(1) > 0 {
			b.HasFood = true
			b.continueToNursing(c)
			return
		}
		b.CancelTask(c)

	case TaskNursing:
		cell := grid.Get(b.TargetCell)
		if cell != nil && b.HasFood && cell.FeedLarva() {
			b.HasFood = false
			c.RecordNursing()
		}
		b.setIdle()

	case TaskUndertaking:
		cell := grid.Get(b.TargetCell)
		if cell != nil && cell.RemoveDeadBee() {
			b.HasDeadBee = true
			if entrance, ok := grid.NearestEntrance(b.Pos()); ok {
				if b.startTask(c, TaskDisposing, entrance) {
					return
				}
			}
		}
		b.CancelTask(c)

	case TaskDisposing:
		// The corpse is dropped outside and leaves the simulation.
		b.HasDeadBee = false
		b.setIdle()

	case TaskCleaning:
		if cell := grid.Get(b.TargetCell); cell != nil {
			cell.Clean()
		}
		b.setIdle()

	case TaskCapping:
		if cell := grid.Get(b.TargetCell); cell != nil {
			cell.CapHoney()
		}
		b.setIdle()

	case TaskRegulating, TaskResting, TaskWandering:
		b.setIdle()

	case TaskForaging:
		if !b.Outside {
			b.Outside = true
			b.TaskTimer = rng.Range(20, 40)
			return
		}
		b.returnFromForaging(c)

	case TaskCollectingWater:
		if !b.Outside {
			b.Outside = true
			b.TaskTimer = rng.Range(10, 25)
			return
		}
		b.Outside = false
		b.PlaceAt(b.TargetCell)
		if rng.Chance(0.9) {
			b.HasWater = true
			if !b.tryStoreCargo(c) {
				b.dropCargo()
				b.setIdle()
			}
			return
		}
		b.setIdle()

	case TaskStoring:
		b.depositCargo(c)

	default:
		b.setIdle()
	}
}

// returnFromForaging resolves the end of a foraging trip: most trips
// succeed and come home with nectar (weighted over pollen).
func (b *Bee) returnFromForaging(c Colony) {
	rng := c.Rand()
	b.Outside = false
	b.PlaceAt(b.TargetCell) // Back at the entrance it left from.

	if !rng.Chance(0.85) {
		b.setIdle()
		return
	}

	if rng.Chance(0.7) {
		b.HasNectar = true
	} else {
		b.HasPollen = true
	}
	c.RecordForagingTrip()

	// Discard rather than store into an already-stuffed hive.
	if c.StoredFoodRatio() >= c.StorageFullRatio() {
		b.dropCargo()
		b.setIdle()
		return
	}
	if !b.tryStoreCargo(c) {
		b.dropCargo()
		b.setIdle()
	}
}

// depositCargo empties the bee's cargo into the target storage cell.
func (b *Bee) depositCargo(c Colony) {
	cell := c.Grid().Get(b.TargetCell)
	if cell == nil {
		b.CancelTask(c)
		return
	}

	amount := c.Rand().Range(3, 5)
	var added float64
	var content comb.CellState
	switch {
	case b.HasNectar:
		added = cell.AddNectar(amount)
		content = comb.StateNectar
	case b.HasPollen:
		added = cell.AddPollen(amount)
		content = comb.StatePollen
	case b.HasWater:
		added = cell.AddWater(amount)
		content = comb.StateWater
	}

	if added > 0 {
		c.RecordStored(content, added)
	}
	b.dropCargo()
	b.setIdle()
}

// tryStoreCargo queues a storing task for whatever the bee carries.
func (b *Bee) tryStoreCargo(c Colony) bool {
	var content comb.CellState
	switch {
	case b.HasNectar:
		content = comb.StateNectar
	case b.HasPollen:
		content = comb.StatePollen
	case b.HasWater:
		content = comb.StateWater
	default:
		return false
	}

	target, ok := c.FindStorageCell(content, b.Pos())
	if !ok {
		return false
	}
	return b.startTask(c, TaskStoring, target)
}

// continueToNursing routes a food-carrying nurse to the nearest hungry
// larva, re-checking contention caps.
func (b *Bee) continueToNursing(c Colony) {
	target, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		if cell.State != comb.StateLarvaeHungry {
			return false
		}
		return CountAssigned(c, cell.Coord, TaskNursing, TaskCollectingFood) < maxNursesPerLarva
	})
	if !ok || !b.startTask(c, TaskNursing, target) {
		b.setIdle()
	}
}

func (b *Bee) dropCargo() {
	b.HasNectar = false
	b.HasPollen = false
	b.HasWater = false
}
