package bees

import (
	"github.com/talgya/apiary/internal/comb"
)

// UpdateResult signals the hive what happened to the bee this tick.
type UpdateResult uint8

const (
	ResultAlive UpdateResult = iota
	ResultDied
)

// Movement progress is capped per frame so a bee never visually
// teleports: at the cap a cell transition takes at least four frames.
const maxMoveStepPerFrame = 0.25

// How often an active task re-checks that its target still makes sense.
const targetCheckInterval = 2.0

// Update advances the bee by deltaTime seconds. The colony is passed in
// as explicit context; the bee keeps no reference to it.
func (b *Bee) Update(dt float64, c Colony) UpdateResult {
	b.Age += dt * c.AgingRate()
	if b.Age >= b.MaxAge {
		return ResultDied
	}
	// Very old foragers sometimes do not make it home.
	if b.Outside && b.Age > 0.9*b.MaxAge && c.Rand().Chance(c.ForagerDeathChance()*dt) {
		return ResultDied
	}

	// The queen never leaves the hive. Enforced every tick.
	if b.Kind == KindQueen {
		b.Outside = false
	}

	if b.Task != TaskIdle {
		b.TaskElapsed += dt
		if b.TaskElapsed > timeoutFor(b.Task) {
			b.CancelTask(c)
		} else {
			b.ValidateTimer -= dt
			if b.ValidateTimer <= 0 {
				b.ValidateTimer = targetCheckInterval
				if !b.targetStillValid(c) {
					b.CancelTask(c)
				}
			}
		}
	}

	if b.TaskTimer > 0 {
		b.TaskTimer -= dt
		if b.TaskTimer <= 0 {
			b.TaskTimer = 0
			b.completeTask(c)
		}
	}

	b.updateMovement(dt, c)

	if b.Task == TaskIdle && b.TaskTimer <= 0 && b.Arrived() && !b.Outside {
		b.DecisionTimer -= dt
		if b.DecisionTimer <= 0 {
			b.assignTask(c)
			b.scheduleNextDecision(c)
		}
	}

	return ResultAlive
}

// scheduleNextDecision picks the next idle polling delay. Under colony
// stress (corpses, many hungry larvae, many dirty cells) bees re-decide
// much faster, trading CPU for responsiveness.
func (b *Bee) scheduleNextDecision(c Colony) {
	rng := c.Rand()
	if c.CorpseCount() > 0 || c.HungryLarvaCount() > 5 || c.DirtyCellCount() > 5 {
		b.DecisionTimer = rng.Range(0.05, 0.2)
		return
	}
	b.DecisionTimer = rng.Range(0.5, 1.5)
}

func (b *Bee) updateMovement(dt float64, c Colony) {
	if b.Outside {
		return
	}

	if b.MoveProgress < 1 {
		step := dt * c.MovementSpeed() * b.speedMultiplier()
		if step > maxMoveStepPerFrame {
			step = maxMoveStepPerFrame
		}
		b.MoveProgress += step
		if b.MoveProgress < 1 {
			return
		}
		// Snap onto the target cell.
		b.Q, b.R = b.TargetQ, b.TargetR
		b.MoveProgress = 1
	}

	if len(b.Path) > 0 {
		b.advanceAlongPath(c)
		return
	}

	if b.Task != TaskIdle && b.HasTarget && b.Pos() == b.TargetCell && b.TaskTimer <= 0 {
		b.onReachDestination(c)
	}
}

// advanceAlongPath validates the next segment is still passable, then
// starts moving into it. A blocked segment triggers a recompute; a dead
// end cancels the task.
func (b *Bee) advanceAlongPath(c Colony) {
	next := b.Path[0]
	cell := c.Grid().Get(next)
	final := b.TargetCell

	if cell == nil || (next != final && cell.IsFull(c.MaxBeesPerCell())) {
		if !b.HasTarget {
			b.Path = nil
			return
		}
		fresh := c.FindPath(b.Pos(), final, false)
		if fresh == nil {
			b.CancelTask(c)
			return
		}
		b.Path = fresh
		next = b.Path[0]
	}

	b.Path = b.Path[1:]
	b.TargetQ, b.TargetR = next.Q, next.R
	b.MoveProgress = 0
}

// startTask begins a task toward a target cell, routing there if needed.
// Returns false (leaving the bee idle) when no route exists.
func (b *Bee) startTask(c Colony, task Task, target comb.HexCoord) bool {
	path := []comb.HexCoord(nil)
	if b.Pos() != target {
		path = c.FindPath(b.Pos(), target, false)
		if path == nil {
			return false
		}
	}

	b.Task = task
	b.TargetCell = target
	b.HasTarget = true
	b.Path = path
	b.TaskTimer = 0
	b.TaskElapsed = 0
	b.ValidateTimer = targetCheckInterval

	if b.Arrived() && b.Pos() == target {
		b.onReachDestination(c)
	}
	return true
}

// CancelTask aborts the current task. Idempotent: carried corpses are
// released into the current cell (disposed if at an entrance), the bee
// resets to idle, and a short randomized re-decision delay is scheduled.
func (b *Bee) CancelTask(c Colony) {
	if b.HasDeadBee {
		b.HasDeadBee = false
		if !b.Outside && !c.Grid().IsEntrance(b.Pos()) {
			if cell := c.Grid().Get(b.Pos()); cell != nil {
				cell.AddDeadBee()
			}
		}
	}

	b.Task = TaskIdle
	b.HasTarget = false
	b.Path = nil
	b.TaskTimer = 0
	b.TaskElapsed = 0
	b.DecisionTimer = c.Rand().Range(0.3, 0.8)
}

// setIdle clears task state without the cancellation side effects.
func (b *Bee) setIdle() {
	b.Task = TaskIdle
	b.HasTarget = false
	b.Path = nil
	b.TaskTimer = 0
	b.TaskElapsed = 0
}
