// Package bees provides the agent model: per-bee state, the task enum,
// the priority-ladder behavior engine, and task execution.
// Bees never hold a reference to their colony; the hive passes itself
// into every update call as an explicit context.
package bees

import (
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/entropy"
)

// Kind distinguishes the queen from workers.
type Kind uint8

const (
	KindWorker Kind = iota
	KindQueen
)

// KindName returns a human-readable name for a bee kind.
func KindName(k Kind) string {
	if k == KindQueen {
		return "Queen"
	}
	return "Worker"
}

// Task enumerates what a bee is currently doing. A task owns the
// target cell and timers on the bee; there is no stringly-typed state.
type Task uint8

const (
	TaskIdle            Task = iota
	TaskWandering            // Purposeful drift toward work or open space
	TaskLayingEgg            // Queen only
	TaskAttending            // Feeding and grooming the queen
	TaskCollectingFood       // Nurse picking up larva food from a store
	TaskNursing              // Feeding a hungry larva
	TaskUndertaking          // Picking up a corpse
	TaskDisposing            // Carrying a corpse to the entrance
	TaskCleaning             // Scrubbing a dirty cell
	TaskRegulating           // Fanning (hot) or clustering (cold)
	TaskResting              // Night rest
	TaskCapping              // Sealing complete honey
	TaskCollectingWater      // Trip outside for water
	TaskForaging             // Trip outside for nectar/pollen
	TaskStoring              // Depositing cargo into a storage cell
)

// TaskName returns a human-readable name for a task.
func TaskName(t Task) string {
	switch t {
	case TaskIdle:
		return "Idle"
	case TaskWandering:
		return "Wandering"
	case TaskLayingEgg:
		return "LayingEgg"
	case TaskAttending:
		return "Attending"
	case TaskCollectingFood:
		return "CollectingFood"
	case TaskNursing:
		return "Nursing"
	case TaskUndertaking:
		return "Undertaking"
	case TaskDisposing:
		return "Disposing"
	case TaskCleaning:
		return "Cleaning"
	case TaskRegulating:
		return "Regulating"
	case TaskResting:
		return "Resting"
	case TaskCapping:
		return "Capping"
	case TaskCollectingWater:
		return "CollectingWater"
	case TaskForaging:
		return "Foraging"
	case TaskStoring:
		return "Storing"
	default:
		return "Unknown"
	}
}

// Colony is the context a bee receives on every update. The hive
// implements it; bees stay free of back-references.
type Colony interface {
	Grid() *comb.Grid
	Rand() entropy.Source

	// Simulated seconds since colony start.
	SimTime() float64
	// Activity multiplier for the current season and hour, 0..1.
	ActivityLevel() float64

	Temperature() float64
	OptimalTemperature() float64

	MaxBeesPerCell() int
	MovementSpeed() float64
	AgingRate() float64
	ForagerDeathChance() float64
	StorageFullRatio() float64

	// FindPath returns the steps to goal (excluding start), or nil.
	FindPath(start, goal comb.HexCoord, preferEmpty bool) []comb.HexCoord

	// Bees returns the live bee list for contention counting. Read-only.
	Bees() []*Bee
	Queen() *Bee

	// FindNearestCell scans for the closest cell matching pred, or ok=false.
	FindNearestCell(from comb.HexCoord, pred func(*comb.Cell) bool) (comb.HexCoord, bool)
	// FindStorageCell picks a zoned storage target for the given content.
	FindStorageCell(content comb.CellState, near comb.HexCoord) (comb.HexCoord, bool)

	// Colony-wide pressure indicators driving adaptive behavior.
	StoredFoodRatio() float64
	WaterStoreLevel() float64
	CorpseCount() int
	HungryLarvaCount() int
	DirtyCellCount() int

	// LayEgg places an egg at the coordinate and records it. Queen only.
	LayEgg(at comb.HexCoord) bool

	// Bookkeeping hooks into the daily summary.
	RecordForagingTrip()
	RecordStored(content comb.CellState, amount float64)
	RecordNursing()
}

// Bee is a single agent. Identity is the ID; position is a cell plus an
// interpolation fraction toward the target cell.
type Bee struct {
	ID   uint64 `json:"id"`
	Kind Kind   `json:"kind"`

	// Current cell and movement interpolation toward (TargetQ, TargetR).
	Q            int     `json:"q"`
	R            int     `json:"r"`
	TargetQ      int     `json:"target_q"`
	TargetR      int     `json:"target_r"`
	MoveProgress float64 `json:"move_progress"` // 1.0 = fully arrived

	// Remaining steps of the current route, excluding the current cell.
	Path []comb.HexCoord `json:"-"`

	Age    float64 `json:"age"`     // Sim-seconds lived
	MaxAge float64 `json:"max_age"` // Lifespan

	Task       Task          `json:"task"`
	TaskTimer  float64       `json:"task_timer"` // Countdown to completeTask
	TargetCell comb.HexCoord `json:"target_cell"`
	HasTarget  bool          `json:"has_target"`

	// Fault tolerance: elapsed time in the current task (timeout budget)
	// and countdown to the next target sanity check.
	TaskElapsed   float64 `json:"-"`
	ValidateTimer float64 `json:"-"`

	// Countdown until the next idle re-decision.
	DecisionTimer float64 `json:"-"`

	// Cargo flags.
	HasNectar  bool `json:"has_nectar"`
	HasPollen  bool `json:"has_pollen"`
	HasWater   bool `json:"has_water"`
	HasFood    bool `json:"has_food"`
	HasDeadBee bool `json:"has_dead_bee"`

	Outside bool `json:"outside"`

	// Queen only.
	EggsLaid uint64    `json:"eggs_laid,omitempty"`
	EggTimes []float64 `json:"-"` // Sim-time stamps, pruned to the last hour
}

// Pos returns the bee's current cell coordinate.
func (b *Bee) Pos() comb.HexCoord {
	return comb.HexCoord{Q: b.Q, R: b.R}
}

// Arrived reports whether the bee is fully settled on its current cell
// with no route left to walk.
func (b *Bee) Arrived() bool {
	return b.MoveProgress >= 1 && len(b.Path) == 0
}

// PlaceAt drops the bee on a cell with no movement in progress.
func (b *Bee) PlaceAt(at comb.HexCoord) {
	b.Q, b.R = at.Q, at.R
	b.TargetQ, b.TargetR = at.Q, at.R
	b.MoveProgress = 1
	b.Path = nil
}

// speedMultiplier slows bees down as they age.
func (b *Bee) speedMultiplier() float64 {
	if b.MaxAge <= 0 {
		return 1
	}
	m := 1 - 0.4*(b.Age/b.MaxAge)
	if m < 0.4 {
		m = 0.4
	}
	return m
}

// IsYoung reports whether the bee is under half its lifespan. Young
// workers do in-hive duties; older ones fly.
func (b *Bee) IsYoung() bool {
	return b.Age < 0.5*b.MaxAge
}

// CarriesForage reports whether the bee holds storable cargo.
func (b *Bee) CarriesForage() bool {
	return b.HasNectar || b.HasPollen || b.HasWater
}

// EggRatePerHour returns the queen's recent laying rate from the
// sliding one-hour window of timestamps.
func (b *Bee) EggRatePerHour(simTime float64) float64 {
	b.pruneEggTimes(simTime)
	return float64(len(b.EggTimes))
}

func (b *Bee) pruneEggTimes(simTime float64) {
	cutoff := simTime - 3600
	i := 0
	for i < len(b.EggTimes) && b.EggTimes[i] < cutoff {
		i++
	}
	if i > 0 {
		b.EggTimes = b.EggTimes[i:]
	}
}

// CountAssigned returns how many bees are already working the given
// target with any of the listed tasks. Computed by scanning the live
// bee list so the contention accounting stays auditable.
func CountAssigned(c Colony, target comb.HexCoord, tasks ...Task) int {
	n := 0
	for _, other := range c.Bees() {
		if !other.HasTarget || other.TargetCell != target {
			continue
		}
		for _, t := range tasks {
			if other.Task == t {
				n++
				break
			}
		}
	}
	return n
}

// CountTask returns how many bees currently hold the given task.
func CountTask(c Colony, task Task) int {
	n := 0
	for _, other := range c.Bees() {
		if other.Task == task {
			n++
		}
	}
	return n
}
