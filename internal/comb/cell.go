package comb

import (
	"github.com/talgya/apiary/internal/entropy"
)

// CellState enumerates the lifecycle states of a comb cell.
type CellState uint8

const (
	StateEmpty        CellState = iota
	StateEgg                    // Laid by the queen, ages toward larva
	StateLarvaeHungry           // Needs feeding; ages at half speed unfed
	StateLarvaeFed              // Fed larva, ages at full speed
	StateCappedBrood            // Pupa behind a wax cap, emerges on expiry
	StateNectar                 // Raw nectar, cures into honey over time
	StateHoney                  // Curing honey
	StateHoneyComplete          // Full honey cell awaiting capping
	StateHoneyCapped            // Capped honey, inert
	StatePollen                 // Raw pollen, ferments into bee bread
	StateBeeBread               // Fermented pollen
	StateWater                  // Water store, evaporates fastest
)

// StateName returns a human-readable name for a cell state.
func StateName(s CellState) string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateEgg:
		return "Egg"
	case StateLarvaeHungry:
		return "LarvaeHungry"
	case StateLarvaeFed:
		return "LarvaeFed"
	case StateCappedBrood:
		return "CappedBrood"
	case StateNectar:
		return "Nectar"
	case StateHoney:
		return "Honey"
	case StateHoneyComplete:
		return "HoneyComplete"
	case StateHoneyCapped:
		return "HoneyCapped"
	case StatePollen:
		return "Pollen"
	case StateBeeBread:
		return "BeeBread"
	case StateWater:
		return "Water"
	default:
		return "Unknown"
	}
}

// Content capacities and transition rates. Rates are per sim-second
// probabilities, scaled by deltaTime each update.
const (
	MaxFoodContent  = 10.0
	MaxWaterContent = 5.0

	// Honey is considered complete (ready for capping) at this fill level.
	HoneyCompleteThreshold = 8.0

	honeyConvertRate    = 0.01  // Nectar → Honey
	beeBreadConvertRate = 0.005 // Pollen → BeeBread
	beeBreadYield       = 0.8   // Pollen mass lost during fermentation

	foodDecayRate  = 0.004 // Solid food loss chance
	waterDecayRate = 0.02  // Water evaporates faster
	decayStep      = 0.5   // Content lost per decay event

	dirtyOnEmptyChance = 0.3
)

// Signal is raised by a cell update for the hive to consume.
type Signal uint8

const (
	SignalNone   Signal = iota
	SignalEmerge        // Capped brood finished: reset the cell, spawn a bee
)

// BroodTimings carries the configured development durations, in sim-seconds.
type BroodTimings struct {
	Egg   float64
	Larva float64
	Pupa  float64
}

// Cell is a single comb cell. Cells are created once at grid
// initialization and never destroyed; only their state changes.
type Cell struct {
	Coord HexCoord  `json:"coord"`
	State CellState `json:"state"`

	// Brood aging.
	DevelopmentTime    float64 `json:"development_time"`
	MaxDevelopmentTime float64 `json:"max_development_time"`

	// Food/water quantity, bounded by the per-type maximum.
	ContentAmount float64 `json:"content_amount"`

	// Dirty cells must be cleaned before reuse.
	Dirty bool `json:"dirty"`

	// Corpses stack; undertakers remove them one at a time.
	DeadBees int `json:"dead_bees"`

	// Transient occupancy, rebuilt by the hive every tick. Not an
	// ownership relation, just a current-tick index.
	Occupancy int `json:"-"`
}

// Update advances the cell state machine by deltaTime seconds and
// returns a signal for the hive to act on.
func (c *Cell) Update(dt float64, t BroodTimings, rng entropy.Source) Signal {
	switch c.State {
	case StateEgg:
		c.DevelopmentTime += dt
		if c.DevelopmentTime >= c.MaxDevelopmentTime {
			c.State = StateLarvaeHungry
			c.DevelopmentTime = 0
			c.MaxDevelopmentTime = t.Larva
		}

	case StateLarvaeHungry:
		// Unfed larvae age at half speed but still pupate on expiry.
		// Observed source behavior, preserved as-is.
		c.DevelopmentTime += dt * 0.5
		if c.DevelopmentTime >= c.MaxDevelopmentTime {
			c.cap(t)
		}

	case StateLarvaeFed:
		c.DevelopmentTime += dt
		if c.DevelopmentTime >= c.MaxDevelopmentTime {
			c.cap(t)
		}

	case StateCappedBrood:
		c.DevelopmentTime += dt
		if c.DevelopmentTime >= c.MaxDevelopmentTime {
			return SignalEmerge
		}

	case StateNectar:
		if rng.Chance(honeyConvertRate * dt) {
			c.State = StateHoney
		}
		c.decay(dt, foodDecayRate, rng)

	case StateHoney:
		if c.ContentAmount >= HoneyCompleteThreshold {
			c.State = StateHoneyComplete
			break
		}
		c.decay(dt, foodDecayRate, rng)

	case StateHoneyComplete:
		c.decay(dt, foodDecayRate, rng)

	case StatePollen:
		if rng.Chance(beeBreadConvertRate * dt) {
			c.State = StateBeeBread
			c.ContentAmount *= beeBreadYield
		}
		c.decay(dt, foodDecayRate, rng)

	case StateBeeBread:
		c.decay(dt, foodDecayRate, rng)

	case StateWater:
		c.decay(dt, waterDecayRate, rng)
	}

	return SignalNone
}

func (c *Cell) cap(t BroodTimings) {
	c.State = StateCappedBrood
	c.DevelopmentTime = 0
	c.MaxDevelopmentTime = t.Pupa
}

func (c *Cell) decay(dt, rate float64, rng entropy.Source) {
	if !rng.Chance(rate * dt) {
		return
	}
	c.ContentAmount -= decayStep
	if c.ContentAmount <= 0 {
		c.resetToEmpty(rng.Chance(dirtyOnEmptyChance))
	}
}

func (c *Cell) resetToEmpty(dirty bool) {
	c.State = StateEmpty
	c.ContentAmount = 0
	c.DevelopmentTime = 0
	c.MaxDevelopmentTime = 0
	if dirty {
		c.Dirty = true
	}
}

// ResetToEmpty clears the cell contents. Used by the hive when brood
// emerges. Never marks the cell dirty.
func (c *Cell) ResetToEmpty() {
	c.resetToEmpty(false)
}

// SetEgg places an egg in the cell. Fails if the cell is occupied by
// anything or dirty.
func (c *Cell) SetEgg(eggDuration float64) bool {
	if c.State != StateEmpty || c.Dirty {
		return false
	}
	c.State = StateEgg
	c.DevelopmentTime = 0
	c.MaxDevelopmentTime = eggDuration
	return true
}

// FeedLarva marks a hungry larva as fed. Development time carries over.
func (c *Cell) FeedLarva() bool {
	if c.State != StateLarvaeHungry {
		return false
	}
	c.State = StateLarvaeFed
	return true
}

// AddNectar deposits nectar, starting a new store if the cell is empty
// and clean. Returns the amount actually added after capping.
func (c *Cell) AddNectar(amount float64) float64 {
	return c.addContent(StateNectar, amount, MaxFoodContent)
}

// AddPollen deposits pollen.
func (c *Cell) AddPollen(amount float64) float64 {
	return c.addContent(StatePollen, amount, MaxFoodContent)
}

// AddWater deposits water. Water cells hold less than food cells.
func (c *Cell) AddWater(amount float64) float64 {
	return c.addContent(StateWater, amount, MaxWaterContent)
}

func (c *Cell) addContent(state CellState, amount, max float64) float64 {
	if amount <= 0 {
		return 0
	}
	if c.State == StateEmpty {
		if c.Dirty {
			return 0
		}
		c.State = state
	} else if c.State != state {
		// Honey chains accept more nectar until capped.
		if !(state == StateNectar && (c.State == StateHoney || c.State == StateHoneyComplete)) {
			return 0
		}
	}
	added := amount
	if c.ContentAmount+added > max {
		added = max - c.ContentAmount
	}
	if added < 0 {
		added = 0
	}
	c.ContentAmount += added
	return added
}

// Consume removes up to amount of content and returns what was taken.
// Draining the cell resets it to empty without marking it dirty (the
// consumer licked it clean).
func (c *Cell) Consume(amount float64) float64 {
	if amount <= 0 || c.ContentAmount <= 0 {
		return 0
	}
	taken := amount
	if taken > c.ContentAmount {
		taken = c.ContentAmount
	}
	c.ContentAmount -= taken
	if c.ContentAmount <= 0 {
		c.resetToEmpty(false)
	}
	return taken
}

// CapHoney seals a complete honey cell.
func (c *Cell) CapHoney() bool {
	if c.State != StateHoneyComplete {
		return false
	}
	c.State = StateHoneyCapped
	return true
}

// Clean removes the dirty flag. Returns false if already clean.
func (c *Cell) Clean() bool {
	if !c.Dirty {
		return false
	}
	c.Dirty = false
	return true
}

// AddDeadBee deposits a corpse in the cell.
func (c *Cell) AddDeadBee() {
	c.DeadBees++
}

// ClearDeadBees disposes of every corpse in the cell. Used at
// entrances, where dropped corpses are considered carried away.
func (c *Cell) ClearDeadBees() {
	c.DeadBees = 0
}

// RemoveDeadBee picks up one corpse. Returns false if there are none.
func (c *Cell) RemoveDeadBee() bool {
	if c.DeadBees <= 0 {
		return false
	}
	c.DeadBees--
	return true
}

// IsFull reports whether the cell is at its occupancy cap.
func (c *Cell) IsFull(maxBees int) bool {
	return c.Occupancy >= maxBees
}

// UsableForBrood reports whether the queen can lay here.
func (c *Cell) UsableForBrood() bool {
	return c.State == StateEmpty && !c.Dirty
}

// IsBrood reports whether the cell holds brood in any stage.
func (c *Cell) IsBrood() bool {
	switch c.State {
	case StateEgg, StateLarvaeHungry, StateLarvaeFed, StateCappedBrood:
		return true
	}
	return false
}

// IsFoodStore reports whether the cell holds nectar, honey, pollen,
// bee bread, or water.
func (c *Cell) IsFoodStore() bool {
	switch c.State {
	case StateNectar, StateHoney, StateHoneyComplete, StateHoneyCapped,
		StatePollen, StateBeeBread, StateWater:
		return true
	}
	return false
}

// HasEdibleFood reports whether a nurse can draw larva food here.
func (c *Cell) HasEdibleFood() bool {
	switch c.State {
	case StateHoney, StateHoneyComplete, StateBeeBread:
		return c.ContentAmount > 0
	}
	return false
}
