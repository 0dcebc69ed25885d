// Package hive provides the colony coordinator: it owns the comb and
// the bees, drives per-tick updates in a fixed phase order, aggregates
// statistics, and brokers the shared queries (pathfinding, target
// selection) every bee depends on.
package hive

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/config"
	"github.com/talgya/apiary/internal/entropy"
)

// Event is a notable occurrence in the colony.
type Event struct {
	SimTime     float64 `json:"sim_time" db:"sim_time"`
	Description string  `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"` // "birth", "death", "queen", "season"
}

const maxKeptEvents = 1000

// Hive is the aggregate root of the simulation.
type Hive struct {
	mu sync.RWMutex

	cfg *config.Config
	rng entropy.Source

	grid       *comb.Grid
	pathfinder *comb.Pathfinder
	spatial    *comb.SpatialGrid

	beeList []*bees.Bee
	queen   *bees.Bee
	pool    *bees.Pool
	nextID  uint64

	temperature float64
	simTime     float64

	currentDate time.Time
	haveDate    bool

	today         DaySummary
	summaries     []DaySummary
	foragingTimes []float64

	// Brood cell slated to emerge as the replacement queen, if any.
	emergencyQueenCell *comb.HexCoord

	events []Event

	// Per-tick cached aggregates, refreshed after the cell phase so bee
	// decisions in the same tick all see a consistent view.
	corpseCount  int
	hungryLarvae int
	dirtyCells   int
	storedRatio  float64
	waterLevel   float64

	ambient *ambientModel
}

// New creates a colony from configuration: fresh comb, a queen at the
// center, and the configured number of workers scattered around her.
func New(cfg *config.Config, rng entropy.Source) *Hive {
	h := newEmpty(cfg, rng)

	center := h.grid.Center()
	queen := h.spawnBee(bees.KindQueen, center)
	h.queen = queen

	for i := 0; i < cfg.InitialWorkers; i++ {
		at := h.randomOpenCell(center)
		w := h.spawnBee(bees.KindWorker, at)
		// Stagger ages so the first generation does not die in unison.
		w.Age = rng.Range(0, 0.5*w.MaxAge)
	}

	return h
}

// newEmpty builds the shell shared by New and Import.
func newEmpty(cfg *config.Config, rng entropy.Source) *Hive {
	grid := comb.NewGrid(cfg.Columns, cfg.Rows, cfg.EntranceSide, cfg.EntranceCount)
	return &Hive{
		cfg:         cfg,
		rng:         rng,
		grid:        grid,
		pathfinder:  comb.NewPathfinder(grid, cfg.MaxBeesPerCell, cfg.PathCacheSize),
		spatial:     comb.NewSpatialGrid(cfg.Columns, cfg.Rows, 4),
		pool:        bees.NewPool(),
		nextID:      1,
		temperature: cfg.OptimalTemperature,
		ambient:     newAmbientModel(int64(cfg.Seed)),
	}
}

func (h *Hive) spawnBee(kind bees.Kind, at comb.HexCoord) *bees.Bee {
	b := h.pool.Acquire()
	b.ID = h.nextID
	h.nextID++
	b.Kind = kind
	b.MaxAge = h.cfg.WorkerLifespan
	if kind == bees.KindQueen {
		b.MaxAge = h.cfg.QueenLifespan
	}
	b.PlaceAt(at)
	h.beeList = append(h.beeList, b)
	return b
}

func (h *Hive) randomOpenCell(near comb.HexCoord) comb.HexCoord {
	// A handful of attempts is plenty on a fresh grid.
	for i := 0; i < 20; i++ {
		at := comb.HexCoord{
			Q: h.rng.IntN(h.grid.Columns),
			R: h.rng.IntN(h.grid.Rows),
		}
		cell := h.grid.Get(at)
		if cell != nil && !cell.IsFull(h.cfg.MaxBeesPerCell) && !h.grid.IsEntrance(at) {
			return at
		}
	}
	return near
}

// Update advances the whole colony by deltaTime seconds. Phases run in
// a fixed order with no interleaving. Invalid input skips the tick;
// unexpected panics are wrapped and returned for the driver to treat as
// fatal for that tick only.
func (h *Hive) Update(deltaTime float64, now time.Time) (err error) {
	if deltaTime <= 0 || math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) {
		slog.Warn("skipping tick: invalid deltaTime", "delta", deltaTime)
		return nil
	}
	if now.IsZero() {
		slog.Warn("skipping tick: zero date")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hive update failed: %v", r)
		}
	}()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.rolloverDay(now)
	h.simTime += deltaTime

	// Phase: rebuild transient occupancy and the proximity index.
	h.grid.ResetOccupancy()
	h.spatial.Clear()
	for _, b := range h.beeList {
		if b.Outside || !b.Arrived() {
			continue
		}
		if cell := h.grid.Get(b.Pos()); cell != nil {
			cell.Occupancy++
		}
		h.spatial.Insert(b.ID, b.Pos())
	}

	// Phase: cell lifecycle; emerges are collected, then materialized so
	// newborns do not act until the next tick.
	timings := comb.BroodTimings{
		Egg:   h.cfg.EggDuration,
		Larva: h.cfg.LarvaDuration,
		Pupa:  h.cfg.PupaDuration,
	}
	var emerged []comb.HexCoord
	for _, cell := range h.grid.Cells {
		if cell.Update(deltaTime, timings, h.rng) == comb.SignalEmerge {
			emerged = append(emerged, cell.Coord)
		}
	}
	for _, at := range emerged {
		h.materializeBee(at)
	}

	// Phase: corpses dropped at entrances are considered disposed.
	for _, e := range h.grid.Entrances {
		if cell := h.grid.Get(e); cell != nil {
			cell.ClearDeadBees()
		}
	}

	h.refreshAggregates()

	// Phase: bee updates, in reverse for safe removal on death.
	for i := len(h.beeList) - 1; i >= 0; i-- {
		b := h.beeList[i]
		result, panicked := h.safeUpdateBee(b, deltaTime)
		if panicked {
			// A misbehaving bee is removed rather than allowed to abort
			// the tick.
			h.removeBee(i, b, "removed after update failure")
			continue
		}
		if result == bees.ResultDied {
			h.handleDeath(i, b)
		}
	}

	h.updateTemperature(deltaTime, now)
	h.checkSuccession()

	return nil
}

func (h *Hive) safeUpdateBee(b *bees.Bee, dt float64) (result bees.UpdateResult, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bee update panicked", "bee", b.ID, "task", bees.TaskName(b.Task), "error", r)
			panicked = true
		}
	}()
	result = b.Update(dt, h)
	return result, false
}

// materializeBee turns an emerged brood cell into a new bee. The cell
// marked for emergency succession produces a queen.
func (h *Hive) materializeBee(at comb.HexCoord) {
	cell := h.grid.Get(at)
	if cell == nil {
		return
	}
	cell.ResetToEmpty()

	kind := bees.KindWorker
	if h.emergencyQueenCell != nil && *h.emergencyQueenCell == at {
		kind = bees.KindQueen
		h.emergencyQueenCell = nil
	}

	b := h.spawnBee(kind, at)
	h.today.Births++

	if kind == bees.KindQueen {
		if h.queen == nil {
			h.queen = b
			h.noteEvent("queen", fmt.Sprintf("a new queen emerged at (%d,%d)", at.Q, at.R))
		} else {
			// The old queen survived after all; the pretender stays a
			// worker-sized oddity in the roster. Rare, harmless.
			b.Kind = bees.KindWorker
			b.MaxAge = h.cfg.WorkerLifespan
		}
	} else {
		h.noteEvent("birth", fmt.Sprintf("worker %d emerged at (%d,%d)", b.ID, at.Q, at.R))
	}
}

func (h *Hive) handleDeath(i int, b *bees.Bee) {
	h.today.Deaths++

	// Leave a corpse where the bee fell, unless it fell outside or on
	// an entrance (carried away by the wind, or never came home).
	if !b.Outside && !h.grid.IsEntrance(b.Pos()) {
		if cell := h.grid.Get(b.Pos()); cell != nil {
			cell.AddDeadBee()
		}
	}

	if b == h.queen {
		h.queen = nil
		h.noteEvent("queen", "the queen has died")
		slog.Info("queen died", "age", b.Age, "eggs_laid", b.EggsLaid)
	} else {
		h.noteEvent("death", fmt.Sprintf("worker %d died at age %.0f", b.ID, b.Age))
	}

	h.removeBee(i, b, "")
}

func (h *Hive) removeBee(i int, b *bees.Bee, reason string) {
	if reason != "" {
		h.noteEvent("death", fmt.Sprintf("worker %d %s", b.ID, reason))
	}
	if b == h.queen {
		h.queen = nil
	}
	h.beeList = append(h.beeList[:i], h.beeList[i+1:]...)
	h.pool.Release(b)
}

// rolloverDay archives the running daily summary when the calendar day
// changes. The last seven days are kept, oldest evicted first.
func (h *Hive) rolloverDay(now time.Time) {
	if !h.haveDate {
		h.currentDate = now
		h.haveDate = true
		h.today = DaySummary{Date: now.Format("2006-01-02")}
		return
	}

	y1, m1, d1 := h.currentDate.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		h.currentDate = now
		return
	}

	h.summaries = append(h.summaries, h.today)
	if len(h.summaries) > 7 {
		h.summaries = h.summaries[len(h.summaries)-7:]
	}
	slog.Info("daily summary archived",
		"date", h.today.Date,
		"births", h.today.Births,
		"deaths", h.today.Deaths,
		"eggs", h.today.EggsLaid,
		"foraging_trips", h.today.ForagingTrips,
	)

	h.currentDate = now
	h.today = DaySummary{Date: now.Format("2006-01-02")}
}

// refreshAggregates recomputes the cached colony-wide counts consumed
// by bee decisions.
func (h *Hive) refreshAggregates() {
	corpses, hungry, dirty, foodCells := 0, 0, 0, 0
	water := 0.0
	for _, cell := range h.grid.Cells {
		corpses += cell.DeadBees
		if cell.State == comb.StateLarvaeHungry {
			hungry++
		}
		if cell.Dirty {
			dirty++
		}
		if cell.IsFoodStore() {
			foodCells++
		}
		if cell.State == comb.StateWater {
			water += cell.ContentAmount
		}
	}
	h.corpseCount = corpses
	h.hungryLarvae = hungry
	h.dirtyCells = dirty
	h.waterLevel = water
	if n := h.grid.CellCount(); n > 0 {
		h.storedRatio = float64(foodCells) / float64(n)
	}
}

func (h *Hive) noteEvent(category, description string) {
	h.events = append(h.events, Event{
		SimTime:     h.simTime,
		Description: description,
		Category:    category,
	})
	if len(h.events) > maxKeptEvents {
		h.events = h.events[len(h.events)-maxKeptEvents:]
	}
}
