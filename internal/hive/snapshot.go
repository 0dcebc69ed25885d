package hive

import (
	"fmt"
	"time"

	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/config"
	"github.com/talgya/apiary/internal/entropy"
)

// CellSnapshot captures one non-empty cell. Default empty cells are
// omitted from snapshots; the grid shape is rebuilt from config.
type CellSnapshot struct {
	Q                  int            `json:"q" db:"q"`
	R                  int            `json:"r" db:"r"`
	State              comb.CellState `json:"state" db:"state"`
	DevelopmentTime    float64        `json:"development_time" db:"development_time"`
	MaxDevelopmentTime float64        `json:"max_development_time" db:"max_development_time"`
	ContentAmount      float64        `json:"content_amount" db:"content_amount"`
	Dirty              bool           `json:"dirty" db:"dirty"`
	DeadBees           int            `json:"dead_bees" db:"dead_bees"`
}

// BeeSnapshot captures one bee. Routes are not persisted; they are
// recomputed on load.
type BeeSnapshot struct {
	ID         uint64    `json:"id" db:"id"`
	Kind       bees.Kind `json:"kind" db:"kind"`
	Q          int       `json:"q" db:"q"`
	R          int       `json:"r" db:"r"`
	Age        float64   `json:"age" db:"age"`
	MaxAge     float64   `json:"max_age" db:"max_age"`
	Task       bees.Task `json:"task" db:"task"`
	TaskTimer  float64   `json:"task_timer" db:"task_timer"`
	TargetQ    int       `json:"target_q" db:"target_q"`
	TargetR    int       `json:"target_r" db:"target_r"`
	HasTarget  bool      `json:"has_target" db:"has_target"`
	HasNectar  bool      `json:"has_nectar" db:"has_nectar"`
	HasPollen  bool      `json:"has_pollen" db:"has_pollen"`
	HasWater   bool      `json:"has_water" db:"has_water"`
	HasFood    bool      `json:"has_food" db:"has_food"`
	HasDeadBee bool      `json:"has_dead_bee" db:"has_dead_bee"`
	Outside    bool      `json:"outside" db:"outside"`
	EggsLaid   uint64    `json:"eggs_laid" db:"eggs_laid"`
}

// Snapshot is the full persistable colony state.
type Snapshot struct {
	SimTime     float64        `json:"sim_time"`
	Date        time.Time      `json:"date"`
	NextID      uint64         `json:"next_id"`
	Temperature float64        `json:"temperature"`
	Config      *config.Config `json:"config"`

	EmergencyQueen *comb.HexCoord `json:"emergency_queen,omitempty"`

	Cells []CellSnapshot `json:"cells"`
	Bees  []BeeSnapshot  `json:"bees"`

	Today     DaySummary   `json:"today"`
	Summaries []DaySummary `json:"summaries"`
}

// Export captures the colony under the read lock. Pristine empty cells
// are skipped.
func (h *Hive) Export() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := &Snapshot{
		SimTime:     h.simTime,
		NextID:      h.nextID,
		Temperature: h.temperature,
		Config:      h.cfg,
		Today:       h.today,
		Summaries:   append([]DaySummary(nil), h.summaries...),
	}
	if h.haveDate {
		s.Date = h.currentDate
	}
	if h.emergencyQueenCell != nil {
		coord := *h.emergencyQueenCell
		s.EmergencyQueen = &coord
	}

	for _, cell := range h.grid.Cells {
		if cell.State == comb.StateEmpty && !cell.Dirty && cell.DeadBees == 0 {
			continue
		}
		s.Cells = append(s.Cells, CellSnapshot{
			Q:                  cell.Coord.Q,
			R:                  cell.Coord.R,
			State:              cell.State,
			DevelopmentTime:    cell.DevelopmentTime,
			MaxDevelopmentTime: cell.MaxDevelopmentTime,
			ContentAmount:      cell.ContentAmount,
			Dirty:              cell.Dirty,
			DeadBees:           cell.DeadBees,
		})
	}

	for _, b := range h.beeList {
		s.Bees = append(s.Bees, BeeSnapshot{
			ID:         b.ID,
			Kind:       b.Kind,
			Q:          b.Q,
			R:          b.R,
			Age:        b.Age,
			MaxAge:     b.MaxAge,
			Task:       b.Task,
			TaskTimer:  b.TaskTimer,
			TargetQ:    b.TargetCell.Q,
			TargetR:    b.TargetCell.R,
			HasTarget:  b.HasTarget,
			HasNectar:  b.HasNectar,
			HasPollen:  b.HasPollen,
			HasWater:   b.HasWater,
			HasFood:    b.HasFood,
			HasDeadBee: b.HasDeadBee,
			Outside:    b.Outside,
			EggsLaid:   b.EggsLaid,
		})
	}

	return s
}

// Import reconstructs a colony from a snapshot. Bees resume their
// tasks; in-flight routes are recomputed, and a bee whose route no
// longer exists restarts from idle.
func Import(s *Snapshot, rng entropy.Source) (*Hive, error) {
	if s.Config == nil {
		return nil, fmt.Errorf("import snapshot: missing config")
	}
	if err := s.Config.Check(); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	h := newEmpty(s.Config, rng)
	h.simTime = s.SimTime
	h.nextID = s.NextID
	h.temperature = s.Temperature
	h.today = s.Today
	h.summaries = append([]DaySummary(nil), s.Summaries...)
	if !s.Date.IsZero() {
		h.currentDate = s.Date
		h.haveDate = true
	}
	if s.EmergencyQueen != nil {
		coord := *s.EmergencyQueen
		h.emergencyQueenCell = &coord
	}

	for _, cs := range s.Cells {
		cell := h.grid.Get(comb.HexCoord{Q: cs.Q, R: cs.R})
		if cell == nil {
			return nil, fmt.Errorf("import snapshot: cell (%d,%d) outside grid", cs.Q, cs.R)
		}
		cell.State = cs.State
		cell.DevelopmentTime = cs.DevelopmentTime
		cell.MaxDevelopmentTime = cs.MaxDevelopmentTime
		cell.ContentAmount = cs.ContentAmount
		cell.Dirty = cs.Dirty
		cell.DeadBees = cs.DeadBees
	}

	for _, bs := range s.Bees {
		at := comb.HexCoord{Q: bs.Q, R: bs.R}
		if !h.grid.InBounds(at) {
			return nil, fmt.Errorf("import snapshot: bee %d at (%d,%d) outside grid", bs.ID, bs.Q, bs.R)
		}
		b := h.pool.Acquire()
		b.ID = bs.ID
		b.Kind = bs.Kind
		b.Age = bs.Age
		b.MaxAge = bs.MaxAge
		b.Task = bs.Task
		b.TaskTimer = bs.TaskTimer
		b.TargetCell = comb.HexCoord{Q: bs.TargetQ, R: bs.TargetR}
		b.HasTarget = bs.HasTarget
		b.HasNectar = bs.HasNectar
		b.HasPollen = bs.HasPollen
		b.HasWater = bs.HasWater
		b.HasFood = bs.HasFood
		b.HasDeadBee = bs.HasDeadBee
		b.Outside = bs.Outside
		b.EggsLaid = bs.EggsLaid
		b.PlaceAt(at)

		if b.HasTarget && !b.Outside && at != b.TargetCell {
			b.Path = h.FindPath(at, b.TargetCell, false)
			if b.Path == nil {
				b.CancelTask(h)
			}
		}

		h.beeList = append(h.beeList, b)
		if b.Kind == bees.KindQueen && h.queen == nil {
			h.queen = b
		}
		if b.ID >= h.nextID {
			h.nextID = b.ID + 1
		}
	}

	return h, nil
}
