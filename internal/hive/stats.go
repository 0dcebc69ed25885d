package hive

import (
	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
)

// DaySummary accumulates one calendar day of colony activity.
type DaySummary struct {
	Date          string  `json:"date" db:"date"`
	Births        int     `json:"births" db:"births"`
	Deaths        int     `json:"deaths" db:"deaths"`
	EggsLaid      int     `json:"eggs_laid" db:"eggs_laid"`
	ForagingTrips int     `json:"foraging_trips" db:"foraging_trips"`
	NectarStored  float64 `json:"nectar_stored" db:"nectar_stored"`
	PollenStored  float64 `json:"pollen_stored" db:"pollen_stored"`
	WaterStored   float64 `json:"water_stored" db:"water_stored"`
	LarvaeFed     int     `json:"larvae_fed" db:"larvae_fed"`
}

// QueenStats describes the current queen, if there is one.
type QueenStats struct {
	Age         float64 `json:"age"`
	Lifespan    float64 `json:"lifespan"`
	EggsLaid    uint64  `json:"eggs_laid"`
	EggsPerHour float64 `json:"eggs_per_hour"`
	Task        string  `json:"task"`
}

// Stats is a point-in-time snapshot of colony health.
type Stats struct {
	SimTime     float64 `json:"sim_time"`
	Date        string  `json:"date"`
	Season      string  `json:"season"`
	Temperature float64 `json:"temperature"`
	Activity    float64 `json:"activity"`

	Population  int `json:"population"`
	Workers     int `json:"workers"`
	BeesInside  int `json:"bees_inside"`
	BeesOutside int `json:"bees_outside"`

	BroodCells   int     `json:"brood_cells"`
	HungryLarvae int     `json:"hungry_larvae"`
	DirtyCells   int     `json:"dirty_cells"`
	Corpses      int     `json:"corpses"`
	HoneyStored  float64 `json:"honey_stored"`
	PollenStored float64 `json:"pollen_stored"`
	WaterStored  float64 `json:"water_stored"`
	StoredRatio  float64 `json:"stored_ratio"`

	ForagingTripsPerHour int `json:"foraging_trips_per_hour"`

	TasksInProgress map[string]int `json:"tasks_in_progress"`

	Queen *QueenStats `json:"queen,omitempty"`

	Today   DaySummary   `json:"today"`
	History []DaySummary `json:"history"`
}

// CollectStats assembles a snapshot under the read lock.
func (h *Hive) CollectStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := Stats{
		SimTime:      h.simTime,
		Temperature:  h.temperature,
		Activity:     h.ActivityLevel(),
		Population:   len(h.beeList),
		HungryLarvae: h.hungryLarvae,
		DirtyCells:   h.dirtyCells,
		Corpses:      h.corpseCount,
		StoredRatio:  h.storedRatio,
		Today:        h.today,
		History:      append([]DaySummary(nil), h.summaries...),

		ForagingTripsPerHour: len(h.foragingTimes),
		TasksInProgress:      make(map[string]int),
	}
	if h.haveDate {
		s.Date = h.currentDate.Format("2006-01-02 15:04")
		s.Season = SeasonName(SeasonOf(h.currentDate))
	}

	for _, b := range h.beeList {
		if b.Kind == bees.KindWorker {
			s.Workers++
		}
		if b.Outside {
			s.BeesOutside++
		} else {
			s.BeesInside++
		}
		s.TasksInProgress[bees.TaskName(b.Task)]++
	}

	for _, cell := range h.grid.Cells {
		switch {
		case cell.IsBrood():
			s.BroodCells++
		case cell.State == comb.StateNectar,
			cell.State == comb.StateHoney,
			cell.State == comb.StateHoneyComplete,
			cell.State == comb.StateHoneyCapped:
			s.HoneyStored += cell.ContentAmount
		case cell.State == comb.StatePollen, cell.State == comb.StateBeeBread:
			s.PollenStored += cell.ContentAmount
		case cell.State == comb.StateWater:
			s.WaterStored += cell.ContentAmount
		}
	}

	if h.queen != nil {
		s.Queen = &QueenStats{
			Age:         h.queen.Age,
			Lifespan:    h.queen.MaxAge,
			EggsLaid:    h.queen.EggsLaid,
			EggsPerHour: float64(len(h.queen.EggTimes)),
			Task:        bees.TaskName(h.queen.Task),
		}
	}

	return s
}

// Events returns a copy of the most recent events, newest last.
func (h *Hive) Events(limit int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	evs := h.events
	if limit > 0 && len(evs) > limit {
		evs = evs[len(evs)-limit:]
	}
	return append([]Event(nil), evs...)
}
