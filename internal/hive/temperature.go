package hive

import (
	"math"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/apiary/internal/bees"
)

// Season constants, derived from the calendar month.
const (
	SeasonSpring = 0
	SeasonSummer = 1
	SeasonAutumn = 2
	SeasonWinter = 3
)

// SeasonName returns a human-readable season name.
func SeasonName(season int) string {
	switch season {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// SeasonOf maps a date to a season (northern hemisphere).
func SeasonOf(t time.Time) int {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// ambientModel produces the outside temperature: a seasonal baseline,
// a diurnal swing, and a slow simplex-noise drift so no two days look
// identical while staying reproducible from the seed.
type ambientModel struct {
	noise opensimplex.Noise
}

func newAmbientModel(seed int64) *ambientModel {
	return &ambientModel{noise: opensimplex.New(seed)}
}

var seasonBaseTemp = [4]float64{16, 27, 14, 4}

func (a *ambientModel) outsideTemp(now time.Time) float64 {
	base := seasonBaseTemp[SeasonOf(now)]

	// Warmest mid-afternoon, coldest before dawn.
	hour := float64(now.Hour()) + float64(now.Minute())/60
	diurnal := 5 * math.Sin((hour-9)/24*2*math.Pi)

	day := float64(now.YearDay())
	drift := a.noise.Eval2(day*0.15, hour*0.02) * 3

	return base + diurnal + drift
}

// updateTemperature drifts the hive temperature toward the ambient
// value, resisted by the cluster's own warmth and by bees actively
// regulating (fanning when hot, shivering together when cold).
func (h *Hive) updateTemperature(dt float64, now time.Time) {
	ambient := h.ambient.outsideTemp(now)

	// Bees themselves heat the hive; the cluster packed around the brood
	// nest buffers hardest.
	clustered := len(h.BeesNear(h.grid.Center(), 4))
	warmth := float64(len(h.beeList))*0.03 + float64(clustered)*0.04
	if warmth > 8 {
		warmth = 8
	}

	target := ambient + warmth

	regulators := bees.CountTask(h, bees.TaskRegulating)
	if regulators > 0 {
		// Each regulator pulls the target about a degree toward optimal.
		pull := float64(regulators) * 1.2
		diff := h.cfg.OptimalTemperature - target
		if math.Abs(diff) < pull {
			target = h.cfg.OptimalTemperature
		} else if diff > 0 {
			target += pull
		} else {
			target -= pull
		}
	}

	// Exponential approach; the hive's thermal mass smooths swings.
	rate := 0.02 * dt
	if rate > 1 {
		rate = 1
	}
	h.temperature += (target - h.temperature) * rate
}

// ActivityLevel combines the seasonal multiplier with the hour-of-day
// curve. Below 0.1 the colony treats it as night.
func (h *Hive) ActivityLevel() float64 {
	if !h.haveDate {
		return 1
	}
	season := h.cfg.SeasonActivity[SeasonOf(h.currentDate)]
	return season * hourActivity(h.currentDate.Hour())
}

// hourActivity is the intra-day activity curve: dead quiet at night,
// ramping through morning, peaking early afternoon.
func hourActivity(hour int) float64 {
	switch {
	case hour < 6 || hour >= 22:
		return 0.05
	case hour < 9:
		return 0.3 + 0.2*float64(hour-6)
	case hour < 18:
		return 1.0
	default:
		return 1.0 - 0.22*float64(hour-18)
	}
}
