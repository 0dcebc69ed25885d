package hive

import (
	"testing"
	"time"

	"github.com/talgya/apiary/internal/bees"
)

func TestSeasonOf(t *testing.T) {
	cases := map[time.Month]int{
		time.January:  SeasonWinter,
		time.April:    SeasonSpring,
		time.July:     SeasonSummer,
		time.October:  SeasonAutumn,
		time.December: SeasonWinter,
	}
	for month, want := range cases {
		date := time.Date(2026, month, 10, 0, 0, 0, 0, time.UTC)
		if got := SeasonOf(date); got != want {
			t.Errorf("%s: season %s, want %s", month, SeasonName(got), SeasonName(want))
		}
	}
}

func TestActivityDayNight(t *testing.T) {
	h := newTestHive(t)

	if err := h.Update(0.1, noon); err != nil {
		t.Fatal(err)
	}
	day := h.ActivityLevel()

	night := time.Date(2026, time.June, 16, 2, 0, 0, 0, time.UTC)
	if err := h.Update(0.1, night); err != nil {
		t.Fatal(err)
	}
	if got := h.ActivityLevel(); got >= day {
		t.Errorf("night activity %g not below daytime %g", got, day)
	}
	if got := h.ActivityLevel(); got > 0.1 {
		t.Errorf("2am activity %g, want night level", got)
	}
}

func TestActivitySeasonScales(t *testing.T) {
	h := newTestHive(t)

	if err := h.Update(0.1, noon); err != nil {
		t.Fatal(err)
	}
	summer := h.ActivityLevel()

	winterNoon := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	if err := h.Update(0.1, winterNoon); err != nil {
		t.Fatal(err)
	}
	winter := h.ActivityLevel()

	if winter >= summer {
		t.Errorf("winter activity %g not below summer %g", winter, summer)
	}
	wantRatio := h.cfg.SeasonActivity[SeasonWinter] / h.cfg.SeasonActivity[SeasonSummer]
	ratio := winter / summer
	if ratio < wantRatio-1e-9 || ratio > wantRatio+1e-9 {
		t.Errorf("winter/summer ratio = %g, want %g", ratio, wantRatio)
	}
}

func TestTemperatureDriftsTowardAmbient(t *testing.T) {
	h := newTestHive(t)
	h.beeList = nil
	h.queen = nil
	h.temperature = h.cfg.OptimalTemperature

	// A cold winter night with no bees pulls the hive down.
	night := time.Date(2026, time.January, 15, 3, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		h.updateTemperature(1, night)
	}
	if h.temperature >= h.cfg.OptimalTemperature-5 {
		t.Errorf("empty hive held %g°C on a winter night", h.temperature)
	}
}

func TestRegulatorsPullTowardOptimal(t *testing.T) {
	h := newTestHive(t)
	h.temperature = h.cfg.OptimalTemperature

	night := time.Date(2026, time.January, 15, 3, 0, 0, 0, time.UTC)

	base := h.temperature
	h.updateTemperature(1, night)
	driftAlone := base - h.temperature

	// Same tick with five workers shivering: the drop must shrink.
	h.temperature = base
	n := 0
	for _, b := range h.beeList {
		if b == h.queen || n >= 5 {
			continue
		}
		b.Task = bees.TaskRegulating
		n++
	}
	h.updateTemperature(1, night)
	driftRegulated := base - h.temperature

	if driftRegulated >= driftAlone {
		t.Errorf("regulated drift %g not below unregulated %g", driftRegulated, driftAlone)
	}
}
