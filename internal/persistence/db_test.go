package persistence

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/config"
	"github.com/talgya/apiary/internal/hive"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() *hive.Snapshot {
	eq := comb.HexCoord{Q: 4, R: 4}
	return &hive.Snapshot{
		SimTime:        12345.5,
		Date:           time.Date(2026, time.July, 3, 14, 30, 0, 0, time.UTC),
		NextID:         77,
		Temperature:    34.2,
		Config:         config.DefaultConfig(),
		EmergencyQueen: &eq,
		Cells: []hive.CellSnapshot{
			{Q: 2, R: 3, State: comb.StateHoney, ContentAmount: 6.5},
			{Q: 5, R: 1, State: comb.StateEgg, DevelopmentTime: 30, MaxDevelopmentTime: 120},
			{Q: 7, R: 7, State: comb.StateEmpty, Dirty: true, DeadBees: 2},
		},
		Bees: []hive.BeeSnapshot{
			{ID: 1, Q: 6, R: 5, Age: 100, MaxAge: 28800},
			{ID: 9, Q: 2, R: 2, Age: 500, MaxAge: 7200, HasNectar: true, Outside: true},
		},
		Today:     hive.DaySummary{Date: "2026-07-03", Births: 2, EggsLaid: 14},
		Summaries: []hive.DaySummary{{Date: "2026-07-02", Deaths: 1, NectarStored: 3.5}},
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	db := openTestDB(t)
	want := sampleSnapshot()

	if err := db.SaveSnapshot(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.SimTime != want.SimTime {
		t.Errorf("sim_time = %g, want %g", got.SimTime, want.SimTime)
	}
	if !got.Date.Equal(want.Date) {
		t.Errorf("date = %v, want %v", got.Date, want.Date)
	}
	if got.NextID != want.NextID {
		t.Errorf("next_id = %d, want %d", got.NextID, want.NextID)
	}
	if got.EmergencyQueen == nil || *got.EmergencyQueen != *want.EmergencyQueen {
		t.Errorf("emergency queen = %v, want %v", got.EmergencyQueen, want.EmergencyQueen)
	}
	if got.Config.Columns != want.Config.Columns || got.Config.Seed != want.Config.Seed {
		t.Errorf("config mangled: %+v", got.Config)
	}
	if len(got.Cells) != len(want.Cells) || len(got.Bees) != len(want.Bees) {
		t.Fatalf("rows: %d cells %d bees, want %d/%d",
			len(got.Cells), len(got.Bees), len(want.Cells), len(want.Bees))
	}

	cells := make(map[comb.HexCoord]hive.CellSnapshot)
	for _, c := range got.Cells {
		cells[comb.HexCoord{Q: c.Q, R: c.R}] = c
	}
	for _, c := range want.Cells {
		if cells[comb.HexCoord{Q: c.Q, R: c.R}] != c {
			t.Errorf("cell (%d,%d) = %+v, want %+v", c.Q, c.R, cells[comb.HexCoord{Q: c.Q, R: c.R}], c)
		}
	}

	for i, b := range got.Bees {
		if b != want.Bees[i] && b != want.Bees[1-i] {
			t.Errorf("bee row %d = %+v not in expected set", i, b)
		}
	}

	if got.Today.Date != "2026-07-03" || got.Today.EggsLaid != 14 {
		t.Errorf("today = %+v", got.Today)
	}
	if len(got.Summaries) != 1 || got.Summaries[0].Date != "2026-07-02" {
		t.Errorf("summaries = %+v", got.Summaries)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	db := openTestDB(t)
	first := sampleSnapshot()
	if err := db.SaveSnapshot(first); err != nil {
		t.Fatal(err)
	}

	second := sampleSnapshot()
	second.Cells = second.Cells[:1]
	second.Bees = second.Bees[:1]
	if err := db.SaveSnapshot(second); err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Cells) != 1 || len(got.Bees) != 1 {
		t.Errorf("stale rows survived: %d cells %d bees", len(got.Cells), len(got.Bees))
	}
}

func TestLoadFreshDatabase(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadSnapshot(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("fresh db load error = %v, want ErrNoSnapshot", err)
	}
}

func TestRunIDStable(t *testing.T) {
	db := openTestDB(t)
	first, err := db.RunID()
	if err != nil {
		t.Fatal(err)
	}
	if first == "" {
		t.Fatal("empty run id")
	}
	second, err := db.RunID()
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("run id changed between calls: %s vs %s", first, second)
	}
}

func TestEventsAppendAndQuery(t *testing.T) {
	db := openTestDB(t)
	batch1 := []hive.Event{
		{SimTime: 1, Description: "worker 2 emerged at (3,3)", Category: "birth"},
		{SimTime: 2, Description: "worker 1 died at age 7100", Category: "death"},
	}
	batch2 := []hive.Event{
		{SimTime: 3, Description: "the queen has died", Category: "queen"},
	}
	if err := db.SaveEvents(batch1); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveEvents(batch2); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveEvents(nil); err != nil {
		t.Fatal(err)
	}

	events, err := db.RecentEvents(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	// Newest first.
	if events[0].Category != "queen" || events[1].Category != "death" {
		t.Errorf("order wrong: %+v", events)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("k", "v2"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetMeta("k")
	if err != nil {
		t.Fatal(err)
	}
	if got != "v2" {
		t.Errorf("meta = %q, want replaced value", got)
	}
}
