package hive

import (
	"testing"
	"time"

	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/entropy"
)

func TestSnapshotRoundTrip(t *testing.T) {
	h := newTestHive(t)
	for i := 0; i < 20; i++ {
		if err := h.Update(0.5, noon.Add(time.Duration(i)*500*time.Millisecond)); err != nil {
			t.Fatal(err)
		}
	}

	// Leave some recognizable marks on the comb.
	honey := h.grid.Get(comb.HexCoord{Q: 2, R: 2})
	honey.State = comb.StateHoneyCapped
	honey.ContentAmount = comb.MaxFoodContent
	h.grid.Get(comb.HexCoord{Q: 7, R: 3}).Dirty = true
	h.grid.Get(comb.HexCoord{Q: 4, R: 6}).AddDeadBee()

	first := h.Export()

	restored, err := Import(first, entropy.NewSeeded(99))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	second := restored.Export()

	if second.SimTime != first.SimTime {
		t.Errorf("sim time %g, want %g", second.SimTime, first.SimTime)
	}
	if second.NextID != first.NextID {
		t.Errorf("next id %d, want %d", second.NextID, first.NextID)
	}
	if second.Temperature != first.Temperature {
		t.Errorf("temperature %g, want %g", second.Temperature, first.Temperature)
	}
	if !second.Date.Equal(first.Date) {
		t.Errorf("date %v, want %v", second.Date, first.Date)
	}
	if len(second.Bees) != len(first.Bees) {
		t.Fatalf("bees %d, want %d", len(second.Bees), len(first.Bees))
	}
	if len(second.Cells) != len(first.Cells) {
		t.Fatalf("cells %d, want %d", len(second.Cells), len(first.Cells))
	}

	// Cell order follows map iteration; compare by coordinate.
	want := make(map[comb.HexCoord]CellSnapshot, len(first.Cells))
	for _, cs := range first.Cells {
		want[comb.HexCoord{Q: cs.Q, R: cs.R}] = cs
	}
	for _, cs := range second.Cells {
		if got, ok := want[comb.HexCoord{Q: cs.Q, R: cs.R}]; !ok || got != cs {
			t.Errorf("cell (%d,%d) = %+v, want %+v", cs.Q, cs.R, cs, got)
		}
	}

	if restored.queen == nil {
		t.Error("queen lost across the round trip")
	}
}

func TestImportRecomputesRoutes(t *testing.T) {
	h := newTestHive(t)
	snap := h.Export()

	// One bee mid-route toward a real cell, one toward a cell that no
	// longer exists (as after a config resize).
	snap.Bees[1].Q, snap.Bees[1].R = 8, 8
	snap.Bees[1].Task = bees.TaskWandering
	snap.Bees[1].TargetQ, snap.Bees[1].TargetR = 2, 2
	snap.Bees[1].HasTarget = true
	snap.Bees[2].Q, snap.Bees[2].R = 3, 3
	snap.Bees[2].Task = bees.TaskWandering
	snap.Bees[2].TargetQ, snap.Bees[2].TargetR = 999, 999
	snap.Bees[2].HasTarget = true

	restored, err := Import(snap, entropy.NewSeeded(7))
	if err != nil {
		t.Fatal(err)
	}

	var routed, dropped *bees.Bee
	for _, b := range restored.beeList {
		switch b.ID {
		case snap.Bees[1].ID:
			routed = b
		case snap.Bees[2].ID:
			dropped = b
		}
	}
	if routed == nil || dropped == nil {
		t.Fatal("imported bees not found by ID")
	}
	if len(routed.Path) == 0 {
		t.Error("reachable target imported without a route")
	}
	if dropped.Task != bees.TaskIdle || dropped.HasTarget {
		t.Errorf("vanished target left task %s, want cancelled", bees.TaskName(dropped.Task))
	}
}

func TestImportRejectsBadSnapshot(t *testing.T) {
	if _, err := Import(&Snapshot{}, entropy.NewSeeded(1)); err == nil {
		t.Error("missing config accepted")
	}

	h := newTestHive(t)
	snap := h.Export()
	snap.Cells = append(snap.Cells, CellSnapshot{Q: -50, R: -50, State: comb.StateHoney})
	if _, err := Import(snap, entropy.NewSeeded(1)); err == nil {
		t.Error("out-of-grid cell accepted")
	}
}

func TestImportKeepsIDsMonotonic(t *testing.T) {
	h := newTestHive(t)
	snap := h.Export()
	snap.Bees[0].ID = 5000
	snap.NextID = 12 // Stale counter below the highest bee ID.

	restored, err := Import(snap, entropy.NewSeeded(1))
	if err != nil {
		t.Fatal(err)
	}
	if restored.nextID != 5001 {
		t.Errorf("nextID = %d, want bumped past the highest bee ID", restored.nextID)
	}
}
