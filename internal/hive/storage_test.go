package hive

import (
	"testing"

	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
)

func TestStoragePrefersTopUp(t *testing.T) {
	h := newTestHive(t)

	partial := comb.HexCoord{Q: 9, R: 8}
	cell := h.grid.Get(partial)
	cell.State = comb.StateNectar
	cell.ContentAmount = 4

	got, ok := h.FindStorageCell(comb.StateNectar, comb.HexCoord{Q: 5, R: 5})
	if !ok {
		t.Fatal("no storage cell found")
	}
	if got != partial {
		t.Errorf("chose %v, want partial store %v", got, partial)
	}
}

func TestStorageSkipsFullAndClaimed(t *testing.T) {
	h := newTestHive(t)

	full := comb.HexCoord{Q: 9, R: 8}
	cell := h.grid.Get(full)
	cell.State = comb.StateNectar
	cell.ContentAmount = comb.MaxFoodContent

	if got, ok := h.FindStorageCell(comb.StateNectar, comb.HexCoord{Q: 5, R: 5}); ok && got == full {
		t.Error("chose a store with no room left")
	}

	// A partial store loses eligibility once two bees are heading there.
	cell.ContentAmount = 4
	for i := 0; i < maxStoreClaimants; i++ {
		b := h.spawnBee(bees.KindWorker, comb.HexCoord{Q: 1, R: i + 1})
		b.Task = bees.TaskStoring
		b.TargetCell = full
		b.HasTarget = true
	}
	if got, ok := h.FindStorageCell(comb.StateNectar, comb.HexCoord{Q: 5, R: 5}); ok && got == full {
		t.Error("chose a store already claimed by two bees")
	}
}

func TestStorageZonesNectarOutward(t *testing.T) {
	h := newTestHive(t)
	center := h.grid.Center()

	// With zoning on, nectar should land farther from the brood core
	// than the average empty cell.
	got, ok := h.FindStorageCell(comb.StateNectar, center)
	if !ok {
		t.Fatal("no storage cell on an empty comb")
	}
	if d := comb.Distance(got, center); d < 3 {
		t.Errorf("nectar stored %d cells from center, want pushed outward", d)
	}
}

func TestStorageWaterIgnoresZoning(t *testing.T) {
	h := newTestHive(t)
	near := comb.HexCoord{Q: 5, R: 5}

	got, ok := h.FindStorageCell(comb.StateWater, near)
	if !ok {
		t.Fatal("no storage cell for water")
	}
	// Water takes the nearest clean empty cell outright.
	if d := comb.Distance(got, near); d > 1 {
		t.Errorf("water stored %d cells away, want nearest empty", d)
	}
}

func TestStorageRefusesDirtyAndEntrance(t *testing.T) {
	h := newTestHive(t)

	// Foul every cell except one entrance and one dirty cell.
	clean := comb.HexCoord{Q: 6, R: 6}
	for coord, cell := range h.grid.Cells {
		if coord == clean || h.grid.IsEntrance(coord) {
			continue
		}
		cell.Dirty = true
	}
	h.grid.Get(clean).Dirty = true

	if got, ok := h.FindStorageCell(comb.StatePollen, clean); ok {
		t.Errorf("found storage %v on a comb with no usable cells", got)
	}
}
