package hive

import (
	"fmt"
	"log/slog"

	"github.com/talgya/apiary/internal/comb"
)

// checkSuccession runs emergency queen rearing. With no queen and no
// valid successor cell, the colony picks a young larva to raise into a
// queen; failing that, the oldest egg. If the comb holds no brood at
// all the colony is queenless until new options appear.
func (h *Hive) checkSuccession() {
	if h.queen != nil || len(h.beeList) == 0 {
		return
	}

	if h.emergencyQueenCell != nil {
		cell := h.grid.Get(*h.emergencyQueenCell)
		if cell != nil && cell.IsBrood() {
			return // Successor still developing.
		}
		h.emergencyQueenCell = nil
	}

	center := h.grid.Center()

	// Young larvae make viable queens; pick the one closest to the nest
	// center where nurse coverage is densest.
	if at, ok := h.FindNearestCell(center, func(cell *comb.Cell) bool {
		if cell.State != comb.StateLarvaeHungry && cell.State != comb.StateLarvaeFed {
			return false
		}
		return cell.DevelopmentTime < 0.5*cell.MaxDevelopmentTime
	}); ok {
		h.markSuccessor(at)
		return
	}

	// Fall back to the oldest egg, the closest thing to a larva.
	var best *comb.Cell
	for _, cell := range h.grid.Cells {
		if cell.State != comb.StateEgg {
			continue
		}
		if best == nil || cell.DevelopmentTime > best.DevelopmentTime {
			best = cell
		}
	}
	if best != nil {
		h.markSuccessor(best.Coord)
	}
}

func (h *Hive) markSuccessor(at comb.HexCoord) {
	coord := at
	h.emergencyQueenCell = &coord
	h.noteEvent("queen", fmt.Sprintf("emergency queen cell started at (%d,%d)", at.Q, at.R))
	slog.Info("emergency queen rearing started", "q", at.Q, "r", at.R)
}
