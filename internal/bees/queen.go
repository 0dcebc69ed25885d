package bees

import (
	"github.com/talgya/apiary/internal/comb"
)

// assignQueenTask drives the queen's single-minded routine: find clean
// empty comb and fill it with eggs. She never passes through an
// entrance cell.
func (b *Bee) assignQueenTask(c Colony) {
	grid := c.Grid()

	// Lay right here if the cell allows it.
	if cell := grid.Get(b.Pos()); cell != nil && cell.UsableForBrood() {
		b.startTask(c, TaskLayingEgg, b.Pos())
		return
	}

	// A clean empty cell next door.
	for _, n := range b.Pos().Neighbors() {
		cell := grid.Get(n)
		if cell == nil || grid.IsEntrance(n) {
			continue
		}
		if cell.UsableForBrood() && !cell.IsFull(c.MaxBeesPerCell()) {
			b.startTask(c, TaskLayingEgg, n)
			return
		}
	}

	// Route to the nearest laying spot anywhere on the comb.
	target, ok := c.FindNearestCell(b.Pos(), func(cell *comb.Cell) bool {
		return cell.UsableForBrood() && !grid.IsEntrance(cell.Coord)
	})
	if ok && b.startTask(c, TaskLayingEgg, target) {
		return
	}

	// No comb to lay in: drift somewhere with space.
	neighbors := b.Pos().Neighbors()
	start := c.Rand().IntN(len(neighbors))
	for i := 0; i < len(neighbors); i++ {
		n := neighbors[(start+i)%len(neighbors)]
		cell := grid.Get(n)
		if cell == nil || grid.IsEntrance(n) || cell.IsFull(c.MaxBeesPerCell()) {
			continue
		}
		b.startTask(c, TaskWandering, n)
		return
	}

	// Completely boxed in; wait for the next decision window.
	b.DecisionTimer = c.Rand().Range(1, 2)
}
