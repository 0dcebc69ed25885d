package bees

import (
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/entropy"
)

// testColony is a minimal Colony implementation for exercising bee
// behavior against a real grid without the full coordinator.
type testColony struct {
	grid *comb.Grid
	rng  entropy.Source
	pf   *comb.Pathfinder

	beeList []*Bee
	queen   *Bee

	simTime     float64
	activity    float64
	temperature float64
	optimal     float64

	corpses     int
	hungry      int
	dirty       int
	storedRatio float64
	waterLevel  float64

	eggsLaid int
	nursed   int
	trips    int
	stored   map[comb.CellState]float64
}

func newTestColony(columns, rows int) *testColony {
	grid := comb.NewGrid(columns, rows, "bottom", 1)
	return &testColony{
		grid:        grid,
		rng:         entropy.NewSeeded(1),
		pf:          comb.NewPathfinder(grid, 9, 32),
		activity:    1.0,
		temperature: 35,
		optimal:     35,
		stored:      make(map[comb.CellState]float64),
	}
}

func (t *testColony) addBee(b *Bee) *Bee {
	t.beeList = append(t.beeList, b)
	return b
}

func (t *testColony) Grid() *comb.Grid            { return t.grid }
func (t *testColony) Rand() entropy.Source        { return t.rng }
func (t *testColony) SimTime() float64            { return t.simTime }
func (t *testColony) ActivityLevel() float64      { return t.activity }
func (t *testColony) Temperature() float64        { return t.temperature }
func (t *testColony) OptimalTemperature() float64 { return t.optimal }
func (t *testColony) MaxBeesPerCell() int         { return 9 }
func (t *testColony) MovementSpeed() float64      { return 2.0 }
func (t *testColony) AgingRate() float64          { return 1.0 }
func (t *testColony) ForagerDeathChance() float64 { return 0 }
func (t *testColony) StorageFullRatio() float64   { return 0.35 }
func (t *testColony) Bees() []*Bee                { return t.beeList }
func (t *testColony) Queen() *Bee                 { return t.queen }
func (t *testColony) StoredFoodRatio() float64    { return t.storedRatio }
func (t *testColony) WaterStoreLevel() float64    { return t.waterLevel }
func (t *testColony) CorpseCount() int            { return t.corpses }
func (t *testColony) HungryLarvaCount() int       { return t.hungry }
func (t *testColony) DirtyCellCount() int         { return t.dirty }

func (t *testColony) FindPath(start, goal comb.HexCoord, preferEmpty bool) []comb.HexCoord {
	return t.pf.FindPath(start, goal, preferEmpty)
}

func (t *testColony) FindNearestCell(from comb.HexCoord, pred func(*comb.Cell) bool) (comb.HexCoord, bool) {
	bestDist := -1
	var best comb.HexCoord
	for coord, cell := range t.grid.Cells {
		if !pred(cell) {
			continue
		}
		d := comb.Distance(from, coord)
		if bestDist < 0 || d < bestDist {
			best, bestDist = coord, d
		}
	}
	return best, bestDist >= 0
}

func (t *testColony) FindStorageCell(content comb.CellState, near comb.HexCoord) (comb.HexCoord, bool) {
	return t.FindNearestCell(near, func(cell *comb.Cell) bool {
		if t.grid.IsEntrance(cell.Coord) {
			return false
		}
		if cell.State == comb.StateEmpty && !cell.Dirty {
			return true
		}
		return cell.State == content && cell.ContentAmount < comb.MaxFoodContent
	})
}

func (t *testColony) LayEgg(at comb.HexCoord) bool {
	cell := t.grid.Get(at)
	if cell == nil || !cell.SetEgg(120) {
		return false
	}
	t.eggsLaid++
	return true
}

func (t *testColony) RecordForagingTrip() { t.trips++ }
func (t *testColony) RecordNursing()      { t.nursed++ }
func (t *testColony) RecordStored(content comb.CellState, amount float64) {
	t.stored[content] += amount
}

// newWorker places an idle worker on the grid, mid-life by default so
// it is neither young nor near death unless a test overrides Age.
func (t *testColony) newWorker(id uint64, at comb.HexCoord) *Bee {
	b := &Bee{ID: id, Kind: KindWorker, MaxAge: 1000, Age: 600}
	b.PlaceAt(at)
	return t.addBee(b)
}

var _ Colony = (*testColony)(nil)
