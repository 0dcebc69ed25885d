package comb

import "container/heap"

// Pathfinder runs A* over the comb with a bounded result cache.
// Full cells are impassable except as the final destination; with
// preferEmpty set, occupied cells cost extra so paths steer around
// crowds without strictly forbidding them.
type Pathfinder struct {
	grid       *Grid
	maxBees    int
	cacheLimit int

	cache map[pathKey][]HexCoord
	order []pathKey // Insertion order for oldest-entry eviction
}

type pathKey struct {
	start       HexCoord
	goal        HexCoord
	preferEmpty bool
}

// DefaultPathCacheSize bounds the number of cached paths.
const DefaultPathCacheSize = 128

// NewPathfinder creates a pathfinder over the given grid. maxBeesPerCell
// determines when a cell blocks traversal.
func NewPathfinder(grid *Grid, maxBeesPerCell, cacheLimit int) *Pathfinder {
	if cacheLimit < 1 {
		cacheLimit = DefaultPathCacheSize
	}
	return &Pathfinder{
		grid:       grid,
		maxBees:    maxBeesPerCell,
		cacheLimit: cacheLimit,
		cache:      make(map[pathKey][]HexCoord, cacheLimit),
	}
}

// FindPath returns the steps from start to goal, excluding start and
// including goal, or nil if no route exists. Cached results are
// revalidated against current blockage before reuse.
func (p *Pathfinder) FindPath(start, goal HexCoord, preferEmpty bool) []HexCoord {
	if start == goal {
		return nil
	}
	if p.grid.Get(goal) == nil {
		return nil
	}

	key := pathKey{start: start, goal: goal, preferEmpty: preferEmpty}
	if cached, ok := p.cache[key]; ok {
		if p.pathStillOpen(cached, goal) {
			return clonePath(cached)
		}
		p.evict(key)
	}

	path := p.search(start, goal, preferEmpty)
	if path != nil {
		p.store(key, path)
	}
	return clonePath(path)
}

// InvalidateCache drops all cached paths. Called when the grid changes
// in ways occupancy revalidation cannot see.
func (p *Pathfinder) InvalidateCache() {
	p.cache = make(map[pathKey][]HexCoord, p.cacheLimit)
	p.order = p.order[:0]
}

func (p *Pathfinder) pathStillOpen(path []HexCoord, goal HexCoord) bool {
	for _, step := range path {
		if step == goal {
			continue
		}
		cell := p.grid.Get(step)
		if cell == nil || cell.IsFull(p.maxBees) {
			return false
		}
	}
	return true
}

func (p *Pathfinder) store(key pathKey, path []HexCoord) {
	if _, exists := p.cache[key]; !exists && len(p.order) >= p.cacheLimit {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.cache, oldest)
	}
	if _, exists := p.cache[key]; !exists {
		p.order = append(p.order, key)
	}
	p.cache[key] = path
}

func (p *Pathfinder) evict(key pathKey) {
	delete(p.cache, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// pathNode is an entry in the A* open set.
type pathNode struct {
	coord HexCoord
	f     int // g + heuristic
	index int
}

type nodeHeap []*pathNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }

func (h *nodeHeap) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

func (p *Pathfinder) search(start, goal HexCoord, preferEmpty bool) []HexCoord {
	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &pathNode{coord: start, f: Distance(start, goal)})

	gScore := map[HexCoord]int{start: 0}
	cameFrom := make(map[HexCoord]HexCoord)
	closed := make(map[HexCoord]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.coord == goal {
			return reconstruct(cameFrom, start, goal)
		}
		if closed[current.coord] {
			continue
		}
		closed[current.coord] = true

		for _, next := range current.coord.Neighbors() {
			cell := p.grid.Get(next)
			if cell == nil || closed[next] {
				continue
			}
			// Full cells block traversal unless they are the destination.
			if next != goal && cell.IsFull(p.maxBees) {
				continue
			}

			stepCost := 1
			if preferEmpty && cell.Occupancy > 0 {
				stepCost = 3
			}

			tentative := gScore[current.coord] + stepCost
			if prev, seen := gScore[next]; seen && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = current.coord
			heap.Push(open, &pathNode{coord: next, f: tentative + Distance(next, goal)})
		}
	}

	return nil
}

func reconstruct(cameFrom map[HexCoord]HexCoord, start, goal HexCoord) []HexCoord {
	var reversed []HexCoord
	for at := goal; at != start; at = cameFrom[at] {
		reversed = append(reversed, at)
	}
	path := make([]HexCoord, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path
}

func clonePath(path []HexCoord) []HexCoord {
	if path == nil {
		return nil
	}
	out := make([]HexCoord, len(path))
	copy(out, path)
	return out
}
