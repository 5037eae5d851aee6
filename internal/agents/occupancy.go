package agents

import "github.com/talgya/skirmish/internal/world"

// Occupancy maps each cell to the living agent standing on it. It is
// rebuilt from scratch, never patched, so it always reflects the roster
// exactly as it was at the last Rebuild.
type Occupancy struct {
	cells    map[world.Cell]*Agent
	rebuilds int
}

// NewOccupancy creates an empty index.
func NewOccupancy() *Occupancy {
	return &Occupancy{cells: make(map[world.Cell]*Agent)}
}

// Rebuild re-derives the index from the living agents of a roster.
func (o *Occupancy) Rebuild(roster []*Agent) {
	clear(o.cells)
	for _, a := range roster {
		if a.IsAlive() {
			o.cells[a.Pos] = a
		}
	}
	o.rebuilds++
}

// At returns the agent on a cell, or nil.
func (o *Occupancy) At(c world.Cell) *Agent {
	return o.cells[c]
}

// Occupied reports whether a living agent other than self holds the cell.
func (o *Occupancy) Occupied(c world.Cell, self *Agent) bool {
	a, ok := o.cells[c]
	return ok && a != self
}

// Len returns the number of occupied cells.
func (o *Occupancy) Len() int {
	return len(o.cells)
}

// Rebuilds returns how many times the index has been rebuilt.
func (o *Occupancy) Rebuilds() int {
	return o.rebuilds
}

// Reset empties the index and its rebuild counter.
func (o *Occupancy) Reset() {
	clear(o.cells)
	o.rebuilds = 0
}
