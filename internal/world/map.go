package world

import "fmt"

// Map holds the terrain of one battlefield. Only cells that differ from the
// default cost are stored.
type Map struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	DefaultCost int `json:"default_cost"`

	overrides map[Cell]int
}

// Grid is a dense [y][x] export of terrain categories:
// plain=0, wall=1, swamp=2.
type Grid [][]int

// NewMap creates a plain map of the given size.
func NewMap(width, height int) *Map {
	return &Map{
		Width:       width,
		Height:      height,
		DefaultCost: CostPlain,
		overrides:   make(map[Cell]int),
	}
}

// Cost returns the movement cost of a cell.
func (m *Map) Cost(x, y int) int {
	if c, ok := m.overrides[Cell{X: x, Y: y}]; ok {
		return c
	}
	return m.DefaultCost
}

// Get returns the terrain category of a cell.
func (m *Map) Get(x, y int) Terrain {
	return TerrainForCost(m.Cost(x, y))
}

// Set writes a terrain type to a cell.
func (m *Map) Set(x, y int, t Terrain) {
	if m.overrides == nil {
		m.overrides = make(map[Cell]int)
	}
	m.overrides[Cell{X: x, Y: y}] = t.Cost()
}

// InBounds returns true if the cell lies on the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// IsWalkable returns true for in-bounds cells that are not walls.
func (m *Map) IsWalkable(x, y int) bool {
	return m.InBounds(x, y) && m.Cost(x, y) != CostWall
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	c := &Map{
		Width:       m.Width,
		Height:      m.Height,
		DefaultCost: m.DefaultCost,
		overrides:   make(map[Cell]int, len(m.overrides)),
	}
	for k, v := range m.overrides {
		c.overrides[k] = v
	}
	return c
}

// Walls returns the number of wall cells.
func (m *Map) Walls() int {
	n := 0
	for _, c := range m.overrides {
		if c == CostWall {
			n++
		}
	}
	if m.DefaultCost == CostWall {
		n += m.Width*m.Height - len(m.overrides)
	}
	return n
}

// ToGrid exports the map as a dense grid for renderers.
func (m *Map) ToGrid() Grid {
	g := make(Grid, m.Height)
	for y := 0; y < m.Height; y++ {
		row := make([]int, m.Width)
		for x := 0; x < m.Width; x++ {
			row[x] = int(m.Get(x, y))
		}
		g[y] = row
	}
	return g
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, overrides=%d)", m.Width, m.Height, len(m.overrides))
}
