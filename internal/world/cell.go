// Package world provides the battle grid, terrain, and spatial data structures.
// Uses integer (x, y) cells with Chebyshev range for all combat checks.
package world

import "math"

// Cell is a position on the battle grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the cell offset by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Terrain types for grid cells.
type Terrain uint8

const (
	TerrainPlain Terrain = iota // Open ground
	TerrainWall                 // Impassable
	TerrainSwamp                // Slow ground
)

// Movement costs added to an agent's fatigue when it enters a cell.
const (
	CostPlain = 2
	CostSwamp = 10
	CostWall  = math.MaxInt // Unbounded: a wall can never be entered
)

// Cost returns the movement cost for a terrain type.
func (t Terrain) Cost() int {
	switch t {
	case TerrainSwamp:
		return CostSwamp
	case TerrainWall:
		return CostWall
	default:
		return CostPlain
	}
}

// TerrainForCost maps a movement cost back to its terrain category.
func TerrainForCost(cost int) Terrain {
	switch {
	case cost == CostWall:
		return TerrainWall
	case cost >= CostSwamp:
		return TerrainSwamp
	default:
		return TerrainPlain
	}
}

// ParseTerrain resolves a terrain name ("plain", "swamp", "wall").
func ParseTerrain(name string) (Terrain, bool) {
	switch name {
	case "plain", "plains", "":
		return TerrainPlain, true
	case "swamp":
		return TerrainSwamp, true
	case "wall":
		return TerrainWall, true
	}
	return TerrainPlain, false
}

// Range returns the Chebyshev distance between two cells.
func Range(a, b Cell) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Manhattan returns the taxicab distance between two cells.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Sign returns -1, 0 or 1.
func Sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
