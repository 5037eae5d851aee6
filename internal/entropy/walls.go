package entropy

import (
	"github.com/talgya/skirmish/internal/world"
)

// PlaceWalls scatters up to cfg.Count walls over m. Each wall gets
// cfg.Attempts tries at a random walkable cell inside the margin whose
// Manhattan distance to every wall placed so far exceeds cfg.MinDistance.
// When one wall exhausts its attempts placement stops; a partial result is
// not an error. Returns the cells that became walls.
func PlaceWalls(m *world.Map, cfg RandomWalls, src Source) []world.Cell {
	lo := cfg.Margin
	hiX := m.Width - 1 - cfg.Margin
	hiY := m.Height - 1 - cfg.Margin
	if cfg.Count <= 0 || hiX < lo || hiY < lo {
		return nil
	}

	placed := make([]world.Cell, 0, cfg.Count)
	for len(placed) < cfg.Count {
		ok := false
		for attempt := 0; attempt < cfg.Attempts; attempt++ {
			c := world.Cell{X: Int(src, lo, hiX), Y: Int(src, lo, hiY)}
			if !m.IsWalkable(c.X, c.Y) {
				continue
			}
			if tooClose(c, placed, cfg.MinDistance) {
				continue
			}
			m.Set(c.X, c.Y, world.TerrainWall)
			placed = append(placed, c)
			ok = true
			break
		}
		if !ok {
			break
		}
	}
	return placed
}

func tooClose(c world.Cell, placed []world.Cell, minDist int) bool {
	for _, p := range placed {
		if world.Manhattan(c, p) <= minDist {
			return true
		}
	}
	return false
}
