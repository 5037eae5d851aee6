// Battlefield generation using layered simplex noise.
// Produces swamp patches and rock outcrops on a plain map, keeping the
// deployment columns at both edges clear.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds battlefield generation parameters.
type GenConfig struct {
	Width      int
	Height     int
	Seed       int64   // Random seed (0 = random)
	SwampLevel float64 // Moisture threshold for swamp (0.0–1.0, 0 = no swamp)
	WallLevel  float64 // Rock threshold for walls (0.0–1.0, 0 = no walls)
	SpawnDepth int     // Columns at each edge left untouched
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:      50,
		Height:     50,
		Seed:       0,
		SwampLevel: 0.68,
		WallLevel:  0.80,
		SpawnDepth: 5,
	}
}

// SmallTestConfig returns a tiny field for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:      12,
		Height:     12,
		Seed:       42,
		SwampLevel: 0.65,
		WallLevel:  0.82,
		SpawnDepth: 2,
	}
}

// Generate creates a battlefield template.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent layers so swamp and rock do not correlate.
	wetNoise := opensimplex.NewNormalized(seed)
	rockNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Width, cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			if x < cfg.SpawnDepth || x >= cfg.Width-cfg.SpawnDepth {
				continue
			}
			fx, fy := float64(x), float64(y)

			rock := octaveNoise(rockNoise, fx, fy, 3, 0.12, 0.5)
			if cfg.WallLevel > 0 && rock > cfg.WallLevel {
				m.Set(x, y, TerrainWall)
				continue
			}
			wet := octaveNoise(wetNoise, fx, fy, 4, 0.08, 0.5)
			if cfg.SwampLevel > 0 && wet > cfg.SwampLevel {
				m.Set(x, y, TerrainSwamp)
			}
		}
	}

	return m
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			counts[m.Get(x, y)]++
		}
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlain:
		return "Plain"
	case TerrainSwamp:
		return "Swamp"
	case TerrainWall:
		return "Wall"
	default:
		return "Unknown"
	}
}
