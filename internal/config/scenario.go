// Package config loads battle scenarios from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/engine"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/world"
)

var (
	ErrNoRoster     = errors.New("scenario has an empty roster")
	ErrBadTerrain   = errors.New("unknown terrain kind")
	ErrOutOfBounds  = errors.New("position outside the battlefield")
	ErrBadDimension = errors.New("battlefield dimensions must be positive")
)

// Scenario is one battle setup as written in a scenario file.
type Scenario struct {
	Name     string      `yaml:"name"`
	MaxTicks int         `yaml:"max_ticks"`
	Seed     int64       `yaml:"seed"`
	Record   bool        `yaml:"record"`
	Terrain  TerrainSpec `yaml:"terrain"`
	Entropy  any         `yaml:"entropy"`
	Policy   *PolicySpec `yaml:"policy"`
	Friendly []UnitSpec  `yaml:"friendly"`
	Enemy    []UnitSpec  `yaml:"enemy"`
}

// TerrainSpec describes the battlefield template.
type TerrainSpec struct {
	Width   int        `yaml:"width"`
	Height  int        `yaml:"height"`
	Default string     `yaml:"default"`
	Cells   []CellSpec `yaml:"cells"`
	Noise   *NoiseSpec `yaml:"noise"`
}

// CellSpec overrides the terrain of one cell.
type CellSpec struct {
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Kind string `yaml:"kind"`
}

// NoiseSpec asks for a generated battlefield instead of a flat one. Zero
// levels and depth keep the generator defaults; a zero seed uses the
// scenario seed so the terrain is reproducible.
type NoiseSpec struct {
	Seed       int64   `yaml:"seed"`
	SwampLevel float64 `yaml:"swamp_level"`
	WallLevel  float64 `yaml:"wall_level"`
	SpawnDepth int     `yaml:"spawn_depth"`
}

// PolicySpec overrides individual policy thresholds.
type PolicySpec struct {
	WeakestRange      *int     `yaml:"weakest_range"`
	KiteSelfHealthy   *float64 `yaml:"kite_self_healthy"`
	KiteTargetHealthy *float64 `yaml:"kite_target_healthy"`
}

// UnitSpec is one agent of a roster. Body is a loadout string such as
// "tough:2,attack,move:2".
type UnitSpec struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Body string `yaml:"body"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario document.
func Parse(b []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks terrain kinds, bounds and loadouts.
func (sc *Scenario) Validate() error {
	if len(sc.Friendly) == 0 && len(sc.Enemy) == 0 {
		return ErrNoRoster
	}
	w, h := sc.size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimension, w, h)
	}
	if sc.Terrain.Default != "" {
		if _, ok := world.ParseTerrain(sc.Terrain.Default); !ok {
			return fmt.Errorf("%w: %q", ErrBadTerrain, sc.Terrain.Default)
		}
	}
	for _, c := range sc.Terrain.Cells {
		if _, ok := world.ParseTerrain(c.Kind); !ok {
			return fmt.Errorf("%w: %q at (%d,%d)", ErrBadTerrain, c.Kind, c.X, c.Y)
		}
		if c.X < 0 || c.Y < 0 || c.X >= w || c.Y >= h {
			return fmt.Errorf("%w: terrain cell (%d,%d)", ErrOutOfBounds, c.X, c.Y)
		}
	}
	for _, group := range [][]UnitSpec{sc.Friendly, sc.Enemy} {
		for _, u := range group {
			if u.X < 0 || u.Y < 0 || u.X >= w || u.Y >= h {
				return fmt.Errorf("%w: unit %q at (%d,%d)", ErrOutOfBounds, u.Name, u.X, u.Y)
			}
			if _, err := agents.ParseLoadout(u.Body); err != nil {
				return fmt.Errorf("unit %q: %w", u.Name, err)
			}
		}
	}
	return nil
}

func (sc *Scenario) size() (int, int) {
	w, h := sc.Terrain.Width, sc.Terrain.Height
	if w == 0 && h == 0 {
		return 50, 50
	}
	return w, h
}

// Map builds the battlefield template.
func (sc *Scenario) Map() *world.Map {
	w, h := sc.size()
	var m *world.Map
	if n := sc.Terrain.Noise; n != nil {
		gc := world.DefaultGenConfig()
		gc.Width, gc.Height, gc.Seed = w, h, n.Seed
		if gc.Seed == 0 {
			gc.Seed = sc.Seed
		}
		if gc.Seed == 0 {
			gc.Seed = 1
		}
		if n.SwampLevel != 0 {
			gc.SwampLevel = n.SwampLevel
		}
		if n.WallLevel != 0 {
			gc.WallLevel = n.WallLevel
		}
		if n.SpawnDepth != 0 {
			gc.SpawnDepth = n.SpawnDepth
		}
		m = world.Generate(gc)
	} else {
		m = world.NewMap(w, h)
		if t, ok := world.ParseTerrain(sc.Terrain.Default); ok {
			m.DefaultCost = t.Cost()
		}
	}
	for _, c := range sc.Terrain.Cells {
		t, _ := world.ParseTerrain(c.Kind)
		m.Set(c.X, c.Y, t)
	}
	return m
}

// EngineConfig builds the engine configuration. src may be nil, in which
// case a source seeded from the scenario seed is used.
func (sc *Scenario) EngineConfig(src entropy.Source) engine.Config {
	if src == nil {
		src = entropy.NewSeeded(sc.Seed)
	}
	p := engine.DefaultPolicy()
	if ps := sc.Policy; ps != nil {
		if ps.WeakestRange != nil {
			p.WeakestRange = *ps.WeakestRange
		}
		if ps.KiteSelfHealthy != nil {
			p.KiteSelfHealthy = *ps.KiteSelfHealthy
		}
		if ps.KiteTargetHealthy != nil {
			p.KiteTargetHealthy = *ps.KiteTargetHealthy
		}
	}
	return engine.Config{
		MaxTicks: sc.MaxTicks,
		Map:      sc.Map(),
		Entropy:  sc.Entropy,
		Source:   src,
		Record:   sc.Record,
		Policy:   p,
	}
}

// Setup returns a SetupFunc that spawns the friendly roster first, then the
// enemy roster, with fresh agents every battle.
func (sc *Scenario) Setup() engine.SetupFunc {
	return func(e *engine.Engine, _ engine.BattleContext) {
		sp := agents.NewSpawner()
		for _, u := range sc.Friendly {
			e.AddCreep(sp.Spawn(agents.TeamFriendly, u.Name, world.Cell{X: u.X, Y: u.Y}, agents.MustLoadout(u.Body)))
		}
		for _, u := range sc.Enemy {
			e.AddCreep(sp.Spawn(agents.TeamEnemy, u.Name, world.Cell{X: u.X, Y: u.Y}, agents.MustLoadout(u.Body)))
		}
	}
}
