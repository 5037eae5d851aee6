package entropy

import (
	"log/slog"
	"math"
	"strings"
)

// SpawnJitter shifts each team's formation by a random offset at the start
// of a battle. With ScatterUnits set, individual agents are then nudged
// within UnitRadius; the zero value keeps formations intact.
type SpawnJitter struct {
	Radius          int  `json:"radius" yaml:"radius"`
	Attempts        int  `json:"attempts" yaml:"attempts"`
	UnitRadius      int  `json:"unitRadius" yaml:"unit_radius"`
	UnitAttempts    int  `json:"unitAttempts" yaml:"unit_attempts"`
	AllowZeroOffset bool `json:"allowZeroOffset" yaml:"allow_zero_offset"`
	ScatterUnits    bool `json:"scatterUnits" yaml:"scatter_units"`
}

// RandomWalls scatters walls over the battlefield before agents are placed.
type RandomWalls struct {
	Count       int `json:"count" yaml:"count"`
	Margin      int `json:"margin" yaml:"margin"`
	MinDistance int `json:"minDistance" yaml:"min_distance"`
	Attempts    int `json:"attempts" yaml:"attempts"`
}

// Config is the canonical entropy configuration. A nil feature is disabled.
type Config struct {
	SpawnJitter *SpawnJitter `json:"spawnJitter,omitempty"`
	RandomWalls *RandomWalls `json:"randomWalls,omitempty"`
}

// Enabled reports whether any feature is on.
func (c Config) Enabled() bool {
	return c.SpawnJitter != nil || c.RandomWalls != nil
}

// DefaultSpawnJitter is used when spawn jitter is enabled without detail.
func DefaultSpawnJitter() SpawnJitter {
	return SpawnJitter{
		Radius:          2,
		Attempts:        12,
		UnitRadius:      1,
		UnitAttempts:    6,
		AllowZeroOffset: false,
		ScatterUnits:    false,
	}
}

// DefaultRandomWalls is used when random walls are enabled without detail.
func DefaultRandomWalls() RandomWalls {
	return RandomWalls{
		Count:       6,
		Margin:      2,
		MinDistance: 3,
		Attempts:    40,
	}
}

// Normalize resolves shorthand entropy settings into canonical form.
//
// Accepted values: nil or false (everything off), true (both features with
// defaults), a Config, or a map with "spawnJitter" and "randomWalls" keys.
// Each feature accepts a bool, a number (spawn radius / wall count), a
// typed struct, or a map of fields. Non-positive radius or count disables
// the feature.
func Normalize(v any) Config {
	switch t := v.(type) {
	case nil:
		return Config{}
	case bool:
		if !t {
			return Config{}
		}
		return Config{SpawnJitter: NormalizeSpawnJitter(true), RandomWalls: NormalizeRandomWalls(true)}
	case Config:
		return Config{SpawnJitter: NormalizeSpawnJitter(t.SpawnJitter), RandomWalls: NormalizeRandomWalls(t.RandomWalls)}
	case *Config:
		if t == nil {
			return Config{}
		}
		return Normalize(*t)
	case map[string]any:
		var c Config
		for k, fv := range t {
			switch normKey(k) {
			case "spawnjitter", "spawn":
				c.SpawnJitter = NormalizeSpawnJitter(fv)
			case "randomwalls", "walls":
				c.RandomWalls = NormalizeRandomWalls(fv)
			default:
				slog.Warn("ignoring unknown entropy key", "key", k)
			}
		}
		return c
	}
	slog.Warn("unsupported entropy value, entropy disabled", "value", v)
	return Config{}
}

// NormalizeSpawnJitter resolves one spawn jitter setting.
func NormalizeSpawnJitter(v any) *SpawnJitter {
	d := DefaultSpawnJitter()
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if !t {
			return nil
		}
	case SpawnJitter:
		d = t
	case *SpawnJitter:
		if t == nil {
			return nil
		}
		d = *t
	case map[string]any:
		def := DefaultSpawnJitter()
		for k, fv := range t {
			switch normKey(k) {
			case "radius":
				d.Radius = toInt(fv, def.Radius)
			case "attempts":
				d.Attempts = toInt(fv, def.Attempts)
			case "unitradius":
				d.UnitRadius = toInt(fv, def.UnitRadius)
			case "unitattempts":
				d.UnitAttempts = toInt(fv, def.UnitAttempts)
			case "allowzerooffset":
				d.AllowZeroOffset = toBool(fv)
			case "scatterunits":
				d.ScatterUnits = toBool(fv)
			case "preserveformation":
				d.ScatterUnits = !toBool(fv)
			}
		}
	default:
		n, ok := number(v)
		if !ok {
			return nil
		}
		d.Radius = n
	}
	if d.Radius <= 0 {
		return nil
	}
	def := DefaultSpawnJitter()
	if d.Attempts <= 0 {
		d.Attempts = def.Attempts
	}
	if d.UnitRadius < 0 {
		d.UnitRadius = 0
	}
	if d.UnitAttempts <= 0 {
		d.UnitAttempts = def.UnitAttempts
	}
	return &d
}

// NormalizeRandomWalls resolves one random wall setting.
func NormalizeRandomWalls(v any) *RandomWalls {
	d := DefaultRandomWalls()
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if !t {
			return nil
		}
	case RandomWalls:
		d = t
	case *RandomWalls:
		if t == nil {
			return nil
		}
		d = *t
	case map[string]any:
		def := DefaultRandomWalls()
		for k, fv := range t {
			switch normKey(k) {
			case "count":
				d.Count = toInt(fv, def.Count)
			case "margin":
				d.Margin = toInt(fv, def.Margin)
			case "mindistance":
				d.MinDistance = toInt(fv, def.MinDistance)
			case "attempts":
				d.Attempts = toInt(fv, def.Attempts)
			}
		}
	default:
		n, ok := number(v)
		if !ok {
			return nil
		}
		d.Count = n
	}
	if d.Count <= 0 {
		return nil
	}
	if d.Attempts <= 0 {
		d.Attempts = DefaultRandomWalls().Attempts
	}
	if d.Margin < 0 {
		d.Margin = 0
	}
	if d.MinDistance < 0 {
		d.MinDistance = 0
	}
	return &d
}

// normKey folds "spawn_jitter", "spawnJitter" and "spawn-jitter" together.
func normKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}

func number(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(math.Floor(float64(n))), true
	case float64:
		return int(math.Floor(n)), true
	}
	return 0, false
}

func toInt(v any, def int) int {
	if b, ok := v.(bool); ok {
		if b {
			return def
		}
		return 0
	}
	if n, ok := number(v); ok {
		return n
	}
	return def
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "yes" || b == "1"
	}
	n, ok := number(v)
	return ok && n != 0
}
