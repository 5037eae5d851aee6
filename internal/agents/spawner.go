// Agent spawning: builds roster agents from loadout descriptions.
package agents

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/skirmish/internal/world"
)

// Spawner issues agents with sequential, team-prefixed ids (f1, f2, e1, …)
// so that two identical setups produce identical rosters.
type Spawner struct {
	next [2]int
}

// NewSpawner creates a spawner whose counters start at 1.
func NewSpawner() *Spawner {
	return &Spawner{}
}

// Reset restarts id numbering.
func (s *Spawner) Reset() {
	s.next = [2]int{}
}

// Spawn creates one agent. An empty name defaults to the id.
func (s *Spawner) Spawn(team Team, name string, pos world.Cell, parts []PartKind) *Agent {
	s.next[team]++
	prefix := "f"
	if team == TeamEnemy {
		prefix = "e"
	}
	id := prefix + strconv.Itoa(s.next[team])
	if name == "" {
		name = id
	}
	return New(id, name, team, pos, parts)
}

// ParseLoadout reads a loadout such as "tough,move:2,attack:3" into an
// ordered part list. Counts expand in place, preserving order.
func ParseLoadout(spec string) ([]PartKind, error) {
	var parts []PartKind
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, count := field, 1
		if i := strings.IndexByte(field, ':'); i >= 0 {
			name = strings.TrimSpace(field[:i])
			n, err := strconv.Atoi(strings.TrimSpace(field[i+1:]))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("loadout %q: bad count in %q", spec, field)
			}
			count = n
		}
		kind, ok := ParsePartKind(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("loadout %q: unknown part %q", spec, name)
		}
		for i := 0; i < count; i++ {
			parts = append(parts, kind)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("loadout %q: no parts", spec)
	}
	return parts, nil
}

// MustLoadout is ParseLoadout for literal loadouts in code and tests.
func MustLoadout(spec string) []PartKind {
	parts, err := ParseLoadout(spec)
	if err != nil {
		panic(err)
	}
	return parts
}
