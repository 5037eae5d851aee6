// Package agents provides the combat unit data model, body parts, and the
// combat and movement actions a unit can take during a tick.
package agents

import (
	"fmt"

	"github.com/talgya/skirmish/internal/world"
)

// Team flags which side an agent fights for.
type Team uint8

const (
	TeamFriendly Team = iota
	TeamEnemy
)

// String returns "friendly" or "enemy".
func (t Team) String() string {
	if t == TeamEnemy {
		return "enemy"
	}
	return "friendly"
}

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamEnemy {
		return TeamFriendly
	}
	return TeamEnemy
}

// MarshalText encodes the team by name.
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a team name.
func (t *Team) UnmarshalText(b []byte) error {
	switch string(b) {
	case "friendly":
		*t = TeamFriendly
	case "enemy":
		*t = TeamEnemy
	default:
		return fmt.Errorf("unknown team %q", string(b))
	}
	return nil
}

// PartKind is the capability a body part provides.
type PartKind uint8

const (
	PartMove         PartKind = iota // Reduces fatigue
	PartWork                         // No combat effect
	PartCarry                        // No combat effect
	PartAttack                       // Melee attack
	PartRangedAttack                 // Ranged attack
	PartHeal                         // Adjacent and ranged heal
	PartClaim                        // No combat effect
	PartTough                        // Extra hit points only
)

var partNames = [...]string{
	PartMove:         "move",
	PartWork:         "work",
	PartCarry:        "carry",
	PartAttack:       "attack",
	PartRangedAttack: "ranged_attack",
	PartHeal:         "heal",
	PartClaim:        "claim",
	PartTough:        "tough",
}

// String returns the loadout name of the part kind.
func (k PartKind) String() string {
	if int(k) < len(partNames) {
		return partNames[k]
	}
	return "unknown"
}

// ParsePartKind resolves a loadout name.
func ParsePartKind(name string) (PartKind, bool) {
	for i, n := range partNames {
		if n == name {
			return PartKind(i), true
		}
	}
	return 0, false
}

// MaxPartHits is the hit point cap of every body part.
const MaxPartHits = 100

// BodyPart is one unit of an agent's loadout.
type BodyPart struct {
	Kind PartKind `json:"kind"`
	Hits int      `json:"hits"`
}

// Agent is a single combat unit.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team"`

	Pos  world.Cell `json:"pos"`
	Body []BodyPart `json:"body"`

	// Derived from Body; never written directly.
	Hits    int `json:"hits"`
	HitsMax int `json:"hits_max"`

	Fatigue int `json:"fatigue"`

	// Cumulative battle statistics.
	DamageDealt     int `json:"damage_dealt"`
	DamageTaken     int `json:"damage_taken"`
	HealingDone     int `json:"healing_done"`
	HealingReceived int `json:"healing_received"`
}

// New creates an agent with every part at full hit points.
func New(id, name string, team Team, pos world.Cell, parts []PartKind) *Agent {
	body := make([]BodyPart, len(parts))
	for i, k := range parts {
		body[i] = BodyPart{Kind: k, Hits: MaxPartHits}
	}
	a := &Agent{
		ID:      id,
		Name:    name,
		Team:    team,
		Pos:     pos,
		Body:    body,
		HitsMax: len(body) * MaxPartHits,
	}
	a.recompute()
	return a
}

// recompute derives Hits from the body parts.
func (a *Agent) recompute() {
	total := 0
	for _, p := range a.Body {
		total += p.Hits
	}
	a.Hits = total
}

// IsAlive returns true while any body part has hit points left.
func (a *Agent) IsAlive() bool {
	return a.Hits > 0
}

// RangeTo returns the Chebyshev distance to another agent.
func (a *Agent) RangeTo(other *Agent) int {
	return world.Range(a.Pos, other.Pos)
}

// ActiveParts counts undamaged-to-zero parts of the given kind.
func (a *Agent) ActiveParts(kind PartKind) int {
	n := 0
	for _, p := range a.Body {
		if p.Kind == kind && p.Hits > 0 {
			n++
		}
	}
	return n
}

// HitsFraction returns Hits/HitsMax, or 0 for an agent without parts.
func (a *Agent) HitsFraction() float64 {
	if a.HitsMax == 0 {
		return 0
	}
	return float64(a.Hits) / float64(a.HitsMax)
}

// Snapshot is the public per-tick state of an agent, as exported to replays.
type Snapshot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Team            Team   `json:"team"`
	Hits            int    `json:"hits"`
	HitsMax         int    `json:"hitsMax"`
	DamageDealt     int    `json:"damageDealt"`
	DamageTaken     int    `json:"damageTaken"`
	HealingDone     int    `json:"healingDone"`
	HealingReceived int    `json:"healingReceived"`
	Fatigue         int    `json:"fatigue"`
}

// Snapshot captures the agent's public state.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		ID:              a.ID,
		Name:            a.Name,
		X:               a.Pos.X,
		Y:               a.Pos.Y,
		Team:            a.Team,
		Hits:            a.Hits,
		HitsMax:         a.HitsMax,
		DamageDealt:     a.DamageDealt,
		DamageTaken:     a.DamageTaken,
		HealingDone:     a.HealingDone,
		HealingReceived: a.HealingReceived,
		Fatigue:         a.Fatigue,
	}
}

// Clone returns a deep copy of the agent.
func (a *Agent) Clone() *Agent {
	c := *a
	c.Body = append([]BodyPart(nil), a.Body...)
	return &c
}
