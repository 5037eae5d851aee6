// Combat and movement actions. Every action takes its world context as
// explicit parameters so tick ordering is visible at the call site.
package agents

import "github.com/talgya/skirmish/internal/world"

// Status reports the outcome of an action. Failures are control values,
// never errors: the action simply does not happen.
type Status uint8

const (
	StatusOK              Status = iota
	StatusOutOfRange             // Target too far, or agent too fatigued to move
	StatusInvalidTarget          // Target missing or dead
	StatusMissingBodyPart        // No active part of the required kind
	StatusBlocked                // No candidate step was free
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOutOfRange:
		return "out_of_range"
	case StatusInvalidTarget:
		return "invalid_target"
	case StatusMissingBodyPart:
		return "missing_body_part"
	case StatusBlocked:
		return "blocked"
	}
	return "unknown"
}

// Action ranges and powers.
const (
	AttackRange       = 1
	RangedAttackRange = 3
	HealRange         = 1
	RangedHealRange   = 3

	AttackPower       = 30
	RangedAttackPower = 10
	HealPower         = 12
	RangedHealPower   = 4

	FatiguePerMovePart = 2
)

// rangedFalloff holds ranged damage in percent, indexed by range.
var rangedFalloff = [RangedAttackRange + 1]int{100, 100, 40, 10}

// RangedFalloff returns the ranged damage multiplier at the given range,
// or 0 beyond ranged attack range.
func RangedFalloff(r int) float64 {
	if r < 0 || r > RangedAttackRange {
		return 0
	}
	return float64(rangedFalloff[r]) / 100
}

// ApplyDamage consumes hit points front to back: a part only loses hit
// points once every part before it is depleted.
func (a *Agent) ApplyDamage(amount int) {
	if amount <= 0 {
		return
	}
	a.DamageTaken += amount
	left := amount
	for i := range a.Body {
		if left == 0 {
			break
		}
		p := &a.Body[i]
		take := p.Hits
		if take > left {
			take = left
		}
		p.Hits -= take
		left -= take
	}
	a.recompute()
}

// ApplyHealing restores hit points front to back, each part capped at
// MaxPartHits.
func (a *Agent) ApplyHealing(amount int) {
	if amount <= 0 {
		return
	}
	a.HealingReceived += amount
	left := amount
	for i := range a.Body {
		if left == 0 {
			break
		}
		p := &a.Body[i]
		room := MaxPartHits - p.Hits
		if room > left {
			room = left
		}
		p.Hits += room
		left -= room
	}
	a.recompute()
}

// ReduceFatigue recovers fatigue from active move parts, floored at zero.
func (a *Agent) ReduceFatigue() {
	a.Fatigue -= a.ActiveParts(PartMove) * FatiguePerMovePart
	if a.Fatigue < 0 {
		a.Fatigue = 0
	}
}

func validate(a, target *Agent, maxRange int, kind PartKind) Status {
	if target == nil || !target.IsAlive() {
		return StatusInvalidTarget
	}
	if a.RangeTo(target) > maxRange {
		return StatusOutOfRange
	}
	if a.ActiveParts(kind) == 0 {
		return StatusMissingBodyPart
	}
	return StatusOK
}

// Attack deals melee damage to an adjacent target.
func Attack(a, target *Agent) Status {
	if st := validate(a, target, AttackRange, PartAttack); st != StatusOK {
		return st
	}
	dmg := a.ActiveParts(PartAttack) * AttackPower
	target.ApplyDamage(dmg)
	a.DamageDealt += dmg
	return StatusOK
}

// RangedAttack deals falloff-scaled damage to a target within range 3.
func RangedAttack(a, target *Agent) Status {
	if st := validate(a, target, RangedAttackRange, PartRangedAttack); st != StatusOK {
		return st
	}
	dmg := a.ActiveParts(PartRangedAttack) * RangedAttackPower * rangedFalloff[a.RangeTo(target)] / 100
	target.ApplyDamage(dmg)
	a.DamageDealt += dmg
	return StatusOK
}

// Heal restores hit points to an adjacent (or the same) agent.
func Heal(a, target *Agent) Status {
	if st := validate(a, target, HealRange, PartHeal); st != StatusOK {
		return st
	}
	amount := a.ActiveParts(PartHeal) * HealPower
	target.ApplyHealing(amount)
	a.HealingDone += amount
	return StatusOK
}

// RangedHeal restores hit points to an agent within range 3.
func RangedHeal(a, target *Agent) Status {
	if st := validate(a, target, RangedHealRange, PartHeal); st != StatusOK {
		return st
	}
	amount := a.ActiveParts(PartHeal) * RangedHealPower
	target.ApplyHealing(amount)
	a.HealingDone += amount
	return StatusOK
}

// Occupier reports whether a cell holds a living agent other than self.
type Occupier interface {
	Occupied(c world.Cell, self *Agent) bool
}

// StepCandidates lists destination offsets for a step toward (dx, dy) in
// priority order: diagonal, horizontal, vertical, the two off-diagonals,
// then the two reverse cardinals. Zero offsets are dropped.
func StepCandidates(dx, dy int) []world.Cell {
	all := [7]world.Cell{
		{X: dx, Y: dy},
		{X: dx, Y: 0},
		{X: 0, Y: dy},
		{X: dx, Y: -dy},
		{X: -dx, Y: dy},
		{X: -dx, Y: 0},
		{X: 0, Y: -dy},
	}
	out := make([]world.Cell, 0, len(all))
	for _, c := range all {
		if c.X == 0 && c.Y == 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MoveTo takes one step toward target, trying StepCandidates in order and
// taking the first walkable, unoccupied cell. Entering a cell adds its
// terrain cost to fatigue. A fatigued agent cannot move (StatusOutOfRange).
func MoveTo(a *Agent, target world.Cell, m *world.Map, occ Occupier) Status {
	if a.Fatigue > 0 {
		return StatusOutOfRange
	}
	dx := world.Sign(target.X - a.Pos.X)
	dy := world.Sign(target.Y - a.Pos.Y)
	if dx == 0 && dy == 0 {
		return StatusOK
	}
	for _, step := range StepCandidates(dx, dy) {
		dest := a.Pos.Add(step.X, step.Y)
		if !m.IsWalkable(dest.X, dest.Y) {
			continue
		}
		if occ != nil && occ.Occupied(dest, a) {
			continue
		}
		a.Pos = dest
		a.Fatigue += m.Cost(dest.X, dest.Y)
		return StatusOK
	}
	return StatusBlocked
}
