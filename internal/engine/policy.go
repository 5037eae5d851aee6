// Per-agent battle policy: healers tend the most hurt ally, everyone else
// picks a target and fights according to its loadout.
package engine

import (
	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/world"
)

// Action types recorded in replay frames.
const (
	ActionAttack       = "attack"
	ActionRangedAttack = "rangedAttack"
	ActionHeal         = "heal"
	ActionRangedHeal   = "rangedHeal"
	ActionMove         = "move"
)

// Action is one successful action taken during a tick.
type Action struct {
	Type  string     `json:"type"`
	Actor string     `json:"actor"`
	From  world.Cell `json:"from"`
	To    world.Cell `json:"to"`
}

// Policy holds the tuning thresholds of the decision function. They are
// balance settings; the defaults keep existing win rates comparable.
type Policy struct {
	WeakestRange      int     // Beyond this range, prefer the nearest enemy
	KiteSelfHealthy   float64 // Ranged agents only kite above this hits fraction
	KiteTargetHealthy float64 // Flee targets above this fraction, press weaker ones
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		WeakestRange:      5,
		KiteSelfHealthy:   0.5,
		KiteTargetHealthy: 0.3,
	}
}

// turn carries one agent's view of the world for a single decision.
type turn struct {
	self    *agents.Agent
	roster  []*agents.Agent
	m       *world.Map
	occ     agents.Occupier
	actions []Action
}

// Decide runs the policy for one agent and performs at most one combat or
// support action and at most one move. It returns the actions that
// succeeded. The decision depends only on the current world state.
func (p Policy) Decide(self *agents.Agent, roster []*agents.Agent, m *world.Map, occ agents.Occupier) []Action {
	t := &turn{self: self, roster: roster, m: m, occ: occ}

	if self.ActiveParts(agents.PartHeal) > 0 {
		if ally := mostDamagedAlly(self, roster); ally != nil {
			t.support(ally)
			return t.actions
		}
	}

	weakest, nearest := enemyTargets(self, roster)
	if weakest == nil {
		return nil
	}
	target := weakest
	if self.RangeTo(weakest) > p.WeakestRange {
		target = nearest
	}

	ranged := self.ActiveParts(agents.PartRangedAttack)
	melee := self.ActiveParts(agents.PartAttack)
	switch {
	case ranged > 0 && melee == 0:
		t.kite(p, target)
	case melee > 0 && ranged == 0:
		t.brawl(target)
	case ranged > 0 && melee > 0:
		t.hybrid(target)
	}
	return t.actions
}

// support heals an ally, moving toward it when it is more than two cells
// away. A healer that found someone to tend never attacks that tick.
func (t *turn) support(ally *agents.Agent) {
	r := t.self.RangeTo(ally)
	switch {
	case r <= agents.HealRange:
		t.do(ActionHeal, ally, agents.Heal)
	case r <= agents.RangedHealRange:
		t.do(ActionRangedHeal, ally, agents.RangedHeal)
	}
	if r > 2 {
		t.moveToward(ally.Pos)
	}
}

// kite fights at range: fire when in range, back off from healthy targets
// when too close, close in on weak ones, hold at exactly range 3.
func (t *turn) kite(p Policy, target *agents.Agent) {
	r := t.self.RangeTo(target)
	if r <= agents.RangedAttackRange {
		t.do(ActionRangedAttack, target, agents.RangedAttack)
	}
	switch {
	case r <= 2 && t.self.HitsFraction() > p.KiteSelfHealthy:
		if target.HitsFraction() > p.KiteTargetHealthy {
			t.moveToward(world.Cell{X: 2*t.self.Pos.X - target.Pos.X, Y: 2*t.self.Pos.Y - target.Pos.Y})
		} else {
			t.moveToward(target.Pos)
		}
	case r > agents.RangedAttackRange:
		t.moveToward(target.Pos)
	}
}

// brawl closes to melee range and strikes as soon as it gets there.
func (t *turn) brawl(target *agents.Agent) {
	if t.self.RangeTo(target) <= agents.AttackRange {
		t.do(ActionAttack, target, agents.Attack)
		return
	}
	t.moveToward(target.Pos)
	if t.self.RangeTo(target) <= agents.AttackRange {
		t.do(ActionAttack, target, agents.Attack)
	}
}

// hybrid strikes in melee when adjacent, otherwise fires while closing.
func (t *turn) hybrid(target *agents.Agent) {
	r := t.self.RangeTo(target)
	switch {
	case r <= agents.AttackRange:
		t.do(ActionAttack, target, agents.Attack)
	case r <= agents.RangedAttackRange:
		t.do(ActionRangedAttack, target, agents.RangedAttack)
		t.moveToward(target.Pos)
	default:
		t.moveToward(target.Pos)
	}
}

func (t *turn) do(kind string, target *agents.Agent, act func(a, target *agents.Agent) agents.Status) {
	if act(t.self, target) != agents.StatusOK {
		return
	}
	t.actions = append(t.actions, Action{Type: kind, Actor: t.self.ID, From: t.self.Pos, To: target.Pos})
}

func (t *turn) moveToward(dest world.Cell) {
	from := t.self.Pos
	if agents.MoveTo(t.self, dest, t.m, t.occ) != agents.StatusOK || t.self.Pos == from {
		return
	}
	t.actions = append(t.actions, Action{Type: ActionMove, Actor: t.self.ID, From: from, To: t.self.Pos})
}

// mostDamagedAlly returns the living teammate (self included) with the
// lowest hits among those below max. Roster order breaks ties.
func mostDamagedAlly(self *agents.Agent, roster []*agents.Agent) *agents.Agent {
	var best *agents.Agent
	for _, a := range roster {
		if a.Team != self.Team || !a.IsAlive() || a.Hits >= a.HitsMax {
			continue
		}
		if best == nil || a.Hits < best.Hits {
			best = a
		}
	}
	return best
}

// enemyTargets returns the living enemy with the lowest hits fraction and
// the nearest living enemy. Roster order breaks ties for both.
func enemyTargets(self *agents.Agent, roster []*agents.Agent) (weakest, nearest *agents.Agent) {
	bestFrac, bestRange := 0.0, 0
	for _, a := range roster {
		if a.Team == self.Team || !a.IsAlive() {
			continue
		}
		if f := a.HitsFraction(); weakest == nil || f < bestFrac {
			weakest, bestFrac = a, f
		}
		if r := self.RangeTo(a); nearest == nil || r < bestRange {
			nearest, bestRange = a, r
		}
	}
	return weakest, nearest
}
