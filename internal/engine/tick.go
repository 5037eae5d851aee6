package engine

import (
	"log/slog"

	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/world"
)

// Winner names the outcome of a battle.
type Winner string

const (
	WinnerFriendly Winner = "friendly"
	WinnerEnemy    Winner = "enemy"
	WinnerDraw     Winner = "draw"
)

// SideResult aggregates one team's end-of-battle state.
type SideResult struct {
	Survivors    int               `json:"survivors"`
	TotalDamage  int               `json:"totalDamage"`
	TotalHealing int               `json:"totalHealing"`
	Actors       []agents.Snapshot `json:"actors"`
}

// Result is the outcome of one battle.
type Result struct {
	Iteration    int             `json:"iteration"`
	Winner       Winner          `json:"winner"`
	Ticks        int             `json:"ticks"`
	Friendly     SideResult      `json:"friendly"`
	Enemy        SideResult      `json:"enemy"`
	SpawnOffsets entropy.Offsets `json:"spawnOffsets,omitempty"`
	Walls        []world.Cell    `json:"walls,omitempty"`
	Recording    *Recording      `json:"recording,omitempty"`
}

// ExecuteTick advances the battle by one tick and reports whether the
// battle continues. It returns false without doing anything once one side
// is wiped out or MaxTicks is reached.
//
// Order within a tick:
//  1. every living agent recovers fatigue
//  2. the occupancy index is rebuilt
//  3. each living agent, in roster order, takes its turn; the index is
//     rebuilt after every single turn
//  4. a frame is recorded when recording is on
func (e *Engine) ExecuteTick() bool {
	if !e.started {
		e.begin()
	}
	if e.over() {
		return false
	}

	e.actions = nil
	for _, a := range e.roster {
		if a.IsAlive() {
			a.ReduceFatigue()
		}
	}
	e.reindex()

	for _, a := range e.roster {
		if !a.IsAlive() {
			continue
		}
		acts := e.policy.Decide(a, e.roster, e.battle, e.occ)
		e.actions = append(e.actions, acts...)
		e.reindex()
	}

	e.tick++
	if e.record {
		e.frames = append(e.frames, e.frame(e.actions))
	}
	return !e.over()
}

func (e *Engine) over() bool {
	return e.alive(agents.TeamFriendly) == 0 || e.alive(agents.TeamEnemy) == 0 || e.tick >= e.maxTicks
}

// RunBattle runs ticks until the battle ends and returns its result.
// It performs at most MaxTicks+1 calls to ExecuteTick.
func (e *Engine) RunBattle() Result {
	for e.ExecuteTick() {
	}
	res := e.Result()
	slog.Debug("battle ended",
		"iteration", e.ctx.Iteration,
		"winner", res.Winner,
		"ticks", res.Ticks,
		"friendly_survivors", res.Friendly.Survivors,
		"enemy_survivors", res.Enemy.Survivors,
	)
	return res
}

// Result summarizes the current battle state. Draw covers both sides
// wiped out and both sides surviving past MaxTicks.
func (e *Engine) Result() Result {
	res := Result{
		Iteration:    e.ctx.Iteration,
		Ticks:        e.tick,
		Friendly:     e.side(agents.TeamFriendly),
		Enemy:        e.side(agents.TeamEnemy),
		SpawnOffsets: e.offsets,
		Walls:        e.walls,
	}
	switch {
	case res.Friendly.Survivors > 0 && res.Enemy.Survivors == 0:
		res.Winner = WinnerFriendly
	case res.Enemy.Survivors > 0 && res.Friendly.Survivors == 0:
		res.Winner = WinnerEnemy
	default:
		res.Winner = WinnerDraw
	}
	if e.record {
		res.Recording = e.ExportRecording()
	}
	return res
}

func (e *Engine) side(team agents.Team) SideResult {
	s := SideResult{Actors: []agents.Snapshot{}}
	for _, a := range e.roster {
		if a.Team != team {
			continue
		}
		if a.IsAlive() {
			s.Survivors++
		}
		s.TotalDamage += a.DamageDealt
		s.TotalHealing += a.HealingDone
		s.Actors = append(s.Actors, a.Snapshot())
	}
	return s
}
