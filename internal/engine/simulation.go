// Package engine runs battles: it owns one battlefield clone, the roster,
// the tick counter and the occupancy index, and drives the per-agent policy
// each tick.
package engine

import (
	"log/slog"

	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/world"
)

// DefaultMaxTicks bounds a battle when Config.MaxTicks is zero.
const DefaultMaxTicks = 1000

// Config configures an Engine.
type Config struct {
	MaxTicks int        // 0 = DefaultMaxTicks
	Map      *world.Map // Battlefield template; nil = 50x50 plain
	Entropy  any        // Shorthand accepted by entropy.Normalize
	Source   entropy.Source
	Record   bool
	Policy   Policy // Zero value = DefaultPolicy()
}

// BattleContext describes one battle of a run.
type BattleContext struct {
	Iteration int `json:"iteration"`

	// Formation offsets to try first, e.g. taken from a previous Result to
	// reproduce it.
	SpawnOffsets entropy.Offsets `json:"spawnOffsets,omitempty"`
}

// Engine simulates one battle at a time. It is not safe for concurrent
// use; run independent engines for parallel battles.
type Engine struct {
	maxTicks int
	template *world.Map
	entropy  entropy.Config
	source   entropy.Source
	record   bool
	policy   Policy

	ctx     BattleContext
	battle  *world.Map
	roster  []*agents.Agent
	tick    int
	occ     *agents.Occupancy
	started bool

	walls   []world.Cell
	offsets entropy.Offsets

	frames  []Frame
	actions []Action
}

// NewEngine creates an engine in the reset state.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = DefaultMaxTicks
	}
	if cfg.Map == nil {
		cfg.Map = world.NewMap(50, 50)
	}
	if cfg.Source == nil {
		cfg.Source = entropy.NewSeeded(1)
	}
	if cfg.Policy == (Policy{}) {
		cfg.Policy = DefaultPolicy()
	}
	e := &Engine{
		maxTicks: cfg.MaxTicks,
		template: cfg.Map,
		entropy:  entropy.Normalize(cfg.Entropy),
		source:   cfg.Source,
		record:   cfg.Record,
		policy:   cfg.Policy,
		occ:      agents.NewOccupancy(),
	}
	e.Reset(BattleContext{})
	return e
}

// Reset clears the roster, tick counter and occupancy, clones the terrain
// template and, when wall entropy is on, places random walls on the clone
// before any agent is added.
func (e *Engine) Reset(ctx BattleContext) {
	e.ctx = ctx
	e.roster = nil
	e.tick = 0
	e.started = false
	e.occ.Reset()
	e.frames = nil
	e.actions = nil
	e.offsets = nil
	e.walls = nil

	e.battle = e.template.Clone()
	if rw := e.entropy.RandomWalls; rw != nil {
		e.walls = entropy.PlaceWalls(e.battle, *rw, e.source)
		slog.Debug("random walls placed", "iteration", ctx.Iteration, "walls", len(e.walls), "requested", rw.Count)
	}
}

// AddCreep appends an agent to the roster. Roster order is the turn order.
func (e *Engine) AddCreep(a *agents.Agent) {
	e.roster = append(e.roster, a)
}

// Roster returns the agents in turn order.
func (e *Engine) Roster() []*agents.Agent { return e.roster }

// Map returns this battle's terrain clone.
func (e *Engine) Map() *world.Map { return e.battle }

// Tick returns the number of ticks executed.
func (e *Engine) Tick() int { return e.tick }

// MaxTicks returns the tick bound.
func (e *Engine) MaxTicks() int { return e.maxTicks }

// Occupancy returns the occupancy index.
func (e *Engine) Occupancy() *agents.Occupancy { return e.occ }

// Entropy returns the normalized entropy configuration.
func (e *Engine) Entropy() entropy.Config { return e.entropy }

// Walls returns the random walls placed at the last Reset.
func (e *Engine) Walls() []world.Cell { return e.walls }

// begin applies spawn jitter once the roster is complete and indexes the
// starting positions.
func (e *Engine) begin() {
	e.started = true
	if sj := e.entropy.SpawnJitter; sj != nil {
		e.offsets = entropy.ApplySpawnJitter(e.battle, e.roster, *sj, e.source, e.ctx.SpawnOffsets)
	}
	e.reindex()
	if e.record {
		e.frames = append(e.frames, e.frame(nil))
	}
	slog.Debug("battle started",
		"iteration", e.ctx.Iteration,
		"friendly", e.alive(agents.TeamFriendly),
		"enemy", e.alive(agents.TeamEnemy),
	)
}

// reindex rebuilds the occupancy index from the current roster. The tick
// loop calls it once before the first turn and once after every agent's
// turn, so no agent ever moves onto a cell taken earlier in the same tick.
func (e *Engine) reindex() {
	e.occ.Rebuild(e.roster)
}

func (e *Engine) alive(team agents.Team) int {
	n := 0
	for _, a := range e.roster {
		if a.Team == team && a.IsAlive() {
			n++
		}
	}
	return n
}
