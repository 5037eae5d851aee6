package entropy

import (
	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/world"
)

// unitOffsets is the fallback ladder tried when no random offset fits.
var unitOffsets = [4]world.Cell{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// Offsets records the formation shift applied to each team.
type Offsets map[agents.Team]world.Cell

// ApplySpawnJitter shifts each team's formation by one random offset within
// ±cfg.Radius, keeping every member in bounds, on walkable ground, and off
// the other team's cells. A preferred offset for a team is tried first and
// kept if it still fits. Teams are processed friendly first, then enemy.
//
// When cfg.ScatterUnits is set and cfg.UnitRadius > 0, every agent
// is then nudged individually. Returns the formation offsets applied.
func ApplySpawnJitter(m *world.Map, roster []*agents.Agent, cfg SpawnJitter, src Source, preferred Offsets) Offsets {
	applied := Offsets{}
	for _, team := range []agents.Team{agents.TeamFriendly, agents.TeamEnemy} {
		members := teamMembers(roster, team)
		if len(members) == 0 {
			continue
		}
		blocked := cellSet(teamMembers(roster, team.Opponent()))
		off := chooseTeamOffset(m, members, blocked, cfg, src, preferred, team)
		for _, a := range members {
			a.Pos = a.Pos.Add(off.X, off.Y)
		}
		applied[team] = off
	}

	if cfg.ScatterUnits && cfg.UnitRadius > 0 {
		jitterUnits(m, roster, cfg, src)
	}
	return applied
}

func chooseTeamOffset(m *world.Map, members []*agents.Agent, blocked map[world.Cell]bool, cfg SpawnJitter, src Source, preferred Offsets, team agents.Team) world.Cell {
	fits := func(off world.Cell) bool {
		for _, a := range members {
			dest := a.Pos.Add(off.X, off.Y)
			if !m.IsWalkable(dest.X, dest.Y) || blocked[dest] {
				return false
			}
		}
		return true
	}

	if off, ok := preferred[team]; ok && fits(off) {
		return off
	}
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		off := world.Cell{X: Int(src, -cfg.Radius, cfg.Radius), Y: Int(src, -cfg.Radius, cfg.Radius)}
		if off == (world.Cell{}) && !cfg.AllowZeroOffset {
			continue
		}
		if fits(off) {
			return off
		}
	}
	if !cfg.AllowZeroOffset {
		for _, off := range unitOffsets {
			if fits(off) {
				return off
			}
		}
	}
	return world.Cell{}
}

func jitterUnits(m *world.Map, roster []*agents.Agent, cfg SpawnJitter, src Source) {
	for _, a := range roster {
		if !a.IsAlive() {
			continue
		}
		fits := func(off world.Cell) bool {
			dest := a.Pos.Add(off.X, off.Y)
			if !m.IsWalkable(dest.X, dest.Y) {
				return false
			}
			for _, other := range roster {
				if other != a && other.IsAlive() && other.Pos == dest {
					return false
				}
			}
			return true
		}

		moved := false
		for attempt := 0; attempt < cfg.UnitAttempts; attempt++ {
			off := world.Cell{X: Int(src, -cfg.UnitRadius, cfg.UnitRadius), Y: Int(src, -cfg.UnitRadius, cfg.UnitRadius)}
			if off == (world.Cell{}) && !cfg.AllowZeroOffset {
				continue
			}
			if fits(off) {
				a.Pos = a.Pos.Add(off.X, off.Y)
				moved = true
				break
			}
		}
		if moved || cfg.AllowZeroOffset {
			continue
		}
		for _, off := range unitOffsets {
			if fits(off) {
				a.Pos = a.Pos.Add(off.X, off.Y)
				break
			}
		}
	}
}

func teamMembers(roster []*agents.Agent, team agents.Team) []*agents.Agent {
	var out []*agents.Agent
	for _, a := range roster {
		if a.Team == team && a.IsAlive() {
			out = append(out, a)
		}
	}
	return out
}

func cellSet(list []*agents.Agent) map[world.Cell]bool {
	set := make(map[world.Cell]bool, len(list))
	for _, a := range list {
		set[a.Pos] = true
	}
	return set
}
