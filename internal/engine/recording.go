package engine

import (
	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/world"
)

// Frame is the recorded state at the end of one tick. Frame 0 holds the
// starting positions and no actions.
type Frame struct {
	Tick    int               `json:"tick"`
	Actors  []agents.Snapshot `json:"actors"`
	Actions []Action          `json:"actions"`
}

// GridSize is the battlefield size.
type GridSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata describes the recorded battle.
type Metadata struct {
	MaxTicks int      `json:"maxTicks"`
	GridSize GridSize `json:"gridSize"`
}

// Recording is the exported replay of one battle, for external renderers.
type Recording struct {
	TotalTicks int        `json:"totalTicks"`
	Terrain    world.Grid `json:"terrain"`
	Frames     []Frame    `json:"frames"`
	Metadata   Metadata   `json:"metadata"`
}

func (e *Engine) frame(actions []Action) Frame {
	f := Frame{
		Tick:    e.tick,
		Actors:  make([]agents.Snapshot, 0, len(e.roster)),
		Actions: make([]Action, len(actions)),
	}
	copy(f.Actions, actions)
	for _, a := range e.roster {
		f.Actors = append(f.Actors, a.Snapshot())
	}
	return f
}

// ExportRecording returns the frames recorded so far together with the
// battle terrain. Frames is empty when recording is off.
func (e *Engine) ExportRecording() *Recording {
	frames := make([]Frame, len(e.frames))
	copy(frames, e.frames)
	return &Recording{
		TotalTicks: e.tick,
		Terrain:    e.battle.ToGrid(),
		Frames:     frames,
		Metadata: Metadata{
			MaxTicks: e.maxTicks,
			GridSize: GridSize{Width: e.battle.Width, Height: e.battle.Height},
		},
	}
}
