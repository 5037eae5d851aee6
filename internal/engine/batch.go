package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// SetupFunc populates the roster after each Reset.
type SetupFunc func(e *Engine, ctx BattleContext)

// BatchResult aggregates many battles. Wins and losses are counted from
// the friendly side.
type BatchResult struct {
	Iterations int      `json:"iterations"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	Draws      int      `json:"draws"`
	WinRate    float64  `json:"winRate"`
	AvgTicks   float64  `json:"avgTicks"`
	Battles    []Result `json:"battles"`
}

// RunMultipleBattles resets the engine, calls setup and runs a battle, n
// times in sequence.
func (e *Engine) RunMultipleBattles(n int, setup SetupFunc) BatchResult {
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		ctx := BattleContext{Iteration: i}
		e.Reset(ctx)
		setup(e, ctx)
		results = append(results, e.RunBattle())
	}
	batch := Summarize(results)
	slog.Info("batch complete",
		"iterations", batch.Iterations,
		"wins", batch.Wins,
		"losses", batch.Losses,
		"draws", batch.Draws,
		"win_rate", fmt.Sprintf("%.3f", batch.WinRate),
		"avg_ticks", fmt.Sprintf("%.1f", batch.AvgTicks),
	)
	return batch
}

// EngineFactory builds the engine for one iteration. Each engine must get
// its own random source; deriving it from the iteration keeps parallel
// runs reproducible regardless of scheduling.
type EngineFactory func(iteration int) *Engine

// RunParallel runs n battles across a pool of workers. Results are ordered
// by iteration. Cancellation is checked between battles only.
func RunParallel(ctx context.Context, n, workers int, factory EngineFactory, setup SetupFunc) (BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, n)
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				e := factory(i)
				bctx := BattleContext{Iteration: i}
				e.Reset(bctx)
				setup(e, bctx)
				results[i] = e.RunBattle()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, fmt.Errorf("parallel batch: %w", err)
	}

	batch := Summarize(results)
	slog.Info("parallel batch complete",
		"iterations", batch.Iterations,
		"workers", workers,
		"win_rate", fmt.Sprintf("%.3f", batch.WinRate),
		"avg_ticks", fmt.Sprintf("%.1f", batch.AvgTicks),
	)
	return batch, nil
}

// Summarize aggregates battle results.
func Summarize(results []Result) BatchResult {
	b := BatchResult{Iterations: len(results), Battles: results}
	totalTicks := 0
	for _, r := range results {
		switch r.Winner {
		case WinnerFriendly:
			b.Wins++
		case WinnerEnemy:
			b.Losses++
		default:
			b.Draws++
		}
		totalTicks += r.Ticks
	}
	if b.Iterations > 0 {
		b.WinRate = float64(b.Wins) / float64(b.Iterations)
		b.AvgTicks = float64(totalTicks) / float64(b.Iterations)
	}
	return b
}
