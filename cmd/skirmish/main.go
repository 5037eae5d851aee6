// Command skirmish runs squad battles from a scenario file and reports the
// outcome.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/skirmish/internal/config"
	"github.com/talgya/skirmish/internal/engine"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/persistence"
	"github.com/talgya/skirmish/internal/world"
)

type options struct {
	scenario string
	n        int
	workers  int
	seed     int64
	dbPath   string
	replay   string
	verbose  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.scenario, "scenario", "", "scenario YAML file (built-in skirmish if empty)")
	flag.IntVar(&opts.n, "n", 1, "number of battles")
	flag.IntVar(&opts.workers, "workers", 0, "parallel workers for batches (0 = sequential)")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed (0 = scenario seed)")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite file to store results in")
	flag.StringVar(&opts.replay, "replay", "", "write replay frames to this file (.json or .msgpack)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("skirmish failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	sc := config.Default()
	if opts.scenario != "" {
		loaded, err := config.Load(opts.scenario)
		if err != nil {
			return err
		}
		sc = loaded
	}
	if opts.replay != "" {
		sc.Record = true
	}
	if opts.n < 1 {
		opts.n = 1
	}

	seed := sc.Seed
	if opts.seed != 0 {
		seed = opts.seed
	}

	// ── Random source ────────────────────────────────────────────────
	rnd := entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY"))
	var tape *entropy.Tape
	if rnd != nil {
		slog.Info("random.org source enabled")
		if opts.n == 1 {
			tape = entropy.NewTape(rnd)
		} else if opts.seed == 0 {
			seed = int64(rnd.Float() * (1 << 31))
		}
	}

	// One template serves every engine; Reset clones it per battle.
	sc.Seed = seed
	base := sc.EngineConfig(nil)
	for t, c := range world.TerrainCounts(base.Map) {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}

	slog.Info("scenario loaded",
		"name", sc.Name,
		"friendly", len(sc.Friendly),
		"enemy", len(sc.Enemy),
		"battles", opts.n,
		"seed", seed,
	)

	// ── Battles ──────────────────────────────────────────────────────
	var batch engine.BatchResult
	switch {
	case tape != nil:
		cfg := base
		cfg.Source = tape
		e := engine.NewEngine(cfg)
		batch = e.RunMultipleBattles(1, sc.Setup())
	case opts.workers > 0 && opts.n > 1:
		factory := func(i int) *engine.Engine {
			cfg := base
			cfg.Source = entropy.NewSeeded(seed + int64(i))
			return engine.NewEngine(cfg)
		}
		var err error
		batch, err = engine.RunParallel(ctx, opts.n, opts.workers, factory, sc.Setup())
		if err != nil {
			return err
		}
	default:
		e := engine.NewEngine(base)
		batch = e.RunMultipleBattles(opts.n, sc.Setup())
	}

	report(out, sc.Name, batch)

	// ── Outputs ──────────────────────────────────────────────────────
	if opts.replay != "" {
		if err := writeReplays(out, opts.replay, batch); err != nil {
			return err
		}
	}
	if opts.dbPath != "" {
		if err := store(opts.dbPath, sc.Name, batch, tape); err != nil {
			return err
		}
	}
	return nil
}

func report(out io.Writer, name string, b engine.BatchResult) {
	if name == "" {
		name = "scenario"
	}
	fmt.Fprintf(out, "\n%s: %s battles\n", name, humanize.Comma(int64(b.Iterations)))
	fmt.Fprintf(out, "  friendly wins  %s\n", humanize.Comma(int64(b.Wins)))
	fmt.Fprintf(out, "  enemy wins     %s\n", humanize.Comma(int64(b.Losses)))
	fmt.Fprintf(out, "  draws          %s\n", humanize.Comma(int64(b.Draws)))
	fmt.Fprintf(out, "  win rate       %s%%\n", humanize.FtoaWithDigits(b.WinRate*100, 1))
	fmt.Fprintf(out, "  average ticks  %s\n", humanize.FtoaWithDigits(b.AvgTicks, 1))

	if b.Iterations == 1 {
		r := b.Battles[0]
		fmt.Fprintf(out, "  winner %s after %d ticks, survivors %d vs %d, damage %s vs %s\n",
			r.Winner, r.Ticks, r.Friendly.Survivors, r.Enemy.Survivors,
			humanize.Comma(int64(r.Friendly.TotalDamage)), humanize.Comma(int64(r.Enemy.TotalDamage)))
	}
}

// replayPath numbers the file per battle when a batch is written.
func replayPath(path string, i, n int) string {
	if n == 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(path, ext), i, ext)
}

func writeReplays(out io.Writer, path string, b engine.BatchResult) error {
	for i, r := range b.Battles {
		if r.Recording == nil {
			continue
		}
		p := replayPath(path, i, len(b.Battles))
		if err := persistence.WriteRecording(p, r.Recording); err != nil {
			return err
		}
		if st, err := os.Stat(p); err == nil {
			fmt.Fprintf(out, "  replay %s (%s, %d frames)\n", p, humanize.Bytes(uint64(st.Size())), len(r.Recording.Frames))
		}
	}
	return nil
}

func store(path, scenario string, b engine.BatchResult, tape *entropy.Tape) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	batchID, ids, err := db.SaveBatch(scenario, b)
	if err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	if err := db.SaveMeta("last_batch", batchID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	// Draws from random.org are kept so the battle can be replayed with
	// entropy.NewReplay.
	if tape != nil && len(ids) == 1 {
		draws, err := json.Marshal(tape.Values())
		if err != nil {
			return fmt.Errorf("encode draws: %w", err)
		}
		if err := db.SaveMeta("draws:"+ids[0], string(draws)); err != nil {
			return fmt.Errorf("save draws: %w", err)
		}
	}
	slog.Info("results stored", "db", path, "batch", batchID)
	return nil
}
