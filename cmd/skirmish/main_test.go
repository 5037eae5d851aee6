package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/skirmish/internal/persistence"
)

func TestRunDefaultBatch(t *testing.T) {
	t.Setenv("RANDOM_ORG_API_KEY", "")
	dir := t.TempDir()
	opts := options{
		n:       3,
		workers: 2,
		seed:    5,
		dbPath:  filepath.Join(dir, "out", "battles.db"),
		replay:  filepath.Join(dir, "battle.json"),
	}

	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "default: 3 battles") {
		t.Fatalf("report missing header:\n%s", out.String())
	}
	for i := 0; i < 3; i++ {
		p := replayPath(opts.replay, i, 3)
		rec, err := persistence.ReadRecording(p)
		if err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
		if len(rec.Frames) != rec.TotalTicks+1 {
			t.Fatalf("replay %d: %d frames for %d ticks", i, len(rec.Frames), rec.TotalTicks)
		}
	}

	db, err := persistence.Open(opts.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	batchID, err := db.GetMeta("last_batch")
	if err != nil {
		t.Fatal(err)
	}
	sum, err := db.BatchSummary(batchID)
	if err != nil || sum.Iterations != 3 {
		t.Fatalf("summary %+v, %v", sum, err)
	}
}

func TestRunScenarioFile(t *testing.T) {
	t.Setenv("RANDOM_ORG_API_KEY", "")
	path := filepath.Join(t.TempDir(), "duel.yaml")
	doc := `
name: duel
terrain: {width: 10, height: 10}
friendly: [{x: 4, y: 4, body: attack}]
enemy: [{x: 5, y: 4, body: move}]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), options{scenario: path, n: 1}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "winner friendly after 4 ticks") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}

	if err := run(context.Background(), options{scenario: filepath.Join(t.TempDir(), "none.yaml")}, &out); err == nil {
		t.Fatal("missing scenario accepted")
	}
}

func TestReplayPath(t *testing.T) {
	if got := replayPath("r.json", 0, 1); got != "r.json" {
		t.Fatalf("single: %s", got)
	}
	if got := replayPath("out/r.msgpack", 7, 20); got != "out/r-007.msgpack" {
		t.Fatalf("batch: %s", got)
	}
}
