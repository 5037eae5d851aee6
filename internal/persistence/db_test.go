package persistence

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/talgya/skirmish/internal/agents"
	"github.com/talgya/skirmish/internal/engine"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "battles.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setup(e *engine.Engine, _ engine.BattleContext) {
	s := agents.NewSpawner()
	e.AddCreep(s.Spawn(agents.TeamFriendly, "", world.Cell{X: 2, Y: 5}, agents.MustLoadout("tough,attack,move")))
	e.AddCreep(s.Spawn(agents.TeamFriendly, "", world.Cell{X: 2, Y: 7}, agents.MustLoadout("ranged_attack,move")))
	e.AddCreep(s.Spawn(agents.TeamEnemy, "", world.Cell{X: 12, Y: 6}, agents.MustLoadout("attack,move")))
}

func runBatch(t *testing.T, n int, record bool) engine.BatchResult {
	t.Helper()
	e := engine.NewEngine(engine.Config{
		Map:     world.NewMap(15, 12),
		Entropy: true,
		Source:  entropy.NewSeeded(21),
		Record:  record,
	})
	return e.RunMultipleBattles(n, setup)
}

func sameJSON(t *testing.T, a, b any) {
	t.Helper()
	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ja, jb) {
		t.Fatalf("mismatch:\n%s\n%s", ja, jb)
	}
}

func TestSaveBatchAndSummary(t *testing.T) {
	db := openTestDB(t)
	batch := runBatch(t, 4, false)

	batchID, ids, err := db.SaveBatch("unit", batch)
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("battle ids %d", len(ids))
	}

	sum, err := db.BatchSummary(batchID)
	if err != nil {
		t.Fatalf("BatchSummary: %v", err)
	}
	if sum.Scenario != "unit" || sum.Iterations != 4 {
		t.Fatalf("summary %+v", sum)
	}
	if sum.Wins != batch.Wins || sum.Losses != batch.Losses || sum.Draws != batch.Draws {
		t.Fatalf("summary %+v, batch %d/%d/%d", sum, batch.Wins, batch.Losses, batch.Draws)
	}
	if sum.AvgTicks != batch.AvgTicks || sum.WinRate != batch.WinRate {
		t.Fatalf("avg ticks %v/%v win rate %v/%v", sum.AvgTicks, batch.AvgTicks, sum.WinRate, batch.WinRate)
	}

	if _, err := db.BatchSummary("nope"); err == nil {
		t.Fatal("unknown batch returned a summary")
	}
}

func TestRecentBattles(t *testing.T) {
	db := openTestDB(t)
	batch := runBatch(t, 3, false)
	if _, _, err := db.SaveBatch("unit", batch); err != nil {
		t.Fatal(err)
	}
	single := batch.Battles[0]
	single.Iteration = 99
	loneID, err := db.SaveBattle(single)
	if err != nil {
		t.Fatal(err)
	}

	rows, err := db.RecentBattles(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows %d", len(rows))
	}
	if rows[0].ID != loneID || rows[0].BatchID != "" || rows[0].Iteration != 99 {
		t.Fatalf("newest row %+v", rows[0])
	}
	if rows[1].Iteration != 2 || rows[1].Winner != string(batch.Battles[2].Winner) {
		t.Fatalf("second row %+v", rows[1])
	}

	var offsets entropy.Offsets
	if err := json.Unmarshal([]byte(rows[1].SpawnOffsets), &offsets); err != nil {
		t.Fatalf("offsets json: %v", err)
	}
	sameJSON(t, offsets, batch.Battles[2].SpawnOffsets)
}

func TestStoredRecording(t *testing.T) {
	db := openTestDB(t)
	batch := runBatch(t, 2, true)
	_, ids, err := db.SaveBatch("recorded", batch)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := db.LoadRecording(ids[1])
	if err != nil {
		t.Fatalf("LoadRecording: %v", err)
	}
	sameJSON(t, rec, batch.Battles[1].Recording)

	if _, err := db.LoadRecording("missing"); err == nil {
		t.Fatal("missing recording loaded")
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("last_batch", "a"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("last_batch", "b"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMeta("last_batch")
	if err != nil || v != "b" {
		t.Fatalf("GetMeta=%q, %v", v, err)
	}
}

func TestReplayFiles(t *testing.T) {
	rec := runBatch(t, 1, true).Battles[0].Recording
	dir := t.TempDir()

	for _, name := range []string{"battle.json", "battle.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteRecording(path, rec); err != nil {
				t.Fatalf("WriteRecording: %v", err)
			}
			got, err := ReadRecording(path)
			if err != nil {
				t.Fatalf("ReadRecording: %v", err)
			}
			sameJSON(t, got, rec)
		})
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.json":    FormatJSON,
		"a.MSGPACK": FormatMsgpack,
		"a.mp":      FormatMsgpack,
		"replay":    FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q)=%s, want %s", path, got, want)
		}
	}
}
