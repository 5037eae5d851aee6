// Package persistence stores battle outcomes in SQLite and exports replays.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/skirmish/internal/engine"
)

// DB wraps a SQLite connection for battle results.
type DB struct {
	conn *sqlx.DB
}

// BattleRow is one stored battle.
type BattleRow struct {
	ID                string `db:"id"`
	BatchID           string `db:"batch_id"`
	Iteration         int    `db:"iteration"`
	Winner            string `db:"winner"`
	Ticks             int    `db:"ticks"`
	FriendlySurvivors int    `db:"friendly_survivors"`
	EnemySurvivors    int    `db:"enemy_survivors"`
	FriendlyDamage    int    `db:"friendly_damage"`
	EnemyDamage       int    `db:"enemy_damage"`
	FriendlyHealing   int    `db:"friendly_healing"`
	EnemyHealing      int    `db:"enemy_healing"`
	Walls             int    `db:"walls"`
	SpawnOffsets      string `db:"spawn_offsets_json"`
	CreatedAt         string `db:"created_at"`
}

// BatchRow is one stored batch with its aggregate counts.
type BatchRow struct {
	ID         string  `db:"id"`
	Scenario   string  `db:"scenario"`
	Iterations int     `db:"iterations"`
	Wins       int     `db:"wins"`
	Losses     int     `db:"losses"`
	Draws      int     `db:"draws"`
	WinRate    float64 `db:"win_rate"`
	AvgTicks   float64 `db:"avg_ticks"`
	CreatedAt  string  `db:"created_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		wins INTEGER NOT NULL,
		losses INTEGER NOT NULL,
		draws INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		avg_ticks REAL NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battles (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		batch_id TEXT NOT NULL DEFAULT '',
		iteration INTEGER NOT NULL,
		winner TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		friendly_survivors INTEGER NOT NULL,
		enemy_survivors INTEGER NOT NULL,
		friendly_damage INTEGER NOT NULL,
		enemy_damage INTEGER NOT NULL,
		friendly_healing INTEGER NOT NULL,
		enemy_healing INTEGER NOT NULL,
		walls INTEGER NOT NULL,
		spawn_offsets_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recordings (
		battle_id TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		data BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_battles_batch ON battles(batch_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveBattle stores a single battle outside any batch and returns its id.
func (db *DB) SaveBattle(r engine.Result) (string, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id, err := insertBattle(tx, "", r)
	if err != nil {
		return "", err
	}
	return id, tx.Commit()
}

// SaveBatch stores the batch summary and every battle in it, including
// recordings when present. It returns the batch id and the battle ids in
// iteration order.
func (db *DB) SaveBatch(scenario string, b engine.BatchResult) (string, []string, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	batchID := uuid.NewString()
	_, err = tx.Exec(`INSERT INTO batches
		(id, scenario, iterations, wins, losses, draws, win_rate, avg_ticks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID, scenario, b.Iterations, b.Wins, b.Losses, b.Draws,
		b.WinRate, b.AvgTicks, now(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("insert batch: %w", err)
	}

	ids := make([]string, 0, len(b.Battles))
	for _, r := range b.Battles {
		id, err := insertBattle(tx, batchID, r)
		if err != nil {
			return "", nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, err
	}
	slog.Info("batch saved", "batch", batchID, "battles", len(ids))
	return batchID, ids, nil
}

func insertBattle(tx *sqlx.Tx, batchID string, r engine.Result) (string, error) {
	offsets, err := json.Marshal(r.SpawnOffsets)
	if err != nil {
		return "", fmt.Errorf("encode offsets: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.Exec(`INSERT INTO battles
		(id, batch_id, iteration, winner, ticks,
		 friendly_survivors, enemy_survivors, friendly_damage, enemy_damage,
		 friendly_healing, enemy_healing, walls, spawn_offsets_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, batchID, r.Iteration, string(r.Winner), r.Ticks,
		r.Friendly.Survivors, r.Enemy.Survivors,
		r.Friendly.TotalDamage, r.Enemy.TotalDamage,
		r.Friendly.TotalHealing, r.Enemy.TotalHealing,
		len(r.Walls), string(offsets), now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert battle %d: %w", r.Iteration, err)
	}

	if r.Recording != nil {
		data, err := EncodeRecording(FormatMsgpack, r.Recording)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec("INSERT INTO recordings (battle_id, format, data) VALUES (?, ?, ?)",
			id, string(FormatMsgpack), data)
		if err != nil {
			return "", fmt.Errorf("insert recording %d: %w", r.Iteration, err)
		}
	}
	return id, nil
}

// LoadRecording returns the stored recording of a battle.
func (db *DB) LoadRecording(battleID string) (*engine.Recording, error) {
	var row struct {
		Format string `db:"format"`
		Data   []byte `db:"data"`
	}
	err := db.conn.Get(&row, "SELECT format, data FROM recordings WHERE battle_id = ?", battleID)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", battleID, err)
	}
	return DecodeRecording(Format(row.Format), row.Data)
}

// RecentBattles returns the most recent N battles, newest first.
func (db *DB) RecentBattles(limit int) ([]BattleRow, error) {
	var rows []BattleRow
	err := db.conn.Select(&rows, `SELECT id, batch_id, iteration, winner, ticks,
		friendly_survivors, enemy_survivors, friendly_damage, enemy_damage,
		friendly_healing, enemy_healing, walls, spawn_offsets_json, created_at
		FROM battles ORDER BY seq DESC LIMIT ?`, limit)
	return rows, err
}

// BatchSummary returns a stored batch. The counts are recomputed from its
// battles so they reflect what was actually stored.
func (db *DB) BatchSummary(batchID string) (BatchRow, error) {
	var b BatchRow
	err := db.conn.Get(&b, `SELECT b.id, b.scenario, b.created_at,
		COUNT(t.id) AS iterations,
		COALESCE(SUM(t.winner = 'friendly'), 0) AS wins,
		COALESCE(SUM(t.winner = 'enemy'), 0) AS losses,
		COALESCE(SUM(t.winner = 'draw'), 0) AS draws,
		COALESCE(AVG(t.ticks), 0) AS avg_ticks,
		0.0 AS win_rate
		FROM batches b LEFT JOIN battles t ON t.batch_id = b.id
		WHERE b.id = ?
		GROUP BY b.id`, batchID)
	if err != nil {
		return BatchRow{}, fmt.Errorf("batch %s: %w", batchID, err)
	}
	if b.Iterations > 0 {
		b.WinRate = float64(b.Wins) / float64(b.Iterations)
	}
	return b, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
