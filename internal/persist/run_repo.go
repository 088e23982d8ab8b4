package persist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one finished run as stored in the ledger.
type RunRecord struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Class     string
	Map       string
	Score     int
	Kills     int
	Level     int
	Wave      int
	Duration  time.Duration
	Upgrades  map[string]int // upgrade id -> stacks
	EndedAt   time.Time
}

// UpgradeIDs returns the record's upgrade ids in sorted order.
func (r *RunRecord) UpgradeIDs() []string {
	ids := make([]string, 0, len(r.Upgrades))
	for id := range r.Upgrades {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save writes the run and its upgrades in a single transaction.
func (r *RunRepo) Save(ctx context.Context, rec *RunRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO runs (run_id, session_id, class, map, score, kills, level, wave, duration_ms, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.SessionID, rec.Class, rec.Map, rec.Score, rec.Kills, rec.Level, rec.Wave,
		rec.Duration.Milliseconds(), rec.EndedAt,
	); err != nil {
		return fmt.Errorf("run insert: %w", err)
	}

	for _, id := range rec.UpgradeIDs() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO run_upgrades (run_id, upgrade_id, stacks) VALUES ($1, $2, $3)`,
			rec.ID, id, rec.Upgrades[id],
		); err != nil {
			return fmt.Errorf("run upgrade insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Top returns the best runs by score, highest first. Upgrades are not loaded.
func (r *RunRepo) Top(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT run_id, session_id, class, map, score, kills, level, wave, duration_ms, ended_at
		 FROM runs ORDER BY score DESC, ended_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var ms int64
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Class, &rec.Map, &rec.Score, &rec.Kills,
			&rec.Level, &rec.Wave, &ms, &rec.EndedAt,
		); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
