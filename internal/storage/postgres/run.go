package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/run"
)

// ErrRunNotFound is returned when a run lookup yields no results.
var ErrRunNotFound = errors.New("run not found")

// RunRepository persists run snapshots.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Save upserts the run row and replaces its owned items in one transaction.
//
// Precondition: snap.RunID must be set.
// Postcondition: Load(snap.RunID) returns snap; on error nothing is written.
func (r *RunRepository) Save(ctx context.Context, snap run.Snapshot) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO runs (id, seed, rng_state, level, xp, luck, coins)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				seed = EXCLUDED.seed,
				rng_state = EXCLUDED.rng_state,
				level = EXCLUDED.level,
				xp = EXCLUDED.xp,
				luck = EXCLUDED.luck,
				coins = EXCLUDED.coins,
				updated_at = NOW()`,
			snap.RunID, int64(snap.Seed), snap.RNGState, snap.Level, snap.XP, snap.Luck, snap.Coins,
		)
		if err != nil {
			return fmt.Errorf("upserting run: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM run_items WHERE run_id = $1`, snap.RunID); err != nil {
			return fmt.Errorf("clearing run items: %w", err)
		}
		for _, it := range snap.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO run_items (run_id, item_id, kind, level, slot)
				VALUES ($1, $2, $3, $4, $5)`,
				snap.RunID, it.ItemID, string(it.Kind), it.Level, it.Slot,
			)
			if err != nil {
				return fmt.Errorf("inserting run item %q: %w", it.ItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving run %s: %w", snap.RunID, err)
	}
	return nil
}

// Load returns the snapshot stored for id. Items are ordered weapons first,
// then passives, each by slot. Weapon stats are not stored; run.Restore
// recomputes them from the catalog.
//
// Postcondition: Returns the snapshot, ErrRunNotFound, or a non-nil error.
func (r *RunRepository) Load(ctx context.Context, id uuid.UUID) (run.Snapshot, error) {
	snap := run.Snapshot{RunID: id}
	var seed int64
	err := r.db.QueryRow(ctx, `
		SELECT seed, rng_state, level, xp, luck, coins FROM runs WHERE id = $1`, id,
	).Scan(&seed, &snap.RNGState, &snap.Level, &snap.XP, &snap.Luck, &snap.Coins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run.Snapshot{}, ErrRunNotFound
		}
		return run.Snapshot{}, fmt.Errorf("loading run %s: %w", id, err)
	}
	snap.Seed = uint64(seed)

	rows, err := r.db.Query(ctx, `
		SELECT item_id, kind, level, slot FROM run_items
		WHERE run_id = $1
		ORDER BY CASE kind WHEN 'weapon' THEN 0 ELSE 1 END, slot`, id)
	if err != nil {
		return run.Snapshot{}, fmt.Errorf("loading run items %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it   inventory.OwnedItem
			kind string
		)
		if err := rows.Scan(&it.ItemID, &kind, &it.Level, &it.Slot); err != nil {
			return run.Snapshot{}, fmt.Errorf("scanning run item: %w", err)
		}
		it.Kind = catalog.Kind(kind)
		snap.Items = append(snap.Items, it)
	}
	if err := rows.Err(); err != nil {
		return run.Snapshot{}, fmt.Errorf("iterating run items: %w", err)
	}
	return snap, nil
}

// Delete removes the run and its items.
//
// Postcondition: Returns ErrRunNotFound when no run had the given id.
func (r *RunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}
