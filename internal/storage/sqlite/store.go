// Package sqlite provides a SQLite-backed roll store implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sqlitemigrate "github.com/bubblecraft/runeforge/internal/platform/storage/sqlitemigrate"
	"github.com/bubblecraft/runeforge/internal/reward"
	"github.com/bubblecraft/runeforge/internal/storage"
	"github.com/bubblecraft/runeforge/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists roll history and aggregates in SQLite. All operations
// share one coarse lock: write volume is bounded by actor action rate,
// and reads want snapshot consistency with in-flight writes.
type Store struct {
	mu    sync.Mutex
	sqlDB *sql.DB
	wg    sync.WaitGroup
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite roll store and applies embedded migrations.
// Opening an already-migrated file is a no-op beyond the version check.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close waits for pending async writes and releases the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.sqlDB
	s.sqlDB = nil
	return db.Close()
}

// tierColumn maps a tier onto its per-tier counter column. Tiers are
// validated before this runs, so the name is never attacker-supplied.
func tierColumn(tier reward.Tier) string {
	return tier.Key() + "_rolls"
}

// RecordRoll appends one history row and folds it into the actor and
// daily aggregates as a single transaction.
func (s *Store) RecordRoll(ctx context.Context, record storage.RollRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return storage.ErrUnavailable
	}
	actorID := strings.TrimSpace(record.ActorID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}
	if !record.Tier.Valid() {
		return fmt.Errorf("tier %d is not valid", int(record.Tier))
	}
	timestamp := record.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	day := timestamp.UTC().Format("2006-01-02")
	millis := toMillis(timestamp)
	column := tierColumn(record.Tier)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return storage.ErrUnavailable
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roll tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	upsertPlayer := fmt.Sprintf(
		`INSERT INTO player_stats (
		   actor_id, actor_name, total_rolls, total_primary_spent, total_secondary_spent,
		   %[1]s, first_roll_at, last_roll_at, updated_at
		 ) VALUES (?, ?, 1, ?, ?, 1, ?, ?, ?)
		 ON CONFLICT(actor_id) DO UPDATE SET
		   actor_name = excluded.actor_name,
		   total_rolls = total_rolls + 1,
		   total_primary_spent = total_primary_spent + excluded.total_primary_spent,
		   total_secondary_spent = total_secondary_spent + excluded.total_secondary_spent,
		   %[1]s = %[1]s + 1,
		   last_roll_at = excluded.last_roll_at,
		   updated_at = excluded.updated_at`,
		column,
	)
	if _, err := tx.ExecContext(
		ctx,
		upsertPlayer,
		actorID,
		record.ActorName,
		record.PrimaryCost,
		record.SecondaryCost,
		millis,
		millis,
		millis,
	); err != nil {
		return fmt.Errorf("upsert player stats: %w", err)
	}

	var world any
	if record.Location.World != "" {
		world = record.Location.World
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO roll_history (
		   actor_id, actor_name, tier, prize_id, prize_name, prize_level,
		   primary_cost, secondary_cost,
		   location_world, location_x, location_y, location_z, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		actorID,
		record.ActorName,
		record.Tier.String(),
		record.PrizeID,
		record.PrizeName,
		record.PrizeLevel,
		record.PrimaryCost,
		record.SecondaryCost,
		world,
		record.Location.X,
		record.Location.Y,
		record.Location.Z,
		millis,
	); err != nil {
		return fmt.Errorf("insert roll history: %w", err)
	}

	upsertDaily := fmt.Sprintf(
		`INSERT INTO daily_stats (
		   day, total_rolls, total_primary_spent, total_secondary_spent, unique_actors, %[1]s
		 ) VALUES (?, 1, ?, ?, 1, 1)
		 ON CONFLICT(day) DO UPDATE SET
		   total_rolls = total_rolls + 1,
		   total_primary_spent = total_primary_spent + excluded.total_primary_spent,
		   total_secondary_spent = total_secondary_spent + excluded.total_secondary_spent,
		   %[1]s = %[1]s + 1`,
		column,
	)
	if _, err := tx.ExecContext(
		ctx,
		upsertDaily,
		day,
		record.PrimaryCost,
		record.SecondaryCost,
	); err != nil {
		return fmt.Errorf("upsert daily stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roll tx: %w", err)
	}
	return nil
}

// RecordRollAsync records off the caller's goroutine. Failures are
// logged and discarded; the in-memory ledger stays the same-session
// source of truth when the durable write is lost.
func (s *Store) RecordRollAsync(record storage.RollRecord) {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.RecordRoll(context.Background(), record); err != nil {
			log.Printf("record roll for %s: %v", record.ActorID, err)
		}
	}()
}

const playerColumns = `actor_id, actor_name, total_rolls, total_primary_spent, total_secondary_spent,
	common_rolls, uncommon_rolls, rare_rolls, epic_rolls, legendary_rolls, special_rolls, veryspecial_rolls,
	first_roll_at, last_roll_at`

func scanPlayer(scan func(dest ...any) error) (storage.PlayerAggregate, error) {
	var agg storage.PlayerAggregate
	counts := make([]int, len(reward.Tiers()))
	var firstRoll, lastRoll sql.NullInt64
	dest := []any{
		&agg.ActorID,
		&agg.ActorName,
		&agg.TotalRolls,
		&agg.TotalPrimarySpent,
		&agg.TotalSecondarySpent,
	}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	dest = append(dest, &firstRoll, &lastRoll)
	if err := scan(dest...); err != nil {
		return storage.PlayerAggregate{}, err
	}
	agg.TierRolls = make(map[reward.Tier]int, len(counts))
	for i, tier := range reward.Tiers() {
		agg.TierRolls[tier] = counts[i]
	}
	if firstRoll.Valid {
		agg.FirstRoll = fromMillis(firstRoll.Int64)
	}
	if lastRoll.Valid {
		agg.LastRoll = fromMillis(lastRoll.Int64)
	}
	return agg, nil
}

// GetPlayerStats returns one actor's lifetime aggregate.
func (s *Store) GetPlayerStats(ctx context.Context, actorID string) (storage.PlayerAggregate, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlayerAggregate{}, err
	}
	if s == nil {
		return storage.PlayerAggregate{}, storage.ErrUnavailable
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return storage.PlayerAggregate{}, fmt.Errorf("actor id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return storage.PlayerAggregate{}, storage.ErrUnavailable
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+playerColumns+` FROM player_stats WHERE actor_id = ?`,
		actorID,
	)
	agg, err := scanPlayer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PlayerAggregate{}, storage.ErrNotFound
		}
		return storage.PlayerAggregate{}, fmt.Errorf("get player stats: %w", err)
	}
	return agg, nil
}

// GetTopPlayers returns up to limit actors by total rolls descending.
func (s *Store) GetTopPlayers(ctx context.Context, limit int) ([]storage.PlayerAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, storage.ErrUnavailable
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil, storage.ErrUnavailable
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+playerColumns+` FROM player_stats ORDER BY total_rolls DESC, actor_id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get top players: %w", err)
	}
	defer rows.Close()

	var top []storage.PlayerAggregate
	for rows.Next() {
		agg, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("get top players: %w", err)
		}
		top = append(top, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get top players: %w", err)
	}
	return top, nil
}

// GetRecentRolls returns one actor's latest history rows, newest first.
func (s *Store) GetRecentRolls(ctx context.Context, actorID string, limit int) ([]storage.RollRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, storage.ErrUnavailable
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil, storage.ErrUnavailable
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, actor_id, actor_name, tier, prize_id, prize_name, prize_level,
		        primary_cost, secondary_cost,
		        location_world, location_x, location_y, location_z, created_at
		   FROM roll_history
		  WHERE actor_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		actorID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get recent rolls: %w", err)
	}
	defer rows.Close()

	var records []storage.RollRecord
	for rows.Next() {
		var record storage.RollRecord
		var tierName string
		var world sql.NullString
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.ActorID,
			&record.ActorName,
			&tierName,
			&record.PrizeID,
			&record.PrizeName,
			&record.PrizeLevel,
			&record.PrimaryCost,
			&record.SecondaryCost,
			&world,
			&record.Location.X,
			&record.Location.Y,
			&record.Location.Z,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("get recent rolls: %w", err)
		}
		tier, ok := reward.ParseTier(tierName)
		if !ok {
			return nil, fmt.Errorf("get recent rolls: unknown tier %q", tierName)
		}
		record.Tier = tier
		record.Location.World = world.String
		record.Timestamp = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get recent rolls: %w", err)
	}
	return records, nil
}

// GetGlobalStats aggregates over every actor row.
func (s *Store) GetGlobalStats(ctx context.Context) (storage.GlobalStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.GlobalStats{}, err
	}
	if s == nil {
		return storage.GlobalStats{}, storage.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return storage.GlobalStats{}, storage.ErrUnavailable
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COALESCE(SUM(total_rolls), 0),
		        COALESCE(SUM(total_primary_spent), 0),
		        COALESCE(SUM(total_secondary_spent), 0),
		        COUNT(*)
		   FROM player_stats`,
	)
	var stats storage.GlobalStats
	if err := row.Scan(
		&stats.TotalRolls,
		&stats.TotalPrimarySpent,
		&stats.TotalSecondarySpent,
		&stats.UniqueActors,
	); err != nil {
		return storage.GlobalStats{}, fmt.Errorf("get global stats: %w", err)
	}
	return stats, nil
}

// GetTierDistribution counts history rows grouped by tier. Tiers with
// no rolls are absent from the result.
func (s *Store) GetTierDistribution(ctx context.Context) (map[reward.Tier]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, storage.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil, storage.ErrUnavailable
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT tier, COUNT(*) FROM roll_history GROUP BY tier`,
	)
	if err != nil {
		return nil, fmt.Errorf("get tier distribution: %w", err)
	}
	defer rows.Close()

	distribution := make(map[reward.Tier]int)
	for rows.Next() {
		var tierName string
		var count int
		if err := rows.Scan(&tierName, &count); err != nil {
			return nil, fmt.Errorf("get tier distribution: %w", err)
		}
		tier, ok := reward.ParseTier(tierName)
		if !ok {
			return nil, fmt.Errorf("get tier distribution: unknown tier %q", tierName)
		}
		distribution[tier] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get tier distribution: %w", err)
	}
	return distribution, nil
}

// GetRank returns the 1-based position by total rolls. Actors with no
// stats row get ErrNotFound.
func (s *Store) GetRank(ctx context.Context, actorID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil {
		return 0, storage.ErrUnavailable
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return 0, fmt.Errorf("actor id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return 0, storage.ErrUnavailable
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT (SELECT COUNT(*) FROM player_stats ps2 WHERE ps2.total_rolls > ps.total_rolls) + 1
		   FROM player_stats ps
		  WHERE ps.actor_id = ?`,
		actorID,
	)
	var rank int
	if err := row.Scan(&rank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get rank: %w", err)
	}
	return rank, nil
}

var _ storage.RollStore = (*Store)(nil)
