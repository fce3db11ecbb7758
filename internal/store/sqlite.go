package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"maple-boss-api/internal/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type SQLite struct {
	DB *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "maple-boss-api.db"
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent lookups.
	db.SetMaxOpenConns(1)
	s := &SQLite{DB: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.DB.Close() }

func (s *SQLite) init() error {
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS boss_registry (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			boss_name TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			crystal_value INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(boss_name, difficulty)
		);
		CREATE TABLE IF NOT EXISTS crystal_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			boss_name TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			crystal_value INTEGER NOT NULL,
			observed_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS crystal_history_pair ON crystal_history(boss_name, difficulty, observed_at);
		CREATE TABLE IF NOT EXISTS characters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			boss_config TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		);
	`)
	return err
}

// UpsertRegistry writes the given prices and records a history row for every
// pair whose value is new or changed.
func (s *SQLite) UpsertRegistry(ctx context.Context, entries []models.RegistryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if e.BossName == "" || e.Difficulty == "" {
			return errors.New("boss name and difficulty required")
		}
		updated := e.UpdatedAt
		if updated.IsZero() {
			updated = time.Now()
		}
		var prev sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT crystal_value FROM boss_registry WHERE boss_name=? AND difficulty=?`,
			e.BossName, e.Difficulty).Scan(&prev)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO boss_registry (boss_name, difficulty, crystal_value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(boss_name, difficulty) DO UPDATE SET crystal_value=excluded.crystal_value, updated_at=excluded.updated_at`,
			e.BossName, e.Difficulty, e.CrystalValue, updated.UTC()); err != nil {
			return err
		}
		if prev.Valid && int(prev.Int64) == e.CrystalValue {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO crystal_history (boss_name, difficulty, crystal_value, observed_at) VALUES (?, ?, ?, ?)`,
			e.BossName, e.Difficulty, e.CrystalValue, updated.UTC()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) FetchBossRegistry(ctx context.Context) ([]models.RegistryEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, boss_name, difficulty, crystal_value, updated_at FROM boss_registry ORDER BY boss_name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.RegistryEntry{}
	for rows.Next() {
		var e models.RegistryEntry
		if err := rows.Scan(&e.ID, &e.BossName, &e.Difficulty, &e.CrystalValue, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) GetCrystalValue(ctx context.Context, bossName, difficulty string) (int, error) {
	var v int
	err := s.DB.QueryRowContext(ctx, `SELECT crystal_value FROM boss_registry WHERE boss_name=? AND difficulty=?`,
		bossName, difficulty).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("crystal value for %s %s: %w", difficulty, bossName, ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *SQLite) RegistryCount(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM boss_registry`).Scan(&n)
	return n, err
}

func (s *SQLite) CrystalHistory(ctx context.Context, bossName, difficulty string, limit int) ([]models.CrystalSnapshot, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT crystal_value, observed_at FROM crystal_history WHERE boss_name=? AND difficulty=? ORDER BY observed_at DESC, id DESC LIMIT ?`,
		bossName, difficulty, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CrystalSnapshot{}
	for rows.Next() {
		snap := models.CrystalSnapshot{BossName: bossName, Difficulty: difficulty}
		if err := rows.Scan(&snap.CrystalValue, &snap.ObservedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// UpsertCharacter stores the ConfigString for a character, creating the
// character with a fresh id on first save.
func (s *SQLite) UpsertCharacter(ctx context.Context, name, bossConfig string) (models.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Character{}, errors.New("character name required")
	}
	now := time.Now().UTC()
	if _, err := s.DB.ExecContext(ctx, `INSERT INTO characters (id, name, boss_config, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET boss_config=excluded.boss_config, updated_at=excluded.updated_at`,
		uuid.NewString(), name, bossConfig, now); err != nil {
		return models.Character{}, err
	}
	return s.GetCharacter(ctx, name)
}

func (s *SQLite) GetCharacter(ctx context.Context, name string) (models.Character, error) {
	var c models.Character
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, boss_config, updated_at FROM characters WHERE name=?`,
		strings.TrimSpace(name)).Scan(&c.ID, &c.Name, &c.BossConfig, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Character{}, fmt.Errorf("character %q: %w", name, ErrNotFound)
	}
	return c, err
}

func (s *SQLite) ListCharacters(ctx context.Context) ([]models.Character, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, boss_config, updated_at FROM characters ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Character{}
	for rows.Next() {
		var c models.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.BossConfig, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) DeleteCharacter(ctx context.Context, name string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM characters WHERE name=?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("character %q: %w", name, ErrNotFound)
	}
	return nil
}
