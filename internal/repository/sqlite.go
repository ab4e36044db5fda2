package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilinovom/fido5011-bot/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteRepository stores state in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)

	r := &SQLiteRepository{db: db}
	if err := r.init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id     INTEGER PRIMARY KEY,
		addr        TEXT,
		descr       TEXT,
		last_seen   INTEGER NOT NULL,
		short_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS settings (
		id                    INTEGER PRIMARY KEY CHECK (id = 1),
		announcement_interval INTEGER NOT NULL
	);`)
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, userID int64) (*model.UserState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, addr, descr, last_seen, short_count FROM users WHERE user_id=?`, userID)
	return scanState(row)
}

func (r *SQLiteRepository) Create(ctx context.Context, s *model.UserState) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, addr, descr, last_seen, short_count) VALUES (?,?,?,?,?)
		 ON CONFLICT(user_id) DO NOTHING`,
		s.UserID, nullable(s.Addr), nullable(s.Descr), s.LastSeen, s.ShortCount)
	return err
}

func (r *SQLiteRepository) UpdateSeen(ctx context.Context, userID, lastSeen int64, shortCount int) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET last_seen=?, short_count=? WHERE user_id=?`, lastSeen, shortCount, userID))
}

func (r *SQLiteRepository) UpdateAddr(ctx context.Context, userID int64, addr string) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET addr=? WHERE user_id=?`, addr, userID))
}

func (r *SQLiteRepository) UpdateDescr(ctx context.Context, userID int64, descr string) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET descr=? WHERE user_id=?`, descr, userID))
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*model.UserState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, addr, descr, last_seen, short_count FROM users`)
	if err != nil {
		return nil, err
	}
	return scanStates(rows)
}

func (r *SQLiteRepository) GetInterval(ctx context.Context) (int64, error) {
	return scanInterval(r.db.QueryRowContext(ctx, `SELECT announcement_interval FROM settings WHERE id=1`))
}

func (r *SQLiteRepository) SaveInterval(ctx context.Context, seconds int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, announcement_interval) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET announcement_interval=excluded.announcement_interval`, seconds)
	return err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
