package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ilinovom/fido5011-bot/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepository stores state in a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	r := &PostgresRepository{db: db}
	if err := r.init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return r, nil
}

func (r *PostgresRepository) init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            user_id     BIGINT PRIMARY KEY,
            addr        TEXT,
            descr       TEXT,
            last_seen   BIGINT NOT NULL,
            short_count INTEGER NOT NULL DEFAULT 0
        );
        CREATE TABLE IF NOT EXISTS settings (
            id                    SMALLINT PRIMARY KEY CHECK (id = 1),
            announcement_interval BIGINT NOT NULL
        )`)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64) (*model.UserState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, addr, descr, last_seen, short_count FROM users WHERE user_id=$1`, userID)
	return scanState(row)
}

func (r *PostgresRepository) Create(ctx context.Context, s *model.UserState) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (user_id, addr, descr, last_seen, short_count)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id) DO NOTHING`,
		s.UserID, nullable(s.Addr), nullable(s.Descr), s.LastSeen, s.ShortCount)
	return err
}

func (r *PostgresRepository) UpdateSeen(ctx context.Context, userID, lastSeen int64, shortCount int) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET last_seen=$1, short_count=$2 WHERE user_id=$3`, lastSeen, shortCount, userID))
}

func (r *PostgresRepository) UpdateAddr(ctx context.Context, userID int64, addr string) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET addr=$1 WHERE user_id=$2`, addr, userID))
}

func (r *PostgresRepository) UpdateDescr(ctx context.Context, userID int64, descr string) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE users SET descr=$1 WHERE user_id=$2`, descr, userID))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*model.UserState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, addr, descr, last_seen, short_count FROM users`)
	if err != nil {
		return nil, err
	}
	return scanStates(rows)
}

func (r *PostgresRepository) GetInterval(ctx context.Context) (int64, error) {
	return scanInterval(r.db.QueryRowContext(ctx, `SELECT announcement_interval FROM settings WHERE id=1`))
}

func (r *PostgresRepository) SaveInterval(ctx context.Context, seconds int64) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO settings (id, announcement_interval) VALUES (1, $1)
        ON CONFLICT (id) DO UPDATE SET announcement_interval=EXCLUDED.announcement_interval`, seconds)
	return err
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
