// postgres — реализация storage.Storage на PostgreSQL: документы хранятся в JSONB.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/fb-collector/internal/storage"
)

// schema создаётся при старте; повторный запуск безопасен.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id          BIGSERIAL PRIMARY KEY,
		post_id     TEXT        NOT NULL,
		run_id      TEXT        NOT NULL,
		doc         JSONB       NOT NULL,
		inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_post_id_idx ON posts (post_id)`,
	`CREATE INDEX IF NOT EXISTS posts_run_id_idx ON posts (run_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id          BIGSERIAL PRIMARY KEY,
		comment_id  TEXT        NOT NULL,
		post_id     TEXT        NOT NULL,
		run_id      TEXT        NOT NULL,
		doc         JSONB       NOT NULL,
		inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_comment_id_idx ON comments (comment_id)`,
	`CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id)`,
	`CREATE INDEX IF NOT EXISTS comments_run_id_idx ON comments (run_id)`,
}

// Storage — пул соединений к PostgreSQL.
type Storage struct {
	db *pgxpool.Pool
}

// New создаёт пул, проверяет соединение и применяет схему.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Storage{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// ensureSchema применяет schema. Два коллектора, стартующие одновременно, могут
// столкнуться на IF NOT EXISTS (unique_violation в pg_type, duplicate_table):
// такие ошибки означают, что объект уже создан соседом.
func (s *Storage) ensureSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			if alreadyExists(err) {
				continue
			}
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	return nil
}

func alreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.DuplicateTable, pgerrcode.DuplicateObject:
		return true
	default:
		return false
	}
}

// Close закрывает пул соединений.
func (s *Storage) Close(_ context.Context) error {
	s.db.Close()
	return nil
}

var _ storage.Storage = (*Storage)(nil)
