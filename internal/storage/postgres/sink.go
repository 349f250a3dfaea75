package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/fb-collector/internal/models"
	"github.com/pribylovaa/fb-collector/internal/storage"
)

// sink держит одно соединение пула на всю фазу.
type sink struct {
	conn *pgxpool.Conn
}

func (s *Storage) openSink(ctx context.Context) (*sink, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	return &sink{conn: conn}, nil
}

func (s *sink) exec(ctx context.Context, sql string, args ...any) error {
	if s.conn == nil {
		return storage.ErrClosed
	}

	_, err := s.conn.Exec(ctx, sql, args...)

	return err
}

func (s *sink) Close(_ context.Context) error {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}

	return nil
}

type postSink struct{ *sink }

// InsertPost сохраняет пост как JSONB-документ.
func (s postSink) InsertPost(ctx context.Context, p models.Post) error {
	const op = "storage/postgres/InsertPost"

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if err := s.exec(ctx, `
		INSERT INTO posts (post_id, run_id, doc)
		VALUES ($1, $2, $3)
		`, p.PostID, p.RunID, doc); err != nil {
		return fmt.Errorf("%s: post_id=%s: %w", op, p.PostID, err)
	}

	return nil
}

type commentSink struct{ *sink }

// InsertComment сохраняет комментарий как JSONB-документ.
func (s commentSink) InsertComment(ctx context.Context, c models.Comment) error {
	const op = "storage/postgres/InsertComment"

	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if err := s.exec(ctx, `
		INSERT INTO comments (comment_id, post_id, run_id, doc)
		VALUES ($1, $2, $3, $4)
		`, c.CommentID, c.PostID, c.RunID, doc); err != nil {
		return fmt.Errorf("%s: comment_id=%s: %w", op, c.CommentID, err)
	}

	return nil
}

// OpenPosts открывает фазу записи постов.
func (s *Storage) OpenPosts(ctx context.Context) (storage.PostSink, error) {
	const op = "storage/postgres/OpenPosts"

	sk, err := s.openSink(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return postSink{sk}, nil
}

// OpenComments открывает фазу записи комментариев.
func (s *Storage) OpenComments(ctx context.Context) (storage.CommentSink, error) {
	const op = "storage/postgres/OpenComments"

	sk, err := s.openSink(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return commentSink{sk}, nil
}
