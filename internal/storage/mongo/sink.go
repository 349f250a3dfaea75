package mongo

import (
	"context"
	"fmt"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/pribylovaa/fb-collector/internal/models"
	"github.com/pribylovaa/fb-collector/internal/storage"
)

// sink — одна фаза записи: своя сессия, вставки по одной.
type sink struct {
	coll   *mongodriver.Collection
	sess   mongodriver.Session
	closed bool
}

func (m *Mongo) openSink(coll *mongodriver.Collection) (*sink, error) {
	sess, err := m.client.StartSession()
	if err != nil {
		return nil, err
	}

	return &sink{coll: coll, sess: sess}, nil
}

func (s *sink) insert(ctx context.Context, doc any) error {
	if s.closed {
		return storage.ErrClosed
	}

	_, err := s.coll.InsertOne(mongodriver.NewSessionContext(ctx, s.sess), doc)

	return err
}

func (s *sink) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.sess.EndSession(ctx)

	return nil
}

type postSink struct{ *sink }

// InsertPost вставляет документ поста.
func (s postSink) InsertPost(ctx context.Context, p models.Post) error {
	const op = "storage/mongo/InsertPost"

	if err := s.insert(ctx, p); err != nil {
		return fmt.Errorf("%s: post_id=%s: %w", op, p.PostID, err)
	}

	return nil
}

type commentSink struct{ *sink }

// InsertComment вставляет документ комментария.
func (s commentSink) InsertComment(ctx context.Context, c models.Comment) error {
	const op = "storage/mongo/InsertComment"

	if err := s.insert(ctx, c); err != nil {
		return fmt.Errorf("%s: comment_id=%s: %w", op, c.CommentID, err)
	}

	return nil
}

// OpenPosts открывает фазу записи постов.
func (m *Mongo) OpenPosts(ctx context.Context) (storage.PostSink, error) {
	const op = "storage/mongo/OpenPosts"

	s, err := m.openSink(m.posts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return postSink{s}, nil
}

// OpenComments открывает фазу записи комментариев.
func (m *Mongo) OpenComments(ctx context.Context) (storage.CommentSink, error) {
	const op = "storage/mongo/OpenComments"

	s, err := m.openSink(m.comments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return commentSink{s}, nil
}
