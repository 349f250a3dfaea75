// storage определяет контракты хранилища документов коллектора.
//
// Запись идёт фазами: посты, затем комментарии. На каждую фазу открывается
// отдельный sink; записи вставляются по одной в порядке сбора, в конце фазы
// sink закрывается. Upsert-семантики нет: каждый прогон добавляет новые документы.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/fb-collector/internal/models"
)

// Имена коллекций (таблиц).
const (
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// ErrClosed — вставка в уже закрытый sink.
var ErrClosed = errors.New("sink closed")

// PostSink принимает посты одной фазы.
type PostSink interface {
	// InsertPost сохраняет один пост.
	InsertPost(ctx context.Context, p models.Post) error
	// Close освобождает ресурсы фазы. Повторный вызов безопасен.
	Close(ctx context.Context) error
}

// CommentSink принимает комментарии одной фазы.
type CommentSink interface {
	InsertComment(ctx context.Context, c models.Comment) error
	Close(ctx context.Context) error
}

// Storage — хранилище документов.
type Storage interface {
	// OpenPosts открывает фазу записи постов.
	OpenPosts(ctx context.Context) (PostSink, error)
	// OpenComments открывает фазу записи комментариев.
	OpenComments(ctx context.Context) (CommentSink, error)
	// Close закрывает соединения хранилища.
	Close(ctx context.Context) error
}
