// mongo — реализация storage.Storage на MongoDB: коллекции posts и comments.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/fb-collector/internal/config"
	"github.com/pribylovaa/fb-collector/internal/storage"
)

const defaultDBName = "facebook"

// Mongo — тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	posts    *mongodriver.Collection
	comments *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение и создаёт индексы.
// Имя БД берётся из пути URI, иначе из cfg.Database.
func New(ctx context.Context, cfg config.DBConfig) (*Mongo, error) {
	const op = "storage/mongo/New"

	if cfg.URL == "" {
		return nil, fmt.Errorf("%s: empty db url", op)
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := cli.Database(databaseName(cfg.URL, cfg.Database))

	m := &Mongo{
		client:   cli,
		db:       db,
		posts:    db.Collection(storage.PostsCollection),
		comments: db.Collection(storage.CommentsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

// Close отключается от MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes создаёт неуникальные индексы для выборок по идентификаторам и прогонам.
// Уникальности нет: повторные прогоны пишут те же post_id заново.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	postIdx := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "post_id", Value: 1}},
			Options: options.Index().SetName("post_id"),
		},
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetName("run_id"),
		},
	}

	commentIdx := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "comment_id", Value: 1}},
			Options: options.Index().SetName("comment_id"),
		},
		{
			Keys:    bson.D{{Key: "post_id", Value: 1}, {Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("post_parent"),
		},
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetName("run_id"),
		},
	}

	if _, err := m.posts.Indexes().CreateMany(ctx, postIdx); err != nil {
		return fmt.Errorf("ensure posts indexes: %w", err)
	}

	if _, err := m.comments.Indexes().CreateMany(ctx, commentIdx); err != nil {
		return fmt.Errorf("ensure comments indexes: %w", err)
	}

	return nil
}

// databaseName извлекает имя БД из пути mongodb URI, иначе возвращает fallback.
func databaseName(uri, fallback string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	if fallback != "" {
		return fallback
	}

	return defaultDBName
}

var _ storage.Storage = (*Mongo)(nil)
