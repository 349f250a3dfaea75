// minio — архив сырых HTML-страниц статей в MinIO/S3 (реализует article.Archive).
package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/fb-collector/internal/article"
	"github.com/pribylovaa/fb-collector/internal/config"
)

// Archive — адаптер MinIO для записи страниц статей.
type Archive struct {
	client *mclient.Client
	bucket string
}

// New создаёт клиента MinIO и при необходимости бакет.
// Схема endpoint (http/https) определяет Secure.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Archive, error) {
	const op = "storage/minio/New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: make bucket %q: %w", op, cfg.Bucket, err)
		}
	}

	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// Put сохраняет объект под ключом key (перезаписывает существующий).
func (a *Archive) Put(ctx context.Context, key string, body []byte, contentType string) error {
	const op = "storage/minio/Put"

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, key, err)
	}

	return nil
}

var _ article.Archive = (*Archive)(nil)
