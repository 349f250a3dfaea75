// service содержит логику сбора: обход постов и комментариев страницы через
// Graph API, нормализацию, обогащение и запись в хранилище документов.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/fb-collector/internal/config"
	"github.com/pribylovaa/fb-collector/internal/graph"
	"github.com/pribylovaa/fb-collector/internal/metrics"
	"github.com/pribylovaa/fb-collector/internal/models"
	"github.com/pribylovaa/fb-collector/internal/storage"
)

var (
	// ErrTransport — сбой запроса к Graph API или к странице статьи.
	ErrTransport = errors.New("transport error")
	// ErrMalformedRecord — в объекте Graph API нет обязательного поля.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrParse — URL статьи нужного домена не разбирается.
	ErrParse = errors.New("parse error")
	// ErrStorage — сбой хранилища.
	ErrStorage = errors.New("storage error")
)

// Graph — используемая часть клиента Graph API.
type Graph interface {
	graph.Fetcher
	Object(ctx context.Context, id string, params url.Values) (json.RawMessage, error)
}

// Enricher возвращает поля статьи по ссылке поста; nil без ошибки — обогащения нет.
type Enricher interface {
	Enrich(ctx context.Context, rawURL string) (*models.Article, error)
}

// Service — оркестратор сбора.
type Service struct {
	graph    Graph
	enricher Enricher
	storage  storage.Storage
	metrics  *metrics.Metrics
	cfg      config.Config

	now      func() time.Time
	newRunID func() string

	mu   sync.Mutex
	last *RunStats
}

// New создаёт новый экземпляр Service. enricher и m могут быть nil.
func New(g Graph, enricher Enricher, st storage.Storage, cfg config.Config, m *metrics.Metrics) *Service {
	return &Service{
		graph:    g,
		enricher: enricher,
		storage:  st,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// RunStats — итог одного прогона.
type RunStats struct {
	RunID      string
	Since      string
	Until      string
	StartedAt  time.Time
	FinishedAt time.Time

	Posts    int
	Enriched int
	Comments int
	Replies  int
	Skipped  int

	Err error
}

// LastRun возвращает копию итога последнего прогона (nil, если прогонов не было).
func (s *Service) LastRun() *RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil
	}

	cp := *s.last

	return &cp
}

// Healthy сообщает об ошибке последнего прогона. До первого прогона — nil.
func (s *Service) Healthy() error {
	if last := s.LastRun(); last != nil {
		return last.Err
	}

	return nil
}

func (s *Service) setLast(stats *RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *stats
	s.last = &cp
}
