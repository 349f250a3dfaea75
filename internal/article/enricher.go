// article обогащает пост данными со страницы статьи издателя:
// теги, заголовок, авторы, рубрики и основная рубрика из пути URL.
package article

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/pribylovaa/fb-collector/internal/config"
	"github.com/pribylovaa/fb-collector/internal/models"
	"github.com/pribylovaa/fb-collector/pkg/log"
)

var (
	// ErrTransport — страницу статьи не удалось загрузить.
	ErrTransport = errors.New("article transport error")
	// ErrParse — URL прошёл проверку домена, но не разбирается дальше.
	ErrParse = errors.New("article url parse error")
)

// Archive — хранилище сырых HTML-страниц статей (опционально).
type Archive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Enricher загружает страницы статей одного издателя и извлекает из них поля.
//
// Особенности:
//   - URL чужого домена или пустой URL — обогащения нет, сетевого запроса нет;
//   - после каждой загрузки выдерживается пауза cfg.Delay (LimitRule коллектора);
//   - страница с неожиданной разметкой — не ошибка, поля просто пустые;
//   - ошибки архива только логируются.
type Enricher struct {
	domain    string
	mainRe    *regexp.Regexp
	collector *colly.Collector
	archive   Archive
}

// Option настраивает Enricher.
type Option func(*Enricher)

// WithTransport подменяет HTTP-транспорт коллектора.
func WithTransport(rt http.RoundTripper) Option {
	return func(e *Enricher) {
		if rt != nil {
			e.collector.WithTransport(rt)
		}
	}
}

// New создаёт Enricher. archive может быть nil.
func New(cfg config.EnricherConfig, archive Archive, opts ...Option) (*Enricher, error) {
	const op = "article/enricher/New"

	if cfg.Domain == "" {
		return nil, fmt.Errorf("%s: empty domain", op)
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.ParseHTTPErrorResponse = true

	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: cfg.Delay}); err != nil {
		return nil, fmt.Errorf("%s: limit rule: %w", op, err)
	}

	e := &Enricher{
		domain:    cfg.Domain,
		mainRe:    regexp.MustCompile(regexp.QuoteMeta(cfg.Domain) + `/([\w-]*)`),
		collector: c,
		archive:   archive,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Enrich возвращает поля статьи по ссылке поста.
// nil, nil — ссылка пустая, не разбирается или ведёт на другой домен.
func (e *Enricher) Enrich(ctx context.Context, rawURL string) (*models.Article, error) {
	const op = "article/enricher/Enrich"

	if rawURL == "" {
		return nil, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host != e.domain {
		return nil, nil
	}

	m := e.mainRe.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, fmt.Errorf("%s: %w: no section in %q", op, ErrParse, rawURL)
	}
	mainCategory := m[1]

	body, status, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}

	lg := log.From(ctx)
	if status < 200 || status > 299 {
		lg.Warn("article_http_status",
			slog.String("url", rawURL),
			slog.Int("status", status),
		)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: html: %w", op, ErrParse, err)
	}

	a := extract(doc, mainCategory)

	if e.archive != nil {
		key := ArchiveKey(mainCategory, rawURL)
		if err := e.archive.Put(ctx, key, body, "text/html; charset=utf-8"); err != nil {
			lg.Warn("article_archive_failed",
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
		}
	}

	lg.Debug("article_enriched",
		slog.String("url", rawURL),
		slog.String("main_category", a.MainCategory),
		slog.Int("tags", len(a.Tags)),
		slog.Int("authors", len(a.Authors)),
	)

	return a, nil
}

// ArchiveKey — ключ объекта архива: articles/<рубрика>/<sha256(url)>.html.
func ArchiveKey(mainCategory, rawURL string) string {
	if mainCategory == "" {
		mainCategory = "_"
	}

	sum := sha256.Sum256([]byte(rawURL))

	return "articles/" + mainCategory + "/" + hex.EncodeToString(sum[:]) + ".html"
}

// fetch загружает страницу клоном базового коллектора.
// Клоны делят транспорт и LimitRule, поэтому пауза общая для всех вызовов.
func (e *Enricher) fetch(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	c := e.collector.Clone()

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, status, err
	}

	return body, status, nil
}
