// graph — минимальный клиент Facebook Graph API: одиночные запросы объектов
// и connection-страниц плюс итератор по всем страницам connection.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/fb-collector/internal/config"
	"github.com/pribylovaa/fb-collector/pkg/log"
	"github.com/pribylovaa/fb-collector/pkg/redact"
)

// Виды запросов для метрик.
const (
	kindObject     = "object"
	kindConnection = "connection"
)

// Observer принимает наблюдения о запросах (реализуется internal/metrics).
type Observer interface {
	ObserveGraphRequest(kind, outcome string, d time.Duration)
}

// Fetcher — одна страница connection; реализуется Client, подменяется в тестах.
type Fetcher interface {
	Connections(ctx context.Context, id, connection string, params url.Values) (*Page, error)
}

// Client — клиент Graph API.
//
// Контракт:
//   - access_token из конфигурации подставляется, если его нет в params; params не мутируются;
//   - после каждого запроса (в том числе неудачного) выдерживается пауза cfg.Delay;
//   - тело декодируется только при JSON content-type, иначе ErrNotJSON;
//   - повторов нет: любая ошибка сразу возвращается вызывающему.
type Client struct {
	baseURL string
	version string
	token   string
	delay   time.Duration

	http     *http.Client
	sleep    func(ctx context.Context, d time.Duration) error
	observer Observer
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (таймауты, транспорт в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics подключает учёт запросов.
func WithMetrics(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithSleep подменяет функцию паузы между запросами.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// New создаёт клиента по конфигурации.
func New(cfg config.GraphConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		version: "v" + strings.TrimPrefix(cfg.Version, "v"),
		token:   cfg.AccessToken,
		delay:   cfg.Delay,
		http:    &http.Client{Timeout: cfg.Timeout},
		sleep:   sleepCtx,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Object запрашивает один объект: GET {base}/v{version}/{id}.
// Возвращает тело ответа как есть.
func (c *Client) Object(ctx context.Context, id string, params url.Values) (json.RawMessage, error) {
	const op = "graph/client/Object"

	body, err := c.get(ctx, kindObject, url.PathEscape(id), params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: %w: invalid json body", op, ErrTransport)
	}

	return json.RawMessage(body), nil
}

// Connections запрашивает одну страницу connection: GET {base}/v{version}/{id}/{connection}.
func (c *Client) Connections(ctx context.Context, id, connection string, params url.Values) (*Page, error) {
	const op = "graph/client/Connections"

	body, err := c.get(ctx, kindConnection, url.PathEscape(id)+"/"+url.PathEscape(connection), params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%s: %w: decode page: %w", op, ErrTransport, err)
	}

	return &page, nil
}

// get выполняет запрос и выдерживает паузу после него.
func (c *Client) get(ctx context.Context, kind, path string, params url.Values) ([]byte, error) {
	body, err := c.roundTrip(ctx, kind, path, params)

	if serr := c.sleep(ctx, c.delay); serr != nil && err == nil {
		return nil, serr
	}

	return body, err
}

func (c *Client) roundTrip(ctx context.Context, kind, path string, params url.Values) ([]byte, error) {
	q := c.withToken(params)
	target := c.baseURL + "/" + c.version + "/" + path + "?" + q.Encode()

	lg := log.From(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: new_request: %w", ErrTransport, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(kind, "error", time.Since(start))
		terr := transportErr(err)
		lg.Warn("graph_http_error",
			slog.String("url", redact.URL(target)),
			slog.String("err", terr.Error()),
		)
		return nil, terr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(kind, "error", elapsed)
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	lg.Debug("graph_request",
		slog.String("url", redact.URL(target)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", elapsed),
	)

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "json") {
		c.observe(kind, "error", elapsed)
		return nil, fmt.Errorf("%w: status=%d content_type=%q", ErrNotJSON, resp.StatusCode, ct)
	}

	if apiErr := parseAPIError(resp.StatusCode, body); apiErr != nil {
		c.observe(kind, "error", elapsed)
		return nil, apiErr
	}

	c.observe(kind, "ok", elapsed)

	return body, nil
}

// withToken возвращает копию params с access_token из конфигурации, если его там нет.
func (c *Client) withToken(params url.Values) url.Values {
	q := cloneValues(params)

	if _, ok := q["access_token"]; !ok && c.token != "" {
		q.Set("access_token", c.token)
	}

	return q
}

func (c *Client) observe(kind, outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveGraphRequest(kind, outcome, d)
	}
}

// parseAPIError возвращает *APIError для не-2xx ответа или тела с ключом error.
func parseAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error *APIError `json:"error"`
	}

	// Тело может быть массивом или скаляром; это не ошибка API.
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		_ = json.Unmarshal(body, &envelope)
	}

	if envelope.Error != nil {
		envelope.Error.Status = status
		return envelope.Error
	}

	if status < 200 || status > 299 {
		return &APIError{Status: status}
	}

	return nil
}

// transportErr убирает токен из текста ошибки: *url.Error содержит полный URL запроса.
func transportErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %s %q: %w", ErrTransport, ue.Op, redact.URL(ue.URL), ue.Err)
	}

	return fmt.Errorf("%w: %w", ErrTransport, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
