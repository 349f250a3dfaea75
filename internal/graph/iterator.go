package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Iterator — ленивый pull-итератор по элементам connection через все страницы.
//
// Использование:
//
//	it := graph.NewIterator(client, pageID, "posts", params, maxPages)
//	for it.Next(ctx) {
//		var p graph.RawPost
//		if err := it.Decode(&p); err != nil { ... }
//	}
//	if err := it.Err(); err != nil { ... }
//
// Страница запрашивается только когда элементы предыдущей исчерпаны.
// Продолжение берётся из paging.next; access_token из него выбрасывается,
// Fetcher подставит свой. Итератор не перематывается: для повторного
// прохода создаётся новый.
type Iterator struct {
	f          Fetcher
	id         string
	connection string
	params     url.Values
	maxPages   int

	page  *Page
	idx   int
	pages int
	item  json.RawMessage
	done  bool
	err   error
}

// NewIterator создаёт итератор. maxPages <= 0 — без ограничения числа страниц.
func NewIterator(f Fetcher, id, connection string, params url.Values, maxPages int) *Iterator {
	return &Iterator{
		f:          f,
		id:         id,
		connection: connection,
		params:     cloneValues(params),
		maxPages:   maxPages,
	}
}

// Next продвигает итератор к следующему элементу.
// false — последовательность закончилась или произошла ошибка (см. Err).
func (it *Iterator) Next(ctx context.Context) bool {
	const op = "graph/iterator/Next"

	if it.done || it.err != nil {
		return false
	}

	for {
		if it.page != nil && it.idx < len(it.page.Data) {
			it.item = it.page.Data[it.idx]
			it.idx++
			return true
		}

		if it.page != nil {
			next := it.page.Paging.Next
			if next == "" {
				it.finish()
				return false
			}

			params, err := nextParams(next)
			if err != nil {
				it.fail(fmt.Errorf("%s: %w: bad paging.next: %w", op, ErrTransport, err))
				return false
			}

			if params.Encode() == it.params.Encode() {
				it.fail(fmt.Errorf("%s: %s/%s: %w", op, it.id, it.connection, ErrCursorLoop))
				return false
			}

			it.params = params
		}

		if it.maxPages > 0 && it.pages >= it.maxPages {
			it.fail(fmt.Errorf("%s: %s/%s after %d pages: %w", op, it.id, it.connection, it.pages, ErrPageLimit))
			return false
		}

		page, err := it.f.Connections(ctx, it.id, it.connection, it.params)
		if err != nil {
			it.fail(fmt.Errorf("%s: %w", op, err))
			return false
		}

		if page == nil {
			page = &Page{}
		}

		it.pages++
		it.page = page
		it.idx = 0
	}
}

// Item возвращает текущий элемент в сыром виде.
func (it *Iterator) Item() json.RawMessage {
	return it.item
}

// Decode декодирует текущий элемент в v.
func (it *Iterator) Decode(v any) error {
	const op = "graph/iterator/Decode"

	if it.item == nil {
		return fmt.Errorf("%s: no current item", op)
	}

	if err := json.Unmarshal(it.item, v); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}

	return nil
}

// Err возвращает ошибку, остановившую итерацию.
func (it *Iterator) Err() error {
	return it.err
}

// Pages возвращает число запрошенных страниц.
func (it *Iterator) Pages() int {
	return it.pages
}

func (it *Iterator) finish() {
	it.done = true
	it.item = nil
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.item = nil
}

// nextParams разбирает paging.next в параметры следующего запроса без access_token.
func nextParams(next string) (url.Values, error) {
	u, err := url.Parse(next)
	if err != nil {
		return nil, err
	}

	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, err
	}

	q.Del("access_token")

	return q, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}

	return out
}
