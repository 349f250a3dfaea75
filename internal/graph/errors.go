package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport — запрос не удалось выполнить или разобрать ответ.
	ErrTransport = errors.New("graph transport error")
	// ErrNotJSON — ответ без JSON content-type; тело не декодируется.
	ErrNotJSON = fmt.Errorf("%w: response is not json", ErrTransport)
	// ErrPageLimit — итератор упёрся в лимит страниц.
	ErrPageLimit = errors.New("graph page limit reached")
	// ErrCursorLoop — paging.next указывает на ту же страницу.
	ErrCursorLoop = errors.New("graph cursor loop detected")
)

// APIError — конверт ошибки Graph API ({"error": {...}}) или не-2xx ответ.
// errors.Is(err, ErrTransport) для него истинно.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	TraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api error: status=%d", e.Status)
	}

	return fmt.Sprintf("graph api error: status=%d code=%d type=%s: %s", e.Status, e.Code, e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrTransport
}
