// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов. Главный клиент — Graph API: access_token ходит в query-строке
// каждого запроса и в paging.next, поэтому URL перед логированием обязательно
// пропускаются через URL.
package redact

import (
	"net/url"
	"strings"
)

// sensitiveParams — query-параметры, значения которых нельзя писать в логи.
var sensitiveParams = []string{"access_token", "appsecret_proof", "client_secret"}

// Token маскирует токен, оставляя первые 4 символа для отладки.
//
// Правила:
//   - пустая строка -> "";
//   - длина ≤ 8 символов -> "[REDACTED_TOKEN]";
//   - иначе "<первые 4>…[REDACTED_TOKEN]".
func Token(s string) string {
	if s == "" {
		return ""
	}

	r := []rune(s)
	if len(r) <= 8 {
		return "[REDACTED_TOKEN]"
	}

	return string(r[:4]) + "…[REDACTED_TOKEN]"
}

// Query возвращает копию параметров с замаскированными секретами.
func Query(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		cp := append([]string(nil), vals...)
		if isSensitive(k) {
			for i := range cp {
				cp[i] = Token(cp[i])
			}
		}
		out[k] = cp
	}

	return out
}

// URL маскирует секреты в query-строке ссылки и пароль в userinfo.
// Неразбираемая строка целиком заменяется на "***".
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}

	if u.RawQuery == "" {
		return u.Redacted()
	}

	u.RawQuery = Query(u.Query()).Encode()

	return u.Redacted()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveParams {
		if key == s {
			return true
		}
	}

	return false
}
