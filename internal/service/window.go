package service

import (
	"strconv"
	"time"
)

// Window возвращает границы суточного окна [since, until) в секундах Unix.
// Окно начинается в полночь UTC за daysBack суток до now.
func Window(now time.Time, daysBack int) (since, until string) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	start := today.AddDate(0, 0, -daysBack)
	end := start.AddDate(0, 0, 1)

	return strconv.FormatInt(start.Unix(), 10), strconv.FormatInt(end.Unix(), 10)
}
