package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/fb-collector/pkg/log"
)

// StartSchedule запускает прогоны сразу и затем каждые cfg.Collect.Interval.
//
// Особенности:
//   - прогоны не пересекаются: следующий тик обрабатывается только после завершения текущего;
//   - ошибка прогона логируется, расписание продолжается;
//   - останавливается по ctx.
func (s *Service) StartSchedule(ctx context.Context) error {
	const op = "service/schedule/StartSchedule"

	interval := s.cfg.Collect.Interval
	if interval <= 0 {
		return fmt.Errorf("%s: interval must be positive, got %s", op, interval)
	}

	lg := log.From(ctx)
	lg.Info("schedule_start",
		slog.String("op", op),
		slog.String("page_id", s.cfg.Graph.PageID),
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runTick(ctx, op)

	for {
		select {
		case <-ctx.Done():
			lg.Info("schedule_stop", slog.String("op", op))
			return nil
		case <-ticker.C:
			s.runTick(ctx, op)
		}
	}
}

func (s *Service) runTick(ctx context.Context, op string) {
	if ctx.Err() != nil {
		return
	}

	if _, err := s.Collect(ctx); err != nil {
		log.From(ctx).Warn("collect_tick_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}
