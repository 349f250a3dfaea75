package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/pribylovaa/fb-collector/internal/article"
	"github.com/pribylovaa/fb-collector/internal/graph"
	"github.com/pribylovaa/fb-collector/internal/metrics"
	"github.com/pribylovaa/fb-collector/internal/models"
	"github.com/pribylovaa/fb-collector/pkg/log"
)

// Collect выполняет один прогон сбора.
//
// Порядок:
//  1. окно [since, until) за cfg.Collect.DaysBack суток до текущей даты;
//  2. посты страницы в окне, для каждого отдельный запрос реакций и нормализация;
//  3. обогащение постов данными статьи;
//  4. запись постов по одной в порядке сбора;
//  5. для каждого поста корневые комментарии, а для комментариев с ответами ещё и ответы;
//  6. запись комментариев по одной в порядке сбора.
//
// Любая ошибка прерывает прогон; уже записанные документы остаются.
// Записи без обязательных полей при cfg.Collect.SkipMalformed пропускаются с предупреждением.
func (s *Service) Collect(ctx context.Context) (*RunStats, error) {
	const op = "service/collector/Collect"

	started := s.now().UTC()
	since, until := Window(started, s.cfg.Collect.DaysBack)

	stats := &RunStats{
		RunID:     s.newRunID(),
		Since:     since,
		Until:     until,
		StartedAt: started,
	}

	ctx = log.With(ctx, slog.String("run_id", stats.RunID))
	lg := log.From(ctx)

	lg.Info("collect_start",
		slog.String("op", op),
		slog.String("page_id", s.cfg.Graph.PageID),
		slog.String("since", since),
		slog.String("until", until),
	)

	err := s.collect(ctx, stats)

	stats.FinishedAt = s.now().UTC()
	stats.Err = err
	s.setLast(stats)

	if err != nil {
		s.metrics.RunDone(metrics.OutcomeError, stats.FinishedAt)
		lg.Error("collect_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.RunDone(metrics.OutcomeOK, stats.FinishedAt)
	lg.Info("collect_done",
		slog.String("op", op),
		slog.Int("posts", stats.Posts),
		slog.Int("enriched", stats.Enriched),
		slog.Int("comments", stats.Comments),
		slog.Int("replies", stats.Replies),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("took", stats.FinishedAt.Sub(stats.StartedAt)),
	)

	return stats, nil
}

func (s *Service) collect(ctx context.Context, stats *RunStats) error {
	lg := log.From(ctx)

	posts, err := s.collectPosts(ctx, stats)
	if err != nil {
		return err
	}
	lg.Info("posts_collected", slog.Int("count", len(posts)))

	if err := s.enrichPosts(ctx, posts, stats); err != nil {
		return err
	}

	if err := s.savePosts(ctx, posts); err != nil {
		return err
	}
	stats.Posts = len(posts)
	lg.Info("posts_saved", slog.Int("count", len(posts)))

	comments, err := s.collectComments(ctx, posts, stats)
	if err != nil {
		return err
	}
	lg.Info("comments_collected",
		slog.Int("count", len(comments)),
		slog.Int("replies", stats.Replies),
	)

	if err := s.saveComments(ctx, comments); err != nil {
		return err
	}
	stats.Comments = len(comments)
	lg.Info("comments_saved", slog.Int("count", len(comments)))

	return nil
}

// collectPosts обходит посты окна и подмешивает к каждому реакции.
func (s *Service) collectPosts(ctx context.Context, stats *RunStats) ([]models.Post, error) {
	params := url.Values{
		"since":  {stats.Since},
		"until":  {stats.Until},
		"limit":  {strconv.Itoa(s.cfg.Graph.PageSize)},
		"fields": {postFields},
	}

	it := graph.NewIterator(s.graph, s.cfg.Graph.PageID, connPosts, params, s.cfg.Graph.MaxPages)

	var posts []models.Post
	for it.Next(ctx) {
		var raw graph.RawPost
		if err := it.Decode(&raw); err != nil {
			return nil, transportErr(err)
		}

		if raw.ID != nil {
			reactions, err := s.fetchReactions(ctx, *raw.ID)
			if err != nil {
				return nil, err
			}
			raw.Reactions = reactions
		}

		p, err := ToPost(raw)
		if err != nil {
			if err := s.handleMalformed(ctx, err, stats); err != nil {
				return nil, err
			}
			continue
		}

		p.RunID = stats.RunID
		p.CollectedAt = stats.StartedAt
		posts = append(posts, p)
	}

	if err := it.Err(); err != nil {
		return nil, transportErr(err)
	}

	return posts, nil
}

// fetchReactions запрашивает восемь счётчиков реакций поста одним запросом объекта.
func (s *Service) fetchReactions(ctx context.Context, postID string) (*graph.RawReactions, error) {
	body, err := s.graph.Object(ctx, postID, url.Values{"fields": {reactionFields}})
	if err != nil {
		return nil, transportErr(err)
	}

	var r graph.RawReactions
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: reactions of %s: %w", ErrTransport, postID, err)
	}

	return &r, nil
}

// enrichPosts дополняет посты данными статей. Ошибка обогащения прерывает прогон.
func (s *Service) enrichPosts(ctx context.Context, posts []models.Post, stats *RunStats) error {
	if s.enricher == nil {
		return nil
	}

	lg := log.From(ctx)

	for i := range posts {
		a, err := s.enricher.Enrich(ctx, posts[i].ArticleURL)
		if err != nil {
			s.metrics.EnrichmentDone(metrics.OutcomeError)
			lg.Warn("enrich_failed",
				slog.String("post_id", posts[i].PostID),
				slog.String("url", posts[i].ArticleURL),
				slog.String("err", err.Error()),
			)
			return enrichErr(err)
		}

		if a == nil {
			s.metrics.EnrichmentDone(metrics.OutcomeSkipped)
			continue
		}

		posts[i].ApplyArticle(a)
		stats.Enriched++
		s.metrics.EnrichmentDone(metrics.OutcomeOK)
	}

	return nil
}

func (s *Service) savePosts(ctx context.Context, posts []models.Post) error {
	sink, err := s.storage.OpenPosts(ctx)
	if err != nil {
		return fmt.Errorf("%w: open posts: %w", ErrStorage, err)
	}

	for _, p := range posts {
		if err := sink.InsertPost(ctx, p); err != nil {
			_ = sink.Close(ctx)
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		s.metrics.RecordSaved(kindPost)
	}

	if err := sink.Close(ctx); err != nil {
		return fmt.Errorf("%w: close posts: %w", ErrStorage, err)
	}

	return nil
}

// collectComments обходит комментарии постов в исходном порядке.
// Ответы запрашиваются только у комментариев с comment_count > 0 и идут сразу за родителем.
// Глубже второго уровня обход не спускается.
func (s *Service) collectComments(ctx context.Context, posts []models.Post, stats *RunStats) ([]models.Comment, error) {
	lg := log.From(ctx)

	var out []models.Comment
	for idx, p := range posts {
		lg.Debug("comments_extract",
			slog.Int("post_index", idx),
			slog.String("post_id", p.PostID),
			slog.Int64("comment_count", p.CommentCount),
		)

		roots, err := s.walkComments(ctx, p.PostID, p.PostID, commentFields, stats)
		if err != nil {
			return nil, err
		}

		for _, c := range roots {
			out = append(out, c)

			if c.CommentCount <= 0 {
				continue
			}

			replies, err := s.walkComments(ctx, c.CommentID, p.PostID, replyFields, stats)
			if err != nil {
				return nil, err
			}

			stats.Replies += len(replies)
			out = append(out, replies...)
		}
	}

	return out, nil
}

// walkComments возвращает нормализованные комментарии connection {parentID}/comments.
func (s *Service) walkComments(ctx context.Context, parentID, postID, fields string, stats *RunStats) ([]models.Comment, error) {
	params := url.Values{
		"limit":  {strconv.Itoa(s.cfg.Graph.PageSize)},
		"fields": {fields},
	}

	it := graph.NewIterator(s.graph, parentID, connComments, params, s.cfg.Graph.MaxPages)

	var out []models.Comment
	for it.Next(ctx) {
		var raw graph.RawComment
		if err := it.Decode(&raw); err != nil {
			return nil, transportErr(err)
		}
		raw.PostID = postID

		c, err := ToComment(raw)
		if err != nil {
			if err := s.handleMalformed(ctx, err, stats); err != nil {
				return nil, err
			}
			continue
		}

		c.RunID = stats.RunID
		c.CollectedAt = stats.StartedAt
		out = append(out, c)
	}

	if err := it.Err(); err != nil {
		return nil, transportErr(err)
	}

	return out, nil
}

func (s *Service) saveComments(ctx context.Context, comments []models.Comment) error {
	sink, err := s.storage.OpenComments(ctx)
	if err != nil {
		return fmt.Errorf("%w: open comments: %w", ErrStorage, err)
	}

	for _, c := range comments {
		if err := sink.InsertComment(ctx, c); err != nil {
			_ = sink.Close(ctx)
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		s.metrics.RecordSaved(kindComment)
	}

	if err := sink.Close(ctx); err != nil {
		return fmt.Errorf("%w: close comments: %w", ErrStorage, err)
	}

	return nil
}

// handleMalformed логирует запись без обязательных полей и решает, пропустить её или прервать прогон.
func (s *Service) handleMalformed(ctx context.Context, err error, stats *RunStats) error {
	skip := s.cfg.Collect.SkipMalformed

	attrs := []any{
		slog.Bool("skip", skip),
		slog.String("err", err.Error()),
	}

	var me *MalformedRecordError
	if errors.As(err, &me) {
		attrs = append(attrs,
			slog.String("kind", me.Kind),
			slog.String("id", me.ID),
			slog.Any("fields", me.Fields),
		)
	}

	log.From(ctx).Warn("record_malformed", attrs...)

	if !skip {
		return err
	}

	stats.Skipped++

	return nil
}

// transportErr приводит ошибки Graph API к ErrTransport.
func transportErr(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// enrichErr приводит ошибки обогащения к таксономии сервиса.
func enrichErr(err error) error {
	switch {
	case errors.Is(err, article.ErrParse):
		return fmt.Errorf("%w: %w", ErrParse, err)
	case errors.Is(err, article.ErrTransport):
		return fmt.Errorf("%w: %w", ErrTransport, err)
	default:
		return err
	}
}
