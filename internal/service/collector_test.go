package service

// Тесты оркестратора сбора (internal/service/collector.go).
//
//  Проверяем:
//  - параметры запросов постов (окно, limit, fields) и пагинацию;
//  - подмешивание реакций и обогащение (сценарий со статьёй Guardian);
//  - двухуровневый обход комментариев: ответы только при comment_count > 0, parent_id у ответов;
//  - политику для записей без обязательных полей (прервать или пропустить);
//  - маппинг ошибок graph/article/storage -> service.
//
//  Моки хранилища:
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/fb-collector/internal/article"
	"github.com/pribylovaa/fb-collector/internal/config"
	"github.com/pribylovaa/fb-collector/internal/graph"
	"github.com/pribylovaa/fb-collector/internal/metrics"
	"github.com/pribylovaa/fb-collector/internal/models"
	"github.com/pribylovaa/fb-collector/mocks"
)

const testPageID = "10513336322"

var fixedNow = time.Date(2020, 1, 7, 12, 0, 0, 0, time.UTC)

// reactionsJSON — ответ запроса реакций поста в порядке total, like, love, wow, haha, sad, angry, thankful.
func reactionsJSON(total, like, love, wow, haha, sad, angry, thankful int) string {
	sum := func(n int) string {
		return fmt.Sprintf(`{"data":[],"summary":{"total_count":%d}}`, n)
	}

	return fmt.Sprintf(`{"id":"x","total":%s,"like":%s,"love":%s,"wow":%s,"haha":%s,"sad":%s,"angry":%s,"thankful":%s}`,
		sum(total), sum(like), sum(love), sum(wow), sum(haha), sum(sad), sum(angry), sum(thankful))
}

func postJSON(id, link string, comments int) string {
	return fmt.Sprintf(`{"id":%q,"message":"msg %s","created_time":"2020-01-01T00:00:00+0000","link":%q,"comments":{"data":[],"summary":{"total_count":%d}}}`,
		id, id, link, comments)
}

func commentJSON(id string, replies int, parent string) string {
	p := ""
	if parent != "" {
		p = fmt.Sprintf(`,"parent":{"id":%q}`, parent)
	}

	return fmt.Sprintf(`{"id":%q,"created_time":"2020-01-01T01:00:00+0000","comment_count":%d,"like_count":1,"message":"text %s","from":{"id":"u","name":"User"}%s}`,
		id, replies, id, p)
}

type connCall struct {
	id     string
	conn   string
	params url.Values
}

// fakeGraph отдаёт заранее заданные страницы connection; продолжение кодируется в after=pN.
type fakeGraph struct {
	mu       sync.Mutex
	conns    map[string][][]string
	objects  map[string]string
	connErr  map[string]error
	onConn   func()
	calls    []connCall
	objCalls []connCall
}

func (f *fakeGraph) Connections(_ context.Context, id, conn string, params url.Values) (*graph.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, connCall{id: id, conn: conn, params: params})
	if f.onConn != nil {
		f.onConn()
	}

	key := id + "/" + conn
	if err := f.connErr[key]; err != nil {
		return nil, err
	}

	idx := 0
	if a := params.Get("after"); a != "" {
		idx, _ = strconv.Atoi(strings.TrimPrefix(a, "p"))
	}

	pages := f.conns[key]
	page := &graph.Page{}
	if idx < len(pages) {
		for _, item := range pages[idx] {
			page.Data = append(page.Data, json.RawMessage(item))
		}
	}

	if idx+1 < len(pages) {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("after", fmt.Sprintf("p%d", idx+1))
		q.Set("access_token", "T")
		page.Paging.Next = "https://graph.facebook.com/v2.8/" + key + "?" + q.Encode()
	}

	return page, nil
}

func (f *fakeGraph) Object(_ context.Context, id string, params url.Values) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.objCalls = append(f.objCalls, connCall{id: id, params: params})

	if body, ok := f.objects[id]; ok {
		return json.RawMessage(body), nil
	}

	return json.RawMessage(reactionsJSON(0, 0, 0, 0, 0, 0, 0, 0)), nil
}

// callsTo возвращает вызовы connection для объекта id.
func (f *fakeGraph) callsTo(id, conn string) []connCall {
	var out []connCall
	for _, c := range f.calls {
		if c.id == id && c.conn == conn {
			out = append(out, c)
		}
	}

	return out
}

// stubEnricher — Enricher с заранее заданными ответами.
type stubEnricher struct {
	res   map[string]*models.Article
	err   error
	calls []string
}

func (e *stubEnricher) Enrich(_ context.Context, rawURL string) (*models.Article, error) {
	e.calls = append(e.calls, rawURL)
	if e.err != nil {
		return nil, e.err
	}

	return e.res[rawURL], nil
}

// captured — записи, дошедшие до хранилища.
type captured struct {
	posts    []models.Post
	comments []models.Comment
}

// expectFullRun ожидает обе фазы записи и собирает вставленные записи.
func expectFullRun(ctrl *gomock.Controller) (*mocks.MockStorage, *captured) {
	st := mocks.NewMockStorage(ctrl)
	ps := mocks.NewMockPostSink(ctrl)
	cs := mocks.NewMockCommentSink(ctrl)
	got := &captured{}

	gomock.InOrder(
		st.EXPECT().OpenPosts(gomock.Any()).Return(ps, nil),
		ps.EXPECT().Close(gomock.Any()).Return(nil),
		st.EXPECT().OpenComments(gomock.Any()).Return(cs, nil),
		cs.EXPECT().Close(gomock.Any()).Return(nil),
	)

	ps.EXPECT().InsertPost(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p models.Post) error {
			got.posts = append(got.posts, p)
			return nil
		}).AnyTimes()

	cs.EXPECT().InsertComment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Comment) error {
			got.comments = append(got.comments, c)
			return nil
		}).AnyTimes()

	return st, got
}

func newTestService(g Graph, e Enricher, st *mocks.MockStorage, mut func(*config.Config)) *Service {
	cfg := config.Config{
		Graph: config.GraphConfig{
			PageID:   testPageID,
			PageSize: 100,
			MaxPages: 50,
		},
		Collect: config.CollectConfig{DaysBack: 6},
	}
	if mut != nil {
		mut(&cfg)
	}

	s := New(g, e, st, cfg, metrics.New(prometheus.NewRegistry()))
	s.now = func() time.Time { return fixedNow }
	s.newRunID = func() string { return "run-1" }

	return s
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestCollect_GuardianExample(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {{`{"id":"1_2","message":"hi","created_time":"2020-01-01T00:00:00+0000","link":"https://www.theguardian.com/world/foo","comments":{"summary":{"total_count":0}}}`}},
		},
	}

	var pageRequests int
	enricher, err := article.New(config.EnricherConfig{Domain: "www.theguardian.com", Timeout: time.Second}, nil,
		article.WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			pageRequests++
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"text/html; charset=utf-8"}},
				Body:       io.NopCloser(strings.NewReader(`<html><body><h1 itemprop="headline">Foo happened</h1></body></html>`)),
				Request:    r,
			}, nil
		})))
	require.NoError(t, err)

	st, got := expectFullRun(ctrl)
	s := newTestService(g, enricher, st, nil)

	stats, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Posts)
	require.Equal(t, 1, stats.Enriched)
	require.Equal(t, 1, pageRequests)

	require.Len(t, got.posts, 1)
	p := got.posts[0]
	require.Equal(t, "1_2", p.PostID)
	require.Equal(t, "https://www.theguardian.com/world/foo", p.ArticleURL)
	require.Equal(t, int64(0), p.CommentCount)
	require.Nil(t, p.ShareCount)
	require.Equal(t, models.Reactions{}, p.Reactions)
	require.Equal(t, "Foo happened", p.ArticleTitle)
	require.Equal(t, "world", p.MainCategory)
	require.Equal(t, "run-1", p.RunID)
	require.True(t, p.CollectedAt.Equal(fixedNow))

	// Реакции запрошены отдельным запросом объекта поста.
	require.Len(t, g.objCalls, 1)
	require.Equal(t, "1_2", g.objCalls[0].id)
	require.Equal(t, reactionFields, g.objCalls[0].params.Get("fields"))

	// Комментарии поста запрашиваются всегда, ответов нет.
	require.Len(t, g.callsTo("1_2", "comments"), 1)
	require.Empty(t, got.comments)
}

func TestCollect_PostsQueryAndPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {
				{postJSON("1_1", "", 0), postJSON("1_2", "https://example.com/x", 0)},
				{postJSON("1_3", "", 0)},
			},
		},
	}
	e := &stubEnricher{}
	st, got := expectFullRun(ctrl)
	s := newTestService(g, e, st, nil)

	_, err := s.Collect(context.Background())
	require.NoError(t, err)

	calls := g.callsTo(testPageID, "posts")
	require.Len(t, calls, 2)

	first := calls[0].params
	since, until := Window(fixedNow, 6)
	require.Equal(t, since, first.Get("since"))
	require.Equal(t, until, first.Get("until"))
	require.Equal(t, "100", first.Get("limit"))
	require.Equal(t, postFields, first.Get("fields"))
	require.Empty(t, first.Get("access_token"))

	require.Equal(t, "p1", calls[1].params.Get("after"))
	require.Empty(t, calls[1].params.Get("access_token"))

	var ids []string
	for _, p := range got.posts {
		ids = append(ids, p.PostID)
	}
	require.Equal(t, []string{"1_1", "1_2", "1_3"}, ids)
	require.Equal(t, []string{"", "https://example.com/x", ""}, e.calls)
}

func TestCollect_TwoLevelCommentWalk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {{postJSON("1_2", "", 3), postJSON("1_3", "", 1)}},
			"1_2/comments":        {{commentJSON("c1", 0, ""), commentJSON("c2", 2, "")}},
			"c2/comments":         {{commentJSON("r1", 0, "c2")}, {commentJSON("r2", 0, "c2")}},
			"1_3/comments":        {{commentJSON("c3", 0, "")}},
		},
	}
	st, got := expectFullRun(ctrl)
	s := newTestService(g, &stubEnricher{}, st, nil)

	stats, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, stats.Comments)
	require.Equal(t, 2, stats.Replies)

	var ids []string
	for _, c := range got.comments {
		ids = append(ids, c.CommentID)
	}
	require.Equal(t, []string{"c1", "c2", "r1", "r2", "c3"}, ids)

	for _, c := range got.comments[:4] {
		require.Equal(t, "1_2", c.PostID)
		require.Equal(t, "run-1", c.RunID)
	}
	require.Equal(t, "1_3", got.comments[4].PostID)

	require.Empty(t, got.comments[0].ParentID)
	require.Equal(t, "c2", got.comments[2].ParentID)
	require.Equal(t, "c2", got.comments[3].ParentID)

	// comment_count == 0 -> ответы не запрашиваются.
	require.Empty(t, g.callsTo("c1", "comments"))
	require.Empty(t, g.callsTo("c3", "comments"))

	// comment_count > 0 -> один обход ответов (две страницы) с полем parent.
	replyCalls := g.callsTo("c2", "comments")
	require.Len(t, replyCalls, 2)
	require.Equal(t, replyFields, replyCalls[0].params.Get("fields"))
	require.Equal(t, commentFields, g.callsTo("1_2", "comments")[0].params.Get("fields"))
}

func TestCollect_MalformedComment_AbortsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {{postJSON("1_2", "", 1)}},
			"1_2/comments":        {{`{"id":"c1","created_time":"2020-01-01T01:00:00+0000","comment_count":0,"like_count":0,"from":{"id":"u","name":"U"}}`}},
		},
	}

	st := mocks.NewMockStorage(ctrl)
	ps := mocks.NewMockPostSink(ctrl)
	st.EXPECT().OpenPosts(gomock.Any()).Return(ps, nil)
	ps.EXPECT().InsertPost(gomock.Any(), gomock.Any()).Return(nil)
	ps.EXPECT().Close(gomock.Any()).Return(nil)

	s := newTestService(g, &stubEnricher{}, st, nil)

	_, err := s.Collect(context.Background())
	require.ErrorIs(t, err, ErrMalformedRecord)

	var me *MalformedRecordError
	require.True(t, errors.As(err, &me))
	require.Equal(t, []string{"message"}, me.Fields)

	require.ErrorIs(t, s.Healthy(), ErrMalformedRecord)
}

func TestCollect_MalformedRecords_Skipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {{
				`{"id":"1_1","created_time":"2020-01-01T00:00:00+0000","comments":{"summary":{"total_count":0}}}`,
				postJSON("1_2", "", 2),
			}},
			"1_2/comments": {{
				`{"id":"c1","created_time":"2020-01-01T01:00:00+0000","comment_count":3,"like_count":0,"from":{"id":"u","name":"U"}}`,
				commentJSON("c2", 0, ""),
			}},
		},
	}
	st, got := expectFullRun(ctrl)
	s := newTestService(g, &stubEnricher{}, st, func(c *config.Config) {
		c.Collect.SkipMalformed = true
	})

	stats, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Skipped)

	require.Len(t, got.posts, 1)
	require.Equal(t, "1_2", got.posts[0].PostID)
	require.Len(t, got.comments, 1)
	require.Equal(t, "c2", got.comments[0].CommentID)

	// У пропущенного комментария ответы не обходятся.
	require.Empty(t, g.callsTo("c1", "comments"))
}

func TestCollect_TransportError_NoStorageCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		connErr: map[string]error{
			testPageID + "/posts": fmt.Errorf("graph/client/Connections: %w", graph.ErrTransport),
		},
	}
	st := mocks.NewMockStorage(ctrl)
	s := newTestService(g, &stubEnricher{}, st, nil)

	require.NoError(t, s.Healthy())

	stats, err := s.Collect(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, graph.ErrTransport)
	require.NotNil(t, stats)

	last := s.LastRun()
	require.NotNil(t, last)
	require.Equal(t, "run-1", last.RunID)
	require.Error(t, s.Healthy())
}

func TestCollect_EnrichmentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"parse", fmt.Errorf("article: %w", article.ErrParse), ErrParse},
		{"transport", fmt.Errorf("article: %w", article.ErrTransport), ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			g := &fakeGraph{
				conns: map[string][][]string{
					testPageID + "/posts": {{postJSON("1_2", "https://www.theguardian.com", 0)}},
				},
			}
			st := mocks.NewMockStorage(ctrl)
			s := newTestService(g, &stubEnricher{err: tt.err}, st, nil)

			_, err := s.Collect(context.Background())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCollect_StorageError_ClosesSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {{postJSON("1_1", "", 0), postJSON("1_2", "", 0)}},
		},
	}

	boom := errors.New("disk full")
	st := mocks.NewMockStorage(ctrl)
	ps := mocks.NewMockPostSink(ctrl)
	st.EXPECT().OpenPosts(gomock.Any()).Return(ps, nil)
	ps.EXPECT().InsertPost(gomock.Any(), gomock.Any()).Return(boom)
	ps.EXPECT().Close(gomock.Any()).Return(nil).Times(1)

	s := newTestService(g, &stubEnricher{}, st, nil)

	_, err := s.Collect(context.Background())
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, boom)
}

func TestCollect_PageLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := &fakeGraph{
		conns: map[string][][]string{
			testPageID + "/posts": {{postJSON("1_1", "", 0)}, {postJSON("1_2", "", 0)}, {postJSON("1_3", "", 0)}},
		},
	}
	st := mocks.NewMockStorage(ctrl)
	s := newTestService(g, &stubEnricher{}, st, func(c *config.Config) {
		c.Graph.MaxPages = 2
	})

	_, err := s.Collect(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, graph.ErrPageLimit)
	require.Len(t, g.callsTo(testPageID, "posts"), 2)
}
