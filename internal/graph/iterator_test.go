package graph_test

// Тесты итератора connection (internal/graph/iterator.go) на моке Fetcher.
//
//	mockgen -source=./internal/graph/client.go -destination=./mocks/graph.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/fb-collector/internal/graph"
	"github.com/pribylovaa/fb-collector/mocks"
	"github.com/stretchr/testify/require"
)

// page — страница с элементами {"id": ...} и ссылкой продолжения.
func page(t *testing.T, next string, ids ...string) *graph.Page {
	t.Helper()

	p := &graph.Page{Paging: graph.Paging{Next: next}}
	for _, id := range ids {
		raw, err := json.Marshal(map[string]string{"id": id})
		require.NoError(t, err)
		p.Data = append(p.Data, raw)
	}

	return p
}

// drain вычитывает итератор до конца и возвращает id элементов.
func drain(t *testing.T, it *graph.Iterator) []string {
	t.Helper()

	var ids []string
	for it.Next(context.Background()) {
		var v struct {
			ID string `json:"id"`
		}
		require.NoError(t, it.Decode(&v))
		ids = append(ids, v.ID)
	}

	return ids
}

func TestIterator_SinglePage(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	params := url.Values{"limit": {"100"}}
	f.EXPECT().
		Connections(gomock.Any(), "42", "posts", params).
		Return(page(t, "", "a", "b", "c"), nil).
		Times(1)

	it := graph.NewIterator(f, "42", "posts", params, 0)

	require.Equal(t, []string{"a", "b", "c"}, drain(t, it))
	require.NoError(t, it.Err())
	require.Equal(t, 1, it.Pages())

	// После конца последовательности новых запросов нет.
	require.False(t, it.Next(context.Background()))
}

func TestIterator_ChainedPages_ExactlyNFetches(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	first := url.Values{"limit": {"2"}, "fields": {"id"}}
	second := url.Values{"limit": {"2"}, "fields": {"id"}, "after": {"c1"}}
	third := url.Values{"limit": {"2"}, "fields": {"id"}, "after": {"c2"}}

	gomock.InOrder(
		f.EXPECT().Connections(gomock.Any(), "1", "comments", first).
			Return(page(t, "https://graph.facebook.com/v2.8/1/comments?access_token=SECRET&limit=2&fields=id&after=c1", "a", "b"), nil),
		f.EXPECT().Connections(gomock.Any(), "1", "comments", second).
			Return(page(t, "https://graph.facebook.com/v2.8/1/comments?access_token=SECRET&limit=2&fields=id&after=c2", "c", "d"), nil),
		f.EXPECT().Connections(gomock.Any(), "1", "comments", third).
			Return(page(t, "", "e"), nil),
	)

	it := graph.NewIterator(f, "1", "comments", first, 0)

	require.Equal(t, []string{"a", "b", "c", "d", "e"}, drain(t, it))
	require.NoError(t, it.Err())
	require.Equal(t, 3, it.Pages())
}

func TestIterator_EmptyPageWithNext_Continues(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	gomock.InOrder(
		f.EXPECT().Connections(gomock.Any(), "1", "posts", url.Values{}).
			Return(page(t, "https://x/?after=p2"), nil),
		f.EXPECT().Connections(gomock.Any(), "1", "posts", url.Values{"after": {"p2"}}).
			Return(page(t, "", "z"), nil),
	)

	it := graph.NewIterator(f, "1", "posts", nil, 0)

	require.Equal(t, []string{"z"}, drain(t, it))
	require.NoError(t, it.Err())
}

func TestIterator_PageLimit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	gomock.InOrder(
		f.EXPECT().Connections(gomock.Any(), "1", "posts", url.Values{}).
			Return(page(t, "https://x/?after=p2", "a"), nil),
		f.EXPECT().Connections(gomock.Any(), "1", "posts", url.Values{"after": {"p2"}}).
			Return(page(t, "https://x/?after=p3", "b"), nil),
	)

	it := graph.NewIterator(f, "1", "posts", url.Values{}, 2)

	require.Equal(t, []string{"a", "b"}, drain(t, it))
	require.ErrorIs(t, it.Err(), graph.ErrPageLimit)
	require.Equal(t, 2, it.Pages())
}

func TestIterator_CursorLoop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	params := url.Values{"after": {"same"}}
	f.EXPECT().
		Connections(gomock.Any(), "1", "posts", params).
		Return(page(t, "https://x/?access_token=T&after=same", "a"), nil).
		Times(1)

	it := graph.NewIterator(f, "1", "posts", params, 0)

	require.Equal(t, []string{"a"}, drain(t, it))
	require.ErrorIs(t, it.Err(), graph.ErrCursorLoop)
}

func TestIterator_FetchError_StopsAfterYieldedItems(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	boom := errors.New("boom")
	gomock.InOrder(
		f.EXPECT().Connections(gomock.Any(), "1", "posts", gomock.Any()).
			Return(page(t, "https://x/?after=p2", "a"), nil),
		f.EXPECT().Connections(gomock.Any(), "1", "posts", gomock.Any()).
			Return(nil, boom),
	)

	it := graph.NewIterator(f, "1", "posts", nil, 0)

	require.Equal(t, []string{"a"}, drain(t, it))
	require.ErrorIs(t, it.Err(), boom)
	require.Nil(t, it.Item())
	require.False(t, it.Next(context.Background()))
}

func TestIterator_ParamsNotShared(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	f := mocks.NewMockFetcher(ctrl)

	params := url.Values{"limit": {"100"}}
	f.EXPECT().
		Connections(gomock.Any(), "1", "posts", url.Values{"limit": {"100"}}).
		Return(page(t, ""), nil)

	it := graph.NewIterator(f, "1", "posts", params, 0)
	params.Set("limit", "1")

	require.Empty(t, drain(t, it))
	require.NoError(t, it.Err())
}

func TestIterator_DecodeWithoutItem(t *testing.T) {
	t.Parallel()

	it := graph.NewIterator(nil, "1", "posts", nil, 0)

	var v map[string]any
	require.Error(t, it.Decode(&v))
}
