package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearch(t *testing.T, handler http.HandlerFunc) (*SearchService, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		GoogleAPIKey:    "test-key",
		GoogleSearchID:  "test-cx",
		GoogleSearchURL: srv.URL,
	}
	return NewSearchService(cfg, NewCacheService()), &calls
}

func TestSearch_MockWhenNotConfigured(t *testing.T) {
	svc := NewSearchService(&config.Config{}, NewCacheService())

	resp, err := svc.Search(context.Background(), "golang", SearchOptions{})
	require.NoError(t, err)
	assert.True(t, resp.UsingMockResults)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "golang에 대한 검색 결과 1", resp.Items[0].Title)
	assert.Equal(t, "golang - 위키백과", resp.Items[1].Title)
	assert.Equal(t, "https://via.placeholder.com/150", resp.Items[1].ImageURL())
	assert.Equal(t, "3", resp.SearchInformation.TotalResults)
	assert.Equal(t, 0.3, resp.SearchInformation.SearchTime)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := NewSearchService(&config.Config{}, NewCacheService())
	_, err := svc.Search(context.Background(), "   ", SearchOptions{})

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.InputRequiredMissing, appErr.Code)
}

func TestSearch_GoogleSuccessAndCache(t *testing.T) {
	svc, calls := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "luna", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))
		assert.Equal(t, "1", q.Get("start"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]string{
				{"title": "Luna", "link": "https://luna.example", "snippet": "moon"},
			},
			"searchInformation": map[string]interface{}{"totalResults": "1", "searchTime": 0.12},
		})
	})

	resp, err := svc.Search(context.Background(), "luna", SearchOptions{Num: 5})
	require.NoError(t, err)
	assert.False(t, resp.UsingMockResults)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Luna", resp.Items[0].Title)

	_, err = svc.Search(context.Background(), "LUNA", SearchOptions{Num: 5})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "second lookup is served from cache")
}

func TestSearch_GoogleErrorMessage(t *testing.T) {
	svc, _ := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"API key not valid. Please pass a valid API key."}}`))
	})

	_, err := svc.Search(context.Background(), "luna", SearchOptions{})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.ExternalServiceError, appErr.Code)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(err))
}

func TestSearch_GoogleErrorWithoutBody(t *testing.T) {
	svc, _ := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.Search(context.Background(), "luna", SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API 요청 실패: 503")
}

func TestSearch_BreakerOpensAndFallsBackToMock(t *testing.T) {
	svc, calls := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < breakerFailureLimit; i++ {
		_, err := svc.Search(context.Background(), "luna", SearchOptions{})
		require.Error(t, err)
	}

	resp, err := svc.Search(context.Background(), "luna", SearchOptions{})
	require.NoError(t, err)
	assert.True(t, resp.UsingMockResults)
	assert.Equal(t, int32(breakerFailureLimit), atomic.LoadInt32(calls))
	assert.Equal(t, "open", svc.Diagnostics().BreakerState)
}

func TestMockSearch_Cancelled(t *testing.T) {
	svc := NewSearchService(&config.Config{MockSearchDelay: 1 << 40}, NewCacheService())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.MockSearch(ctx, "luna")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHighlightSearchTerms(t *testing.T) {
	got := HighlightSearchTerms("Go is a Golang language", "golang is")
	assert.Equal(t, "Go is a <mark>Golang</mark> language", got)
	assert.Equal(t, "a+b", HighlightSearchTerms("a+b", "  "))
	assert.Equal(t, "<mark>c++</mark> rocks", HighlightSearchTerms("c++ rocks", "c++"))
}

func TestSortByRelevance(t *testing.T) {
	results := []models.SearchResult{
		{Title: "nothing", Snippet: "here"},
		{Title: "other", Snippet: "mentions luna"},
		{Title: "Luna moon", Snippet: "luna"},
	}
	sorted := SortByRelevance(results, "luna")
	assert.Equal(t, "Luna moon", sorted[0].Title)
	assert.Equal(t, "other", sorted[1].Title)
	assert.Equal(t, "nothing", results[0].Title, "input is not reordered")
}

func TestExtractKeyInformationAndRelevantInfo(t *testing.T) {
	mock := MockSearchResults("달")
	info := ExtractKeyInformation(mock.Items)
	require.Len(t, info, 3)
	assert.False(t, info[0].HasImage)
	assert.True(t, info[1].HasImage)

	text := ExtractRelevantInfo(mock.Items)
	assert.Contains(t, text, "달에 대한 검색 결과 1: ")
	assert.Len(t, strings.Split(text, "\n"), 3)
}

func TestSearchTrigger(t *testing.T) {
	assert.False(t, ShouldTriggerSearch("hi"))
	assert.True(t, ShouldTriggerSearch("What is the capital of France and why does it matter so much?"))
	assert.True(t, ShouldTriggerSearch("서울 날씨"))
	assert.True(t, IsQuestion("무엇을 도와줄까"))
	assert.True(t, IsQuestion("is it raining？"))
	assert.False(t, IsQuestion("I like long walks on the beach"))
	assert.True(t, IsSearchQuery("please search for the history of the roman empire in detail"))
	assert.False(t, IsSearchQuery("I really enjoyed the movie we watched together yesterday evening"))
}

func TestOptimizeQuery(t *testing.T) {
	assert.Equal(t, "is the capital of France", OptimizeQuery("What is the capital of France?"))
	assert.Equal(t, "golang generics", OptimizeQuery("please search golang   generics"))
	assert.Equal(t, "서울 맛집", OptimizeQuery("서울 맛집 검색해줘"))
	assert.Equal(t, "인공지능이란", OptimizeQuery("무엇 인공지능이란?"))
}

func TestSearch_DiagnosticsHideKey(t *testing.T) {
	svc := NewSearchService(&config.Config{GoogleAPIKey: "secret-key-123", GoogleSearchID: "cx1"}, NewCacheService())

	d := svc.Diagnostics()
	assert.True(t, d.APIKeySet)
	assert.True(t, d.IDSet)
	assert.Equal(t, 14, d.APIKeyLength)
	assert.Equal(t, 3, d.IDLength)
	assert.Equal(t, "closed", d.BreakerState)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secr")
}

func TestSearch_BreakerIgnoresCancelAndRejectedQueries(t *testing.T) {
	svc, calls := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})

	for i := 0; i < breakerFailureLimit+2; i++ {
		_, err := svc.Search(context.Background(), "luna", SearchOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key not valid")
	}
	assert.Equal(t, int32(breakerFailureLimit+2), atomic.LoadInt32(calls))
	assert.Equal(t, "closed", svc.Diagnostics().BreakerState)

	assert.True(t, breakerSuccess(context.Canceled))
	assert.True(t, breakerSuccess(fmt.Errorf("network error: %w", context.Canceled)))
	assert.False(t, breakerSuccess(&GoogleAPIError{Status: http.StatusTooManyRequests}))
	assert.False(t, breakerSuccess(&GoogleAPIError{Status: http.StatusInternalServerError}))
}
