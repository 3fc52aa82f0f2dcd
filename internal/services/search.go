package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

const (
	searchCacheTTL      = 10 * time.Minute
	defaultSearchNum    = 10
	breakerFailureLimit = 5
	breakerOpenTimeout  = 30 * time.Second
)

type SearchOptions struct {
	Num   int // 1-10, default 10
	Start int // 1-based, default 1
	Mock  bool
}

func (o SearchOptions) normalized() SearchOptions {
	if o.Num <= 0 || o.Num > 10 {
		o.Num = defaultSearchNum
	}
	if o.Start <= 0 {
		o.Start = 1
	}
	return o
}

// GoogleAPIError is a non-2xx reply from the Custom Search API.
type GoogleAPIError struct {
	Status  int
	Message string
}

func (e *GoogleAPIError) Error() string {
	return e.Message
}

type googleErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SearchService wraps the Google Custom Search JSON API. Calls go through a
// circuit breaker; while it is open, mock results are served instead.
type SearchService struct {
	client    *resty.Client
	breaker   *gobreaker.CircuitBreaker
	apiKey    string
	searchID  string
	baseURL   string
	mockDelay time.Duration
	cache     *CacheService
}

func NewSearchService(cfg *config.Config, cache *CacheService) *SearchService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "google-custom-search",
		MaxRequests:  1,
		Timeout:      breakerOpenTimeout,
		IsSuccessful: breakerSuccess,
		ReadyToTrip:  func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureLimit
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️ Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &SearchService{
		client:    client,
		breaker:   breaker,
		apiKey:    cfg.GoogleAPIKey,
		searchID:  cfg.GoogleSearchID,
		baseURL:   cfg.GoogleSearchURL,
		mockDelay: cfg.MockSearchDelay,
		cache:     cache,
	}
}

// Configured reports whether both the API key and the search engine id are set.
func (s *SearchService) Configured() bool {
	return s.apiKey != "" && s.searchID != ""
}

// breakerSuccess keeps client disconnects and rejected queries (4xx other
// than 429) from counting as upstream failures.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *GoogleAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests
	}
	return false
}

// Search runs a query against Google, or against the mock when asked to,
// when credentials are missing, or when the breaker is open.
func (s *SearchService) Search(ctx context.Context, query string, opts SearchOptions) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "검색어가 필요합니다.")
	}
	opts = opts.normalized()

	if opts.Mock || !s.Configured() {
		return s.MockSearch(ctx, query)
	}

	cacheKey := CacheKey("search", fmt.Sprintf("%s:%d:%d", strings.ToLower(query), opts.Num, opts.Start))
	var cached models.SearchResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, query, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Printf("⚠️ Google search unavailable (%v), serving mock results", err)
			return s.MockSearch(ctx, query)
		}
		log.Printf("Google search failed for %q: %v", query, err)
		appErr := apperr.New(apperr.Classify(err), err, nil)
		appErr.Message = err.Error()
		return nil, appErr
	}

	resp := result.(*models.SearchResponse)
	if err := s.cache.SetWithTTL(ctx, cacheKey, resp, searchCacheTTL); err != nil {
		log.Printf("⚠️ Failed to cache search results: %v", err)
	}
	return resp, nil
}

func (s *SearchService) fetch(ctx context.Context, query string, opts SearchOptions) (*models.SearchResponse, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":   s.apiKey,
			"cx":    s.searchID,
			"q":     query,
			"num":   strconv.Itoa(opts.Num),
			"start": strconv.Itoa(opts.Start),
		}).
		Get(s.baseURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("network error: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		var body googleErrorBody
		msg := fmt.Sprintf("API 요청 실패: %d", resp.StatusCode())
		if json.Unmarshal(resp.Body(), &body) == nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return nil, &GoogleAPIError{Status: resp.StatusCode(), Message: msg}
	}

	var result models.SearchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if result.Items == nil {
		result.Items = []models.SearchResult{}
	}
	return &result, nil
}

// MockSearch returns three canned results templated on the query after the
// configured delay. The delay stops early if ctx is cancelled.
func (s *SearchService) MockSearch(ctx context.Context, query string) (*models.SearchResponse, error) {
	if err := sleepContext(ctx, s.mockDelay); err != nil {
		return nil, err
	}
	return MockSearchResults(query), nil
}

func MockSearchResults(query string) *models.SearchResponse {
	return &models.SearchResponse{
		Items: []models.SearchResult{
			{
				Title:       query + "에 대한 검색 결과 1",
				Link:        "https://example.com/result1",
				Snippet:     "이것은 \"" + query + "\"에 대한 첫 번째 검색 결과입니다. 여기에는 검색어와 관련된 정보가 포함되어 있습니다.",
				DisplayLink: "example.com",
			},
			{
				Title:       query + " - 위키백과",
				Link:        "https://example.com/wiki",
				Snippet:     query + "는 다양한 의미를 가질 수 있습니다. 이 페이지는 관련된 여러 주제에 대한 개요를 제공합니다.",
				DisplayLink: "example.com/wiki",
				Pagemap: &models.Pagemap{
					CSEImage: []models.CSEImage{{Src: "https://via.placeholder.com/150"}},
				},
			},
			{
				Title:       query + " 관련 최신 뉴스",
				Link:        "https://example.com/news",
				Snippet:     query + "에 대한 최신 뉴스와 업데이트를 확인하세요. 최근 개발 상황과 중요한 정보를 제공합니다.",
				DisplayLink: "example.com/news",
			},
		},
		SearchInformation: models.SearchInformation{TotalResults: "3", SearchTime: 0.3},
		UsingMockResults:  true,
	}
}

// SearchDiagnostics reports which credentials are set. Only lengths are
// exposed, never key material.
type SearchDiagnostics struct {
	APIKeySet    bool   `json:"apiKeySet"`
	IDSet        bool   `json:"idSet"`
	APIKeyLength int    `json:"apiKeyLength"`
	IDLength     int    `json:"idLength"`
	Timestamp    string `json:"timestamp"`
	BreakerState string `json:"breakerState"`
	CacheBackend string `json:"cacheBackend"`
}

// Diagnostics describes the search configuration without exposing secrets.
func (s *SearchService) Diagnostics() SearchDiagnostics {
	return SearchDiagnostics{
		APIKeySet:    s.apiKey != "",
		IDSet:        s.searchID != "",
		APIKeyLength: len(s.apiKey),
		IDLength:     len(s.searchID),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		BreakerState: s.breaker.State().String(),
		CacheBackend: s.cache.Backend(),
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
