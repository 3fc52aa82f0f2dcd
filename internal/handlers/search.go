package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
)

const msgQueryRequired = "검색어가 필요합니다."

type OracleSearchRequest struct {
	Query string `json:"query"`
}

type OracleSearchResponse struct {
	Query         string                  `json:"query"`
	Results       []models.SearchResult   `json:"results"`
	Summary       string                  `json:"summary"`
	ExtractedInfo []models.KeyInformation `json:"extractedInfo"`
	Highlights    []string                `json:"highlights"`
	Timestamp     string                  `json:"timestamp"`
}

type SearchDebugResponse struct {
	Status      string                     `json:"status"`
	Diagnostics services.SearchDiagnostics `json:"diagnostics"`
}

// Search proxies Google Custom Search.
// Query params:
//   query (required)
//   mock  (optional, "true" forces canned results)
//   num   (optional, 1-10)
//   start (optional, 1-based)
func Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, msgQueryRequired)
		return
	}

	opts := services.SearchOptions{Mock: q.Get("mock") == "true"}
	if v, err := strconv.Atoi(q.Get("num")); err == nil {
		opts.Num = v
	}
	if v, err := strconv.Atoi(q.Get("start")); err == nil {
		opts.Start = v
	}

	res, err := searchService.Search(r.Context(), query, opts)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// OracleSearch runs a search, ranks the results and summarizes their snippets.
func OracleSearch(w http.ResponseWriter, r *http.Request) {
	var req OracleSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, msgQueryRequired)
		return
	}

	res, err := searchService.Search(r.Context(), query, services.SearchOptions{})
	if err != nil {
		writeSearchError(w, err)
		return
	}

	results := services.SortByRelevance(res.Items, query)
	snippets := make([]string, 0, len(results))
	highlights := make([]string, 0, len(results))
	for _, item := range results {
		if s := strings.TrimSpace(item.Snippet); s != "" {
			snippets = append(snippets, s)
			highlights = append(highlights, services.HighlightSearchTerms(s, query))
		}
	}

	summary := ""
	if len(snippets) > 0 {
		sum, err := summarizer.Summarize(r.Context(), strings.Join(snippets, " "), services.SummaryOptions{})
		if err != nil {
			writeError(w, err, "요약 중 오류가 발생했습니다.")
			return
		}
		summary = sum.Summary
	}

	writeJSON(w, http.StatusOK, OracleSearchResponse{
		Query:         query,
		Results:       results,
		Summary:       summary,
		ExtractedInfo: services.ExtractKeyInformation(results),
		Highlights:    highlights,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// SearchDebug reports how search is configured, without secrets.
func SearchDebug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SearchDebugResponse{
		Status:      "success",
		Diagnostics: searchService.Diagnostics(),
	})
}

// writeSearchError keeps the upstream message so the UI can show why Google failed.
func writeSearchError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		writeErrorMessage(w, apperr.StatusForCode(appErr.Code), appErr.Code, appErr.Message)
		return
	}
	writeError(w, err, "검색 중 오류가 발생했습니다.")
}
