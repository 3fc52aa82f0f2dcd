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
	"github.com/AnshRaj112/luna-backend/pkg/clientip"
	"github.com/go-chi/chi/v5"
)

const (
	msgIDRequired     = "ID는 필수 항목입니다."
	msgRecordNotFound = "해당 ID의 응답을 찾을 수 없습니다."
)

// CreateResponseRequest is the body of POST /api/database and /api/save-response.
type CreateResponseRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Category string `json:"category,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// UpdateResponseRequest is the body of PUT /api/database: the id plus any fields to merge.
type UpdateResponseRequest struct {
	ID string `json:"id"`
	models.ResponsePatch
}

type FeedbackRequest struct {
	Feedback string   `json:"feedback"`
	Rating   *float64 `json:"rating,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

// ListResponses returns the stored records as a bare array.
// Query params: query, category, model, limit, offset (all optional).
func ListResponses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := models.ListOptions{
		Query:    q.Get("query"),
		Category: q.Get("category"),
		Model:    q.Get("model"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		opts.Offset = v
	}

	records, err := responseStore.List(r.Context(), opts)
	if err != nil {
		writeError(w, err, "응답을 불러오는 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func GetResponse(w http.ResponseWriter, r *http.Request) {
	record, err := responseStore.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "응답을 불러오는 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// CreateResponse adds a record. question, answer and model are required.
func CreateResponse(w http.ResponseWriter, r *http.Request) {
	var req CreateResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	createResponse(w, r, req, "응답을 추가하는 중 오류가 발생했습니다.")
}

// SaveResponse stores a chat interaction from the UI. Same contract as CreateResponse.
func SaveResponse(w http.ResponseWriter, r *http.Request) {
	var req CreateResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	createResponse(w, r, req, "응답을 저장하는 중 오류가 발생했습니다.")
}

func createResponse(w http.ResponseWriter, r *http.Request, req CreateResponseRequest, failMsg string) {
	record, err := responseStore.Create(r.Context(), models.Response{
		Question: req.Question,
		Answer:   req.Answer,
		Model:    req.Model,
		Category: req.Category,
		Feedback: req.Feedback,
	})
	if err != nil {
		writeError(w, err, failMsg)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// UpdateResponse merges the provided fields into an existing record.
func UpdateResponse(w http.ResponseWriter, r *http.Request) {
	var req UpdateResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, msgIDRequired)
		return
	}

	record, err := responseStore.Update(r.Context(), req.ID, req.ResponsePatch)
	if err != nil {
		writeStoreError(w, err, "응답을 업데이트하는 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteResponse removes the record named by ?id=.
func DeleteResponse(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, msgIDRequired)
		return
	}
	if err := responseStore.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "응답을 삭제하는 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func GetResponseStats(w http.ResponseWriter, r *http.Request) {
	records, err := responseStore.List(r.Context(), models.ListOptions{})
	if err != nil {
		writeError(w, err, "통계를 계산하는 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, services.ComputeStats(records))
}

// SubmitResponseFeedback sets the feedback label of a record and keeps the
// rating in the feedback history.
func SubmitResponseFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Feedback = strings.TrimSpace(req.Feedback)
	if req.Feedback == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "Feedback is required")
		return
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 1) {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, "rating must be between 0 and 1")
		return
	}

	record, err := responseStore.Update(r.Context(), id, models.ResponsePatch{Feedback: &req.Feedback})
	if err != nil {
		writeStoreError(w, err, "피드백을 저장하는 중 오류가 발생했습니다.")
		return
	}

	services.RecordFeedbackAsync(models.ResponseFeedback{
		ResponseID: id,
		Feedback:   req.Feedback,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		IPAddress:  clientip.RealClientIP(r),
		CreatedAt:  time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, record)
}

func writeStoreError(w http.ResponseWriter, err error, failMsg string) {
	if errors.Is(err, services.ErrNotFound) {
		writeErrorMessage(w, http.StatusNotFound, apperr.DatabaseRecordNotFound, msgRecordNotFound)
		return
	}
	writeError(w, err, failMsg)
}
