package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
)

// GetFeedbacksResponse represents the response for listing feedback history
type GetFeedbacksResponse struct {
	Success   bool                      `json:"success"`
	Feedbacks []models.ResponseFeedback `json:"feedbacks"`
	Total     int64                     `json:"total"`
}

// GetFeedbacks lists recorded feedback, newest first (admin only).
// Query params:
//   response_id (optional)
//   limit       (optional, default 50, max 100)
//   skip        (optional)
func GetFeedbacks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	skip, _ := strconv.ParseInt(q.Get("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	feedbacks, total, err := services.ListFeedback(ctx, q.Get("response_id"), limit, skip)
	if err != nil {
		writeError(w, err, "Failed to fetch feedbacks")
		return
	}

	writeJSON(w, http.StatusOK, GetFeedbacksResponse{
		Success:   true,
		Feedbacks: feedbacks,
		Total:     total,
	})
}
