package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("response not found")
	// ErrMissingFields is returned when question, answer or model is empty.
	ErrMissingFields = errors.New("질문, 응답, 모델은 필수 항목입니다.")
)

// ResponseStore persists Q&A records. Implementations are safe for concurrent use.
type ResponseStore interface {
	List(ctx context.Context, opts models.ListOptions) ([]models.Response, error)
	Get(ctx context.Context, id string) (*models.Response, error)
	Create(ctx context.Context, r models.Response) (*models.Response, error)
	Update(ctx context.Context, id string, patch models.ResponsePatch) (*models.Response, error)
	Delete(ctx context.Context, id string) error
	// Reset restores the seed records.
	Reset(ctx context.Context) error
}

// SeedResponses returns the records every store starts with.
func SeedResponses() []models.Response {
	return []models.Response{
		{
			ID:        "1",
			Question:  "인공지능이란 무엇인가요?",
			Answer:    "인공지능(AI)은 인간의 학습, 추론, 인식, 문제 해결 능력 등을 컴퓨터 시스템으로 구현한 기술입니다.",
			Model:     "GPT-2",
			Timestamp: "2023-05-15T14:30:00",
			Category:  "일반",
			Feedback:  "좋음",
		},
		{
			ID:        "2",
			Question:  "머신러닝과 딥러닝의 차이점은 무엇인가요?",
			Answer:    "머신러닝은 데이터를 기반으로 패턴을 학습하는 AI의 한 분야이며, 딥러닝은 머신러닝의 하위 분야로 인간 뇌의 신경망 구조를 모방한 인공 신경망을 사용합니다.",
			Model:     "GPT-2-Medium",
			Timestamp: "2023-05-16T10:15:00",
			Category:  "기술",
			Feedback:  "매우 좋음",
		},
		{
			ID:        "3",
			Question:  "자연어 처리란 무엇인가요?",
			Answer:    "자연어 처리(NLP)는 컴퓨터가 인간의 언어를 이해하고 처리할 수 있게 하는 인공지능의 한 분야입니다.",
			Model:     "GPT-2-Large",
			Timestamp: "2023-05-17T09:45:00",
			Category:  "기술",
			Feedback:  "보통",
		},
		{
			ID:        "4",
			Question:  "강화학습이란 무엇인가요?",
			Answer:    "강화학습은 에이전트가 환경과 상호작용하며 보상을 최대화하는 방향으로 행동을 학습하는 머신러닝의 한 종류입니다.",
			Model:     "GPT-2",
			Timestamp: "2023-05-18T16:20:00",
			Category:  "기술",
			Feedback:  "좋음",
		},
		{
			ID:        "5",
			Question:  "컴퓨터 비전이란 무엇인가요?",
			Answer:    "컴퓨터 비전은 컴퓨터가 디지털 이미지나 비디오를 이해하고 처리할 수 있게 하는 인공지능의 한 분야입니다.",
			Model:     "GPT-2-Medium",
			Timestamp: "2023-05-19T11:30:00",
			Category:  "기술",
			Feedback:  "매우 좋음",
		},
	}
}

// PrepareNewResponse validates a record about to be created and fills defaults:
// a fresh uuid, the current time, category 일반 and feedback 없음.
func PrepareNewResponse(r models.Response) (models.Response, error) {
	r.Question = strings.TrimSpace(r.Question)
	r.Answer = strings.TrimSpace(r.Answer)
	r.Model = strings.TrimSpace(r.Model)
	if r.Question == "" || r.Answer == "" || r.Model == "" {
		return r, ErrMissingFields
	}
	r.ID = uuid.NewString()
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if r.Category == "" {
		r.Category = models.DefaultCategory
	}
	if r.Feedback == "" {
		r.Feedback = models.DefaultFeedback
	}
	return r, nil
}

// MemoryResponseStore is the default store: an ordered slice reset on restart.
type MemoryResponseStore struct {
	mu      sync.RWMutex
	records []models.Response
}

func NewMemoryResponseStore() *MemoryResponseStore {
	return &MemoryResponseStore{records: SeedResponses()}
}

func (s *MemoryResponseStore) List(ctx context.Context, opts models.ListOptions) ([]models.Response, error) {
	s.mu.RLock()
	snapshot := make([]models.Response, len(s.records))
	copy(snapshot, s.records)
	s.mu.RUnlock()

	return applyListOptions(snapshot, opts), nil
}

func (s *MemoryResponseStore) Get(ctx context.Context, id string) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		r := s.records[i]
		return &r, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryResponseStore) Create(ctx context.Context, r models.Response) (*models.Response, error) {
	r, err := PrepareNewResponse(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
	return &r, nil
}

func (s *MemoryResponseStore) Update(ctx context.Context, id string, patch models.ResponsePatch) (*models.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	patch.Apply(&s.records[i])
	r := s.records[i]
	return &r, nil
}

func (s *MemoryResponseStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return nil
}

func (s *MemoryResponseStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.records = SeedResponses()
	s.mu.Unlock()
	return nil
}

func (s *MemoryResponseStore) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// applyListOptions filters records given in insertion order. Filtered or paged
// results come back newest first.
func applyListOptions(records []models.Response, opts models.ListOptions) []models.Response {
	if !opts.Filtered() {
		return records
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	out := make([]models.Response, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if opts.Category != "" && r.Category != opts.Category {
			continue
		}
		if opts.Model != "" && r.Model != opts.Model {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Question), query) &&
			!strings.Contains(strings.ToLower(r.Answer), query) {
			continue
		}
		out = append(out, r)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []models.Response{}
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}

// ComputeStats aggregates a full record listing for GET /api/database/stats.
func ComputeStats(records []models.Response) models.ResponseStats {
	stats := models.ResponseStats{
		TotalResponses:       len(records),
		ByCategory:           map[string]int{},
		ByModel:              map[string]int{},
		FeedbackDistribution: map[string]int{},
		TopQueries:           []models.QueryCount{},
	}

	questionCounts := map[string]int{}
	for _, r := range records {
		stats.ByCategory[r.Category]++
		stats.ByModel[r.Model]++
		stats.FeedbackDistribution[r.Feedback]++
		questionCounts[r.Question]++
		if r.Timestamp > stats.LastUpdated {
			stats.LastUpdated = r.Timestamp
		}
	}

	for q, n := range questionCounts {
		stats.TopQueries = append(stats.TopQueries, models.QueryCount{Question: q, Count: n})
	}
	sort.Slice(stats.TopQueries, func(i, j int) bool {
		if stats.TopQueries[i].Count != stats.TopQueries[j].Count {
			return stats.TopQueries[i].Count > stats.TopQueries[j].Count
		}
		return stats.TopQueries[i].Question < stats.TopQueries[j].Question
	})
	if len(stats.TopQueries) > 10 {
		stats.TopQueries = stats.TopQueries[:10]
	}
	return stats
}
