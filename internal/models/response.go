package models

// Response is a saved question/answer pair produced by one of the chat models.
// The id is unique within a store.
type Response struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Model     string `json:"model"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Feedback  string `json:"feedback"`
}

const (
	DefaultCategory = "일반"
	DefaultFeedback = "없음"
)

// ResponsePatch carries the fields of a partial update. Nil fields are left untouched.
type ResponsePatch struct {
	Question  *string `json:"question,omitempty"`
	Answer    *string `json:"answer,omitempty"`
	Model     *string `json:"model,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
	Category  *string `json:"category,omitempty"`
	Feedback  *string `json:"feedback,omitempty"`
}

// Apply merges the patch into r.
func (p ResponsePatch) Apply(r *Response) {
	if p.Question != nil {
		r.Question = *p.Question
	}
	if p.Answer != nil {
		r.Answer = *p.Answer
	}
	if p.Model != nil {
		r.Model = *p.Model
	}
	if p.Timestamp != nil {
		r.Timestamp = *p.Timestamp
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Feedback != nil {
		r.Feedback = *p.Feedback
	}
}

// ListOptions filters GET /api/database. The zero value returns every record in insertion order.
type ListOptions struct {
	Query    string
	Category string
	Model    string
	Limit    int
	Offset   int
}

// Filtered reports whether any filter or paging is set; filtered results are newest first.
func (o ListOptions) Filtered() bool {
	return o.Query != "" || o.Category != "" || o.Model != "" || o.Limit > 0 || o.Offset > 0
}

type QueryCount struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

// ResponseStats summarizes the stored records.
type ResponseStats struct {
	TotalResponses       int            `json:"totalResponses"`
	ByCategory           map[string]int `json:"byCategory"`
	ByModel              map[string]int `json:"byModel"`
	FeedbackDistribution map[string]int `json:"feedbackDistribution"`
	TopQueries           []QueryCount   `json:"topQueries"`
	LastUpdated          string         `json:"lastUpdated,omitempty"`
}
