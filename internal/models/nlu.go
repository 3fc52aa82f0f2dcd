package models

type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Sentiment struct {
	Label     string  `json:"label"` // positive, neutral, negative
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// Analysis is the result of running the keyword NLU over a piece of text.
type Analysis struct {
	Intent     string    `json:"intent"` // question, command, statement
	Topics     []string  `json:"topics"`
	Sentiment  Sentiment `json:"sentiment"`
	Entities   []Entity  `json:"entities"`
	Language   string    `json:"language"`
	Complexity float64   `json:"complexity"`
	Confidence float64   `json:"confidence"`
}
