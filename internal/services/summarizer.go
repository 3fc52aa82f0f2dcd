package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
)

const (
	defaultSummaryMax = 150
	defaultSummaryMin = 50
)

type SummaryOptions struct {
	MaxLength int    `json:"maxLength,omitempty"`
	MinLength int    `json:"minLength,omitempty"`
	Format    string `json:"format,omitempty"` // paragraph (default) or bullets
	Language  string `json:"language,omitempty"`
}

type SummaryResult struct {
	OriginalText     string  `json:"originalText"`
	Summary          string  `json:"summary"`
	OriginalLength   int     `json:"originalLength"`
	SummaryLength    int     `json:"summaryLength"`
	CompressionRatio float64 `json:"compressionRatio"`
}

// Summarizer does extractive summarization: sentences are scored by word
// frequency and the best ones that fit the target length are kept in order.
// Lengths are counted in characters (runes).
type Summarizer struct {
	cache *CacheService
}

func NewSummarizer(cache *CacheService) *Summarizer {
	return &Summarizer{cache: cache}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, opts SummaryOptions) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "요약할 텍스트가 비어있습니다.")
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = defaultSummaryMax
	}
	if opts.MinLength <= 0 {
		opts.MinLength = defaultSummaryMin
	}
	if opts.Format != "bullets" {
		opts.Format = "paragraph"
	}
	if opts.Language == "" {
		opts.Language = "ko"
	}

	sum := sha1.Sum([]byte(text))
	key := CacheKey("summary", fmt.Sprintf("%s:%d:%d:%s:%s", hex.EncodeToString(sum[:]), opts.MaxLength, opts.MinLength, opts.Format, opts.Language))
	var cached SummaryResult
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	summary := extractiveSummary(text, opts)
	originalLen := utf8.RuneCountInString(text)
	summaryLen := utf8.RuneCountInString(summary)
	result := &SummaryResult{
		OriginalText:     text,
		Summary:          summary,
		OriginalLength:   originalLen,
		SummaryLength:    summaryLen,
		CompressionRatio: math.Round(float64(summaryLen)/float64(originalLen)*1000) / 1000,
	}

	if err := s.cache.Set(ctx, key, result); err != nil {
		log.Printf("⚠️ Failed to cache summary: %v", err)
	}
	return result, nil
}

func extractiveSummary(text string, opts SummaryOptions) string {
	sentences := SplitSentences(text)
	if len(sentences) <= 3 {
		return text
	}

	scores := scoreSentences(sentences)
	ranked := make([]int, len(sentences))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})

	textLen := utf8.RuneCountInString(text)
	target := opts.MinLength
	if thirty := textLen * 3 / 10; thirty > target {
		target = thirty
	}
	if target > opts.MaxLength {
		target = opts.MaxLength
	}

	var selected []int
	current := 0
	for _, idx := range ranked {
		n := utf8.RuneCountInString(sentences[idx])
		if current+n <= target {
			selected = append(selected, idx)
			current += n
		}
		if current >= target {
			break
		}
	}
	// Every sentence is longer than the target: keep the best one.
	if len(selected) == 0 {
		selected = append(selected, ranked[0])
	}
	sort.Ints(selected)

	parts := make([]string, len(selected))
	for i, idx := range selected {
		parts[i] = sentences[idx]
	}
	if opts.Format == "bullets" {
		for i := range parts {
			parts[i] = "• " + parts[i]
		}
		return strings.Join(parts, "\n")
	}
	return strings.Join(parts, " ")
}

// SplitSentences breaks text after '.', '!' or '?' when followed by whitespace or the end.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// scoreSentences sums corpus frequencies of each sentence's words (longer than
// one character) and divides by the sentence's word count.
func scoreSentences(sentences []string) []float64 {
	freq := map[string]int{}
	tokenized := make([][]string, len(sentences))
	for i, s := range sentences {
		tokenized[i] = strings.Fields(strings.ToLower(s))
		for _, w := range tokenized[i] {
			if utf8.RuneCountInString(w) > 1 {
				freq[w]++
			}
		}
	}

	scores := make([]float64, len(sentences))
	for i, words := range tokenized {
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, w := range words {
			if utf8.RuneCountInString(w) > 1 {
				total += freq[w]
			}
		}
		scores[i] = float64(total) / float64(len(words))
	}
	return scores
}
