package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/luna-backend/internal/models"
)

// ExtractKeyInformation condenses results to title, link, snippet and whether an image is attached.
func ExtractKeyInformation(results []models.SearchResult) []models.KeyInformation {
	out := make([]models.KeyInformation, 0, len(results))
	for _, r := range results {
		out = append(out, models.KeyInformation{
			Title:    r.Title,
			Link:     r.Link,
			Snippet:  r.Snippet,
			HasImage: r.ImageURL() != "",
		})
	}
	return out
}

// HighlightSearchTerms wraps every query term longer than two characters in <mark>, case-insensitively.
func HighlightSearchTerms(text, query string) string {
	var terms []string
	for _, t := range strings.Fields(query) {
		if utf8.RuneCountInString(t) > 2 {
			terms = append(terms, regexp.QuoteMeta(t))
		}
	}
	if len(terms) == 0 {
		return text
	}

	result := text
	for _, term := range terms {
		re := regexp.MustCompile(`(?i)(` + term + `)`)
		result = re.ReplaceAllString(result, "<mark>$1</mark>")
	}
	return result
}

// SortByRelevance orders results by score: +3 per term in the title, +1 per
// term in the snippet, +1 for an image. Ties keep their original order.
func SortByRelevance(results []models.SearchResult, query string) []models.SearchResult {
	terms := strings.Fields(strings.ToLower(query))
	sorted := make([]models.SearchResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return relevanceScore(sorted[i], terms) > relevanceScore(sorted[j], terms)
	})
	return sorted
}

func relevanceScore(r models.SearchResult, terms []string) int {
	score := 0
	title := strings.ToLower(r.Title)
	snippet := strings.ToLower(r.Snippet)
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += 3
		}
		if strings.Contains(snippet, term) {
			score++
		}
	}
	if r.ImageURL() != "" {
		score++
	}
	return score
}

// ExtractRelevantInfo turns the top three results into the text block fed to the chat reply.
func ExtractRelevantInfo(results []models.SearchResult) string {
	var lines []string
	for i, r := range results {
		if i == 3 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %s", r.Title, r.Snippet))
	}
	return strings.Join(lines, "\n")
}

var (
	koreanQuestionWords  = []string{"무엇", "어떻게", "왜", "언제", "어디", "누구", "얼마나", "몇"}
	englishQuestionWords = []string{"what", "how", "why", "when", "where", "who", "which", "whose", "whom"}
	searchKeywords       = []string{"검색", "찾아", "알려줘", "search", "find", "look up"}
	fillerWords          = []string{"검색", "찾아", "알려줘", "search", "find", "look up", "please", "해줘"}

	questionMarks = regexp.MustCompile(`[?？]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// ShouldTriggerSearch decides whether a chat message should be sent to web search.
func ShouldTriggerSearch(input string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(input)) < 3 {
		return false
	}
	return IsQuestion(input) || IsSearchQuery(input)
}

// IsQuestion reports a trailing question mark or a leading Korean or English question word.
func IsQuestion(input string) bool {
	trimmed := strings.TrimSpace(input)
	if strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？") {
		return true
	}
	for _, w := range koreanQuestionWords {
		if strings.HasPrefix(trimmed, w) {
			return true
		}
	}
	lower := strings.ToLower(trimmed)
	for _, w := range englishQuestionWords {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// IsSearchQuery reports a short keyword-style input (at most five words, under
// 30 characters) or one containing an explicit search keyword.
func IsSearchQuery(input string) bool {
	trimmed := strings.TrimSpace(input)
	if len(strings.Fields(trimmed)) <= 5 && utf8.RuneCountInString(trimmed) < 30 {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, k := range searchKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// OptimizeQuery strips question marks, filler words and a leading question word from a chat message.
func OptimizeQuery(input string) string {
	query := strings.TrimSpace(input)
	query = questionMarks.ReplaceAllString(query, "")

	for _, w := range fillerWords {
		if isASCII(w) {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
			query = re.ReplaceAllString(query, "")
		} else {
			query = strings.ReplaceAll(query, w, "")
		}
	}

	query = strings.TrimSpace(query)
	for _, w := range koreanQuestionWords {
		if strings.HasPrefix(query, w) {
			query = strings.TrimSpace(query[len(w):])
			break
		}
	}
	lower := strings.ToLower(query)
	for _, w := range englishQuestionWords {
		if strings.HasPrefix(lower, w) {
			query = strings.TrimSpace(query[len(w):])
			break
		}
	}

	return strings.TrimSpace(whitespace.ReplaceAllString(query, " "))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
