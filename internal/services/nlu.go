package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/luna-backend/internal/models"
)

var (
	questionStarters = map[string]bool{
		"what": true, "who": true, "where": true, "when": true, "why": true, "how": true,
		"which": true, "can": true, "does": true, "is": true, "are": true,
	}
	commandStarters = map[string]bool{
		"find": true, "search": true, "get": true, "show": true, "tell": true,
		"give": true, "list": true, "create": true, "make": true, "build": true,
	}

	topicStopWords = map[string]bool{}

	positiveWords = []string{
		"good", "great", "excellent", "amazing", "wonderful", "fantastic", "terrific", "outstanding", "superb",
		"brilliant", "awesome", "happy", "glad", "pleased", "delighted", "satisfied", "love", "like",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "horrible", "poor", "disappointing", "miserable", "unfortunate", "unpleasant",
		"sad", "unhappy", "angry", "upset", "annoyed", "frustrated", "hate", "dislike",
	}

	dateRe   = regexp.MustCompile(`(?i)\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(st|nd|rd|th)?(,\s+\d{4})?\b`)
	numberRe = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

func init() {
	for _, w := range strings.Fields(`a an the is are was were be been being to of and or in on at by for with
		about against between into through during before after above below from up down what when where why how
		all any both each few more most other some such no nor not only own same so than too very can will just
		should now`) {
		topicStopWords[w] = true
	}
}

// Analyze runs the keyword NLU over text.
func Analyze(text string) models.Analysis {
	return models.Analysis{
		Intent:     detectIntent(text),
		Topics:     extractTopics(text),
		Sentiment:  analyzeSentiment(text),
		Entities:   extractEntities(text),
		Language:   DetectLanguage(text).Language,
		Complexity: textComplexity(text),
		Confidence: analysisConfidence(text),
	}
}

// detectIntent matches the first word so that "island" is not read as "is".
func detectIntent(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.Contains(lower, "?") {
		return "question"
	}
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return "statement"
	}
	first := strings.TrimRight(fields[0], ",.!:;")
	switch {
	case questionStarters[first]:
		return "question"
	case commandStarters[first]:
		return "command"
	default:
		return "statement"
	}
}

// extractTopics returns up to three of the most frequent content words, or ["general"].
func extractTopics(text string) []string {
	counts := map[string]int{}
	var order []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if topicStopWords[w] || utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	if len(order) == 0 {
		return []string{"general"}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}
	return order
}

func analyzeSentiment(text string) models.Sentiment {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	s := models.Sentiment{Label: "neutral"}
	switch {
	case pos > neg:
		s.Label = "positive"
	case neg > pos:
		s.Label = "negative"
	}
	total := pos + neg
	if total > 0 {
		s.Score = float64(pos-neg) / float64(total)
		s.Magnitude = math.Min(float64(total)/5, 1)
	}
	return s
}

func extractEntities(text string) []models.Entity {
	entities := []models.Entity{}
	for _, m := range dateRe.FindAllString(text, -1) {
		entities = append(entities, models.Entity{Type: "date", Value: m})
	}
	for _, m := range numberRe.FindAllString(text, -1) {
		entities = append(entities, models.Entity{Type: "number", Value: m})
	}
	for _, m := range emailRe.FindAllString(text, -1) {
		entities = append(entities, models.Entity{Type: "email", Value: m})
	}
	return entities
}

// textComplexity is the average word length over ten characters, capped at 1.
func textComplexity(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	runes := 0
	for _, w := range words {
		runes += utf8.RuneCountInString(w)
	}
	return math.Min(float64(runes)/float64(len(words))/10, 1)
}

// analysisConfidence grows with length: 0.7 plus up to 0.5 at 50+ characters, capped at 1.
func analysisConfidence(text string) float64 {
	lengthFactor := math.Min(float64(utf8.RuneCountInString(text))/100, 0.5)
	return math.Min(0.7+lengthFactor, 1)
}

// MachineCode renders an analysis as the pseudo-assembly listing shown by the thought processor.
func MachineCode(a models.Analysis) string {
	var b strings.Builder
	b.WriteString("; Processed thought in pseudo-assembly\n")
	b.WriteString("; Intent detection and processing\n\n")

	fmt.Fprintf(&b, "LOAD_INTENT %q\n", a.Intent)
	fmt.Fprintf(&b, "SET_CONFIDENCE %.2f\n\n", a.Confidence)

	if len(a.Entities) > 0 {
		b.WriteString("; Entity extraction\n")
		for i, e := range a.Entities {
			fmt.Fprintf(&b, "STORE_ENTITY %d %q %q\n", i, e.Value, e.Type)
		}
		b.WriteString("\n")
	}

	b.WriteString("; Sentiment analysis\n")
	fmt.Fprintf(&b, "SET_SENTIMENT %.2f\n", a.Sentiment.Score)
	fmt.Fprintf(&b, "SET_MAGNITUDE %.2f\n\n", a.Sentiment.Magnitude)

	if len(a.Topics) > 0 {
		b.WriteString("; Topic identification\n")
		for i, t := range a.Topics {
			fmt.Fprintf(&b, "REGISTER_TOPIC %d %q\n", i, t)
		}
		b.WriteString("\n")
	}

	b.WriteString("; Language and complexity\n")
	fmt.Fprintf(&b, "SET_LANGUAGE %q\n", a.Language)
	fmt.Fprintf(&b, "SET_COMPLEXITY %.2f\n\n", a.Complexity)

	b.WriteString("PROCESS_INPUT\nRETURN_RESULT")
	return b.String()
}
