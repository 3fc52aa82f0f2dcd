package services

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/AnshRaj112/luna-backend/internal/models"
)

// Reply sources recorded on assistant messages.
const (
	SourceRules    = "rules"
	SourceDatabase = "database"
	SourceSearch   = "search"
	SourceOpenAI   = "openai"
	SourceSafety   = "safety"
)

const similarityThreshold = 0.5

var philosophicalKeywords = []string{"thought", "philosophy", "concept", "idea", "theory", "advanced", "complex"}

var philosophicalResponses = []string{
	"The concept you're exploring touches on fundamental aspects of human understanding. When we consider advanced thoughts, we're often navigating the intersection of epistemology (how we know what we know) and ontology (the nature of being). This creates a rich landscape for intellectual exploration where multiple perspectives can coexist while still maintaining logical coherence.",
	"What's particularly fascinating about this line of thinking is how it challenges conventional frameworks. Advanced thought requires us to hold seemingly contradictory ideas in tension, recognizing that complexity often defies simple categorization. This dialectical approach allows for a more nuanced understanding that transcends binary thinking.",
	"Your thought invites us to consider the layered nature of reality and perception. From a philosophical standpoint, we might view this through various lenses: the phenomenological (how it appears to consciousness), the analytical (logical structure), or even the existential (implications for meaning). Each approach reveals different dimensions of the same complex truth.",
	"This reminds me of the philosophical concept of emergence - how complex systems and patterns arise from relatively simple interactions. Advanced thinking often requires us to consider both reductionist explanations (breaking things down to components) and holistic perspectives (understanding the integrated whole). The tension between these approaches generates profound insights.",
	"What you're describing parallels some interesting developments in cognitive science and philosophy of mind. The boundary between objective reality and subjective experience creates a fascinating domain for exploration. Advanced thought in this area often reveals how our conceptual frameworks both illuminate and constrain our understanding.",
}

// StreamResponses are the canned replies streamed by /api/chat-with-search.
var StreamResponses = []string{
	"I understand your question. Based on the information available, I would suggest looking into this further.",
	"That's an interesting point. There are several perspectives to consider here.",
	"I've analyzed your query and found some relevant information that might help.",
	"Based on my understanding, there are multiple factors that contribute to this situation.",
	"I appreciate your question. Let me provide some insights based on what I know.",
}

// Assistant is the rule-based reply generator. Random picks are guarded so one
// Assistant can serve concurrent requests.
type Assistant struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssistant seeds the picker; seed 0 uses the clock.
func NewAssistant(seed int64) *Assistant {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Assistant{rng: rand.New(rand.NewSource(seed))}
}

func (a *Assistant) pick(options []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return options[a.rng.Intn(len(options))]
}

// StreamResponse picks one of the canned streaming replies.
func (a *Assistant) StreamResponse() string {
	return a.pick(StreamResponses)
}

// Reply builds a templated answer from the shape of the message.
func (a *Assistant) Reply(message string) string {
	lower := strings.ToLower(message)

	for _, k := range philosophicalKeywords {
		if strings.Contains(lower, k) {
			return a.pick(philosophicalResponses)
		}
	}

	switch {
	case strings.Contains(lower, "what is") || strings.Contains(lower, "what are"):
		subject := ExtractSubject(message, "what is", "what are")
		return subject + " refers to a concept or entity that has specific characteristics and purposes. It's commonly understood in its context and has various applications. When examined closely, it reveals layers of meaning that connect to broader systems of knowledge and practice."
	case strings.Contains(lower, "how to") || strings.Contains(lower, "how do"):
		subject := ExtractSubject(message, "how to", "how do")
		return "To " + subject + ", you would typically follow a process that involves several steps. First, you'd need to prepare by gathering the necessary resources and understanding the underlying principles. Then, proceed methodically through the required actions, making adjustments as needed based on feedback and results. The effectiveness often depends on attention to detail and understanding the context-specific variables."
	case strings.Contains(lower, "why"):
		subject := ExtractSubject(message, "why")
		return "The reason for " + subject + " is typically related to several interconnected factors. These include historical context, practical considerations, and the specific needs or goals involved in the situation. When we examine this question deeply, we find that causality often forms a complex web rather than a simple linear relationship. Various perspectives might emphasize different aspects of this causal network."
	case strings.Contains(lower, "when"):
		subject := ExtractSubject(message, "when")
		return "The timing of " + subject + " depends on various factors and contexts. It typically occurs when the necessary conditions align, which involves both predictable patterns and contingent circumstances. Historical and cultural contexts often influence how we understand and measure these temporal relationships."
	case strings.Contains(lower, "where"):
		subject := ExtractSubject(message, "where")
		return "The location of " + subject + " varies depending on the specific context and parameters. It's typically found where relevant conditions converge, creating an environment conducive to its existence or occurrence. Spatial relationships often reveal important patterns that help us understand underlying principles and connections."
	case strings.Contains(lower, "who"):
		subject := ExtractSubject(message, "who")
		return "The person or entity " + subject + " would be someone with the relevant expertise, authority, or connection to the matter at hand. Their identity is shaped by their role in this context, as well as their background, qualifications, and relationships within the broader system. Understanding who they are often requires considering both individual characteristics and social or institutional positioning."
	case strings.Contains(lower, "?"):
		return "That's an interesting question that opens up several avenues of exploration. The answer would depend on multiple factors including context, specific circumstances, and the particular details involved. When we examine questions like this, we often find that the most valuable insights come from considering multiple perspectives and recognizing the nuanced interplay between different variables and systems."
	default:
		return "Your observation about " + firstWords(message, 3) + "... presents a thoughtful perspective that invites deeper consideration. It connects to broader patterns and principles that shape our understanding. This kind of reflection helps us recognize the complex interrelationships between concepts, experiences, and systems of knowledge. Would you like to explore specific dimensions of this idea further?"
	}
}

var trailingPunct = regexp.MustCompile(`[?!.,;:]$`)

// ExtractSubject returns the text after the first matching prefix with trailing punctuation removed.
func ExtractSubject(question string, prefixes ...string) string {
	lower := strings.ToLower(question)
	result := question
	for _, p := range prefixes {
		if idx := strings.Index(lower, p); idx >= 0 && idx+len(p) <= len(question) {
			result = strings.TrimSpace(question[idx+len(p):])
			break
		}
	}
	return strings.TrimSpace(trailingPunct.ReplaceAllString(result, ""))
}

func firstWords(s string, n int) string {
	words := strings.Split(s, " ")
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// DatabaseReply answers from a stored record.
func DatabaseReply(answer string) string {
	return "Based on similar questions in our database: " + answer
}

// SearchReply answers from web search results.
func SearchReply(info, message string) string {
	return "Based on web search results: " + info + "\n\nThis information should help answer your question about " + message + "."
}

func similarityTokens(s string) map[string]bool {
	tokens := map[string]bool{}
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		tokens[f] = true
	}
	return tokens
}

// Similarity is the Jaccard overlap of the word sets of a and b.
func Similarity(a, b string) float64 {
	ta, tb := similarityTokens(a), similarityTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// FindSimilar returns the stored record whose question best matches, if it
// reaches the similarity threshold.
func FindSimilar(records []models.Response, question string) *models.Response {
	var (
		best      *models.Response
		bestScore float64
	)
	for i := range records {
		if score := Similarity(records[i].Question, question); score >= similarityThreshold && score > bestScore {
			best = &records[i]
			bestScore = score
		}
	}
	return best
}

// NormalizeModelID strips the provider prefixes the UI adds and defaults to gpt2-medium.
func NormalizeModelID(id string) string {
	id = strings.TrimPrefix(id, "huggingface-")
	id = strings.TrimPrefix(id, "local-")
	if id == "" {
		return "gpt2-medium"
	}
	return id
}
