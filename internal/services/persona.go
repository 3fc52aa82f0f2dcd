package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/pkg/utils"
	"github.com/google/uuid"
)

const (
	emotionTransitionRate = 0.2
	emotionBaseReturnRate = 0.05
	emotionHistoryLimit   = 10
	dominantThreshold     = 0.2
	transitionThreshold   = 0.3
	toneThreshold         = 0.4
)

var (
	ErrPersonaNotFound      = errors.New("persona not found")
	ErrDefaultPersonaLocked = errors.New("the default persona cannot be deleted")
)

// PersonaInput is the body of POST /api/personas.
type PersonaInput struct {
	Name               string                    `json:"name"`
	Description        string                    `json:"description"`
	Traits             []models.PersonaTrait     `json:"traits"`
	ConversationStyle  *models.ConversationStyle `json:"conversationStyle,omitempty"`
	BaseEmotionalState *models.EmotionalState    `json:"baseEmotionalState,omitempty"`
	KnowledgeDomains   []string                  `json:"knowledgeDomains,omitempty"`
	Topics             []string                  `json:"topics,omitempty"`
}

// PersonaReply is the result of one persona chat turn.
type PersonaReply struct {
	Response       string                `json:"response"`
	Intent         string                `json:"intent"`
	EmotionalState models.EmotionalState `json:"emotionalState"`
	Persona        *models.Persona       `json:"persona"`
}

// PersonaRegistry holds the personas and the active selection. One mutex
// guards everything, so chats with the same persona are applied one at a time.
type PersonaRegistry struct {
	mu       sync.Mutex
	personas map[string]*models.Persona
	order    []string
	activeID string
	rng      *rand.Rand
	now      func() time.Time
}

// NewPersonaRegistry starts with Luna only. Seed 0 uses the clock.
func NewPersonaRegistry(seed int64) *PersonaRegistry {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &PersonaRegistry{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
	r.resetLocked()
	return r
}

func (r *PersonaRegistry) resetLocked() {
	luna := NewLunaPersona(r.now().UTC())
	r.personas = map[string]*models.Persona{luna.ID: luna}
	r.order = []string{luna.ID}
	r.activeID = luna.ID
}

// List returns copies of every persona in creation order, plus the active id.
func (r *PersonaRegistry) List() ([]*models.Persona, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Persona, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.personas[id].Clone())
	}
	return out, r.activeID
}

func (r *PersonaRegistry) Get(id string) (*models.Persona, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.personas[id]
	if !ok {
		return nil, ErrPersonaNotFound
	}
	return p.Clone(), nil
}

func (r *PersonaRegistry) Active() *models.Persona {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.personas[r.activeID].Clone()
}

func (r *PersonaRegistry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.personas[id]; !ok {
		return ErrPersonaNotFound
	}
	r.activeID = id
	return nil
}

// Create validates and registers a custom persona.
func (r *PersonaRegistry) Create(in PersonaInput) (*models.Persona, error) {
	if err := ValidatePersonaInput(in); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	style := models.ConversationStyle{Verbosity: 0.5, Formality: 0.5, Humor: 0.5, Empathy: 0.5, Creativity: 0.5, Responsiveness: 0.5}
	if in.ConversationStyle != nil {
		style = *in.ConversationStyle
	}
	base := defaultEmotionalState()
	if in.BaseEmotionalState != nil {
		base = *in.BaseEmotionalState
		base.History = []models.EmotionHistoryEntry{}
		deriveComposites(&base)
		base.Dominant, _ = dominantEmotion(&base)
		if base.Stability == 0 {
			base.Stability = 0.5
		}
	}

	p := &models.Persona{
		ID:                    "persona_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Name:                  strings.TrimSpace(in.Name),
		Description:           strings.TrimSpace(in.Description),
		Version:               "1.0",
		Traits:                append([]models.PersonaTrait{}, in.Traits...),
		ConversationStyle:     style,
		BaseEmotionalState:    base,
		CurrentEmotionalState: base.Clone(),
		KnowledgeDomains:      append([]string{}, in.KnowledgeDomains...),
		Topics:                append([]string{}, in.Topics...),
		CreatedAt:             now,
	}
	r.personas[p.ID] = p
	r.order = append(r.order, p.ID)
	return p.Clone(), nil
}

// ValidatePersonaInput requires a name and keeps every score within 0..1.
func ValidatePersonaInput(in PersonaInput) error {
	if err := utils.ValidateDisplayName(in.Name); err != nil {
		return err
	}
	for _, t := range in.Traits {
		if strings.TrimSpace(t.Name) == "" {
			return errors.New("trait name is required")
		}
		if !unitRange(t.Value) {
			return fmt.Errorf("trait %q must be between 0 and 1", t.Name)
		}
	}
	if s := in.ConversationStyle; s != nil {
		for name, v := range map[string]float64{
			"verbosity": s.Verbosity, "formality": s.Formality, "humor": s.Humor,
			"empathy": s.Empathy, "creativity": s.Creativity, "responsiveness": s.Responsiveness,
		} {
			if !unitRange(v) {
				return fmt.Errorf("conversation style %q must be between 0 and 1", name)
			}
		}
	}
	if s := in.BaseEmotionalState; s != nil {
		for _, e := range basicEmotions {
			if !unitRange(*emotionField(s, e)) {
				return fmt.Errorf("emotion %q must be between 0 and 1", e)
			}
		}
	}
	return nil
}

func unitRange(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}

// Delete removes a custom persona. Deleting the active one reactivates Luna.
func (r *PersonaRegistry) Delete(id string) error {
	if id == DefaultPersonaID {
		return ErrDefaultPersonaLocked
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.personas[id]; !ok {
		return ErrPersonaNotFound
	}
	delete(r.personas, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.activeID == id {
		r.activeID = DefaultPersonaID
	}
	return nil
}

// Reset drops every custom persona and restores Luna to her initial state.
func (r *PersonaRegistry) Reset() *models.Persona {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
	return r.personas[DefaultPersonaID].Clone()
}

// Chat runs one turn against the persona (the active one when id is empty):
// the message shifts its emotional state, then a reply is built from the
// detected intent, the new mood and the conversation style.
func (r *PersonaRegistry) Chat(id, message string) (*PersonaReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = r.activeID
	}
	p, ok := r.personas[id]
	if !ok {
		return nil, ErrPersonaNotFound
	}

	now := r.now().UTC()
	p.LastInteraction = &now
	p.InteractionCount++

	impact := AnalyzeEmotionalImpact(message, p)
	UpdateEmotionalState(p, impact, now)

	intent := DetectPersonaIntent(message)
	reply := r.generateReply(message, intent, p)

	return &PersonaReply{
		Response:       reply,
		Intent:         intent,
		EmotionalState: p.CurrentEmotionalState.Clone(),
		Persona:        p.Clone(),
	}, nil
}

// AnalyzeEmotionalImpact scores the eight basic emotions for text: +0.2 per
// keyword found as a substring, capped at 1, scaled up for neuroticism (negative emotions) and
// empathy (all emotions).
func AnalyzeEmotionalImpact(text string, p *models.Persona) map[string]float64 {
	lower := strings.ToLower(text)

	impact := make(map[string]float64, len(basicEmotions))
	for _, e := range basicEmotions {
		for _, kw := range emotionKeywords[e] {
			if strings.Contains(lower, kw) {
				impact[e] += 0.2
			}
		}
		impact[e] = math.Min(impact[e], 1)
	}

	if n, ok := p.Trait("neuroticism"); ok {
		for _, e := range negativeEmotions {
			impact[e] *= 1 + n*0.5
		}
	}
	if em, ok := p.Trait("empathy"); ok {
		for _, e := range basicEmotions {
			impact[e] *= 1 + em*0.3
		}
	}
	return impact
}

// UpdateEmotionalState moves the persona's current state toward the impact,
// pulls it back toward the base state, then derives composites, transitions,
// the dominant emotion and a history entry.
func UpdateEmotionalState(p *models.Persona, impact map[string]float64, now time.Time) {
	current := p.CurrentEmotionalState
	next := current.Clone()

	for _, e := range basicEmotions {
		cur := *emotionField(&current, e)
		base := *emotionField(&p.BaseEmotionalState, e)
		*emotionField(&next, e) = nextEmotionValue(cur, impact[e], base)
	}
	deriveComposites(&next)

	for _, src := range basicEmotions {
		sv := *emotionField(&next, src)
		if sv <= transitionThreshold {
			continue
		}
		for _, eff := range emotionTransitions[src] {
			f := emotionField(&next, eff.target)
			*f = clamp01(*f + sv*eff.delta)
		}
	}

	dominant, intensity := dominantEmotion(&next)
	next.Dominant = dominant

	var triggers []string
	for _, e := range basicEmotions {
		if impact[e] > 0.2 {
			triggers = append(triggers, e)
		}
	}
	history := current.History
	if len(history) > emotionHistoryLimit-1 {
		history = history[len(history)-(emotionHistoryLimit-1):]
	}
	next.History = append(append([]models.EmotionHistoryEntry{}, history...), models.EmotionHistoryEntry{
		Timestamp: now,
		Dominant:  dominant,
		Intensity: intensity,
		Trigger:   strings.Join(triggers, ", "),
	})

	p.CurrentEmotionalState = next
}

func nextEmotionValue(current, impact, base float64) float64 {
	v := current
	if impact > 0 {
		v = current + (impact-current)*emotionTransitionRate
	}
	v += (base - v) * emotionBaseReturnRate
	return clamp01(v)
}

func deriveComposites(s *models.EmotionalState) {
	s.Love = s.Joy*0.6 + s.Trust*0.4
	s.Guilt = s.Sadness*0.6 + s.Fear*0.4
	s.Envy = s.Sadness*0.5 + s.Anger*0.5
	s.Curiosity = s.Surprise*0.5 + s.Anticipation*0.5
	s.Pride = s.Joy*0.6 + s.Anticipation*0.4
	s.Shame = s.Fear*0.6 + s.Disgust*0.4
	s.Contempt = s.Anger*0.5 + s.Disgust*0.5
	s.Awe = s.Fear*0.4 + s.Surprise*0.6
}

// dominantEmotion returns the strongest emotion above 0.2, or "neutral".
func dominantEmotion(s *models.EmotionalState) (string, float64) {
	name, best := "neutral", dominantThreshold
	for _, e := range allEmotions {
		if v := *emotionField(s, e); v > best {
			name, best = e, v
		}
	}
	return name, best
}

func defaultEmotionalState() models.EmotionalState {
	s := models.EmotionalState{
		Joy: 0.5, Sadness: 0.1, Anger: 0.05, Fear: 0.1,
		Surprise: 0.2, Disgust: 0.05, Trust: 0.5, Anticipation: 0.4,
		History:   []models.EmotionHistoryEntry{},
		Stability: 0.5,
	}
	deriveComposites(&s)
	s.Dominant, _ = dominantEmotion(&s)
	return s
}

func emotionField(s *models.EmotionalState, name string) *float64 {
	switch name {
	case "joy":
		return &s.Joy
	case "sadness":
		return &s.Sadness
	case "anger":
		return &s.Anger
	case "fear":
		return &s.Fear
	case "surprise":
		return &s.Surprise
	case "disgust":
		return &s.Disgust
	case "trust":
		return &s.Trust
	case "anticipation":
		return &s.Anticipation
	case "love":
		return &s.Love
	case "guilt":
		return &s.Guilt
	case "envy":
		return &s.Envy
	case "curiosity":
		return &s.Curiosity
	case "pride":
		return &s.Pride
	case "shame":
		return &s.Shame
	case "contempt":
		return &s.Contempt
	case "awe":
		return &s.Awe
	}
	panic("unknown emotion " + name)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// DetectPersonaIntent returns the first intent with a keyword hit, then
// "question" for a '?' and "statement" otherwise.
func DetectPersonaIntent(text string) string {
	lower := strings.ToLower(text)
	for _, in := range personaIntents {
		for _, kw := range in.keywords {
			if strings.Contains(lower, kw) {
				return in.name
			}
		}
	}
	if strings.Contains(lower, "?") {
		return "question"
	}
	return "statement"
}

var (
	selfQuestionRe = regexp.MustCompile(`(?i)누구|뭐야|무엇|어떤|소개|알려줘|설명해|who are|introduce`)
	selfRefRe      = regexp.MustCompile(`(?i)너|당신|루나|luna|\byou\b`)
	moodQuestionRe = regexp.MustCompile(`(?i)기분|감정|상태|어때|어떠|어떻게|how are|feel`)
	abilityRe      = regexp.MustCompile(`(?i)할 수 있|능력|기능|도움|도와|can you|help`)
	gratitudeRe    = regexp.MustCompile(`(?i)고마워|감사|땡큐|고맙|thank`)
	apologyRe      = regexp.MustCompile(`(?i)미안|사과|죄송|실례|용서|sorry`)
	distressRe     = regexp.MustCompile(`(?i)슬프|힘들|어렵|걱정|불안|두렵|무섭|아프|괴롭|외롭|sad|hard|worried|anxious|afraid|scared|lonely|hurt`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]\s+`)
)

func (r *PersonaRegistry) pick(options []string) string {
	return options[r.rng.Intn(len(options))]
}

func (r *PersonaRegistry) generateReply(input, intent string, p *models.Persona) string {
	var reply string
	switch intent {
	case "greeting":
		reply = r.pick(greetingReplies)
		if strings.Contains(reply, "%s") {
			reply = fmt.Sprintf(reply, p.Name)
		}
	case "farewell":
		reply = r.pick(farewellReplies)
	case "question":
		reply = r.questionReply(input, p)
	case "request":
		reply = fmt.Sprintf(r.pick(requestWrappers), r.baseResponse(input, p))
	case "opinion":
		reply = fmt.Sprintf(r.pick(opinionWrappers), r.baseResponse(input, p))
	case "gratitude":
		reply = r.pick(gratitudeReplies)
	case "apology":
		reply = r.pick(apologyReplies)
	default:
		reply = r.baseResponse(input, p)
	}

	reply = r.applyEmotionalTone(reply, &p.CurrentEmotionalState)

	style := p.ConversationStyle
	switch {
	case style.Verbosity > 0.7:
		reply = r.moreVerbose(reply)
	case style.Verbosity < 0.3:
		reply = lessVerbose(reply)
	}
	switch {
	case style.Formality > 0.7:
		reply = moreFormal(reply)
	case style.Formality < 0.3:
		reply = lessFormal(reply)
	}
	if style.Humor > 0.7 && r.rng.Float64() < style.Humor*0.5 {
		reply = r.addHumor(reply, p)
	}
	state := p.CurrentEmotionalState
	if style.Empathy > 0.5 && (state.Sadness > 0.3 || state.Fear > 0.3 || distressRe.MatchString(input)) {
		reply = r.addEmpathy(reply, p)
	}
	return reply
}

func (r *PersonaRegistry) questionReply(input string, p *models.Persona) string {
	lower := strings.ToLower(input)
	if selfQuestionRe.MatchString(lower) && selfRefRe.MatchString(lower) {
		return fmt.Sprintf("저는 %s입니다. %s 제 주요 관심사는 %s 등이며, 다양한 주제에 대해 대화를 나눌 수 있습니다. 무엇을 도와드릴까요?",
			p.Name, p.Description, strings.Join(firstN(p.Topics, 3), ", "))
	}
	if moodQuestionRe.MatchString(lower) && selfRefRe.MatchString(lower) {
		descs, ok := moodDescriptions[p.CurrentEmotionalState.Dominant]
		if !ok {
			descs = moodDescriptions["neutral"]
		}
		return fmt.Sprintf("지금은 %s. 당신과 대화하는 것이 즐겁습니다. 무엇을 도와드릴까요?", r.pick(descs))
	}
	if abilityRe.MatchString(lower) {
		return fmt.Sprintf("저는 다양한 주제에 대한 정보 제공, 질문에 대한 답변, 대화와 소통, 문제 해결 지원 등을 도와드릴 수 있습니다. 특히 %s 분야에 대한 지식이 있어요. 어떤 도움이 필요하신가요?",
			strings.Join(firstN(p.KnowledgeDomains, 3), ", "))
	}
	return fmt.Sprintf(r.pick(questionWrappers), r.baseResponse(input, p))
}

// baseResponse is the intent-independent core of a reply.
func (r *PersonaRegistry) baseResponse(input string, p *models.Persona) string {
	lower := strings.ToLower(input)

	switch {
	case selfQuestionRe.MatchString(lower) && selfRefRe.MatchString(lower):
		return fmt.Sprintf("저는 %s입니다. %s 무엇을 도와드릴까요?", p.Name, p.Description)
	case moodQuestionRe.MatchString(lower) && selfRefRe.MatchString(lower):
		if reply, ok := moodReplies[p.CurrentEmotionalState.Dominant]; ok {
			return reply
		}
		return "지금은 평온한 상태예요. 오늘 어떻게 지내고 계신가요?"
	case abilityRe.MatchString(lower):
		return fmt.Sprintf("저는 대화, 정보 제공, 문제 해결 지원, 창의적 아이디어 제안 등을 도와드릴 수 있어요. 특히 %s 분야에 관한 지식이 있습니다. 어떤 도움이 필요하신가요?",
			strings.Join(firstN(p.KnowledgeDomains, 3), ", "))
	case gratitudeRe.MatchString(lower):
		return "천만에요! 도움이 되어 기쁩니다. 더 필요한 것이 있으신가요?"
	case apologyRe.MatchString(lower):
		return "괜찮아요, 신경 쓰지 마세요. 어떻게 도와드릴까요?"
	}

	if v, ok := p.Trait("openness"); ok && v > 0.7 {
		return "흥미로운 주제네요! 이에 대해 더 깊이 탐구해 볼까요?"
	}
	if v, ok := p.Trait("agreeableness"); ok && v > 0.7 {
		return "말씀하신 내용 잘 이해했습니다. 어떻게 도와드리면 좋을까요?"
	}
	return "이해했습니다. 더 구체적인 정보나 질문이 있으신가요?"
}

func (r *PersonaRegistry) applyEmotionalTone(reply string, s *models.EmotionalState) string {
	templates, ok := emotionToneTemplates[s.Dominant]
	if !ok || *emotionField(s, s.Dominant) < toneThreshold {
		return reply
	}
	return strings.Replace(r.pick(templates), "{response}", reply, 1)
}

// splitReplySentences splits after '.', '!' or '?' followed by whitespace.
func splitReplySentences(s string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(s, -1) {
		out = append(out, s[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, s[start:])
}

func (r *PersonaRegistry) moreVerbose(reply string) string {
	addition := r.pick(verbosityAdditions)
	sentences := splitReplySentences(reply)
	if len(sentences) > 1 {
		mid := len(sentences) / 2
		sentences[mid] += addition
		return strings.Join(sentences, " ")
	}
	return reply + addition
}

var hedgeRe = regexp.MustCompile(`(?:제 생각에는|제 의견으로는|저는 생각합니다|아마도|어쩌면|말하자면|사실|실제로|기본적으로|본질적으로|정말로|매우|꽤|단순히),?\s*`)

func lessVerbose(reply string) string {
	sentences := splitReplySentences(reply)
	if len(sentences) > 2 {
		return sentences[0] + " " + sentences[len(sentences)-1]
	}
	return hedgeRe.ReplaceAllString(reply, "")
}

func moreFormal(reply string) string {
	for _, pair := range formalReplacer {
		reply = strings.ReplaceAll(reply, pair[0], pair[1])
	}
	return reply
}

func lessFormal(reply string) string {
	for _, pair := range [][2]string{
		{"했습니다", "했어요"},
		{"있습니다", "있어요"},
		{"없습니다", "없어요"},
		{"합니다", "해요"},
		{"입니다", "예요"},
		{"됩니다", "돼요"},
		{"봅니다", "봐요"},
		{"습니다", "네요"},
		{"지요", "죠"},
	} {
		reply = strings.ReplaceAll(reply, pair[0], pair[1])
	}
	return reply
}

func (r *PersonaRegistry) addHumor(reply string, p *models.Persona) string {
	var idx int
	if v, ok := p.Trait("extraversion"); ok && v > 0.7 {
		idx = r.rng.Intn(5)
	} else if v, ok := p.Trait("openness"); ok && v > 0.7 {
		idx = 5 + r.rng.Intn(5)
	} else {
		idx = r.rng.Intn(len(humorAdditions))
	}
	addition := humorAdditions[idx]

	sentences := splitReplySentences(reply)
	pos := r.rng.Intn(len(sentences))
	s := strings.TrimRightFunc(sentences[pos], unicode.IsSpace)
	if n := len(s); n > 0 && strings.ContainsAny(s[n-1:], ".!?") {
		s = s[:n-1] + addition + s[n-1:]
	} else {
		s += addition
	}
	sentences[pos] = s
	return strings.Join(sentences, " ")
}

func (r *PersonaRegistry) addEmpathy(reply string, p *models.Persona) string {
	var idx int
	if v, ok := p.Trait("empathy"); ok {
		idx = int(v * float64(len(empathyAdditions)))
	} else if v, ok := p.Trait("agreeableness"); ok {
		idx = int(v * float64(len(empathyAdditions)))
	} else {
		idx = r.rng.Intn(len(empathyAdditions))
	}
	if idx >= len(empathyAdditions) {
		idx = len(empathyAdditions) - 1
	}
	return empathyAdditions[idx] + reply
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
