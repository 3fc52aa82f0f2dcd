package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonaRegistry_StartsWithLuna(t *testing.T) {
	r := NewPersonaRegistry(1)
	list, active := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, DefaultPersonaID, active)
	assert.Equal(t, "Luna", list[0].Name)
	assert.Equal(t, "joy", list[0].CurrentEmotionalState.Dominant)
}

func TestPersonaRegistry_CreateValidates(t *testing.T) {
	r := NewPersonaRegistry(1)

	_, err := r.Create(PersonaInput{Name: " "})
	assert.Error(t, err)

	_, err = r.Create(PersonaInput{Name: "Nova", Traits: []models.PersonaTrait{{Name: "openness", Value: 1.2}}})
	assert.Error(t, err)

	_, err = r.Create(PersonaInput{Name: "Nova", ConversationStyle: &models.ConversationStyle{Humor: -0.1}})
	assert.Error(t, err)

	p, err := r.Create(PersonaInput{Name: "Nova", Traits: []models.PersonaTrait{{Name: "openness", Value: 0.4}}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ID, "persona_"))
	assert.Equal(t, "joy", p.BaseEmotionalState.Dominant)

	list, _ := r.List()
	assert.Len(t, list, 2)
}

func TestPersonaRegistry_DeleteRules(t *testing.T) {
	r := NewPersonaRegistry(1)
	p, err := r.Create(PersonaInput{Name: "Nova"})
	require.NoError(t, err)
	require.NoError(t, r.SetActive(p.ID))

	assert.ErrorIs(t, r.Delete(DefaultPersonaID), ErrDefaultPersonaLocked)
	require.NoError(t, r.Delete(p.ID))
	assert.ErrorIs(t, r.Delete(p.ID), ErrPersonaNotFound)
	assert.Equal(t, DefaultPersonaID, r.Active().ID)
	assert.ErrorIs(t, r.SetActive("missing"), ErrPersonaNotFound)
}

func TestPersonaRegistry_Reset(t *testing.T) {
	r := NewPersonaRegistry(1)
	_, err := r.Create(PersonaInput{Name: "Nova"})
	require.NoError(t, err)
	_, err = r.Chat("", "안녕하세요")
	require.NoError(t, err)

	luna := r.Reset()
	list, active := r.List()
	assert.Len(t, list, 1)
	assert.Equal(t, DefaultPersonaID, active)
	assert.Zero(t, luna.InteractionCount)
	assert.Empty(t, luna.CurrentEmotionalState.History)
}

func TestPersonaChat_GreetingUpdatesState(t *testing.T) {
	r := NewPersonaRegistry(1)
	reply, err := r.Chat("", "안녕하세요")
	require.NoError(t, err)

	assert.Equal(t, "greeting", reply.Intent)
	assert.NotEmpty(t, reply.Response)
	assert.Equal(t, 1, reply.Persona.InteractionCount)
	require.Len(t, reply.EmotionalState.History, 1)
	assert.Equal(t, "joy", reply.EmotionalState.Dominant)
	for _, e := range allEmotions {
		v := *emotionField(&reply.EmotionalState, e)
		assert.True(t, v >= 0 && v <= 1, e)
	}
}

func TestPersonaChat_HistoryBounded(t *testing.T) {
	r := NewPersonaRegistry(1)
	for i := 0; i < 15; i++ {
		_, err := r.Chat(DefaultPersonaID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}
	assert.Len(t, r.Active().CurrentEmotionalState.History, emotionHistoryLimit)
	assert.Equal(t, 15, r.Active().InteractionCount)
}

func TestPersonaChat_Errors(t *testing.T) {
	r := NewPersonaRegistry(1)
	_, err := r.Chat("", "  ")
	assert.Error(t, err)
	_, err = r.Chat("nobody", "hi")
	assert.ErrorIs(t, err, ErrPersonaNotFound)
}

func TestPersonaChat_EmpathyForDistress(t *testing.T) {
	r := NewPersonaRegistry(1)
	reply, err := r.Chat("", "I am so sad and lonely, I cry")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Response, empathyAdditions[9]), reply.Response)
	assert.Equal(t, "sadness", reply.EmotionalState.History[0].Trigger)
}

func TestPersonaChat_Concurrent(t *testing.T) {
	r := NewPersonaRegistry(1)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Chat("", "what do you think?")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, r.Active().InteractionCount)
}

func TestAnalyzeEmotionalImpact(t *testing.T) {
	luna := NewLunaPersona(fixedNow())
	impact := AnalyzeEmotionalImpact("I am so sad and lonely, I cry", luna)

	// three hits, neuroticism 0.25 then empathy 0.95
	assert.InDelta(t, 0.6*1.125*1.285, impact["sadness"], 1e-9)
	assert.Zero(t, impact["joy"])

	impact = AnalyzeEmotionalImpact("행복 기쁨 좋아 즐거움 신나 행운 웃음", luna)
	assert.InDelta(t, 1.0*1.285, impact["joy"], 1e-9)

	// keywords match anywhere in the text, inside longer words too
	impact = AnalyzeEmotionalImpact("the madness of crowds", luna)
	assert.Greater(t, impact["anger"], 0.0)
}

func TestUpdateEmotionalState_RecordsTrigger(t *testing.T) {
	p := NewLunaPersona(fixedNow())
	UpdateEmotionalState(p, map[string]float64{"fear": 1}, fixedNow())

	s := p.CurrentEmotionalState
	require.Len(t, s.History, 1)
	assert.Equal(t, "fear", s.History[0].Trigger)
	// Luna's high joy and trust damp the fear through transitions
	assert.Equal(t, "joy", s.Dominant)
	for _, e := range allEmotions {
		v := *emotionField(&s, e)
		assert.True(t, v >= 0 && v <= 1, e)
	}
}

func TestNextEmotionValue(t *testing.T) {
	// toward impact by 0.2, then back to base by 0.05
	v := nextEmotionValue(0.5, 1, 0.5)
	assert.InDelta(t, 0.6+(0.5-0.6)*0.05, v, 1e-9)
	assert.InDelta(t, 0.5, nextEmotionValue(0.5, 0, 0.5), 1e-9)
	assert.Equal(t, 0.0, nextEmotionValue(0, 0, -1))
}

func TestDetectPersonaIntent(t *testing.T) {
	cases := map[string]string{
		"안녕하세요":             "greeting",
		"hello there":       "greeting",
		"this is fine":      "greeting",
		"it is fine":        "statement",
		"고마워요":              "gratitude",
		"thank you so much": "gratitude",
		"정말 미안해":            "apology",
		"is it raining?":    "question",
		"bye for now":       "farewell",
	}
	for text, want := range cases {
		assert.Equal(t, want, DetectPersonaIntent(text), text)
	}
}

func TestFormality(t *testing.T) {
	assert.Equal(t, "도와드릴 수 있습니다. 좋습니다", moreFormal("도와드릴 수 있어요. 좋네요"))
	assert.Equal(t, "도와드릴 수 있어요", lessFormal("도와드릴 수 있습니다"))
}

func TestLessVerbose(t *testing.T) {
	assert.Equal(t, "One. Three.", lessVerbose("One. Two. Three."))
	assert.Equal(t, "좋은 질문이에요.", lessVerbose("아마도 좋은 질문이에요."))
}
