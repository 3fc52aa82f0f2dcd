package models

import "time"

type PersonaTrait struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"` // 0-1
	Description string  `json:"description,omitempty"`
}

type ConversationStyle struct {
	Verbosity      float64 `json:"verbosity"`
	Formality      float64 `json:"formality"`
	Humor          float64 `json:"humor"`
	Empathy        float64 `json:"empathy"`
	Creativity     float64 `json:"creativity"`
	Responsiveness float64 `json:"responsiveness"`
}

type EmotionHistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Dominant  string    `json:"dominant"`
	Intensity float64   `json:"intensity"`
	Trigger   string    `json:"trigger,omitempty"`
}

// EmotionalState holds the eight basic emotions (0-1), the derived composites,
// the dominant emotion and the last ten changes.
type EmotionalState struct {
	Joy          float64 `json:"joy"`
	Sadness      float64 `json:"sadness"`
	Anger        float64 `json:"anger"`
	Fear         float64 `json:"fear"`
	Surprise     float64 `json:"surprise"`
	Disgust      float64 `json:"disgust"`
	Trust        float64 `json:"trust"`
	Anticipation float64 `json:"anticipation"`

	Love      float64 `json:"love"`
	Guilt     float64 `json:"guilt"`
	Envy      float64 `json:"envy"`
	Curiosity float64 `json:"curiosity"`
	Pride     float64 `json:"pride"`
	Shame     float64 `json:"shame"`
	Contempt  float64 `json:"contempt"`
	Awe       float64 `json:"awe"`

	Dominant  string                `json:"dominant"`
	History   []EmotionHistoryEntry `json:"history"`
	Stability float64               `json:"stability"`
}

// Clone returns a deep copy.
func (s EmotionalState) Clone() EmotionalState {
	out := s
	out.History = append([]EmotionHistoryEntry(nil), s.History...)
	return out
}

type Persona struct {
	ID                    string            `json:"id"`
	Name                  string            `json:"name"`
	Description           string            `json:"description"`
	Version               string            `json:"version"`
	Traits                []PersonaTrait    `json:"traits"`
	ConversationStyle     ConversationStyle `json:"conversationStyle"`
	BaseEmotionalState    EmotionalState    `json:"baseEmotionalState"`
	CurrentEmotionalState EmotionalState    `json:"currentEmotionalState"`
	KnowledgeDomains      []string          `json:"knowledgeDomains"`
	Topics                []string          `json:"topics"`
	InteractionCount      int               `json:"interactionCount"`
	LastInteraction       *time.Time        `json:"lastInteraction,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
}

// Trait returns the named trait value and whether it is defined.
func (p *Persona) Trait(name string) (float64, bool) {
	for _, t := range p.Traits {
		if t.Name == name {
			return t.Value, true
		}
	}
	return 0, false
}

// Clone returns a deep copy safe to hand out of the registry.
func (p *Persona) Clone() *Persona {
	out := *p
	out.Traits = append([]PersonaTrait(nil), p.Traits...)
	out.KnowledgeDomains = append([]string(nil), p.KnowledgeDomains...)
	out.Topics = append([]string(nil), p.Topics...)
	out.BaseEmotionalState = p.BaseEmotionalState.Clone()
	out.CurrentEmotionalState = p.CurrentEmotionalState.Clone()
	if p.LastInteraction != nil {
		t := *p.LastInteraction
		out.LastInteraction = &t
	}
	return &out
}
