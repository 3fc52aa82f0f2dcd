package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantReply_Templates(t *testing.T) {
	a := NewAssistant(7)

	assert.True(t, strings.HasPrefix(a.Reply("What is a black hole?"), "a black hole refers to a concept"))
	assert.True(t, strings.HasPrefix(a.Reply("How do I bake bread"), "To I bake bread, you would typically"))
	assert.True(t, strings.HasPrefix(a.Reply("Why is the sky blue?"), "The reason for is the sky blue is typically"))
	assert.True(t, strings.HasPrefix(a.Reply("When does spring start?"), "The timing of does spring start depends"))
	assert.True(t, strings.HasPrefix(a.Reply("Where is Seoul?"), "The location of is Seoul varies"))
	assert.True(t, strings.HasPrefix(a.Reply("Who wrote Hamlet?"), "The person or entity wrote Hamlet would be"))
	assert.True(t, strings.HasPrefix(a.Reply("Is it late?"), "That's an interesting question"))
	assert.True(t, strings.HasPrefix(a.Reply("I like rainy mornings a lot"), "Your observation about I like rainy... presents"))
}

func TestAssistantReply_Philosophical(t *testing.T) {
	a := NewAssistant(7)
	assert.Contains(t, philosophicalResponses, a.Reply("I had a complex thought about time"))
}

func TestExtractSubject(t *testing.T) {
	assert.Equal(t, "gravity", ExtractSubject("What is gravity?", "what is", "what are"))
	assert.Equal(t, "no prefix here", ExtractSubject("no prefix here!", "what is"))
	assert.Equal(t, "", ExtractSubject("what is", "what is"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("What is AI?", "what is ai"))
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.InDelta(t, 0.5, Similarity("a b c", "a b d e"), 0.2)
}

func TestFindSimilar(t *testing.T) {
	records := SeedResponses()

	match := FindSimilar(records, records[0].Question)
	require.NotNil(t, match)
	assert.Equal(t, records[0].ID, match.ID)

	assert.Nil(t, FindSimilar(records, "completely unrelated words about gardening"))
}

func TestNormalizeModelID(t *testing.T) {
	assert.Equal(t, "gpt2", NormalizeModelID("huggingface-gpt2"))
	assert.Equal(t, "gpt2-large", NormalizeModelID("local-gpt2-large"))
	assert.Equal(t, "gpt2-medium", NormalizeModelID(""))
}

func TestReplyHelpers(t *testing.T) {
	assert.Equal(t, "Based on similar questions in our database: 42", DatabaseReply("42"))
	assert.Equal(t, "Based on web search results: info\n\nThis information should help answer your question about q.", SearchReply("info", "q"))
	assert.Contains(t, StreamResponses, NewAssistant(3).StreamResponse())
}
