package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonaHandlers(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list PersonaListResponse
	decode(t, rec, &list)
	require.Len(t, list.Personas, 1)
	assert.Equal(t, services.DefaultPersonaID, list.ActivePersonaID)

	rec = doJSON(t, h, http.MethodPost, "/api/personas", map[string]interface{}{
		"name":   "Nova",
		"traits": []map[string]interface{}{{"name": "openness", "value": 1.5}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/api/personas", map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/personas", map[string]interface{}{
		"name":        "Nova",
		"description": "A cheerful guide",
		"traits":      []map[string]interface{}{{"name": "openness", "value": 0.8}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var nova models.Persona
	decode(t, rec, &nova)
	require.NotEmpty(t, nova.ID)

	rec = doJSON(t, h, http.MethodPut, "/api/personas/active", SetActivePersonaRequest{ID: nova.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPut, "/api/personas/active", SetActivePersonaRequest{ID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/personas/"+nova.ID+"/chat", PersonaChatRequest{Message: "안녕하세요!"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply PersonaChatResponse
	decode(t, rec, &reply)
	assert.NotEmpty(t, reply.Response)
	assert.Equal(t, "greeting", reply.Intent)
	require.NotNil(t, reply.Persona)
	assert.Equal(t, 1, reply.Persona.InteractionCount)

	rec = doJSON(t, h, http.MethodPost, "/api/personas/"+nova.ID+"/chat", PersonaChatRequest{Message: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/personas/"+services.DefaultPersonaID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/personas/"+nova.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/personas/"+nova.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// deleting the active persona hands control back to Luna
	rec = doJSON(t, h, http.MethodGet, "/api/personas", nil)
	decode(t, rec, &list)
	assert.Equal(t, services.DefaultPersonaID, list.ActivePersonaID)
}

func TestNeuralNetworkHandlers(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/neural-network/train", services.TrainRequest{Preset: "xor", Epochs: 200, Seed: 7, LearningRate: 0.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var trained services.TrainResult
	decode(t, rec, &trained)
	assert.Equal(t, "2-4-1", trained.Architecture)
	assert.Equal(t, 200, trained.Epochs)
	assert.NotEmpty(t, trained.Errors)

	rec = doJSON(t, h, http.MethodPost, "/api/neural-network/"+trained.ID+"/predict", PredictRequest{Inputs: []float64{1, 0}})
	require.Equal(t, http.StatusOK, rec.Code)
	var pred PredictResponse
	decode(t, rec, &pred)
	require.Len(t, pred.Outputs, 1)
	assert.True(t, pred.Outputs[0] >= 0 && pred.Outputs[0] <= 1)

	rec = doJSON(t, h, http.MethodPost, "/api/neural-network/"+trained.ID+"/predict", PredictRequest{Inputs: []float64{1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/api/neural-network/ghost/predict", PredictRequest{Inputs: []float64{1, 0}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/neural-network/"+trained.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var exported map[string]interface{}
	decode(t, rec, &exported)
	assert.Equal(t, []interface{}{float64(2), float64(4), float64(1)}, exported["layers"])

	rec = doJSON(t, h, http.MethodPost, "/api/neural-network/train", services.TrainRequest{Layers: []int{2, 1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainNetwork_RejectsUnstableTraining(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/neural-network/train", services.TrainRequest{
		Preset: "xor", Activation: "leakyRelu", LearningRate: 1000, Epochs: 50,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "NaN")

	rec = doJSON(t, h, http.MethodPost, "/api/neural-network/train", map[string]interface{}{
		"layers":       []int{1, 1},
		"learningRate": 1,
		"epochs":       5,
		"dataset":      []map[string]interface{}{{"inputs": []float64{1}, "targets": []float64{1e200}}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var eb errorBody
	decode(t, rec, &eb)
	assert.Contains(t, eb.Error, "diverged")
}

func TestTextHandlers(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/summarize", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/summarize", map[string]string{"text": "하나. 둘. 셋."})
	require.Equal(t, http.StatusOK, rec.Code)
	var sum services.SummaryResult
	decode(t, rec, &sum)
	assert.Equal(t, "하나. 둘. 셋.", sum.Summary)

	rec = doJSON(t, h, http.MethodPost, "/api/translate", map[string]string{"text": "안녕하세요", "targetLanguage": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	var tr services.TranslationResult
	decode(t, rec, &tr)
	assert.Equal(t, "[Translated to English]: 안녕하세요", tr.TranslatedText)
	assert.Equal(t, "ko", tr.SourceLanguage)

	rec = doJSON(t, h, http.MethodPost, "/api/translate", map[string]string{"text": "hi", "targetLanguage": "xx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/translate/languages", nil)
	var langs struct {
		Languages []services.Language `json:"languages"`
	}
	decode(t, rec, &langs)
	assert.Len(t, langs.Languages, 10)

	rec = doJSON(t, h, http.MethodPost, "/api/detect-language", TextRequest{Text: "こんにちは"})
	var det services.LanguageDetection
	decode(t, rec, &det)
	assert.Equal(t, "ja", det.Language)

	rec = doJSON(t, h, http.MethodPost, "/api/tts", services.TTSRequest{Text: "one two three", Rate: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var tts services.TTSResult
	decode(t, rec, &tts)
	assert.Equal(t, 3, tts.WordCount)
	assert.InDelta(t, 1.2, tts.EstimatedDuration, 0.001)

	rec = doJSON(t, h, http.MethodPost, "/api/thought-process", TextRequest{Text: "What is the weather in Seoul?"})
	require.Equal(t, http.StatusOK, rec.Code)
	var thought ThoughtProcessResponse
	decode(t, rec, &thought)
	assert.Equal(t, "question", thought.Analysis.Intent)
	assert.Contains(t, thought.MachineCode, `LOAD_INTENT "question"`)
	var roundTrip models.Analysis
	require.NoError(t, json.Unmarshal([]byte(thought.JSON), &roundTrip))
	assert.Equal(t, thought.Analysis.Intent, roundTrip.Intent)

	rec = doJSON(t, h, http.MethodPost, "/api/thought-process", TextRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpeechToText(t *testing.T) {
	h := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "clip.webm")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake audio bytes"))
	require.NoError(t, mw.WriteField("language", "en-US"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/stt", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stt services.STTResult
	decode(t, rec, &stt)
	assert.NotEmpty(t, stt.Text)
	assert.Equal(t, "en-US", stt.Language)
	assert.Equal(t, len("fake audio bytes"), stt.Size)
	assert.Empty(t, stt.AudioURL)

	req = httptest.NewRequest(http.MethodPost, "/api/stt", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
