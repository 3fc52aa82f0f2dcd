package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/utils"
)

type SummarizeRequest struct {
	Text string `json:"text"`
	services.SummaryOptions
}

type TranslateRequest struct {
	Text string `json:"text"`
	services.TranslationOptions
}

type TextRequest struct {
	Text string `json:"text"`
}

type ThoughtProcessResponse struct {
	Analysis    models.Analysis `json:"analysis"`
	MachineCode string          `json:"machineCode"`
	JSON        string          `json:"json"`
}

func Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateText("text", req.Text); err != nil {
		writeError(w, err, "")
		return
	}
	res, err := summarizer.Summarize(r.Context(), req.Text, req.SummaryOptions)
	if err != nil {
		writeError(w, err, "요약 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateText("text", req.Text); err != nil {
		writeError(w, err, "")
		return
	}
	res, err := translator.Translate(r.Context(), req.Text, req.TranslationOptions)
	if err != nil {
		writeError(w, err, "번역 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func ListLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": services.SupportedLanguages(),
	})
}

func DetectLanguage(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateText("text", req.Text); err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, services.DetectLanguage(req.Text))
}

// TextToSpeech returns synthesis metadata; no audio is produced.
func TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req services.TTSRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := services.Synthesize(req)
	if err != nil {
		writeError(w, err, "speech synthesis failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SpeechToText accepts a multipart "audio" clip (max 10MB) and an optional
// "language" field.
func SpeechToText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAudioBytes+1<<20)
	if err := r.ParseMultipartForm(services.MaxAudioBytes); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "audio is required")
		return
	}
	defer file.Close()
	if header.Size > services.MaxAudioBytes {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputTooLong, "audio must be at most 10MB")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, services.MaxAudioBytes+1))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, "Failed to read audio")
		return
	}

	res, err := services.Transcribe(r.Context(), audio, r.FormValue("language"), mediaUploader())
	if err != nil {
		writeError(w, err, "transcription failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ThoughtProcess runs the NLU analysis and renders it as pseudo-assembly.
func ThoughtProcess(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateText("text", req.Text); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, "Invalid input. Please provide a text string.")
		return
	}

	analysis := services.Analyze(req.Text)
	pretty, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		writeError(w, err, "Failed to process the thought.")
		return
	}
	writeJSON(w, http.StatusOK, ThoughtProcessResponse{
		Analysis:    analysis,
		MachineCode: services.MachineCode(analysis),
		JSON:        string(pretty),
	})
}
