package services

import (
	"context"
	"hash/fnv"
	"log"
	"math"
	"strings"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
)

const (
	// MaxAudioBytes caps speech-to-text uploads.
	MaxAudioBytes = 10 << 20

	wordsPerMinute  = 150.0
	defaultLanguage = "ko-KR"
	defaultVoice    = "default"
	audioFolder     = "voice"
)

// TTSRequest is the body of POST /api/tts. Zero values pick the defaults.
type TTSRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
	Pitch    float64 `json:"pitch,omitempty"`
	Volume   float64 `json:"volume,omitempty"`
	Language string  `json:"language,omitempty"`
}

// TTSResult describes the utterance a client would play.
type TTSResult struct {
	Text              string   `json:"text"`
	Voice             string   `json:"voice"`
	Language          string   `json:"language"`
	Rate              float64  `json:"rate"`
	Pitch             float64  `json:"pitch"`
	Volume            float64  `json:"volume"`
	WordCount         int      `json:"wordCount"`
	EstimatedDuration float64  `json:"estimatedDuration"`
	Chunks            []string `json:"chunks"`
}

// Synthesize returns simulated synthesis metadata. Duration assumes 150 words
// per minute at rate 1.
func Synthesize(req TTSRequest) (*TTSResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "text is required")
	}

	res := &TTSResult{
		Text:     text,
		Voice:    req.Voice,
		Language: req.Language,
		Rate:     clampRange(req.Rate, 0.1, 10, 1),
		Pitch:    clampRange(req.Pitch, 0, 2, 1),
		Volume:   clampRange(req.Volume, 0, 1, 1),
		Chunks:   SplitSentences(text),
	}
	if res.Voice == "" {
		res.Voice = defaultVoice
	}
	if res.Language == "" {
		res.Language = defaultLanguage
	}
	res.WordCount = len(strings.Fields(text))
	seconds := float64(res.WordCount) / (wordsPerMinute * res.Rate) * 60
	res.EstimatedDuration = math.Round(seconds*100) / 100
	return res, nil
}

// clampRange maps 0 to def and otherwise clamps v to [lo, hi].
func clampRange(v, lo, hi, def float64) float64 {
	if v == 0 {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

var cannedTranscripts = []string{
	"안녕하세요, 루나. 오늘 날씨가 어때요?",
	"Hello Luna, can you tell me something interesting?",
	"인공지능에 대해 더 알고 싶어요.",
	"What can you help me with today?",
	"오늘 기분이 좋아요. 고마워요!",
}

// MediaUploader stores audio clips. *CloudinaryService satisfies it.
type MediaUploader interface {
	UploadBytes(ctx context.Context, data []byte, folder string) (string, error)
}

type STTResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"isFinal"`
	Language   string  `json:"language"`
	Size       int     `json:"size"`
	AudioURL   string  `json:"audioUrl,omitempty"`
}

// Transcribe returns a canned transcript chosen from the clip's content. When
// uploader is non-nil the clip is stored and its URL returned; upload errors
// are logged and do not fail the transcription.
func Transcribe(ctx context.Context, audio []byte, language string, uploader MediaUploader) (*STTResult, error) {
	if len(audio) == 0 {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "audio is required")
	}
	if len(audio) > MaxAudioBytes {
		return nil, apperr.Newf(apperr.InputTooLong, "audio exceeds %d bytes", MaxAudioBytes)
	}
	if language == "" {
		language = defaultLanguage
	}

	h := fnv.New32a()
	_, _ = h.Write(audio)
	sum := h.Sum32()

	res := &STTResult{
		Text:       cannedTranscripts[int(sum%uint32(len(cannedTranscripts)))],
		Confidence: 0.85 + float64(sum%15)/100,
		IsFinal:    true,
		Language:   language,
		Size:       len(audio),
	}
	if uploader != nil {
		url, err := uploader.UploadBytes(ctx, audio, audioFolder)
		if err != nil {
			log.Printf("⚠️ Failed to store audio clip: %v", err)
		} else {
			res.AudioURL = url
		}
	}
	return res, nil
}
