package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
)

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var supportedLanguages = []Language{
	{"ko", "한국어"},
	{"en", "영어"},
	{"ja", "일본어"},
	{"zh", "중국어"},
	{"es", "스페인어"},
	{"fr", "프랑스어"},
	{"de", "독일어"},
	{"ru", "러시아어"},
	{"it", "이탈리아어"},
	{"pt", "포르투갈어"},
}

// SupportedLanguages returns the translation targets in display order.
func SupportedLanguages() []Language {
	return append([]Language(nil), supportedLanguages...)
}

func isSupportedLanguage(code string) bool {
	for _, l := range supportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

var (
	hangulRe = regexp.MustCompile(`[가-힣]`)
	hanRe    = regexp.MustCompile(`[一-龯]`)
	kanaRe   = regexp.MustCompile(`[ぁ-んァ-ン]`)
)

const detectionConfidence = 0.85

type LanguageDetection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// DetectLanguage checks scripts in a fixed order: Hangul, Han, kana, else English.
// Japanese text containing kanji is therefore reported as zh.
func DetectLanguage(text string) LanguageDetection {
	lang := "en"
	switch {
	case hangulRe.MatchString(text):
		lang = "ko"
	case hanRe.MatchString(text):
		lang = "zh"
	case kanaRe.MatchString(text):
		lang = "ja"
	}
	return LanguageDetection{Language: lang, Confidence: detectionConfidence}
}

type TranslationOptions struct {
	SourceLanguage string `json:"sourceLanguage,omitempty"` // "" or "auto" detects
	TargetLanguage string `json:"targetLanguage"`
	Formality      string `json:"formalityLevel,omitempty"` // formal (default) or informal
}

type TranslationResult struct {
	OriginalText   string  `json:"originalText"`
	TranslatedText string  `json:"translatedText"`
	SourceLanguage string  `json:"sourceLanguage"`
	TargetLanguage string  `json:"targetLanguage"`
	Confidence     float64 `json:"confidence"`
}

// Translator produces labelled mock translations. Results are cached.
type Translator struct {
	cache *CacheService
	delay time.Duration
}

func NewTranslator(cache *CacheService, delay time.Duration) *Translator {
	return &Translator{cache: cache, delay: delay}
}

func (t *Translator) Translate(ctx context.Context, text string, opts TranslationOptions) (*TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "번역할 텍스트가 비어있습니다.")
	}
	if opts.TargetLanguage == "" {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "대상 언어가 필요합니다.")
	}
	if !isSupportedLanguage(opts.TargetLanguage) {
		return nil, apperr.Newf(apperr.InputInvalid, "지원하지 않는 언어입니다: %s", opts.TargetLanguage)
	}
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "auto"
	}
	if opts.Formality == "" {
		opts.Formality = "formal"
	}

	key := CacheKey("translate", fmt.Sprintf("%s:%s:%s:%s", opts.SourceLanguage, opts.TargetLanguage, opts.Formality, text))
	var cached TranslationResult
	if hit, _ := t.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	if err := sleepContext(ctx, t.delay); err != nil {
		return nil, err
	}

	result := &TranslationResult{
		OriginalText:   text,
		TranslatedText: mockTranslate(text, opts.TargetLanguage),
		SourceLanguage: opts.SourceLanguage,
		TargetLanguage: opts.TargetLanguage,
		Confidence:     detectionConfidence,
	}
	if result.SourceLanguage == "auto" {
		result.SourceLanguage = DetectLanguage(text).Language
	}

	if err := t.cache.Set(ctx, key, result); err != nil {
		log.Printf("⚠️ Failed to cache translation: %v", err)
	}
	return result, nil
}

func mockTranslate(text, target string) string {
	hasHangul := hangulRe.MatchString(text)
	switch {
	case target == "en" && hasHangul:
		return "[Translated to English]: " + text
	case target == "ko" && !hasHangul:
		return "[영어에서 번역됨]: " + text
	case target == "ja":
		return "[日本語に翻訳]: " + text
	case target == "zh":
		return "[翻译成中文]: " + text
	default:
		return fmt.Sprintf("[Translated to %s]: %s", target, text)
	}
}
