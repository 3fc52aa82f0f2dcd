package services

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical phrases the chat filter looks for. They go through CleanText at
// startup so they compare against cleaned input in the same form.
var threatPhrases = []string{
	"rape",
	"murder",
	"massacre",
	"slaughter",
	"strangle",
	"kill you",
	"kill them",
	"shoot you",
	"stab you",
	"bomb threat",
	"죽여버",
	"살인",
}

var selfHarmPhrases = []string{
	"suicide",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish i was dead",
	"not worth living",
	"better off dead",
	"unalive",
	"자살",
	"자해",
	"죽고 싶",
	"살기 싫",
}

var (
	cleanedThreatPhrases   []string
	cleanedSelfHarmPhrases []string

	obfuscationReplacer = strings.NewReplacer(
		"@", "a", "4", "a", "3", "e", "!", "i", "1", "i", "0", "o",
		"$", "s", "5", "s", "7", "t", "+", "t",
		"а", "a", "е", "e", "і", "i", "о", "o", "р", "p", // Cyrillic look-alikes
	)
	spaceRun = regexp.MustCompile(`\s+`)
)

func init() {
	for _, p := range threatPhrases {
		cleanedThreatPhrases = append(cleanedThreatPhrases, CleanText(p))
	}
	for _, p := range selfHarmPhrases {
		cleanedSelfHarmPhrases = append(cleanedSelfHarmPhrases, CleanText(p))
	}
}

// CleanText lowercases, undoes leetspeak and look-alike letters, turns
// non-letters into spaces and collapses repeated letters ("sooo" -> "so").
func CleanText(text string) string {
	cleaned := obfuscationReplacer.Replace(strings.ToLower(text))

	var builder strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	cleaned = collapseRepeats(builder.String())
	return strings.TrimSpace(spaceRun.ReplaceAllString(cleaned, " "))
}

// collapseRepeats reduces runs of the same letter to one letter; spaces are kept.
func collapseRepeats(text string) string {
	var result strings.Builder
	lastChar := rune(0)
	lastWasLetter := false

	for _, char := range text {
		isLetter := unicode.IsLetter(char)
		if isLetter && lastWasLetter && char == lastChar {
			continue
		}
		result.WriteRune(char)
		lastChar = char
		lastWasLetter = isLetter
	}
	return result.String()
}

// ContainsConfirmedWord reports which phrases occur in cleaned text. Single
// Latin words must match a whole word ("skill" does not match "kil");
// phrases and Hangul words match as substrings.
func ContainsConfirmedWord(cleanedText string, phrases []string) (bool, []string) {
	var confirmed []string
	words := strings.Fields(cleanedText)

	for _, phrase := range phrases {
		if phrase == "" || !strings.Contains(cleanedText, phrase) {
			continue
		}
		if len(strings.Fields(phrase)) > 1 || !isASCII(phrase) {
			confirmed = append(confirmed, phrase)
			continue
		}
		for _, w := range words {
			if w == phrase {
				confirmed = append(confirmed, phrase)
				break
			}
		}
	}
	return len(confirmed) > 0, confirmed
}

// CheckContent reports whether the message contains threats or self-harm content.
func CheckContent(message string) (hasThreat bool, hasSelfHarm bool, matchedKeywords []string) {
	cleanedText := CleanText(message)

	if ok, words := ContainsConfirmedWord(cleanedText, cleanedThreatPhrases); ok {
		hasThreat = true
		matchedKeywords = append(matchedKeywords, words...)
	}
	if ok, words := ContainsConfirmedWord(cleanedText, cleanedSelfHarmPhrases); ok {
		hasSelfHarm = true
		matchedKeywords = append(matchedKeywords, words...)
	}
	return hasThreat, hasSelfHarm, matchedKeywords
}

// SafetyReply replaces the generated answer when a chat message mentions self-harm.
const SafetyReply = "It sounds like you are going through something really painful, and I'm glad you reached out. " +
	"I'm an AI and can't give you the help you deserve right now, but you don't have to face this alone. " +
	"Please contact someone you trust or a local crisis line. In Korea you can call 109 (suicide prevention) at any time, " +
	"and in the US you can call or text 988."

// ThreatReply replaces the generated answer when a chat message contains violent threats.
const ThreatReply = "I can't help with anything that could hurt someone. If you or someone else is in danger, please contact local emergency services."

// ScreenMessage runs the content filter over a chat message and returns the
// fixed reply to send instead of a generated one, if any.
func ScreenMessage(message string) (reply string, flag models.FlagType, matched []string, flagged bool) {
	hasThreat, hasSelfHarm, matched := CheckContent(message)
	switch {
	case hasSelfHarm:
		return SafetyReply, models.FlagTypeSelfHarm, matched, true
	case hasThreat:
		return ThreatReply, models.FlagTypeThreat, matched, true
	default:
		return "", "", nil, false
	}
}

// RecordFlagAsync stores a content flag in MongoDB without blocking the chat reply.
// It is a no-op when MongoDB is not connected.
func RecordFlagAsync(flag models.ContentFlag) {
	if database.DB == nil {
		return
	}
	go func(f models.ContentFlag) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if f.ID.IsZero() {
			f.ID = primitive.NewObjectID()
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = time.Now().UTC()
		}
		if _, err := database.DB.Collection("content_flags").InsertOne(ctx, f); err != nil {
			log.Printf("⚠️ Failed to record content flag: %v", err)
		}
	}(flag)
}

// CleanupOldFlags removes content flags older than the given number of hours.
func CleanupOldFlags(hoursOld int) error {
	if database.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoffTime := time.Now().Add(-time.Duration(hoursOld) * time.Hour)
	result, err := database.DB.Collection("content_flags").DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": cutoffTime},
	})
	if err != nil {
		return err
	}
	if result.DeletedCount > 0 {
		log.Printf("🧹 Cleaned up %d content flags older than %d hours", result.DeletedCount, hoursOld)
	}
	return nil
}

// StartFlagCleanup periodically removes old content flags.
// Default: flags older than 24 hours, checked every hour.
func StartFlagCleanup(ctx context.Context, cleanupIntervalHours int, flagAgeHours int) {
	if cleanupIntervalHours <= 0 {
		cleanupIntervalHours = 1
	}
	if flagAgeHours <= 0 {
		flagAgeHours = 24
	}

	go func() {
		ticker := time.NewTicker(time.Duration(cleanupIntervalHours) * time.Hour)
		defer ticker.Stop()

		if err := CleanupOldFlags(flagAgeHours); err != nil {
			log.Printf("⚠️ Content flag cleanup failed: %v", err)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := CleanupOldFlags(flagAgeHours); err != nil {
					log.Printf("⚠️ Content flag cleanup failed: %v", err)
				}
			}
		}
	}()
}
