// Package i18n serves the overlay's message table in English and Bengali.
package i18n

import (
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
	"golang.org/x/text/language"
)

// Language is a supported UI language code
type Language string

const (
	English Language = "en"
	Bengali Language = "bn"
)

// Supported lists languages in matcher preference order (first is the fallback)
var Supported = []Language{English, Bengali}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Bengali})

// Parse maps a language code or an Accept-Language header value to a supported language.
// Unknown or empty input yields English.
func Parse(s string) Language {
	if s == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	return Supported[idx]
}

// T returns the translation for key, falling back to the key itself.
func T(lang Language, key string) string {
	if entry, ok := translations[key]; ok {
		if text, ok := entry[lang]; ok && text != "" {
			return text
		}
	}
	return key
}

// All returns every message for a language
func All(lang Language) map[string]string {
	out := make(map[string]string, len(translations))
	for key := range translations {
		out[key] = T(lang, key)
	}
	return out
}

// TrendKey returns the message key for a trend label. Neutral has no badge in the overlay
// but still gets a key so the API can always return text.
func TrendKey(t models.Trend) string {
	switch t {
	case models.TrendIncreasing:
		return "trendIncreasing"
	case models.TrendDecreasing:
		return "trendDecreasing"
	case models.TrendVolatile:
		return "trendVolatile"
	case models.TrendStable:
		return "trendStable"
	default:
		return "trendNeutral"
	}
}

// ConfidenceKey returns the message key for a confidence tier
func ConfidenceKey(c models.Confidence) string {
	return "confidence" + string(c)
}

// CategoryKey returns the message key for a category
func CategoryKey(c models.Category) string {
	switch c {
	case models.CategoryLow:
		return "low"
	case models.CategoryMedium:
		return "medium"
	default:
		return "high"
	}
}

// OCRStatusKey returns the message key for an OCR status
func OCRStatusKey(s models.OCRStatus) string {
	switch s {
	case models.OCRStatusInitializing:
		return "ocrStatusInitializing"
	case models.OCRStatusActive:
		return "ocrStatusActive"
	case models.OCRStatusStopping:
		return "ocrStatusStopping"
	case models.OCRStatusError:
		return "ocrStatusError"
	default:
		return "ocrStatusIdle"
	}
}
