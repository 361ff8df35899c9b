package core

import (
	"strings"
)

// scamKeywords are the indicator phrases used when no trained artifact is
// usable. The list is fixed; changing it changes fallback verdicts.
var scamKeywords = []string{
	"urgent", "verify", "suspended", "click here", "prize",
	"winner", "congratulations", "bank account", "password",
	"confirm identity", "act now", "limited time", "free money",
	"nigerian prince", "inheritance", "tax refund", "claim now",
	"account locked", "unusual activity", "expires today",
	"verify your account", "confirm your identity", "update payment",
}

const (
	// keywordSpamThreshold is the number of distinct matched phrases at
	// which the fallback calls an email spam.
	keywordSpamThreshold = 3

	// fallbackConfidence is reported whenever no probability output is
	// available (keyword fallback or a plain classifier).
	fallbackConfidence = 0.85
)

// classifyByKeywords is the degraded-mode classifier. Each phrase counts at
// most once regardless of repeats. It never fails.
func classifyByKeywords(text string) Label {
	lower := strings.ToLower(text)
	score := 0
	for _, kw := range scamKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	if score >= keywordSpamThreshold {
		return LabelSpam
	}
	return LabelNotSpam
}
