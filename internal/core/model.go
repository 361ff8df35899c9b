package core

import (
	"time"
)

// Label is the classification verdict for an email.
type Label string

const (
	LabelNotSpam Label = "Not Spam"
	LabelSpam    Label = "Spam"
)

// Class indexes are fixed by the trained pipeline: 0 = ham, 1 = spam.
const (
	ClassNotSpam = 0
	ClassSpam    = 1
)

// LabelForClass maps a class index to its label. Any index other than the
// spam class resolves to "Not Spam".
func LabelForClass(idx int) Label {
	if idx == ClassSpam {
		return LabelSpam
	}
	return LabelNotSpam
}

// PredictionResult is the outcome of classifying one email. Results are
// computed fresh per request and never persisted.
type PredictionResult struct {
	Label        Label
	Confidence   float64
	ModelUsed    string
	PredictedAt  time.Time
	ProcessingID string
}
