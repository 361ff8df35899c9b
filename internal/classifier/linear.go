package classifier

import (
	"github.com/mikey/email-scam-classifier/internal/core"
)

// Linear scores email text with a fitted linear decision function. It has
// no calibrated probability output, so it only implements the plain
// Classifier capability.
type Linear struct {
	artifact *Artifact
}

// ModelType identifies the model.
func (l *Linear) ModelType() string {
	return ModelLinear
}

// Predict returns the spam class when the decision function is positive.
// A zero score resolves to ham, matching the lowest-index tie-break.
func (l *Linear) Predict(texts []string) ([]int, error) {
	classes := make([]int, len(texts))
	for i, text := range texts {
		score := l.artifact.Intercept
		for idx, count := range l.artifact.featurize(text) {
			score += float64(count) * l.artifact.Weights[idx]
		}
		if score > 0 {
			classes[i] = core.ClassSpam
		} else {
			classes[i] = core.ClassNotSpam
		}
	}
	return classes, nil
}

var _ core.Classifier = (*Linear)(nil)
