package classifier

import (
	"fmt"
	"strings"

	"github.com/mikey/email-scam-classifier/internal/core"
	"github.com/mikey/email-scam-classifier/internal/normalize"
)

// Model type tags carried by exported artifacts.
const (
	ModelMultinomialNB = "multinomial_nb"
	ModelLinear        = "linear"
)

// Artifact is the exported form of the offline-trained pipeline: the
// normalizer configuration it was trained under, the vocabulary of the
// count vectorizer, and the fitted model parameters. Exactly one of the
// parameter sets is populated, selected by ModelType.
type Artifact struct {
	ModelType  string           `json:"model_type"`
	Normalizer normalize.Config `json:"normalizer"`

	// Vocabulary maps a canonical token to its feature column.
	Vocabulary map[string]int `json:"vocabulary"`

	// Multinomial naive Bayes parameters, indexed [class][feature].
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`

	// Linear model parameters: decision function weights toward the spam
	// class, plus intercept. Linear artifacts have no probability output.
	Weights   []float64 `json:"weights,omitempty"`
	Intercept float64   `json:"intercept"`
}

// FromArtifact validates an artifact and builds the matching classifier.
// Naive Bayes artifacts support probabilities; linear ones do not.
func FromArtifact(a *Artifact) (core.Classifier, error) {
	if len(a.Vocabulary) == 0 {
		return nil, fmt.Errorf("artifact has an empty vocabulary")
	}
	features := len(a.Vocabulary)
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= features {
			return nil, fmt.Errorf("vocabulary term %q has feature index %d outside [0, %d)", term, idx, features)
		}
	}

	switch a.ModelType {
	case ModelMultinomialNB:
		if len(a.ClassLogPrior) != numClasses {
			return nil, fmt.Errorf("artifact has %d class priors, want %d", len(a.ClassLogPrior), numClasses)
		}
		if len(a.FeatureLogProb) != numClasses {
			return nil, fmt.Errorf("artifact has %d feature probability rows, want %d", len(a.FeatureLogProb), numClasses)
		}
		for c, row := range a.FeatureLogProb {
			if len(row) != features {
				return nil, fmt.Errorf("class %d has %d feature probabilities, want %d", c, len(row), features)
			}
		}
		return &NaiveBayes{artifact: a}, nil

	case ModelLinear:
		if len(a.Weights) != features {
			return nil, fmt.Errorf("artifact has %d weights, want %d", len(a.Weights), features)
		}
		return &Linear{artifact: a}, nil

	default:
		return nil, fmt.Errorf("unsupported model type: %q", a.ModelType)
	}
}

const numClasses = 2

// featurize turns raw email text into a sparse token-count vector, using
// the artifact's own normalizer configuration. Tokens outside the
// vocabulary are ignored, as the vectorizer did at training time.
func (a *Artifact) featurize(text string) map[int]int {
	counts := make(map[int]int)
	canonical := normalize.Normalize(text, a.Normalizer)
	if canonical == "" {
		return counts
	}
	// Canonical text is already single-space separated.
	for _, token := range strings.Split(canonical, " ") {
		if idx, ok := a.Vocabulary[token]; ok {
			counts[idx]++
		}
	}
	return counts
}
