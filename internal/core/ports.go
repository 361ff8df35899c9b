package core

import (
	"context"
	"errors"
)

// ErrArtifactNotFound is returned by an ArtifactStore when no trained
// artifact exists at the configured location.
var ErrArtifactNotFound = errors.New("classifier artifact not found")

// Classifier scores raw email text into one of the two fixed classes.
// Implementations own the full feature pipeline, including normalization
// with the configuration the artifact was trained under.
type Classifier interface {
	// Predict returns one class index per input text.
	Predict(texts []string) ([]int, error)

	// ModelType identifies the underlying model, e.g. "multinomial_nb".
	ModelType() string
}

// ProbabilisticClassifier is a Classifier that can also report per-class
// probability vectors. Whether an artifact supports it is decided once at
// load time, not re-checked per call.
type ProbabilisticClassifier interface {
	Classifier

	// PredictProba returns one probability vector per input text, indexed
	// by class.
	PredictProba(texts []string) ([][]float64, error)
}

// ArtifactStore loads the trained classifier artifact from its backing
// location (file, SQLite, MySQL).
type ArtifactStore interface {
	Load(ctx context.Context) (Classifier, error)
}
