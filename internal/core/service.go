package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PredictionService classifies email text with the trained artifact,
// degrading to the keyword heuristic whenever the artifact is unusable.
type PredictionService struct {
	store  ArtifactStore
	logger *zap.Logger

	// The artifact is loaded at most once, on first use. A failed load
	// leaves the service in fallback mode for its lifetime.
	mu     sync.Mutex
	loaded bool
	clf    Classifier
	prob   ProbabilisticClassifier
}

// NewPredictionService creates a new prediction service. The artifact is
// not loaded until the first call that needs it.
func NewPredictionService(store ArtifactStore, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		store:  store,
		logger: logger,
	}
}

// Predict classifies a single email text. Classifier faults never surface;
// they are logged and the keyword heuristic answers instead.
func (s *PredictionService) Predict(ctx context.Context, text string) (*PredictionResult, error) {
	clf, prob := s.classifier(ctx)

	result := &PredictionResult{
		PredictedAt:  time.Now(),
		ProcessingID: uuid.NewString(),
	}

	switch {
	case clf == nil:
		s.fallback(text, result)

	case prob != nil:
		probs, err := prob.PredictProba([]string{text})
		if err != nil || len(probs) != 1 || len(probs[0]) == 0 {
			s.logger.Warn("Probability scoring failed, using keyword fallback",
				zap.Error(err),
				zap.String("processing_id", result.ProcessingID))
			s.fallback(text, result)
			break
		}
		idx := argmax(probs[0])
		result.Label = LabelForClass(idx)
		result.Confidence = probs[0][idx]
		result.ModelUsed = clf.ModelType()

	default:
		classes, err := clf.Predict([]string{text})
		if err != nil || len(classes) != 1 {
			s.logger.Warn("Scoring failed, using keyword fallback",
				zap.Error(err),
				zap.String("processing_id", result.ProcessingID))
			s.fallback(text, result)
			break
		}
		result.Label = LabelForClass(classes[0])
		result.Confidence = fallbackConfidence
		result.ModelUsed = clf.ModelType()
	}

	s.logger.Info("Prediction made",
		zap.String("prediction", string(result.Label)),
		zap.Float64("confidence", result.Confidence),
		zap.String("model", result.ModelUsed),
		zap.String("processing_id", result.ProcessingID))

	return result, nil
}

// ModelInfo reports whether a trained artifact is loaded and its model
// type, triggering the lazy load if it has not happened yet.
func (s *PredictionService) ModelInfo(ctx context.Context) (loaded bool, modelType string) {
	clf, _ := s.classifier(ctx)
	if clf == nil {
		return false, ""
	}
	return true, clf.ModelType()
}

// classifier returns the cached artifact, loading it on first call. All
// concurrent first callers block on the mutex and observe the same
// instance; the load runs at most once.
func (s *PredictionService) classifier(ctx context.Context) (Classifier, ProbabilisticClassifier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.clf, s.prob
	}
	s.loaded = true

	clf, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("No usable classifier artifact, fallback mode is permanent for this process",
			zap.Error(err))
		return nil, nil
	}

	s.clf = clf
	if prob, ok := clf.(ProbabilisticClassifier); ok {
		s.prob = prob
	}
	s.logger.Info("Classifier artifact loaded",
		zap.String("model_type", clf.ModelType()),
		zap.Bool("has_probabilities", s.prob != nil))
	return s.clf, s.prob
}

func (s *PredictionService) fallback(text string, result *PredictionResult) {
	result.Label = classifyByKeywords(text)
	result.Confidence = fallbackConfidence
	result.ModelUsed = "keyword_fallback"
}

// argmax returns the index of the largest value, lowest index winning ties.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
