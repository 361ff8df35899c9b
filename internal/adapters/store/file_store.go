package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mikey/email-scam-classifier/internal/classifier"
	"github.com/mikey/email-scam-classifier/internal/core"
	"go.uber.org/zap"
)

// FileStore loads the trained artifact from a JSON document on disk.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a new file-backed artifact store
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads and validates the artifact file
func (s *FileStore) Load(ctx context.Context) (core.Classifier, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read artifact file: %w", err)
	}

	var artifact classifier.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact file %s: %w", s.path, err)
	}

	clf, err := classifier.FromArtifact(&artifact)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact in %s: %w", s.path, err)
	}

	s.logger.Info("Loaded classifier artifact from file",
		zap.String("path", s.path),
		zap.String("model_type", artifact.ModelType),
		zap.Int("vocabulary_size", len(artifact.Vocabulary)))

	return clf, nil
}
