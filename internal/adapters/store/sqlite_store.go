package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mikey/email-scam-classifier/internal/classifier"
	"github.com/mikey/email-scam-classifier/internal/core"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore loads the trained artifact from a SQLite database.
type SQLiteStore struct {
	path   string
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite-backed artifact store
func NewSQLiteStore(path string, logger *zap.Logger) *SQLiteStore {
	return &SQLiteStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the artifact rows and builds the classifier
func (s *SQLiteStore) Load(ctx context.Context) (core.Classifier, error) {
	// sql.Open would create an empty database for a missing path, so check
	// up front and report not-found instead.
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, s.path)
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	artifact, err := loadArtifact(ctx, db)
	if err != nil {
		return nil, err
	}

	clf, err := classifier.FromArtifact(artifact)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact in %s: %w", s.path, err)
	}

	s.logger.Info("Loaded classifier artifact from SQLite",
		zap.String("path", s.path),
		zap.String("model_type", artifact.ModelType),
		zap.Int("vocabulary_size", len(artifact.Vocabulary)))

	return clf, nil
}
