package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/email-scam-classifier/internal/classifier"
	"github.com/mikey/email-scam-classifier/internal/core"
	"go.uber.org/zap"
)

// MySQLStore loads the trained artifact from a MySQL database.
type MySQLStore struct {
	dsn    string
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL-backed artifact store
func NewMySQLStore(dsn string, logger *zap.Logger) *MySQLStore {
	return &MySQLStore{
		dsn:    dsn,
		logger: logger,
	}
}

// Load reads the artifact rows and builds the classifier
func (s *MySQLStore) Load(ctx context.Context) (core.Classifier, error) {
	db, err := sql.Open("mysql", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	artifact, err := loadArtifact(ctx, db)
	if err != nil {
		return nil, err
	}

	clf, err := classifier.FromArtifact(artifact)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact in MySQL store: %w", err)
	}

	s.logger.Info("Loaded classifier artifact from MySQL",
		zap.String("model_type", artifact.ModelType),
		zap.Int("vocabulary_size", len(artifact.Vocabulary)))

	return clf, nil
}
