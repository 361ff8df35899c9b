package factory

import (
	"fmt"

	"github.com/mikey/email-scam-classifier/internal/adapters/store"
	"github.com/mikey/email-scam-classifier/internal/config"
	"github.com/mikey/email-scam-classifier/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates artifact stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateArtifactStore creates an artifact store based on the configuration
func (f *StoreFactory) CreateArtifactStore() (core.ArtifactStore, error) {
	model := f.cfg.GetModel()

	switch model.Store {
	case "file":
		return store.NewFileStore(model.Path, f.logger), nil
	case "sqlite":
		return store.NewSQLiteStore(model.SQLitePath, f.logger), nil
	case "mysql":
		return store.NewMySQLStore(model.MySQLDSN, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported artifact store: %s", model.Store)
	}
}
