package di

import (
	"go.uber.org/dig"

	"github.com/mikey/email-scam-classifier/internal/config"
	"github.com/mikey/email-scam-classifier/internal/core"
	"github.com/mikey/email-scam-classifier/internal/factory"
	"github.com/mikey/email-scam-classifier/internal/logging"
	"github.com/mikey/email-scam-classifier/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}

	// Register artifact store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ArtifactStore, error) {
		return f.CreateArtifactStore()
	}); err != nil {
		return nil, err
	}

	// Register prediction service
	if err := container.Provide(core.NewPredictionService); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
