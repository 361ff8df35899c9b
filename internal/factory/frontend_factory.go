package factory

import (
	"fmt"

	"github.com/mikey/email-scam-classifier/internal/adapters/httpapi"
	"github.com/mikey/email-scam-classifier/internal/adapters/smtpfilter"
	"github.com/mikey/email-scam-classifier/internal/config"
	"github.com/mikey/email-scam-classifier/internal/core"
	"github.com/mikey/email-scam-classifier/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates serving frontends based on configuration
type FrontendFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.PredictionService
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, service *core.PredictionService) *FrontendFactory {
	return &FrontendFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateFrontend creates a frontend based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	server := f.cfg.GetServer()

	switch server.FrontendType {
	case "http":
		return httpapi.NewServer(f.service, f.logger, server.ListenAddress), nil
	case "postfix":
		return smtpfilter.NewPostfixFilter(f.service, f.logger, server), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", server.FrontendType)
	}
}
