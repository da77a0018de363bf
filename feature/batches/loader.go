package batches

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"twin-sync/core/batch"
	"twin-sync/core/storage"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the batches feature.
func NewFeature(orch *batch.Orchestrator, client storage.Client, cfg storage.Config, logger *zap.Logger) *Feature {
	svc := NewService(orch, client, cfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "batches"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.orch != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
