package http

import (
	"context"

	"routecleaner/internal/config"
	"routecleaner/internal/services"
)

// CleaningService is the part of services.CleaningService the handlers use
type CleaningService interface {
	RunPipeline(ctx context.Context, in services.Input, out services.Output, opts ...services.RunOption) (*services.Result, error)
	Config() config.Config
}
