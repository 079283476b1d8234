package vision

import (
	"fmt"

	"snapstock/internal/domain/service"
	"snapstock/pkg/config"
)

// NewCaptioner creates a captioner based on configuration
func NewCaptioner(cfg *config.Config) (service.Captioner, error) {
	switch cfg.VisionProvider {
	case "openai":
		return NewOpenAICaptioner(cfg.VisionBaseURL, cfg.VisionModel, cfg.VisionAPIKey)
	case "mock":
		return NewMockCaptioner(cfg.VisionModel), nil
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", cfg.VisionProvider)
	}
}
