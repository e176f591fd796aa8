package vision

import (
	"fmt"

	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/vision/gemini"
	"github.com/classpulse/classpulse/internal/vision/openai"
	"github.com/classpulse/classpulse/pkg/models"
)

// NewProvider constructs the appropriate vision provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.VisionProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(cfg.Gemini), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown vision provider %q: must be one of gemini, openai", cfg.Provider)
	}
}
