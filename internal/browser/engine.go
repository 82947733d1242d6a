package browser

import (
	"page-marker/internal/config"
	"page-marker/internal/ports"
)

// New returns the manager for the configured engine.
func New(params Params) ports.BrowserManager {
	if params.Config.BrowserConfig.Engine == config.EngineRod {
		return NewRodManager(params)
	}

	return NewManager(params)
}
