package app

import (
	"context"
	"fmt"
)

// Application wires the configuration, logger, gateway and controller
// together. The TUI talks to the controller; everything else hangs off
// this struct.
type Application struct {
	Config     Config
	Logger     *Logger
	Gateway    Gateway
	Controller *Controller
	Shell      Shell

	// Local is set when the configured backend is the local server, so
	// the TUI can list models and report health.
	Local *LocalGateway
}

// NewApplication builds the application for the configured backend.
// mockMode swaps in the deterministic gateway regardless of config.
func NewApplication(ctx context.Context, cfg Config, mockMode bool) (*Application, error) {
	logger := NewFileLogger()

	a := &Application{
		Config: cfg,
		Logger: logger,
		Shell:  NoopShell{},
	}

	switch {
	case mockMode:
		a.Gateway = NewMockGateway()
	case cfg.Backend == "local":
		local := NewLocalGateway(cfg.LocalURL, cfg.LocalModel, logger)
		a.Gateway = local
		a.Local = local
		a.Shell = NewExecShell(cfg.LocalURL, logger)
	case cfg.Backend == "gemini":
		gw, err := NewGeminiGateway(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, err
		}
		a.Gateway = gw
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	a.Controller = NewController(a.Gateway, logger,
		WithAuditSource(func() (string, error) { return CollectAuditSource(cfg.AuditRoot) }))
	logger.Info("application started", map[string]any{"backend": cfg.Backend, "mock": mockMode})
	return a, nil
}

// Close releases the controller and its workers.
func (a *Application) Close() {
	if a.Controller != nil {
		a.Controller.Close()
	}
}
