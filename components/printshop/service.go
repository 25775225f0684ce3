package printshop

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated is returned when a dashboard is requested for a
	// session that has not passed the login gate.
	ErrUnauthenticated = errors.New("printshop: session is not authenticated")
	errMissingRegistry = errors.New("printshop: panel registry not configured")
)

// Options configures the dashboard Service.
type Options struct {
	Providers ProviderRegistry
	Telemetry Telemetry
}

// Service resolves the dashboard panels for authenticated sessions.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// ConfigureLayout fetches every registered panel in registration order. A
// provider failure is recorded and leaves that panel without data.
func (s *Service) ConfigureLayout(ctx context.Context, session Session) (Layout, error) {
	if !session.Authenticated {
		return Layout{}, ErrUnauthenticated
	}
	if s.opts.Providers == nil {
		return Layout{}, errMissingRegistry
	}
	defs := s.opts.Providers.Definitions()
	layout := Layout{Panels: make([]Panel, 0, len(defs))}
	for _, def := range defs {
		panel := Panel{Code: def.Code, Title: def.Title}
		if provider, ok := s.opts.Providers.Provider(def.Code); ok && provider != nil {
			data, err := provider.Fetch(ctx, PanelContext{Definition: def, Session: session})
			if err != nil {
				s.recordTelemetry(ctx, "printshop.panel.provider_error", map[string]any{
					"panel": def.Code,
					"error": err.Error(),
				})
			} else {
				panel.Data = data
			}
		}
		layout.Panels = append(layout.Panels, panel)
	}
	s.recordTelemetry(ctx, "printshop.layout.resolve", map[string]any{
		"session_id": session.ID,
		"panels":     len(layout.Panels),
	})
	return layout, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
