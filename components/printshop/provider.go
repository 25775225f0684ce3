package printshop

import "context"

// Provider fetches the data required to render a dashboard panel.
type Provider interface {
	Fetch(ctx context.Context, meta PanelContext) (PanelData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta PanelContext) (PanelData, error)

// Fetch calls f(ctx, meta).
func (f ProviderFunc) Fetch(ctx context.Context, meta PanelContext) (PanelData, error) {
	return f(ctx, meta)
}

// PanelContext contains the metadata needed by providers.
type PanelContext struct {
	Definition PanelDefinition
	Session    Session
}

// PanelData is an opaque payload passed to templates.
type PanelData map[string]any
