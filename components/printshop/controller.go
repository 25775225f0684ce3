package printshop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Template names rendered by the controller.
const (
	TemplateLogin     = "login.html"
	TemplateDashboard = "dashboard.html"
	TemplateOrderForm = "order_form.html"
)

// Route paths referenced by the rendered pages.
const (
	PathDashboard = "/admin/dashboard"
	PathLogin     = "/admin/login"
	PathLogout    = "/admin/logout"
	PathOrder     = "/order"
	PathToasts    = PathOrder + "/toasts"
)

// SubmittingRefresh is how often a page rendered mid-submit reloads the form
// when scripts are unavailable.
const SubmittingRefresh = 1

// AlertInvalidCredentials is shown after a rejected login.
const AlertInvalidCredentials = "Invalid credentials"

var errMissingRenderer = errors.New("printshop: renderer not configured")

// LayoutResolver resolves the dashboard layout for a session.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, session Session) (Layout, error)
}

// ControllerOptions wires the controller.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
}

// Controller turns sessions and form state into rendered pages.
type Controller struct {
	service  LayoutResolver
	renderer Renderer
}

// NewController builds a controller.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{service: opts.Service, renderer: opts.Renderer}
}

// LoginView is the state shown on the login page. The password is never
// echoed back.
type LoginView struct {
	Username string
	Alert    string
}

// OrderFormView is the state shown on the order form page.
type OrderFormView struct {
	Form       OrderForm
	Errors     FieldErrors
	Submitting bool
	Toast      *Toast
}

// Page renders the login page for anonymous sessions and the dashboard for
// authenticated ones.
func (c *Controller) Page(ctx context.Context, session Session, out io.Writer) error {
	if !session.Authenticated {
		return c.RenderLogin(out, LoginView{Username: session.Username})
	}
	return c.RenderDashboard(ctx, session, out)
}

// RenderLogin writes the login page.
func (c *Controller) RenderLogin(out io.Writer, view LoginView) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	_, err := c.renderer.Render(TemplateLogin, map[string]any{
		"title":      "Admin Login",
		"username":   view.Username,
		"alert":      view.Alert,
		"login_path": PathLogin,
	}, out)
	return err
}

// RenderDashboard resolves the layout and writes the dashboard page.
func (c *Controller) RenderDashboard(ctx context.Context, session Session, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	payload, err := c.LayoutPayload(ctx, session)
	if err != nil {
		return err
	}
	payload["title"] = "Print Admin Dashboard"
	payload["logout_path"] = PathLogout
	_, err = c.renderer.Render(TemplateDashboard, payload, out)
	return err
}

// LayoutPayload returns the template data for the dashboard.
func (c *Controller) LayoutPayload(ctx context.Context, session Session) (map[string]any, error) {
	if c.service == nil {
		return nil, errMissingRegistry
	}
	layout, err := c.service.ConfigureLayout(ctx, session)
	if err != nil {
		return nil, err
	}
	panels, err := viewData(layout.Panels)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"panels":       panels,
		"username":     session.Username,
		"chart_assets": chartAssets(layout.Panels),
	}
	if queue, ok := layout.Panel(PanelQueue); ok {
		tabs, err := viewData(queue.Data["tabs"])
		if err != nil {
			return nil, err
		}
		payload["queue_tabs"] = tabs
	}
	return payload, nil
}

// RenderOrderForm writes the order form page.
func (c *Controller) RenderOrderForm(out io.Writer, view OrderFormView) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	errs := view.Errors
	if errs == nil {
		errs = FieldErrors{}
	}
	options := make([]map[string]string, 0, 2)
	for _, pt := range []PrintType{PrintTypeColor, PrintTypeBlackAndWhite} {
		options = append(options, map[string]string{"value": string(pt), "label": pt.Label()})
	}
	form, err := viewData(view.Form)
	if err != nil {
		return err
	}
	data := map[string]any{
		"title":       "Printing Service",
		"form":        form,
		"errors":      map[string]string(errs),
		"submitting":  view.Submitting,
		"print_types": options,
		"submit_path": PathOrder,
		"toasts_path": PathToasts,
		"refresh":     SubmittingRefresh,
	}
	if view.Toast != nil {
		toast, err := viewData(view.Toast)
		if err != nil {
			return err
		}
		data["toast"] = toast
	}
	_, err = c.renderer.Render(TemplateOrderForm, data, out)
	return err
}

// chartAssets lists the chart scripts of every panel once, in first-seen
// order.
func chartAssets(panels []Panel) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, panel := range panels {
		assets, _ := panel.Data["chart_assets"].([]string)
		for _, asset := range assets {
			if !seen[asset] {
				seen[asset] = true
				out = append(out, asset)
			}
		}
	}
	return out
}

// viewData reshapes typed values into plain maps keyed by their JSON names
// so templates and the JSON layout endpoint share one vocabulary.
func viewData(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("printshop: encode view data: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("printshop: decode view data: %w", err)
	}
	return out, nil
}
