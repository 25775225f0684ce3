package gorouter

import (
	"bytes"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	printshop "github.com/goliatone/go-printshop/components/printshop"
	"github.com/goliatone/go-printshop/components/printshop/commands"
	"github.com/goliatone/go-printshop/components/printshop/httpapi"
	"github.com/goliatone/go-printshop/components/printshop/queries"
)

// SessionResolver extracts the session cookie value from a request.
// It returns "" when the browser has no usable session id.
type SessionResolver func(router.Context) string

// Config wires go-router with the print shop handlers.
type Config[T any] struct {
	Router          router.Router[T]
	Handlers        *httpapi.Handlers
	SessionResolver SessionResolver
	Routes          RouteConfig
}

// RouteConfig customizes the paths used for the page and JSON endpoints.
type RouteConfig struct {
	Health    string
	Dashboard string
	Layout    string
	Logout    string
	OrderForm string
}

// Register mounts the read-only pages, the layout JSON, logout and health
// checks on a go-router router.
//
// Login answers 401 with an HTML body, order submits are multipart uploads
// and toasts are long lived streams; those stay on the transport's native
// handlers (see fiberhttp).
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	h := cfg.Handlers
	if h == nil || h.Controller == nil {
		return errors.New("gorouter: handlers are required")
	}
	if h.Dashboard == nil || h.OrderForm == nil || h.Logout == nil {
		return errors.New("gorouter: handlers are incomplete")
	}
	routes := defaultRouteConfig(cfg.Routes)
	sessionID := cfg.SessionResolver
	if sessionID == nil {
		sessionID = CookieSession
	}
	r := cfg.Router

	r.Get(routes.Health, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Get(routes.Dashboard, router.WrapHandler(func(ctx router.Context) error {
		session, err := h.LoadSession(ctx.Context(), sessionID(ctx))
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		var buf bytes.Buffer
		if err := h.Controller.Page(ctx.Context(), session, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return sendHTML(ctx, buf.Bytes())
	}))

	r.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		session, err := h.LoadSession(ctx.Context(), sessionID(ctx))
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		layout, err := h.Dashboard.Query(ctx.Context(), session)
		if errors.Is(err, printshop.ErrUnauthenticated) {
			return respondError(ctx, http.StatusUnauthorized, err)
		}
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, layout)
	}))

	r.Post(routes.Logout, router.WrapHandler(func(ctx router.Context) error {
		if err := h.Logout.Execute(ctx.Context(), commands.LogoutInput{SessionID: sessionID(ctx)}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		var buf bytes.Buffer
		if err := h.Controller.RenderLogin(&buf, printshop.LoginView{}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return sendHTML(ctx, buf.Bytes())
	}))

	r.Get(routes.OrderForm, router.WrapHandler(func(ctx router.Context) error {
		id := sessionID(ctx)
		if id == "" {
			id = printshop.NewSessionID()
			ctx.SetHeader("Set-Cookie", httpapi.NewSessionCookie(id).String())
		}
		state, err := h.OrderForm.Query(ctx.Context(), queries.OrderFormInput{SessionID: id})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		var buf bytes.Buffer
		if err := h.Controller.RenderOrderForm(&buf, printshop.OrderFormView{
			Form:       state.Form,
			Submitting: state.Submitting(),
		}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return sendHTML(ctx, buf.Bytes())
	}))

	return nil
}

// CookieSession reads the session id from the Cookie header.
func CookieSession(ctx router.Context) string {
	header := ctx.Header("Cookie")
	if header == "" {
		return ""
	}
	req := http.Request{Header: http.Header{"Cookie": {header}}}
	cookie, err := req.Cookie(httpapi.SessionCookie)
	if err != nil {
		return ""
	}
	return httpapi.ValidSessionID(cookie.Value)
}

func sendHTML(ctx router.Context, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Health == "" {
		routes.Health = httpapi.PathHealth
	}
	if routes.Dashboard == "" {
		routes.Dashboard = printshop.PathDashboard
	}
	if routes.Layout == "" {
		routes.Layout = httpapi.PathLayout
	}
	if routes.Logout == "" {
		routes.Logout = printshop.PathLogout
	}
	if routes.OrderForm == "" {
		routes.OrderForm = printshop.PathOrder
	}
	return routes
}
