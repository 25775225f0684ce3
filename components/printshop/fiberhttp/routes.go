package fiberhttp

import (
	"bufio"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	printshop "github.com/goliatone/go-printshop/components/printshop"
	"github.com/goliatone/go-printshop/components/printshop/httpapi"
	"github.com/valyala/fasthttp"
)

const sessionLocal = "printshop.session_id"

// DefaultKeepAlive is the SSE comment interval used to detect closed streams.
const DefaultKeepAlive = 15 * time.Second

// Config wires the print shop handlers onto a Fiber app.
type Config struct {
	App       *fiber.App
	Handlers  *httpapi.Handlers
	Toasts    *printshop.ToastBroadcaster
	KeepAlive time.Duration
}

// Register mounts the routes go-router cannot express on a Fiber app.
//
//   - POST login renders the login page again with a 401 status.
//   - POST order reads a multipart upload through the net/http adaptor.
//   - The toast SSE and WebSocket streams are served natively since the
//     adaptor buffers whole responses.
//
// The remaining pages are registered by the gorouter package.
func Register(cfg Config) error {
	if cfg.App == nil {
		return errors.New("fiberhttp: app is required")
	}
	if cfg.Handlers == nil {
		return errors.New("fiberhttp: handlers are required")
	}
	toasts := cfg.Toasts
	if toasts == nil {
		toasts = cfg.Handlers.Toasts
	}
	if toasts == nil {
		return errors.New("fiberhttp: toast broadcaster is required")
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	h := cfg.Handlers
	app := cfg.App

	app.Post(printshop.PathLogin, adaptor.HTTPHandlerFunc(h.HandleLogin))
	app.Post(printshop.PathOrder, adaptor.HTTPHandlerFunc(h.HandleSubmitOrder))

	app.Use(httpapi.PathToastSocket, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		sessionID := httpapi.ValidSessionID(c.Cookies(httpapi.SessionCookie))
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": httpapi.ErrNoSession.Error()})
		}
		c.Locals(sessionLocal, sessionID)
		return c.Next()
	})
	app.Get(httpapi.PathToastSocket, websocket.New(func(conn *websocket.Conn) {
		sessionID, _ := conn.Locals(sessionLocal).(string)
		serveSocket(conn, toasts, sessionID)
	}))
	app.Get(httpapi.PathToasts, func(c *fiber.Ctx) error {
		return streamToasts(c, toasts, keepAlive)
	})
	return nil
}

func serveSocket(conn *websocket.Conn, toasts *printshop.ToastBroadcaster, sessionID string) {
	stream, cancel := toasts.Subscribe(sessionID)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case toast, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(toast); err != nil {
				return
			}
		}
	}
}

func streamToasts(c *fiber.Ctx, toasts *printshop.ToastBroadcaster, keepAlive time.Duration) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	sessionID := httpapi.ValidSessionID(c.Cookies(httpapi.SessionCookie))
	if sessionID == "" {
		sessionID = printshop.NewSessionID()
		c.Cookie(&fiber.Cookie{
			Name:     httpapi.SessionCookie,
			Value:    sessionID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	stream, cancel := toasts.Subscribe(sessionID)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
			case toast, ok := <-stream:
				if !ok {
					return
				}
				payload, err := json.Marshal(toast)
				if err != nil {
					return
				}
				if _, err := w.WriteString("event: toast\ndata: " + string(payload) + "\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
