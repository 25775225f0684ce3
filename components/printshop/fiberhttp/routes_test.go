package fiberhttp

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	printshop "github.com/goliatone/go-printshop/components/printshop"
	"github.com/goliatone/go-printshop/components/printshop/commands"
	"github.com/goliatone/go-printshop/components/printshop/httpapi"
	"github.com/goliatone/go-printshop/components/printshop/queries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	renderer, err := printshop.NewTemplateRenderer()
	require.NoError(t, err)
	reg, err := printshop.NewDefaultRegistry(printshop.NewStaticRepository(nil), printshop.NewEChartsProvider("bar", printshop.WithChartCache(nil)))
	require.NoError(t, err)
	service := printshop.NewService(printshop.Options{Providers: reg})
	sessions := printshop.NewInMemorySessionStore()
	auth := printshop.NewAuthenticator(printshop.Credentials{}, sessions, nil)
	toasts := printshop.NewToastBroadcaster()
	submitters := printshop.NewSubmitters(printshop.SubmitterOptions{
		Delay:    printshop.DelayFunc(func(context.Context) error { return nil }),
		Notifier: toasts,
	})
	handlers := &httpapi.Handlers{
		Sessions:   sessions,
		Controller: printshop.NewController(printshop.ControllerOptions{Service: service, Renderer: renderer}),
		Login:      commands.NewLoginCommand(auth, nil),
		Logout:     commands.NewLogoutCommand(auth, nil),
		Submit:     commands.NewSubmitOrderCommand(printshop.NewOrderValidator(), submitters, nil),
		Dashboard:  queries.NewDashboardQuery(service),
		OrderForm:  queries.NewOrderFormQuery(submitters),
		Toasts:     toasts,
	}
	app := fiber.New()
	require.NoError(t, Register(Config{App: app, Handlers: handlers}))
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestRegisterValidatesConfig(t *testing.T) {
	assert.Error(t, Register(Config{}))
	assert.Error(t, Register(Config{App: fiber.New()}))
	assert.Error(t, Register(Config{App: fiber.New(), Handlers: &httpapi.Handlers{}}))
}

func TestFiberLoginFlow(t *testing.T) {
	app := newApp(t)

	form := url.Values{"username": {"admin"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, printshop.PathLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Invalid credentials")

	form.Set("password", "password")
	req = httptest.NewRequest(http.MethodPost, printshop.PathLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Print Queue")
}

func TestFiberLeavesPagesToGoRouter(t *testing.T) {
	app := newApp(t)
	for _, path := range []string{httpapi.PathHealth, printshop.PathDashboard, httpapi.PathLayout} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestFiberSubmitOrder(t *testing.T) {
	app := newApp(t)

	var payload bytes.Buffer
	mw := multipart.NewWriter(&payload)
	require.NoError(t, mw.WriteField(printshop.FieldName, "Jane Doe"))
	require.NoError(t, mw.WriteField(printshop.FieldPhoneNumber, "5551234567"))
	require.NoError(t, mw.WriteField(printshop.FieldCopies, "3"))
	require.NoError(t, mw.WriteField(printshop.FieldPrintType, "color"))
	fw, err := mw.CreateFormFile(printshop.FieldDocument, "flyer.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, printshop.PathOrder, &payload)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `"title":"Order Submitted"`)
}

func TestFiberToastSocketRequiresUpgrade(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, httpapi.PathToastSocket, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestFiberToastSocketRequiresSessionCookie(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest(http.MethodGet, httpapi.PathToastSocket, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body(t, resp), httpapi.ErrNoSession.Error())
}
