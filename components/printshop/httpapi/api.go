package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	printshop "github.com/goliatone/go-printshop/components/printshop"
	"github.com/goliatone/go-printshop/components/printshop/commands"
	"github.com/goliatone/go-printshop/components/printshop/queries"
	"go.uber.org/zap"
)

// SessionCookie names the cookie carrying the browser session id.
const SessionCookie = "printshop_session"

// ErrNoSession is reported when a toast socket is opened without a session
// cookie.
var ErrNoSession = errors.New("printshop: session cookie required")

// DefaultMaxUploadBytes caps the multipart body of an order submit.
const DefaultMaxUploadBytes int64 = 20 << 20

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Sessions   printshop.SessionStore
	Controller *printshop.Controller
	Login      gocommand.Commander[commands.LoginInput]
	Logout     gocommand.Commander[commands.LogoutInput]
	Submit     gocommand.Commander[commands.SubmitOrderInput]
	Dashboard  gocommand.Querier[printshop.Session, printshop.Layout]
	OrderForm  gocommand.Querier[queries.OrderFormInput, queries.OrderFormState]
	Toasts     *printshop.ToastBroadcaster
	Logger     *zap.Logger

	MaxUploadBytes int64
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// LoadSession resolves the logged in session for a cookie value. Unknown,
// expired or missing ids resolve to an anonymous session; nothing is stored.
func (h *Handlers) LoadSession(ctx context.Context, id string) (printshop.Session, error) {
	if id == "" {
		return printshop.Session{}, nil
	}
	session, err := h.Sessions.Load(ctx, id)
	if errors.Is(err, printshop.ErrSessionNotFound) {
		return printshop.Session{ID: id}, nil
	}
	return session, err
}

// BrowserID returns the session cookie value, issuing a new cookie when it is
// missing. A new id is not stored until the browser logs in.
func (h *Handlers) BrowserID(w http.ResponseWriter, r *http.Request) string {
	if id := SessionID(r); id != "" {
		return id
	}
	id := printshop.NewSessionID()
	http.SetCookie(w, NewSessionCookie(id))
	return id
}

// NewSessionCookie builds the cookie carrying id.
func NewSessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionID returns the cookie value without creating a session. Values that
// are not session ids are ignored.
func SessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return ValidSessionID(cookie.Value)
}

// ValidSessionID returns id when it has the shape of an issued session id.
func ValidSessionID(id string) string {
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	session, err := h.LoadSession(r.Context(), SessionID(r))
	if err != nil {
		h.fail(w, "load session", err)
		return
	}
	h.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return h.Controller.Page(r.Context(), session, out)
	})
}

func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.LoginInput{
		SessionID: h.BrowserID(w, r),
		Username:  r.PostForm.Get("username"),
		Password:  r.PostForm.Get("password"),
	}
	err := h.Login.Execute(r.Context(), input)
	if errors.Is(err, printshop.ErrInvalidCredentials) {
		h.renderHTML(w, http.StatusUnauthorized, func(out io.Writer) error {
			return h.Controller.RenderLogin(out, printshop.LoginView{
				Username: input.Username,
				Alert:    printshop.AlertInvalidCredentials,
			})
		})
		return
	}
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	session, err := h.Sessions.Load(r.Context(), input.SessionID)
	if err != nil {
		h.fail(w, "reload session", err)
		return
	}
	h.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return h.Controller.RenderDashboard(r.Context(), session, out)
	})
}

func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Logout.Execute(r.Context(), commands.LogoutInput{SessionID: SessionID(r)}); err != nil {
		h.fail(w, "logout", err)
		return
	}
	h.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return h.Controller.RenderLogin(out, printshop.LoginView{})
	})
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	session, err := h.LoadSession(r.Context(), SessionID(r))
	if err != nil {
		h.fail(w, "load session", err)
		return
	}
	layout, err := h.Dashboard.Query(r.Context(), session)
	if errors.Is(err, printshop.ErrUnauthenticated) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		h.fail(w, "resolve layout", err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handlers) HandleOrderForm(w http.ResponseWriter, r *http.Request) {
	state, err := h.OrderForm.Query(r.Context(), queries.OrderFormInput{SessionID: h.BrowserID(w, r)})
	if err != nil {
		h.fail(w, "order form", err)
		return
	}
	h.renderHTML(w, http.StatusOK, func(out io.Writer) error {
		return h.Controller.RenderOrderForm(out, printshop.OrderFormView{
			Form:       state.Form,
			Submitting: state.Submitting(),
		})
	})
}

func (h *Handlers) HandleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := h.BrowserID(w, r)
	form, err := h.readOrderForm(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var receipt printshop.OrderReceipt
	err = h.Submit.Execute(r.Context(), commands.SubmitOrderInput{
		SessionID: sessionID,
		Form:      form,
		Receipt:   &receipt,
	})
	asJSON := wantsJSON(r)

	var verr *printshop.ValidationError
	switch {
	case errors.As(err, &verr):
		if asJSON {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
			return
		}
		h.renderHTML(w, http.StatusUnprocessableEntity, func(out io.Writer) error {
			return h.Controller.RenderOrderForm(out, printshop.OrderFormView{Form: form, Errors: verr.Fields})
		})
	case errors.Is(err, printshop.ErrSubmissionInFlight):
		if asJSON {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		h.renderHTML(w, http.StatusConflict, func(out io.Writer) error {
			return h.Controller.RenderOrderForm(out, printshop.OrderFormView{Form: form, Submitting: true})
		})
	case errors.Is(err, context.Canceled):
		h.logger().Info("order submit cancelled", zap.String("session_id", sessionID))
	case err != nil:
		h.fail(w, "submit order", err)
	default:
		if asJSON {
			writeJSON(w, http.StatusOK, receipt)
			return
		}
		h.renderHTML(w, http.StatusOK, func(out io.Writer) error {
			return h.Controller.RenderOrderForm(out, printshop.OrderFormView{
				Form:  printshop.DefaultOrderForm(),
				Toast: &receipt.Toast,
			})
		})
	}
}

func (h *Handlers) HandleToastStream(w http.ResponseWriter, r *http.Request) {
	h.Toasts.ServeSSE(w, r, h.BrowserID(w, r))
}

// HandleToastSocket needs an existing session cookie; the upgrade response
// cannot reliably issue one.
func (h *Handlers) HandleToastSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r)
	if sessionID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrNoSession.Error()})
		return
	}
	h.Toasts.ServeWebSocket(w, r, sessionID)
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) readOrderForm(w http.ResponseWriter, r *http.Request) (printshop.OrderForm, error) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return printshop.OrderForm{}, fmt.Errorf("parse order form: %w", err)
	}
	if r.PostForm == nil {
		if err := r.ParseForm(); err != nil {
			return printshop.OrderForm{}, fmt.Errorf("parse order form: %w", err)
		}
	}
	form := printshop.OrderForm{
		Name:        r.PostFormValue(printshop.FieldName),
		PhoneNumber: r.PostFormValue(printshop.FieldPhoneNumber),
		Copies:      r.PostFormValue(printshop.FieldCopies),
		PrintType:   r.PostFormValue(printshop.FieldPrintType),
	}
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File[printshop.FieldDocument] {
			file, err := readUpload(header)
			if err != nil {
				return printshop.OrderForm{}, err
			}
			form.Documents = append(form.Documents, file)
		}
	}
	return form, nil
}

func readUpload(header *multipart.FileHeader) (printshop.UploadedFile, error) {
	f, err := header.Open()
	if err != nil {
		return printshop.UploadedFile{}, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return printshop.UploadedFile{}, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	return printshop.NewUploadedFile(header.Filename, header.Header.Get("Content-Type"), data), nil
}

// renderHTML buffers the page so a template failure still yields a clean 500.
func (h *Handlers) renderHTML(w http.ResponseWriter, status int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.fail(w, "render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) fail(w http.ResponseWriter, op string, err error) {
	h.logger().Error("request failed", zap.String("op", op), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
