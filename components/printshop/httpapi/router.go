package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	printshop "github.com/goliatone/go-printshop/components/printshop"
	"go.uber.org/zap"
)

// Route paths not shared with the rendered pages.
const (
	PathLayout      = printshop.PathDashboard + "/_layout"
	PathToasts      = printshop.PathToasts
	PathToastSocket = PathToasts + "/ws"
	PathHealth      = "/healthz"
)

// NewRouter mounts every handler on a chi router.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger()))

	r.Get(PathHealth, h.HandleHealth)
	r.Get(printshop.PathDashboard, h.HandleDashboard)
	r.Get(PathLayout, h.HandleLayout)
	r.Post(printshop.PathLogin, h.HandleLogin)
	r.Post(printshop.PathLogout, h.HandleLogout)
	r.Get(printshop.PathOrder, h.HandleOrderForm)
	r.Post(printshop.PathOrder, h.HandleSubmitOrder)
	r.Get(PathToasts, h.HandleToastStream)
	r.Get(PathToastSocket, h.HandleToastSocket)
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
