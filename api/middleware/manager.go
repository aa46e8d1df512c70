package middleware

import (
	"catalog_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	chiware "github.com/go-chi/chi/v5/middleware"
)

type Middleware struct {
	cfg    *structs.Config
	logger *gecho.Logger
}

func NewMiddleware(cfg *structs.Config, logger *gecho.Logger) *Middleware {
	return &Middleware{
		cfg:    cfg,
		logger: logger,
	}
}

// RequestLogging logs each request and echoes the chi request id, so client and server logs can be
// matched on X-Request-Id.
func (mw *Middleware) RequestLogging() func(http.Handler) http.Handler {
	logRequests := gecho.Handlers.CreateLoggingMiddleware(mw.logger)

	return func(next http.Handler) http.Handler {
		logged := logRequests(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := chiware.GetReqID(r.Context()); id != "" {
				w.Header().Set(chiware.RequestIDHeader, id)
			}
			logged.ServeHTTP(w, r)
		})
	}
}
