package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AccessLog logs one line per request through zap. It should sit after
// middleware.RequestID so the request id is available.
func AccessLog(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Infow("request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"target", r.Header.Get("X-Amz-Target"),
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote", r.RemoteAddr,
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// NewRouter builds the chi router with the standard middleware stack and
// the SQS endpoint mounted at "/".
func NewRouter(app *App, timeout time.Duration, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(app.Logger))
	r.Use(middleware.Recoverer)
	if maxBodyBytes > 0 {
		r.Use(middleware.RequestSize(maxBodyBytes))
	}
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK\n"))
	})
	app.RegisterSQSHandlers(r)
	return r
}
