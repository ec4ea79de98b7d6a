package http_gateway

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/metrics"
)

// instrument records metrics of each request, and logs it.
func (g *Gateway) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var start = time.Now()

		next.ServeHTTP(ww, r)

		var route = "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		var status = ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var elapsed = time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		if log.IsLevelEnabled(log.DebugLevel) {
			log.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"route":    route,
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": elapsed,
				"reqID":    middleware.GetReqID(r.Context()),
			}).Debug("served request")
		}
	})
}

// recoverer converts a panic of a handler into a 500 error response.
func (g *Gateway) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			var rec = recover()
			if rec == nil {
				return
			} else if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.WithFields(log.Fields{
				"panic": rec,
				"path":  r.URL.Path,
				"stack": string(debug.Stack()),
			}).Error("http_gateway: handler panic")

			g.writeError(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}
