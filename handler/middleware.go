package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests no route matched, keeping the number of
// series bounded whatever paths clients send.
const unmatchedRoute = "unmatched"

// routePattern is the matched chi pattern, or unmatchedRoute.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// meterRequests counts requests and records their duration per method,
// route and status.
func meterRequests(set *metrics.Set) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			labels := fmt.Sprintf(`{method=%q,path=%q,status="%d"}`, r.Method, routePattern(r), status(ww))
			set.GetOrCreateCounter(`http_requests_total` + labels).Inc()
			set.GetOrCreateHistogram(`http_request_duration_seconds` + labels).UpdateDuration(start)
		})
	}
}

// logRequests logs one line per request once it has been served.
func logRequests(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.Infow("request",
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"proto", r.Proto,
				"status", status(ww),
				"bytes", ww.BytesWritten(),
				"from", r.RemoteAddr,
				"ua", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
				"dur", time.Since(start),
			)
		})
	}
}

// status reports 200 for handlers that wrote a body without an explicit
// WriteHeader.
func status(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
