package handler

import (
	"context"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	contacts "github.com/phbpx/contacts-api"
)

// APIConfig holds the dependencies of the HTTP API.
type APIConfig struct {
	ServerName string
	Log        *zap.Logger
	Service    contacts.ContactService

	// Ready reports whether the storage can serve requests. A nil Ready
	// always reports ready.
	Ready func(ctx context.Context) error

	// Metrics receives the request metrics. A fresh set is used when nil.
	Metrics *metrics.Set
}

// NewAPI builds the route table.
func NewAPI(cfg APIConfig) (http.Handler, error) {
	d, err := newDocs()
	if err != nil {
		return nil, err
	}

	set := cfg.Metrics
	if set == nil {
		set = metrics.NewSet()
	}

	otelLog := otelzap.New(cfg.Log, otelzap.WithStackTrace(true)).Sugar()
	contactHandler := NewContactHandler(cfg.Service)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(cfg.ServerName, otelchi.WithChiRoutes(r)))
	r.Use(meterRequests(set))
	r.Use(logRequests(cfg.Log.Sugar()))

	r.Get("/", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Write([]byte("Hello World"))
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", handle(otelLog, contactHandler.List))
		r.Post("/", handle(otelLog, contactHandler.Create))
		r.Put("/{id}", handle(otelLog, contactHandler.Update))
		r.Delete("/{id}", handle(otelLog, contactHandler.Delete))
	})

	r.Route("/api-docs", func(r chi.Router) {
		r.Get("/", d.UI)
		r.Get("/openapi.yaml", d.YAML)
		r.Get("/openapi.json", d.JSON)
	})

	r.Get("/liveness", func(http.ResponseWriter, *http.Request) {})
	r.Get("/readiness", handle(otelLog, func(rw http.ResponseWriter, r *http.Request) error {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				return &Error{Status: http.StatusServiceUnavailable, Message: "storage unavailable", Err: err}
			}
		}
		respond(r.Context(), rw, http.StatusOK, map[string]string{"status": "ok"})
		return nil
	}))
	r.Get("/metrics", func(rw http.ResponseWriter, _ *http.Request) {
		set.WritePrometheus(rw)
		metrics.WriteProcessMetrics(rw)
	})

	return r, nil
}
