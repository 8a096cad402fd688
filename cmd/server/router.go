package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/envelope/internal/api"
	apiMiddleware "github.com/phrazzld/envelope/internal/api/middleware"
	"github.com/phrazzld/envelope/internal/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(middleware.Recoverer)

	d := app.dispatcher

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/items", d.View(app.listItems))
		r.Method(http.MethodPost, "/items", d.View(app.createItem))
		r.Method(http.MethodGet, "/items/{id}", d.View(app.getItem))
		r.Method(http.MethodGet, "/items-flat", d.View(app.listItems, api.WithoutPagination()))

		r.Method(http.MethodGet, "/notices", d.View(app.notices))
		r.Method(http.MethodGet, "/greeting", d.View(app.greeting))
		r.Method(http.MethodGet, "/failure", d.View(app.failure))

		// The mock answers while the real status view is being reworked.
		r.Method(http.MethodGet, "/status", d.View(app.status, api.WithMockServer(api.MockServer{
			On:      true,
			Handler: api.StaticMock(http.StatusOK, map[string]any{"status": "mocked"}),
		})))

		r.Method(http.MethodPost, "/session", d.View(app.openSession))
		r.Method(http.MethodDelete, "/session", d.View(app.closeSession))

		if app.auth == nil {
			return
		}
		if app.config.Response.DevelopmentState {
			r.Method(http.MethodPost, "/token", d.View(app.issueToken))
		}
		r.Method(http.MethodGet, "/users/{userID}/profile", d.View(app.profile,
			api.WithAuthenticator(app.auth),
			api.WithOwnerCheck("userID")))
	})

	r.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(app.metricsRegistry))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
