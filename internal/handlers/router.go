// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jason-s-yu/premade/internal/finder"
	"github.com/jason-s-yu/premade/internal/middleware"
	"github.com/jason-s-yu/premade/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// API serves the finder over HTTP.
type API struct {
	svc      *finder.Service
	watchers *scheduler.Registry
	log      *logrus.Logger
}

// NewRouter mounts every route. All routes except /healthz and /metrics need a session token.
func NewRouter(svc *finder.Service, watchers *scheduler.Registry, logger *logrus.Logger) http.Handler {
	a := &API{svc: svc, watchers: watchers, log: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.LogMiddleware(logger), chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(logger))

		r.Get("/profile", a.profile)
		r.Put("/profile", a.updateProfile)

		r.Route("/lobbies", func(r chi.Router) {
			r.Post("/", a.createLobby)
			r.Route("/{lobbyID}", func(r chi.Router) {
				r.Get("/", a.lobbyDetail)
				r.Post("/leave", a.leaveLobby)
				r.Post("/kick", a.kickMember)
				r.Post("/close", a.closeLobby)
				r.Get("/participants", a.participants)
				r.Post("/evaluations", a.submitEvaluations)
			})
		})

		r.Post("/queue", a.enterQueue)
		r.Delete("/queue", a.leaveQueue)

		r.Route("/matchmaking", func(r chi.Router) {
			r.Get("/proposals", a.detect)
			r.Post("/proposals/{proposalID}/accept", a.accept)
			r.Post("/proposals/{proposalID}/reject", a.reject)
			r.Get("/estimate", a.estimate)
			r.Post("/watch", a.watch)
			r.Get("/watch", a.watchStatus)
			r.Delete("/watch", a.unwatch)
		})

		r.Get("/users/{userID}/history", a.history)
		r.Get("/users/{userID}/reputation", a.reputation)
	})

	return r
}
