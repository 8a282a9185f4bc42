package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	guideHandler "github.com/artlens/guide/backend/internal/handler/guide"
	middlewarePkg "github.com/artlens/guide/backend/internal/middleware"
	"github.com/artlens/guide/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(guide *guideHandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		guide.RegisterRoutes(api)
	})

	return r
}
