package wire

import (
	"quickshow/internal/adaptor"
	"quickshow/pkg/middleware"
	"quickshow/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShow(
	r chi.Router,
	showHandler *adaptor.ShowHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/shows - List upcoming shows
	r.Get("/api/shows", showHandler.ListShows)

	// GET /api/shows/{id} - Show details
	r.Get("/api/shows/{id}", showHandler.GetShowByID)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/shows", func(r chi.Router) {
		r.Use(middleware.AdminKey(config.Admin.APIKey, log))

		// POST /api/admin/shows - Create a show
		r.Post("/", showHandler.CreateShow)
	})
}
