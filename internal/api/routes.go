package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Key inventory and redemption
		r.Route("/keys", func(r chi.Router) {
			r.Get("/", h.ListKeys)
			r.Post("/", h.AddKeys)
			r.Post("/claim", h.ClaimKey)
			r.Post("/manual", h.UseManualKey)
			r.Post("/return", h.ReturnKeys)
			r.Post("/delete", h.DeleteKeys)
			r.Post("/{keyId}/return", h.ReturnKey)
			r.Delete("/{keyId}", h.DeleteKey)
			r.Get("/expiry", h.GetExpiryReport)
		})

		// Purchase intents
		r.Route("/intents", func(r chi.Router) {
			r.Get("/", h.ListIntents)
			r.Post("/", h.CreateIntent)
			r.Get("/stream", h.StreamIntents)
			r.Post("/delete", h.DeleteIntents)
		})

		// Catalog
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{productId}", h.GetProduct)
			r.Put("/{productId}", h.UpdateProduct)
			r.Delete("/{productId}", h.DeleteProduct)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Delete("/{categoryId}", h.DeleteCategory)
		})
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})

		// Inventory stats and revenue estimates
		r.Get("/stats/overview", h.GetStatsOverview)

		// Image libraries (purchase proofs, winning photos)
		r.Route("/images", func(r chi.Router) {
			r.Get("/{kind}", h.ListImages)
			r.Post("/{kind}", h.UploadImage)
			r.Delete("/{kind}/{imageId}", h.DeleteImage)
		})
	})

	return r
}
