// Package api exposes the closet over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/closet"
	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/imagestore"
	"github.com/erazemk/omara/internal/metrics"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/ratelimit"
	"github.com/erazemk/omara/internal/validation"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	DB       *db.DB
	Closet   *closet.Service
	Verifier *auth.Verifier
	Images   imagestore.Store
	Metrics  *metrics.Metrics
	Limiter  *ratelimit.KeyedRateLimiter
}

// Options tune the middleware stack.
type Options struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps, opts Options) http.Handler {
	v := validation.New()
	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.Verifier.Secret, Validator: v}
	usersHandler := &UsersHandler{DB: d.DB, Validator: v}
	bagsHandler := &BagsHandler{Closet: d.Closet}
	clothesHandler := &ClothesHandler{Closet: d.Closet}
	systemHandler := &SystemHandler{DB: d.DB}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Observe(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.DevUserHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(d.Limiter))
		r.Use(LimitBody(maxBodyBytes))
		r.Use(middleware.Timeout(opts.RequestTimeout))

		// Public.
		r.Get("/health", systemHandler.Health)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		if getter, ok := d.Images.(imagestore.Getter); ok {
			systemHandler.Images = getter
			r.Get("/images/*", systemHandler.Image)
		}

		// Authenticated.
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(d.Verifier))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/password", authHandler.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.Use(RequireRole(model.RoleAdmin))
				r.Get("/", usersHandler.List)
				r.Post("/", usersHandler.Create)
			})

			r.Route("/bags", func(r chi.Router) {
				r.Get("/", bagsHandler.List)
				r.Post("/", bagsHandler.Create)
				r.Get("/{bagId}", bagsHandler.Get)
				r.Put("/{bagId}", bagsHandler.Rename)
				r.Delete("/{bagId}", bagsHandler.Delete)
			})

			r.Route("/clothes", func(r chi.Router) {
				r.Get("/", clothesHandler.List)
				r.Post("/", clothesHandler.Create)
				r.Get("/scan/{barcodeValue}", clothesHandler.Scan)
				r.Get("/filters/options", clothesHandler.FilterOptions)
				r.Get("/{clothId}", clothesHandler.Get)
				r.Put("/{clothId}", clothesHandler.Update)
				r.Delete("/{clothId}", clothesHandler.Delete)
				r.Patch("/{clothId}/favorite", clothesHandler.ToggleFavorite)
				r.Get("/{clothId}/moves", clothesHandler.Moves)
			})

			r.Get("/export/barcodes", bagsHandler.ExportSheet)
			r.Get("/export/barcode/{bagId}", bagsHandler.ExportLabel)
		})
	})

	return r
}
