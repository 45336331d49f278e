package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lasmate/Alisee/internal/service"
)

// Options tune cookie and throttling behaviour.
type Options struct {
	SecureCookies bool
	SessionTTL    time.Duration
	Limiter       *RateLimiter
}

type Handler struct {
	router *chi.Mux
	shop   *service.ShopService
	opts   Options
}

func NewHandler(shop *service.ShopService, opts Options) *Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	h := &Handler{
		router: router,
		shop:   shop,
		opts:   opts,
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	r := h.router
	r.Get("/health", h.HealthCheck)

	r.Route("/account", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.opts.Limiter.Middleware)
			r.Post("/register", h.Register)
			r.Post("/connect", h.Connect)
		})
		r.Post("/disconnect", h.Disconnect)
		r.With(h.requireUser).Get("/me", h.Me)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.requireUser)
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListMyOrders)
	})

	r.Get("/products", h.ListProducts)
	r.Get("/products/count", h.CountProducts)
	r.Get("/products/isAvailable", h.IsAvailable)
	r.Get("/Item", h.GetItem)
	r.Get("/images/count", h.CountImages)
	r.Get("/images/{id}", h.GetImage)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireUser, h.requireAdmin, Brotli)

		r.Get("/orders", h.AdminListOrders)
		r.Patch("/orders", h.AdminUpdateOrder)
		r.Post("/orders/export", h.AdminExportOrder)

		r.Get("/products", h.AdminListProducts)
		r.Patch("/products", h.AdminSetAvailability)

		r.Get("/users", h.AdminListUsers)
		r.Patch("/users", h.AdminSetAccountType)
		r.Delete("/users", h.AdminDeleteUser)

		r.Get("/stats", h.AdminStats)
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
