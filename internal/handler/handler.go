package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fsanano/inventory-cart/internal/logging"
	"fsanano/inventory-cart/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CookieConfig struct {
	Secure bool
}

type Handler struct {
	router *chi.Mux

	log    logging.Logger
	store  Pinger
	auth   *service.AuthService
	items  *service.ItemService
	cart   *service.CartService
	cookie CookieConfig
}

func NewHandler(log logging.Logger, store Pinger, authSvc *service.AuthService, itemSvc *service.ItemService, cartSvc *service.CartService, cookie CookieConfig) *Handler {
	router := chi.NewRouter()

	h := &Handler{
		router: router,
		log:    log,
		store:  store,
		auth:   authSvc,
		items:  itemSvc,
		cart:   cartSvc,
		cookie: cookie,
	}

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(h.logRequests)
	router.Use(dropRefusedEncodings)
	router.Use(newCompressor().Handler)
	router.Use(middleware.Recoverer)

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found.")
	})
	h.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	h.router.Get("/health", h.HealthCheck)

	h.router.Post("/register", h.Register)
	h.router.Post("/login", h.Login)
	h.router.Get("/check-auth", h.CheckAuth)

	h.router.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Post("/logout", h.Logout)
		r.Get("/user", h.User)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.CreateItem)
			r.Get("/{id}", h.GetItem)
			r.Put("/{id}", h.UpdateItem)
			r.Delete("/{id}", h.DeleteItem)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/", h.AddToCart)
			r.Delete("/", h.ClearCart)
			r.Put("/{id}", h.UpdateCartEntry)
			r.Delete("/{id}", h.RemoveCartEntry)
		})
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn(r.Context(), "health check failed", "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
