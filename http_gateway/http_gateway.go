// Package http_gateway presents the storefront REST API, mapping JSON
// requests under /api onto the auth, catalog, and cart services.
package http_gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/schema"
	"github.com/klauspost/compress/gzhttp"
	"go.storefront.dev/core/auth"
	"go.storefront.dev/core/cart"
	"go.storefront.dev/core/catalog"
	pb "go.storefront.dev/core/protocol"
)

// Config of a Gateway.
type Config struct {
	// CORSOrigins which may make credentialed requests.
	CORSOrigins []string
	// MaxBodyBytes is the largest accepted JSON request body.
	MaxBodyBytes int64
	// Gzip compresses responses for clients which accept it.
	Gzip bool
	// Production hides internal error details from clients, and uses
	// cross-site session cookies.
	Production bool
	// InstanceID of this process, reported by the health check.
	InstanceID string
}

// Gateway is an http.Handler of the storefront API.
type Gateway struct {
	cfg     Config
	router  chi.Router
	decoder *schema.Decoder
	started time.Time

	auth    *auth.Service
	authMW  *auth.Middleware
	cookies auth.CookieConfig
	catalog *catalog.Service
	carts   *cart.Service
	web     http.Handler
}

// NewGateway returns a Gateway of the services. If |web| is non-nil, GET
// requests outside of /api which match no API route are delegated to it.
func NewGateway(cfg Config, authSvc *auth.Service, catalogSvc *catalog.Service, cartSvc *cart.Service, web http.Handler) *Gateway {
	var decoder = schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	var g = &Gateway{
		cfg:     cfg,
		decoder: decoder,
		started: time.Now(),
		auth:    authSvc,
		cookies: auth.CookieConfig{
			Secure: cfg.Production,
			MaxAge: authSvc.Sessions.TTL(),
		},
		catalog: catalogSvc,
		carts:   cartSvc,
		web:     web,
	}
	g.authMW = &auth.Middleware{
		Sessions: authSvc.Sessions,
		Unauthorized: func(w http.ResponseWriter, r *http.Request, _ error) {
			g.writeError(w, r, pb.ErrUnauthorized)
		},
	}
	g.router = g.buildRouter()
	return g
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) buildRouter() chi.Router {
	var r = chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(g.instrument)
	r.Use(g.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   g.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cart.HeaderCartID},
		ExposedHeaders:   []string{cart.HeaderCartID},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	if g.cfg.Gzip {
		r.Use(func(h http.Handler) http.Handler { return gzhttp.GzipHandler(h) })
	}

	r.NotFound(g.serveNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		g.writeError(w, r, errMethod)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", g.serveHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", g.serveSignup)
			r.Post("/login", g.serveLogin)
			r.With(g.authMW.RequireAuth).Get("/me", g.serveMe)
			r.With(g.authMW.RequireAuth).Post("/logout", g.serveLogout)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", g.serveListItems)
			r.Get("/{id}", g.serveGetItem)
			r.Group(func(r chi.Router) {
				r.Use(g.authMW.RequireAuth)
				r.Post("/", g.serveCreateItem)
				r.Patch("/{id}", g.serveUpdateItem)
				r.Delete("/{id}", g.serveDeleteItem)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(g.authMW.OptionalAuth)
			r.Get("/", g.serveGetCart)
			r.Post("/add", g.serveAddToCart)
			r.Patch("/item/{itemId}", g.serveUpdateCartItem)
			r.Delete("/item/{itemId}", g.serveRemoveCartItem)
			r.Post("/clear", g.serveClearCart)
		})
	})
	return r
}

func (g *Gateway) serveNotFound(w http.ResponseWriter, r *http.Request) {
	var isAPI = r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")

	if g.web != nil && !isAPI && (r.Method == "GET" || r.Method == "HEAD") {
		g.web.ServeHTTP(w, r)
		return
	}
	g.writeError(w, r, errNotFound)
}

func (g *Gateway) serveHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		OK        bool    `json:"ok"`
		Uptime    float64 `json:"uptime"`
		Timestamp string  `json:"timestamp"`
		Instance  string  `json:"instance,omitempty"`
	}{
		OK:        true,
		Uptime:    time.Since(g.started).Seconds(),
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Instance:  g.cfg.InstanceID,
	})
}
