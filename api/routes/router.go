package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/controllers"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/middleware"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/alerts"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/categories"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/deals"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/favorites"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/prices"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/pricesubmissions"
	product "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/products"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/reviews"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/search"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/supermarkets"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/users"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth/session"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/config"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/metrics"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/storage/local"
)

// Dependencies collects everything the router mounts. Optional members may be
// nil: Sessions and RateLimiter are nil when Redis is not configured, and
// Realtime is nil when the websocket endpoint is disabled.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Health      map[string]controllers.Pinger
	Sessions    session.AccessSessionChecker
	RateLimiter middleware.RateLimiterStore
	Realtime    http.Handler

	Auth             auth.Service
	Users            users.Service
	Categories       categories.Service
	Supermarkets     supermarkets.Service
	Products         product.Service
	Prices           prices.Service
	Deals            deals.Service
	PriceSubmissions pricesubmissions.Service
	Alerts           alerts.Service
	Favorites        favorites.Service
	Reviews          reviews.Service
	Search           search.Service

	ProductImageLimit int64
	EvidenceLimit     int64
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	if deps.Realtime != nil {
		r.Handle("/ws", deps.Realtime)
	}
	if dir := cfg.Uploads.Dir; dir != "" {
		r.Handle(local.PublicPrefix+"/*", http.StripPrefix(local.PublicPrefix+"/", local.FileServer(dir)))
	}

	authn := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	owner := middleware.RequireRole(enums.RoleOwner, logg)
	customer := middleware.RequireRole(enums.RoleCustomer, logg)
	ownerLocation := middleware.RequireOwnerLocation(logg)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/auth", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(authn).Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))
		r.With(authn).Get("/users/{id}", controllers.UserProfile(deps.Users, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/details/{id}", controllers.ProductDetails(deps.Products, logg))
			r.Get("/{id}", controllers.ProductAtLocation(deps.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn, owner, ownerLocation)
				r.Post("/", controllers.ProductCreate(deps.Products, deps.ProductImageLimit, logg))
				r.Put("/{id}", controllers.ProductUpdatePrice(deps.Prices, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.Products, logg))
			})
		})

		r.Route("/prices", func(r chi.Router) {
			r.Get("/", controllers.PriceList(deps.Prices, logg))
			r.Get("/product/{productId}", controllers.PricesByProduct(deps.Prices, logg))
			r.With(authn, owner, ownerLocation).Post("/", controllers.PriceCreate(deps.Prices, logg))
		})

		r.With(authn).Get("/search", controllers.Search(deps.Search, logg))
		r.Get("/category", controllers.CategoryList(deps.Categories, logg))
		r.Get("/explore", controllers.CategoryExplore(deps.Categories, logg))
		r.With(authn).Get("/productsbycategory/{categoryId}", controllers.ProductsByCategory(deps.Categories, logg))
		r.Get("/instock", controllers.ProductsInStock(deps.Products, logg))

		r.Get("/supermarkets", controllers.SupermarketList(deps.Supermarkets, logg))
		r.With(authn, owner).Post("/supermarkets", controllers.SupermarketCreate(deps.Supermarkets, logg))
		r.Get("/locations", controllers.LocationNames(deps.Supermarkets, logg))
		r.Route("/supermarket_locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(deps.Supermarkets, logg))
			r.Get("/supermarket/{id}", controllers.LocationsBySupermarket(deps.Supermarkets, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn, owner)
				r.Post("/", controllers.LocationCreate(deps.Supermarkets, logg))
				r.Put("/{id}", controllers.LocationUpdate(deps.Supermarkets, logg))
				r.Delete("/{id}", controllers.LocationDelete(deps.Supermarkets, logg))
			})
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", controllers.DealList(deps.Deals, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn, owner, ownerLocation)
				r.Post("/", controllers.DealCreate(deps.Deals, logg))
				r.Put("/{productId}", controllers.DealUpdate(deps.Deals, logg))
				r.Delete("/{productId}", controllers.DealDelete(deps.Deals, logg))
			})
		})

		r.Route("/price-submissions", func(r chi.Router) {
			r.Use(authn)
			r.With(customer).Post("/", controllers.SubmissionCreate(deps.PriceSubmissions, deps.EvidenceLimit, logg))
			r.Group(func(r chi.Router) {
				r.Use(owner)
				r.Get("/pending/{locationId}", controllers.SubmissionsPending(deps.PriceSubmissions, logg))
				r.Put("/approve/{id}", controllers.SubmissionApprove(deps.PriceSubmissions, logg))
				r.Put("/reject/{id}", controllers.SubmissionReject(deps.PriceSubmissions, logg))
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(authn)
			r.Get("/{userId}", controllers.AlertList(deps.Alerts, logg))
			r.Put("/{alertId}/read", controllers.AlertMarkRead(deps.Alerts, logg))
			r.Delete("/{alertId}", controllers.AlertDelete(deps.Alerts, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(authn)
			r.Get("/user/{userId}", controllers.FavoriteList(deps.Favorites, logg))
			r.Post("/", controllers.FavoriteAdd(deps.Favorites, logg))
			r.Delete("/{productId}", controllers.FavoriteRemove(deps.Favorites, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productId}/location/{locationId}", controllers.ReviewList(deps.Reviews, logg))
			r.Group(func(r chi.Router) {
				r.Use(authn, customer)
				r.Post("/", controllers.ReviewCreate(deps.Reviews, logg))
				r.Delete("/{reviewId}", controllers.ReviewDelete(deps.Reviews, logg))
			})
		})
	})

	return r
}
