package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/controllers"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/middleware"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/routes"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/accounts"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/alerts"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/categories"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/cron"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/deals"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/favorites"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/prices"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/pricesubmissions"
	product "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/products"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/realtime"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/reviews"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/search"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/supermarkets"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/uploads"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/users"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth/session"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/config"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/metrics"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/migrate"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/redis"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/storage/local"
)

const cronLockKey = "deals"

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if _, ok := cfg.JWT.SigningSecret(); !ok {
		logg.Warn(context.Background(), "PRICECOMPARE_JWT_SECRET not set, using the built-in default secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured: sessions, rate limiting and the realtime relay are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := realtime.NewHub(logg, metrics.NewRealtimeMetrics(registry))

	store, err := local.New(ctx, cfg.Uploads.Dir, logg)
	requireResource(ctx, logg, "upload store", err)
	uploadSvc, err := uploads.NewService(store, cfg.Uploads)
	requireResource(ctx, logg, "uploads", err)

	var sessions *session.Manager
	if redisClient != nil {
		sessions, err = session.NewManager(redisClient, cfg.JWT)
		requireResource(ctx, logg, "session manager", err)
	}

	accountRepo := accounts.NewRepository(dbClient.DB())
	authParams := auth.ServiceParams{
		DB:             dbClient,
		Accounts:       accountRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}
	if sessions != nil {
		authParams.SessionManager = sessions
	}
	authService, err := auth.NewService(authParams)
	requireResource(ctx, logg, "auth service", err)
	userService, err := users.NewService(accountRepo)
	requireResource(ctx, logg, "user service", err)

	categoryService, err := categories.NewService(categories.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "category service", err)
	supermarketService, err := supermarkets.NewService(supermarkets.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "supermarket service", err)

	alertService, err := alerts.NewService(alerts.ServiceParams{
		Repo:         alerts.NewRepository(dbClient.DB()),
		Notifier:     hub,
		Logger:       logg,
		ExpiryWindow: cfg.Cron.DealExpiryWindow,
		DedupWindow:  cfg.Cron.AlertDedupWindow,
	})
	requireResource(ctx, logg, "alert service", err)

	priceService, err := prices.NewService(prices.ServiceParams{
		DB:       dbClient,
		Repo:     prices.NewRepository(dbClient.DB()),
		Alerts:   alertService,
		Notifier: hub,
		Logger:   logg,
	})
	requireResource(ctx, logg, "price service", err)

	dealRepo := deals.NewRepository(dbClient.DB())
	dealService, err := deals.NewService(deals.ServiceParams{
		DB:       dbClient,
		Repo:     dealRepo,
		Expiry:   alertService,
		Notifier: hub,
		Logger:   logg,
	})
	requireResource(ctx, logg, "deal service", err)

	favoriteRepo := favorites.NewRepository(dbClient.DB())
	favoriteService, err := favorites.NewService(favoriteRepo)
	requireResource(ctx, logg, "favorite service", err)

	productService, err := product.NewService(product.ServiceParams{
		DB:        dbClient,
		Repo:      product.NewRepository(dbClient.DB()),
		Prices:    priceService,
		Favorites: favoriteRepo,
		Deals:     dealRepo,
		Uploads:   uploadSvc,
		Notifier:  hub,
		Logger:    logg,
	})
	requireResource(ctx, logg, "product service", err)

	submissionService, err := pricesubmissions.NewService(pricesubmissions.ServiceParams{
		DB:       dbClient,
		Repo:     pricesubmissions.NewRepository(dbClient.DB()),
		Prices:   priceService,
		Evidence: uploadSvc,
		Notifier: hub,
		Logger:   logg,
	})
	requireResource(ctx, logg, "price submission service", err)

	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), hub)
	requireResource(ctx, logg, "review service", err)
	searchService, err := search.NewService(search.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "search service", err)

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Health:      map[string]controllers.Pinger{"database": dbClient, "uploads": store},

		Auth:             authService,
		Users:            userService,
		Categories:       categoryService,
		Supermarkets:     supermarketService,
		Products:         productService,
		Prices:           priceService,
		Deals:            dealService,
		PriceSubmissions: submissionService,
		Alerts:           alertService,
		Favorites:        favoriteService,
		Reviews:          reviewService,
		Search:           searchService,

		ProductImageLimit: uploadSvc.Limit(uploads.KindProductImage),
		EvidenceLimit:     uploadSvc.Limit(uploads.KindEvidence),
	}
	if redisClient != nil {
		deps.Health["redis"] = redisClient
		deps.RateLimiter = redisClient
	}
	if sessions != nil {
		deps.Sessions = sessions
	}
	deps.Realtime = realtime.NewHandler(ctx, hub, middleware.ClaimsParser(cfg.JWT, deps.Sessions), cfg.App.CORSOrigins, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := api.NewServer(addr, routes.NewRouter(deps))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return hub.Run(groupCtx) })
	group.Go(func() error { return api.Serve(groupCtx, server, logg) })
	if redisClient != nil {
		relay := realtime.NewRelay(redisClient, hub, logg)
		group.Go(func() error { return relay.Run(groupCtx) })
	}
	if cfg.Cron.Enabled {
		scheduler, err := newScheduler(cfg, logg, redisClient, registry, dealService, alertService)
		requireResource(ctx, logg, "cron scheduler", err)
		group.Go(func() error { return scheduler.Run(groupCtx) })
	}

	runCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(runCtx, "starting api server")

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server stopped")
}

// newScheduler runs the deal sweeps in-process. With Redis the lock is shared
// with any cron-worker, otherwise it only guards this process.
func newScheduler(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, reg prometheus.Registerer, dealService deals.Service, alertService alerts.Service) (*cron.Service, error) {
	jobs, err := cron.NewDealJobs(cron.DealJobsParams{Logger: logg, Deals: dealService, Expiry: alertService})
	if err != nil {
		return nil, err
	}
	var lock cron.Lock = cron.NewLocalLock()
	if redisClient != nil {
		if lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(cronLockKey), cfg.Cron.LockTTL); err != nil {
			return nil, err
		}
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Cron.Interval,
	})
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
