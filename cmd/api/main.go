package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront-backend/config"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/delivery/http/middleware"
	v1 "storefront-backend/internal/delivery/http/v1"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/imagestore"
	"storefront-backend/internal/infrastructure/search"
	"storefront-backend/internal/repository/pgxrepo"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if err := cfg.RequireDB(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	rules, err := catalog.LoadRuleSet(cfg.CatalogRulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.CatalogRulesFile).Msg("Failed to load catalog rules")
	}
	engine := catalog.NewEngine(rules)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pgxPool, err := pgxrepo.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Connected to PostgreSQL")

	inventoryRepo := pgxrepo.NewInventoryRepository(pgxPool)

	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// --- Image lookup ---
	urlFor := imagestore.LocalURL(cfg.ImageURLPrefix)
	if cfg.ImageCDNURL != "" {
		urlFor = imagestore.CDNURL(cfg.ImageCDNURL)
	}
	images := imagestore.New(imagestore.Options{
		Root:          cfg.ImageRoot,
		URL:           urlFor,
		FolderAliases: rules.ImageFolderAliases,
		Overrides:     rules.ImageOverrides,
		Key:           engine.Key,
		Interval:      cfg.ImageRefreshInterval,
		Watch:         !cfg.ImageWatchDisabled,
		Debounce:      cfg.ImageWatchDebounce,
		Logger:        log,
	})
	go images.Run(ctx)

	// --- Search (optional) ---
	var searcher domain.CatalogSearcher
	if cfg.SearchEnabled() {
		searcher = search.NewMeiliSearcher(cfg.MeiliURL, cfg.MeiliAPIKey, cfg.MeiliIndex, memCache, cfg.SearchCacheTTL)
		log.Info().Str("index", cfg.MeiliIndex).Msg("Meilisearch enabled")
	}

	catalogUC := usecase.NewCatalogUsecase(engine, inventoryRepo, images, searcher, usecase.CatalogOptions{
		Policy: catalog.PolicyOptions{
			ShowAll:        cfg.ShowAllLocal,
			ImageReadyOnly: cfg.ImageReadyOnly,
		},
		DefaultLimit: cfg.DefaultPageLimit,
		MaxLimit:     cfg.MaxPageLimit,
		Timeout:      cfg.QueryTimeout,
		Placeholder:  cfg.ImagePlaceholder,
	})
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	diagnosticsHandler := v1.NewDiagnosticsHandler(memCache, catalogUC)

	sitemapUC := usecase.NewSitemapUsecase(catalogUC, cfg.FrontendURL, memCache, cfg.SitemapCacheTTL)
	sitemapHandler := v1.NewSitemapHandler(sitemapUC)

	mux := http.NewServeMux()

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{base}", catalogHandler.GetProduct)
	mux.HandleFunc("GET /api/v1/stores", catalogHandler.ListStores)
	mux.Handle("GET /sitemap.xml", sitemapHandler)

	// Diagnostics
	mux.HandleFunc("GET /api/v1/catalog/inspect", diagnosticsHandler.Inspect)
	mux.HandleFunc("GET /api/v1/catalog/images", diagnosticsHandler.Images)
	mux.HandleFunc("GET /api/v1/catalog/rules", diagnosticsHandler.Rules)

	// Flavor images
	prefix := "/" + strings.Trim(cfg.ImageURLPrefix, "/")
	mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.ImageRoot))))

	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pgxPool.Ping(pingCtx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	rateLimiter := middleware.NewRateLimiter(
		ctx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
		"/health", "/api/v1/health", prefix+"/",
	)

	handler := middleware.NewCORS(cfg.AllowedOrigins)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart("storefront-api", version, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop("storefront-api")
}
