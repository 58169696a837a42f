// Package main is the entry point for the matching API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/helpout/helpout-api/internal/api"
	"github.com/helpout/helpout-api/internal/config"
	"github.com/helpout/helpout-api/internal/greeting"
	"github.com/helpout/helpout-api/internal/health"
	"github.com/helpout/helpout-api/internal/match"
	"github.com/helpout/helpout-api/internal/middleware"
	"github.com/helpout/helpout-api/internal/notify"
	"github.com/helpout/helpout-api/internal/retrieval"
	"github.com/helpout/helpout-api/internal/sla"
	"github.com/helpout/helpout-api/internal/swipe"
	"github.com/helpout/helpout-api/internal/weights"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("HelpOut Matching API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("opening database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("parsing redis url failed", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var esClient *elasticsearch.Client
	if len(cfg.ElasticsearchAddresses) > 0 {
		esCfg := elasticsearch.Config{Addresses: cfg.ElasticsearchAddresses}
		if cfg.ElasticsearchUsername != "" {
			esCfg.Username = cfg.ElasticsearchUsername
			esCfg.Password = cfg.ElasticsearchPassword
		}
		esClient, err = elasticsearch.NewClient(esCfg)
		if err != nil {
			logger.Error("creating elasticsearch client failed", "error", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Scoring weights: Postgres store behind a TTL cache.
	weightsCache := weights.NewCache(weights.NewPostgresStore(db), weights.DefaultCacheTTL, logger)

	// Candidate catalog and ranking pipeline.
	catalog := retrieval.NewPostgresCatalog(db)
	var semanticIndex retrieval.SemanticIndex
	if esClient != nil {
		semanticIndex = retrieval.NewElasticsearchIndex(esClient, cfg.VacancyIndex)
	}
	pipeline := retrieval.NewPipeline(catalog, catalog, semanticIndex, weightsCache, logger)

	// Swipes: Postgres rows are authoritative, Redis count is advisory.
	var countCache *swipe.DailyCountCache
	if redisClient != nil {
		countCache = swipe.NewDailyCountCache(redisClient, logger)
	}
	swipeService := swipe.NewService(swipe.NewPostgresRepository(db), countCache, cfg.DailySwipeCap, logger)

	// SLA derivation with background recompute.
	slaMetrics := sla.NewMetrics()
	if err := slaMetrics.Register(registry); err != nil {
		logger.Error("registering sla metrics failed", "error", err)
		os.Exit(1)
	}
	matchRepo := match.NewPostgresRepository(db)
	slaTracker := sla.NewDirtyTracker()
	slaStore := sla.NewPostgresStore(db)
	slaJob := sla.NewRecomputeJob(sla.RecomputeJobConfig{
		Interval: time.Duration(cfg.SLARecomputeIntervalSeconds) * time.Second,
		Logger:   logger,
		Metrics:  slaMetrics,
	}, slaTracker, matchRepo, slaStore)
	slaService := sla.NewService(slaStore, matchRepo)

	// Match lifecycle with best-effort side effects.
	var notifier match.Notifier
	if cfg.SNSTopicARN != "" {
		snsNotifier, err := notify.NewSNSNotifier(context.Background(), cfg.AWSRegion, cfg.SNSTopicARN, logger)
		if err != nil {
			logger.Error("creating sns notifier failed", "error", err)
			os.Exit(1)
		}
		notifier = snsNotifier
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	var greeter match.Greeter
	if cfg.OpenAIAPIKey != "" {
		greeter = greeting.NewOpenAIGenerator(cfg.OpenAIAPIKey)
	} else {
		greeter = greeting.NewStaticGenerator()
	}

	matchService := match.NewService(matchRepo, notifier, greeter, slaTracker, logger)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slaJob.Start(rootCtx)
	defer slaJob.Stop()

	// Handlers.
	rankHandlers := api.NewRankHandlers(pipeline)
	swipeHandlers := api.NewSwipeHandlers(swipeService, matchService, catalog, catalog, weightsCache)
	weightsHandlers := api.NewWeightsHandlers(weightsCache)
	slaHandlers := api.NewSLAHandlers(slaService)

	healthConfig := api.HealthHandlersConfig{
		DBChecker:      health.NewDBChecker(db),
		MetricsEnabled: true,
	}
	if redisClient != nil {
		healthConfig.RedisChecker = health.NewRedisChecker(redisClient)
	}
	if esClient != nil {
		healthConfig.SearchChecker = health.NewSearchChecker(esClient)
	}
	healthHandlers := api.NewHealthHandlers(healthConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	rateLimitStore := middleware.NewInMemoryRateLimitStore()
	rankLimiter := middleware.RateLimiter(rateLimitStore, middleware.DefaultRankLimit(), middleware.IPKeyFunc())
	globalLimiter := middleware.RateLimiter(rateLimitStore, middleware.DefaultGlobalLimit(), middleware.IPKeyFunc())

	mux.Handle("/rank/vacancies", rankLimiter(http.HandlerFunc(rankHandlers.RankVacancies)))
	mux.Handle("/rank/volunteers", rankLimiter(http.HandlerFunc(rankHandlers.RankVolunteers)))
	mux.Handle("/swipes", globalLimiter(http.HandlerFunc(swipeHandlers.CreateSwipe)))
	mux.Handle("/swipes/latest", globalLimiter(http.HandlerFunc(swipeHandlers.UndoLatest)))
	mux.HandleFunc("/admin/weights", weightsHandlers.Handle)
	mux.Handle("/orgs/", globalLimiter(http.HandlerFunc(slaHandlers.GetOrgSLA)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"helpout-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	handler := middleware.RequestID(middleware.Logging(logger)(mux))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-rootCtx.Done()

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
