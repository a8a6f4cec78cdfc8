// Package main wires together the contact crawler service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gpubsub "cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/resodo/contact-crawler/internal/api"
	"github.com/resodo/contact-crawler/internal/cache"
	"github.com/resodo/contact-crawler/internal/clock/system"
	"github.com/resodo/contact-crawler/internal/config"
	"github.com/resodo/contact-crawler/internal/crawler"
	"github.com/resodo/contact-crawler/internal/extract"
	"github.com/resodo/contact-crawler/internal/hash/sha256"
	"github.com/resodo/contact-crawler/internal/id/uuid"
	"github.com/resodo/contact-crawler/internal/legal"
	"github.com/resodo/contact-crawler/internal/llm"
	"github.com/resodo/contact-crawler/internal/logging"
	"github.com/resodo/contact-crawler/internal/pipeline"
	memorypublisher "github.com/resodo/contact-crawler/internal/publisher/memory"
	pubsubpublisher "github.com/resodo/contact-crawler/internal/publisher/pubsub"
	"github.com/resodo/contact-crawler/internal/ratelimit"
	"github.com/resodo/contact-crawler/internal/report"
	gcsstorage "github.com/resodo/contact-crawler/internal/storage/gcs"
	localstorage "github.com/resodo/contact-crawler/internal/storage/local"
	memorystore "github.com/resodo/contact-crawler/internal/store/memory"
	postgresstore "github.com/resodo/contact-crawler/internal/store/postgres"
	"github.com/resodo/contact-crawler/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	telemetry.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := system.New()
	idGen := uuid.New()

	chatter, err := llm.New(llm.Config{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		Timeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if err != nil {
		logger.Fatal("llm client init failed", zap.Error(err))
	}

	engine, headless := buildEngine(cfg, logger)
	if headless != nil {
		defer headless.Close()
	}

	store := buildStore(ctx, cfg, logger)
	blobs := buildBlobStore(ctx, cfg, logger)
	publisher, stopPublisher := buildPublisher(ctx, cfg, logger)
	defer stopPublisher()

	var reportCache *cache.ReportCache
	if cfg.Cache.Enabled {
		reportCache = cache.New(cache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			TTL:        time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		})
	}

	pipe := pipeline.New(
		engine,
		extract.NewContactExtractor(chatter, logger.Named("extractor")),
		legal.NewGenerator(chatter, logger.Named("docgen")),
		legal.NewPDFRenderer(clock),
		store,
		blobs,
		publisher,
		reportCache,
		sha256.New(),
		clock,
		idGen,
		pipeline.Config{
			ContextChars: cfg.Extract.ContextChars,
			BlobPrefix:   cfg.Storage.Prefix,
			Topic:        cfg.PubSub.TopicName,
		},
		logger.Named("pipeline"),
	)

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	})
	go sweepLimiter(ctx, limiter)

	server := api.NewServer(pipe, store, limiter, cfg, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func buildEngine(cfg config.Config, logger *zap.Logger) (*crawler.Engine, *crawler.HeadlessFetcher) {
	probe := crawler.NewProbeFetcher(crawler.ProbeConfig{
		UserAgent:     cfg.Crawler.UserAgent,
		RespectRobots: cfg.Crawler.RespectRobots,
		Timeout:       cfg.ProbeTimeout(),
		MaxBodyBytes:  cfg.Crawler.MaxPageBytes,
	})

	headless, err := crawler.NewHeadlessFetcher(crawler.HeadlessConfig{
		MaxParallel:       cfg.Crawler.HeadlessParallel,
		UserAgent:         cfg.Crawler.UserAgent,
		NavigationTimeout: cfg.NavTimeout(),
	})
	if err != nil {
		logger.Warn("headless fetcher init failed; probe-only mode", zap.Error(err))
		headless = nil
	}

	var headlessFetcher crawler.Fetcher
	if headless != nil {
		headlessFetcher = headless
	}

	engine := crawler.NewEngine(
		crawler.Config{
			UserAgent:       cfg.Crawler.UserAgent,
			MaxDepth:        cfg.Crawler.MaxDepth,
			MaxPages:        cfg.Crawler.MaxPages,
			RespectRobots:   cfg.Crawler.RespectRobots,
			ContactKeywords: cfg.Crawler.ContactKeywords,
		},
		probe,
		headlessFetcher,
		crawler.NewHeuristicDetector(cfg.Crawler.PromotionThresh),
		crawler.NewPoliteness(cfg.Crawler.DomainRPS, 1),
		logger.Named("crawler"),
	)
	return engine, headless
}

func buildStore(ctx context.Context, cfg config.Config, logger *zap.Logger) report.Store {
	if cfg.DB.DSN == "" {
		logger.Info("using in-memory report store")
		return memorystore.NewReportStore()
	}
	store, err := postgresstore.NewReportStore(ctx, postgresstore.ReportStoreConfig{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		logger.Fatal("postgres report store init failed", zap.Error(err))
	}
	logger.Info("using postgres report store", zap.String("table", cfg.DB.Table))
	return store
}

func buildBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) report.BlobStore {
	if cfg.Storage.GCSBucket != "" {
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("gcs client init failed", zap.Error(err))
		}
		blobs, err := gcsstorage.New(client, gcsstorage.Config{Bucket: cfg.Storage.GCSBucket})
		if err != nil {
			logger.Fatal("gcs blob store init failed", zap.Error(err))
		}
		logger.Info("archiving pdfs to gcs", zap.String("bucket", cfg.Storage.GCSBucket))
		return blobs
	}
	blobs, err := localstorage.New(localstorage.Config{BaseDir: cfg.Storage.LocalDir})
	if err != nil {
		logger.Fatal("local blob store init failed", zap.Error(err))
	}
	logger.Info("archiving pdfs locally", zap.String("dir", cfg.Storage.LocalDir))
	return blobs
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (report.Publisher, func()) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		return memorypublisher.New(), func() {}
	}
	client, err := gpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.Fatal("pubsub client init failed", zap.Error(err))
	}
	logger.Info("publishing report events",
		zap.String("project", cfg.PubSub.ProjectID), zap.String("topic", cfg.PubSub.TopicName))
	pub := pubsubpublisher.New(client)
	return pub, func() {
		pub.Close()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
}

func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep(time.Hour)
		}
	}
}
