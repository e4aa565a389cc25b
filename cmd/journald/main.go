package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"investjournal/internal/ai"
	"investjournal/internal/audit"
	"investjournal/internal/cache"
	"investjournal/internal/config"
	cronrunner "investjournal/internal/cron"
	"investjournal/internal/db"
	"investjournal/internal/handler"
	"investjournal/internal/logger"
	"investjournal/internal/repository"
	gormrepository "investjournal/internal/repository/gorm"
	"investjournal/internal/repository/memory"
	"investjournal/internal/service"

	_ "investjournal/docs"
)

func main() {
	cfgPath := os.Getenv("IJ_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("IJ_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log, zap.String("service", cfg.App.Name))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore := openStore(cfg.DB, log)
	defer closeStore()

	settingsSvc := &service.SystemSettingsService{Repo: st}
	if err := settingsSvc.EnsureDefaultSwitches(ctx); err != nil {
		log.Warn("init default system switches failed", zap.Error(err))
	}

	mirror, closeCache := openCache(ctx, cfg.Cache, log)
	defer closeCache()

	completer, err := ai.New(ctx, ai.Options{
		Provider: cfg.AI.Provider,
		BaseURL:  cfg.AI.BaseURL,
		APIKey:   cfg.AI.ResolvedAPIKey(),
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatal("ai provider init failed", zap.Error(err))
	}
	if _, ok := completer.(ai.Unavailable); ok {
		log.Warn("ai provider not configured, reviews will store fallback content",
			zap.String("provider", cfg.AI.Provider), zap.String("api_key_env", cfg.AI.APIKeyEnv))
	}

	sink := initAuditSink(ctx, cfg.Audit, log)

	journalSvc := &service.JournalService{
		Repo:     st,
		Cache:    mirror,
		Settings: settingsSvc,
		Logger:   log,
	}
	ledgerSvc := &service.SellLedgerService{Journals: journalSvc, Logger: log}
	archivalSvc := &service.ArchivalService{Journals: journalSvc, Audit: sink, Logger: log}
	reviewSvc := &service.ReviewService{
		Journals:        journalSvc,
		AI:              completer,
		Audit:           sink,
		Settings:        settingsSvc,
		Logger:          log,
		Timeout:         cfg.AI.Timeout,
		MaxTokens:       cfg.AI.MaxTokens,
		FallbackContent: cfg.Review.FallbackContent,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(audit.RequestIDMiddleware())
	engine.Use(handler.AccessLogMiddleware(log))
	engine.Use(handler.CORSMiddleware())
	engine.Use(audit.RequireBearerMiddleware(cfg.Server.RequireBearer))
	engine.Use(audit.WriteMiddleware(sink))

	(&handler.HealthHandler{Store: st}).Register(engine)
	handler.RegisterDocs(engine)
	(&handler.JournalHandler{
		Journals: journalSvc,
		Ledger:   ledgerSvc,
		Archival: archivalSvc,
	}).Register(engine)
	(&handler.ReviewHandler{Reviews: reviewSvc, DisableHTML: !cfg.Review.HTMLRendering}).Register(engine)
	(&handler.SwitchHandler{
		Settings: settingsSvc,
		OnChange: func(key string, enabled bool) {
			log.Info("feature switch changed", zap.String("key", key), zap.Bool("enabled", enabled))
			if key == service.FeatureListCache {
				_ = mirror.Invalidate(context.Background())
			}
		},
	}).Register(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Cron.Enabled {
		runner := cronrunner.New(log, ctx)
		if spec := strings.TrimSpace(cfg.Cron.CacheWarm); spec != "" && mirror != nil {
			_, err := runner.Add("cache_warm", spec, 30*time.Second, func(ctx context.Context) error {
				if !settingsSvc.IsEnabled(ctx, service.FeatureCacheWarm, true) {
					return nil
				}
				return journalSvc.WarmCache(ctx)
			})
			if err != nil {
				log.Warn("cron register cache warm failed", zap.Error(err))
			}
		}
		if runner.Len() > 0 {
			runner.Start()
			defer runner.Stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
}

func openStore(cfg config.DBConfig, log *zap.Logger) (repository.Repository, func()) {
	if strings.EqualFold(strings.TrimSpace(cfg.Driver), "memory") {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}
	}

	dbConn, err := db.Open(cfg)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	if err := db.SetTimezone(dbConn, cfg.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(dbConn); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
	}
	return gormrepository.New(dbConn.Gorm), func() { _ = db.Close(dbConn) }
}

func openCache(ctx context.Context, cfg config.CacheConfig, log *zap.Logger) (*cache.Mirror, func()) {
	ns := strings.TrimSpace(cfg.Prefix)
	if ns == "" {
		ns = "investjournal"
	}
	ns += ":journals"

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "none":
		return nil, func() {}
	case "redis":
		rs, err := cache.NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Warn("redis cache disabled", zap.Error(err))
			return nil, func() {}
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, list cache disabled", zap.Error(err))
			_ = rs.Close()
			return nil, func() {}
		}
		log.Info("redis list cache enabled")
		return &cache.Mirror{Store: rs, Namespace: ns, TTL: cfg.TTL}, func() { _ = rs.Close() }
	default:
		return &cache.Mirror{Store: cache.NewMemoryStore(), Namespace: ns, TTL: cfg.TTL}, func() {}
	}
}

func initAuditSink(ctx context.Context, cfg config.AuditConfig, log *zap.Logger) audit.Sink {
	base := strings.TrimSpace(cfg.BaseURL)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if !cfg.Enabled || base == "" || apiKey == "" {
		return audit.Nop{}
	}

	c := &audit.Client{BaseURL: base, APIKey: apiKey, Agent: cfg.Agent, Timeout: cfg.Timeout, Logger: log}
	loginCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Login(loginCtx); err != nil {
		log.Warn("audit login failed (audit disabled)", zap.Error(err))
		return audit.Nop{}
	}
	log.Info("audit login ok")
	return c
}
