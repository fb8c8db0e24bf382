package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callboard/internal/accounts"
	"callboard/internal/audio"
	"callboard/internal/audit"
	"callboard/internal/auth"
	"callboard/internal/bindings"
	"callboard/internal/callrecords"
	"callboard/internal/config"
	"callboard/internal/contact"
	"callboard/internal/convai"
	"callboard/internal/httpapi"
	"callboard/internal/reporting"
	syncsvc "callboard/internal/sync"
	"callboard/internal/webhooks"
	"callboard/pkg/logger"
	"callboard/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	provider := convai.NewClient(cfg.Provider)
	if !provider.Configured() {
		log.Warn("provider api key missing; sync and audio endpoints will refuse requests")
	}

	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	bindingSvc := bindings.NewService(bindings.NewPostgresRepo(db))
	recordRepo := callrecords.NewPostgresRepo(db)
	recordSvc := callrecords.NewService(recordRepo)
	accountSvc := accounts.NewService(accounts.NewPostgresRepo(db), bindingSvc)

	syncSvc := syncsvc.NewService(provider, bindingSvc, recordRepo).
		WithLock(syncsvc.NewRedisLock(rdb)).
		WithAuditor(auditSvc)

	var identityHandler *webhooks.IdentityHandler
	if cfg.Webhook.IdentitySecret != "" {
		verifier, err := webhooks.NewVerifier(cfg.Webhook.IdentitySecret, cfg.Webhook.Tolerance)
		if err != nil {
			log.Error("webhook verifier init failed", "err", err)
			os.Exit(1)
		}
		identityHandler = webhooks.NewIdentityHandler(verifier, accountSvc)
	} else {
		log.Warn("identity webhook secret missing; account mirroring disabled")
	}

	h := httpapi.Handlers{
		Auth:     authManager,
		Bindings: bindingSvc,
		Records:  recordSvc,
		Sync:     syncSvc,
		Relay:    audio.NewRelay(provider),
		Provider: provider,
		Reports:  reporting.NewService(reporting.NewPostgresRepo(db)),
		Contact:  contact.NewService(contact.NewPostgresRepo(db)),
		Audit:    auditSvc,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, identityHandler, auth.RequireAccessToken(authManager), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
