package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	clienthandler "sigil/internal/client/handler"
	clientmetrics "sigil/internal/client/metrics"
	clientservice "sigil/internal/client/service"
	clientstore "sigil/internal/client/store/client"
	identityhandler "sigil/internal/identity/handler"
	identitymetrics "sigil/internal/identity/metrics"
	identityservice "sigil/internal/identity/service"
	userstore "sigil/internal/identity/store/user"
	orghandler "sigil/internal/org/handler"
	orgmetrics "sigil/internal/org/metrics"
	orgservice "sigil/internal/org/service"
	orgstore "sigil/internal/org/store/organization"
	"sigil/internal/platform/config"
	"sigil/internal/platform/database"
	"sigil/internal/platform/health"
	"sigil/internal/platform/logger"
	adminmw "sigil/pkg/middleware/admin"
	requestmw "sigil/pkg/middleware/request"
	"sigil/pkg/tokens"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing sigil",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	// Store selection: postgres when a database is configured, in-memory
	// otherwise (local development and tests).
	var (
		orgs    orgservice.OrgStore
		users   identityservice.UserStore
		clients clientservice.ClientStore
	)
	if pool != nil {
		orgs = orgstore.NewPostgres(pool.DB())
		users = userstore.NewPostgres(pool.DB())
		clients = clientstore.NewPostgres(pool.DB())
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
		orgs = orgstore.NewInMemory()
		users = userstore.NewInMemory()
		clients = clientstore.NewInMemory()
	}

	issuer := tokens.NewIssuer(cfg.JWTSigningKey)

	orgSvc := orgservice.New(orgs, users, clients,
		orgservice.WithLogger(log),
		orgservice.WithMetrics(orgmetrics.New()),
	)
	identitySvc := identityservice.New(users, orgs, issuer,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
	)
	clientSvc := clientservice.New(clients, orgs,
		clientservice.WithLogger(log),
		clientservice.WithMetrics(clientmetrics.New()),
	)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	router := chi.NewRouter()
	router.Use(requestmw.RequestID)
	router.Use(requestmw.Recovery(log))
	router.Use(requestmw.Logger(log))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	identityHTTP := identityhandler.New(identitySvc, log)
	identityHTTP.RegisterPublic(router)

	router.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(cfg.AdminToken, log))
		orghandler.New(orgSvc, log).Register(r)
		identityHTTP.Register(r)
		clienthandler.New(clientSvc, log).Register(r)
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	if pool != nil {
		if err := pool.Close(); err != nil {
			log.Error("closing database failed", "error", err)
		}
	}

	log.Info("server stopped")
}
