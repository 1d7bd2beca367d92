package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencyhub.io/internal/auth"
	"agencyhub.io/internal/config"
	"agencyhub.io/internal/crm"
	"agencyhub.io/internal/httpapi"
	"agencyhub.io/internal/obs"
	"agencyhub.io/internal/store/pg"
	"agencyhub.io/internal/tenant"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(os.Getenv("AGENCYHUB_CONFIG_DIR"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := pg.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	codec, err := auth.NewCodec(cfg.AuthSecret,
		auth.WithIssuer(cfg.Issuer),
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	authStore := auth.NewPGStore(store.DB())
	authSvc, err := auth.NewService(authStore, codec,
		auth.WithDefaultModules(tenant.DefaultModuleKeys()))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	tenantSvc, err := tenant.NewService(store)
	if err != nil {
		log.Fatalf("tenant service: %v", err)
	}
	contactSvc, err := crm.NewService(store)
	if err != nil {
		log.Fatalf("contact service: %v", err)
	}

	api := httpapi.New(httpapi.Deps{
		Auth:          authSvc,
		Codec:         codec,
		Tenants:       tenantSvc,
		Contacts:      contactSvc,
		Ready:         httpapi.ReadyProbe{DB: store.DB()},
		Version:       version,
		CORSOrigins:   cfg.CORS.AllowedOrigins,
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting agencyhub-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
