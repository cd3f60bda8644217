package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authgate.org/internal/auth"
	"authgate.org/internal/config"
	"authgate.org/internal/httpapi"
	"authgate.org/internal/migrate"
	"authgate.org/internal/obs"
	"authgate.org/internal/store/pg"
	"authgate.org/internal/store/redis"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	users, err := pg.Open(cfg.PGDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer users.Close()

	// Apply pending migrations on startup when a migrations dir is
	// configured; otherwise the schema is managed with cmd/migrate.
	if cfg.MigrationsDir != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		mgr := migrate.NewManager(users.DB(), cfg.MigrationsDir)
		if err := mgr.Up(ctx); err != nil {
			cancel()
			log.Fatalf("migrate: %v", err)
		}
		cancel()
	}

	sessions := redis.Open(cfg.RedisAddr)
	defer sessions.Close()

	svc, err := auth.NewService(users, sessions,
		auth.WithTokenSecret(cfg.TokenSecret),
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithBcryptCost(cfg.BcryptCost),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(svc, httpapi.ReadyProbe{Users: users, Sessions: sessions}, version)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting authgate-api %s on %s", version, srv.Addr)

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
