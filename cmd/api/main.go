package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lapormitra.id/internal/auth"
	"lapormitra.id/internal/config"
	"lapormitra.id/internal/httpapi"
	"lapormitra.id/internal/obs"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	// Local development convenience; environment wins over .env.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	codec, err := auth.NewCodec(cfg.AccessSecret, cfg.RefreshSecret,
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	store, err := auth.OpenPG(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	service := auth.NewService(store, codec)
	verifier := auth.NewVerifier(codec, store)

	api := httpapi.New(httpapi.Options{
		Service:        service,
		Verifier:       verifier,
		ReadyProbe:     httpapi.ReadyProbe{DB: store.DB()},
		Version:        version,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginBurst:     cfg.LoginRateBurst,
		LoginPerMinute: cfg.LoginRatePerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting lapormitra-api %s on %s", version, srv.Addr)

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
