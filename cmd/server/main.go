package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maple-boss-api/internal/bosscode"
	"maple-boss-api/internal/config"
	httpapi "maple-boss-api/internal/http"
	"maple-boss-api/internal/registry"
	"maple-boss-api/internal/scraper"
	"maple-boss-api/internal/service"
	"maple-boss-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}
	defer st.Close()

	var reg bosscode.Registry
	if cfg.RegistryURL != "" {
		log.Printf("using remote boss registry at %s", cfg.RegistryURL)
		reg = registry.New(cfg.RegistryURL, cfg.HTTPTimeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scr := scraper.New(cfg)
	svc := service.New(st, scr, reg, cfg)
	if err := svc.SeedRegistry(ctx); err != nil {
		log.Printf("registry seed: %v", err)
	}
	go svc.StartScheduler(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("maple-boss-api listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
	log.Printf("server stopped")
}
