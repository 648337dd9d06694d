// cmd/simulator/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/malikhammadd/dust-detector/internal/alerting"
	"github.com/malikhammadd/dust-detector/internal/anomaly"
	"github.com/malikhammadd/dust-detector/internal/api"
	"github.com/malikhammadd/dust-detector/internal/auth"
	"github.com/malikhammadd/dust-detector/internal/config"
	"github.com/malikhammadd/dust-detector/internal/sim"
	"github.com/malikhammadd/dust-detector/internal/stats"
	"github.com/malikhammadd/dust-detector/internal/storage"
	"github.com/malikhammadd/dust-detector/internal/websocket"
)

func main() {
	configPath := flag.String("config", ".", "Path to the configuration file directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// --- Initialize Components ---
	thresholds := cfg.SafeThresholds()
	store := storage.NewReadingStore(cfg.Simulation.Retention)
	engine := stats.NewEngine(store, thresholds, cfg.Simulation.Retention)
	classifier := anomaly.NewClassifier(thresholds)
	hub := websocket.NewHub()
	alertLog := alerting.NewLog()
	alerter := alerting.NewAlerter(alertLog, hub)
	orch := sim.New(cfg, store, engine, classifier, alerter, hub)
	authManager := auth.NewManager(cfg.Auth)

	handler := api.NewHandler(orch, store, engine, alertLog, hub, authManager)
	router := api.SetupRouter(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting query server on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	if err := orch.Start(); err != nil {
		log.Fatalf("Could not start simulation: %v", err)
	}

	// Run until the simulation duration elapses or a signal arrives.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v. Shutting down...", sig)
		orch.Stop()
		<-orch.Done()
	case <-orch.Done():
		log.Println("Simulation duration elapsed.")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete.")
}
