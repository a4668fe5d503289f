package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"challenge-orchestrator/config"
	"challenge-orchestrator/pkgs/helpers"
	"challenge-orchestrator/pkgs/service"
	"challenge-orchestrator/pkgs/store"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Initiate logger
	helpers.InitLogger()

	// Load the config object
	config.LoadConfig()

	st, err := store.Open(config.SettingsObj.DBPath)
	if err != nil {
		log.Fatalf("Failed to open roster store: %v", err)
	}
	defer st.Close()

	srv := service.NewServer(st)
	httpServer := &http.Server{
		Addr:    ":" + config.SettingsObj.Port,
		Handler: srv.Handler(),
	}

	// Set up signal handling for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("Notify server listening on port %s", config.SettingsObj.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Server error: %v", err)
		}
	}()

	sig := <-sigs
	log.Infof("Received signal: %s. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}

	wg.Wait()
}
