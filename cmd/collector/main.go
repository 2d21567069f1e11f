// Results collector for metronome benchmark runs.
//
// Runners upload trial documents here (see the --uploadUrl flag of the
// metronome CLI); the collector keeps them in memory and serves summary pages
// per run.
//
// Usage:
//
//	go run ./cmd/collector -addr :8080
//	go run ./cmd/collector -addr :8080 -api-key 59c20534-5bb6-4f48-9f4d-a66bfbb1f6cb
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thesyncim/metronome/cmd/collector/server"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	apiKey := flag.String("api-key", "", "Require this X-Api-Key value from uploaders (empty accepts all)")
	flag.Parse()

	cfg := server.DefaultConfig()
	cfg.Addr = *addr
	cfg.APIKey = *apiKey

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.WithError(err).Fatal("creating collector failed")
	}

	bound, err := srv.Start()
	if err != nil {
		log.WithError(err).Fatal("starting collector failed")
	}
	log.WithField("addr", bound).Info("collector listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}
