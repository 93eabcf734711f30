package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
)

func main() {
	cfg := ServerConfigFromEnv()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	clientDir := flag.String("client", cfg.ClientDir, "Path to client directory (default: ../client)")
	flag.Parse()
	cfg.Addr = *addr
	cfg.ClientDir = *clientDir

	if cfg.ClientDir == "../client" {
		if exe, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(exe), "..", "client")
			if _, err := os.Stat(candidate); err == nil {
				cfg.ClientDir = candidate
			}
		}
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		log.Error("failed to open terrain map database", err, map[string]interface{}{"path": cfg.DBPath})
		os.Exit(1)
	}
	defer db.Close()

	StartDebugServer(ObservabilityConfig{Enabled: cfg.ObservabilityOn, ListenAddr: cfg.ObservabilityAddr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, db)
	hub.SetMaxTotalConns(cfg.MaxTotalConns)
	broadcaster := hub // *Hub implements Broadcaster
	game := NewGame(broadcaster)
	hub.game = game

	var gameDone sync.WaitGroup
	gameDone.Add(1)
	go func() {
		defer gameDone.Done()
		game.Run(ctx)
	}()
	go hub.Run(ctx)

	mux := SetupRoutes(hub, cfg.ClientDir)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info("server starting", map[string]interface{}{"addr": cfg.Addr, "clientDir": cfg.ClientDir})
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("ListenAndServe failed", err, nil)
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("shutting down", nil)
	cancel()
	// Wait for game.Run's final tick + forced broadcast to finish before
	// tearing down sockets, so the last state reaches clients (SPEC_FULL §5).
	gameDone.Wait()
	server.Close()
}
