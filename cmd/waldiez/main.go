package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waldiez/waldiez-go/internal/auth"
	"github.com/waldiez/waldiez-go/internal/config"
	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/handlers"
	"github.com/waldiez/waldiez-go/internal/logger"
	"github.com/waldiez/waldiez-go/internal/platform"
	"github.com/waldiez/waldiez-go/internal/scheduler"
	"github.com/waldiez/waldiez-go/internal/secrets"
	"github.com/waldiez/waldiez-go/internal/server"
	ws "github.com/waldiez/waldiez-go/internal/websocket"
)

var version = "dev"

func main() {
	// Handle --version / -v flag
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println("waldiez " + version)
		os.Exit(0)
	}

	logger.Banner()

	// Set version for API responses
	handlers.AppVersion = version

	cfg := config.Load()

	// Initialize database
	db, err := database.New(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Resolve JWT secret: env var > database > generate and persist
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		var stored string
		err := db.QueryRow("SELECT value FROM settings WHERE key = 'jwt_secret'").Scan(&stored)
		if err == nil && stored != "" {
			jwtSecret = stored
		} else {
			jwtSecret, err = secrets.GenerateKey()
			if err != nil {
				logger.Fatal("Failed to generate JWT secret: %v", err)
			}
			// Persist to database so tokens survive restarts
			if _, err := db.Exec("INSERT INTO settings (id, key, value) VALUES (?, 'jwt_secret', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
				"jwt-secret-key", jwtSecret); err != nil {
				logger.Error("Failed to persist JWT secret: %v", err)
			}
			logger.Success("Generated and persisted JWT secret")
		}
	}

	authService := auth.NewService(jwtSecret)

	// Resolve encryption key: env var > database > generate and persist (separate from JWT)
	encKey := cfg.EncryptionKey
	if encKey == "" {
		var stored string
		err := db.QueryRow("SELECT value FROM settings WHERE key = 'encryption_key'").Scan(&stored)
		if err == nil && stored != "" {
			encKey = stored
		} else {
			encKey, err = secrets.GenerateKey()
			if err != nil {
				logger.Fatal("Failed to generate encryption key: %v", err)
			}
			if _, err := db.Exec("INSERT INTO settings (id, key, value) VALUES (?, 'encryption_key', ?)",
				"encryption-key", encKey); err != nil {
				logger.Fatal("Failed to persist encryption key: %v", err)
			}
			logger.Success("Generated encryption key")
		}
	}
	secretsMgr := secrets.NewManager(encKey)

	sched := scheduler.New(db, cfg.SnapshotKeep)
	sched.Start()
	defer sched.Stop()

	if err := sched.ScheduleSnapshots(cfg.SnapshotCron); err != nil {
		logger.Error("Failed to schedule flow snapshots: %v", err)
	}
	sched.StartDataRetention()

	// Create server
	srv := server.New(server.Config{
		DB:        db,
		Auth:      authService,
		Secrets:   secretsMgr,
		Scheduler: sched,
		DataDir:   cfg.DataDir,
		Port:      cfg.Port,
	})
	wsHub := srv.WSHub

	db.OnAudit = func(action, category string) {
		payload, err := json.Marshal(map[string]string{
			"action": action, "category": category,
		})
		if err != nil {
			return
		}
		wsHub.Broadcast(ws.Message{
			Type:    "audit_log_created",
			Payload: payload,
		})
	}

	// Start WebSocket hub
	go wsHub.Run()

	// Check if setup is needed
	hasAdmin, err := db.HasAdminUser()
	if err != nil {
		logger.Fatal("Failed to check admin user: %v", err)
	}
	if !hasAdmin {
		logger.Warn("No admin user found. Call /api/v1/setup/init to complete setup.")
	}

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	if cfg.BindAddress != "127.0.0.1" && cfg.BindAddress != "localhost" {
		logger.Warn("Binding to %s — accessible from the network. Use WALDIEZ_BIND=127.0.0.1 for localhost-only.", cfg.BindAddress)
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // intentionally zero for WebSocket support
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		url := fmt.Sprintf("http://localhost:%d", cfg.Port)
		logger.Listen(addr, url, cfg.Port)
		if os.Getenv("WALDIEZ_NO_OPEN") != "1" {
			platform.OpenBrowser(url)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	<-done
	logger.Shutdown("Shutting down server...")

	wsHub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("Server shutdown failed: %v", err)
	}

	logger.Bye()
}
