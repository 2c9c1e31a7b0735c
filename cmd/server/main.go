// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/auth"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/database"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/handlers"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/middleware"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/store"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Postgres keeps the match history; skipped entirely unless configured.
	if os.Getenv("PG_HOST") != "" {
		database.ConnectDB()
	}

	// Game documents live in Redis when available so multiple instances can
	// share them; otherwise a process-local store serves single-node play.
	var docs store.DocStore
	if rs, err := store.ConnectRedis(); err == nil {
		logger.Info("Using Redis document store")
		docs = rs
	} else {
		logger.Warnf("Redis unavailable (%v); using in-memory document store", err)
		docs = store.NewMemoryStore()
	}

	srv := handlers.NewGameServer(logger, docs)

	mux := http.NewServeMux()

	// room endpoints
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(srv),
	)))
	mux.Handle("/room/join", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.JoinRoomHandler(srv),
	)))

	// room + game websocket
	mux.Handle("/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("Running on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server exited: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
}
