package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codenest/internal/db"
	"codenest/internal/handlers"
	"codenest/internal/middleware"
	"codenest/internal/router"
	"codenest/internal/services"
	"codenest/internal/utils"
	"codenest/internal/ws"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	conn, err := db.Init()
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	notifier := services.NewNotifier(conn, hub)
	cache := utils.NewCache(256)
	limiter := middleware.NewIPRateLimiter(rate.Limit(5), 10)

	handlers.InitGoogleOAuth()

	// Only one instance runs the expiry sweep when several share a database.
	if os.Getenv("PRIMARY_INSTANCE") != "false" {
		sweeper := services.NewSweeper(conn, 0)
		sweeper.Start()
	}

	r := router.New(router.Deps{
		DB:       conn,
		Hub:      hub,
		Notifier: notifier,
		Cache:    cache,
		Limiter:  limiter,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("codenest server starting on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
