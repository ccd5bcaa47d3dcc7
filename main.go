package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	"github.com/stickclash/stickclash-backend/config"
	"github.com/stickclash/stickclash-backend/db"
	"github.com/stickclash/stickclash-backend/internal/auth"
	"github.com/stickclash/stickclash-backend/internal/room"
	"github.com/stickclash/stickclash-backend/internal/score"
	"github.com/stickclash/stickclash-backend/internal/ws"
	redisPkg "github.com/stickclash/stickclash-backend/pkg/redis"
	wsPkg "github.com/stickclash/stickclash-backend/pkg/websocket"
)

func main() {
	cfg := config.LoadConfig()

	conn, err := db.Connect(cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	defer conn.Close()

	if err := db.Init(conn); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	rdb, err := redisPkg.NewRedisClient(cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	authService := auth.NewService(conn, cfg)
	authHandler := auth.NewAuthHandler(authService)

	roomService := room.NewService(conn)
	roomHandler := room.NewHandler(roomService)

	scoreService := score.NewService(conn, rdb)
	scoreHandler := score.NewHandler(scoreService)

	hub := wsPkg.NewHub()
	gateway := ws.NewGateway(hub, authService, roomService)

	generalHub := wsPkg.NewGeneralHub()
	generalHandler := ws.NewGeneralHandler(generalHub, authService)
	go ws.NewNotificationWorker(rdb, generalHub).Run()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	r.Get("/api/scores/leaderboard", scoreHandler.Leaderboard)
	r.Get("/api/scores/matches", scoreHandler.RecentMatches)
	r.Get("/api/scores/player/{name}", scoreHandler.Player)

	// Token-guarded routes
	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireToken)

		r.Get("/api/auth/verify", authHandler.Verify)

		r.Post("/api/rooms/create", roomHandler.Create)
		r.Post("/api/rooms/join", roomHandler.Join)
		r.Get("/api/rooms/{roomID}", roomHandler.Get)
		r.Delete("/api/rooms/{roomID}", roomHandler.Close)
		r.Patch("/api/rooms/{roomID}/status", roomHandler.SetStatus)

		r.Post("/api/scores/match", scoreHandler.RecordMatch)
	})

	// Realtime channel authenticates with the same token at connect time.
	r.Get("/ws", gateway.ServeWS)
	r.Get("/ws/lobby", generalHandler.ServeLobbyWS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("Server started at %s", server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Info("Server gracefully stopped")
}
