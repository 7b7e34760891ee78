package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/handler"
	"github.com/makeaparody/api/internal/middleware"
	"github.com/makeaparody/api/internal/pipeline"
	"github.com/makeaparody/api/internal/server"
	"github.com/makeaparody/api/internal/service"
	ws "github.com/makeaparody/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis client (optional - rate limiting is skipped without it)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis not available, rate limiting disabled: %v", err)
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	geniusClient := client.NewGeniusClient(&cfg.Genius)
	groqClient := client.NewGroqClient(&cfg.Groq)
	sunoClient := client.NewSunoClient(&cfg.Suno)
	youtubeClient, err := client.NewYouTubeClient(ctx, &cfg.YouTube)
	if err != nil {
		log.Fatalf("Failed to create YouTube client: %v", err)
	}

	// Initialize R2 client (optional - finished tracks are not archived without it)
	var archiver pipeline.Archiver
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		} else {
			archiver = service.NewArchiveService(r2Client)
		}
	} else {
		log.Println("Info: R2 storage not configured, finished tracks will not be archived")
	}

	for name, ok := range map[string]bool{
		"Genius":  geniusClient.IsConfigured(),
		"YouTube": youtubeClient.IsConfigured(),
		"Groq":    groqClient.IsConfigured(),
		"Suno":    sunoClient.IsConfigured(),
	} {
		if !ok {
			log.Printf("Warning: %s credentials missing, dependent requests will fail", name)
		}
	}

	// Initialize services
	lyricsService := service.NewLyricsService(geniusClient)
	instrumentalService := service.NewInstrumentalService(youtubeClient)
	parodyService := service.NewParodyService(groqClient)
	musicService := service.NewMusicService(sunoClient, cfg.CallbackURL(), cfg.Suno.Model)
	poller := service.NewPoller(sunoClient, cfg.Suno.PollInterval, cfg.Suno.PollMaxTicks)

	store := pipeline.NewStore(pipeline.Deps{
		Lyrics:       lyricsService,
		Instrumental: instrumentalService,
		Rewriter:     parodyService,
		Music:        musicService,
		Poller:       poller,
		Archiver:     archiver,
		Notifier:     hub,
	})
	go store.RunJanitor(ctx, time.Minute, cfg.Server.SessionMaxIdle)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := server.New(cfg, server.Handlers{
		Lyrics:       handler.NewLyricsHandler(lyricsService),
		Instrumental: handler.NewInstrumentalHandler(instrumentalService),
		Parody:       handler.NewParodyHandler(parodyService, validate),
		Music:        handler.NewMusicHandler(musicService, validate),
		Session:      handler.NewSessionHandler(store, hub, validate),
		Health: func() fiber.Map {
			return fiber.Map{
				"genius":    geniusClient.IsConfigured(),
				"youtube":   youtubeClient.IsConfigured(),
				"groq":      groqClient.IsConfigured(),
				"suno":      sunoClient.IsConfigured(),
				"r2":        archiver != nil,
				"rateLimit": redisClient != nil,
			}
		},
	}, rateLimiter)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		store.CloseAll()
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
