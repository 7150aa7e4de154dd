package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resqlink-backend/internal/config"
	"resqlink-backend/internal/database"
	"resqlink-backend/internal/handlers"
	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/repository"
	"resqlink-backend/internal/router"
	"resqlink-backend/internal/services"
	"resqlink-backend/internal/websocket"
	"resqlink-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting ResQLink Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	contactRepo := repository.NewContactRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	notifRepo := repository.NewNotificationRepo(pool)
	incidentRepo := repository.NewIncidentRepo(pool)

	// ──── Step 5: Initialize Assistant ────
	var synth services.Synthesizer
	if cfg.TTSEndpoint != "" {
		synth = services.NewHTTPSynthesizer(cfg.TTSEndpoint)
		log.Println("✓ Speech synthesis enabled")
	} else {
		log.Println("⚠ TTS_ENDPOINT not set, voice output disabled")
	}

	assistantService, err := services.NewAssistantService(cfg.GeminiAPIKey, cfg.AssistantModel, cfg.AssistantCallSlots, synth)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer assistantService.Close()
	log.Println("✓ Gemini assistant initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	refreshStore := services.NewRedisRefreshStore(redisClients.Queue)
	publisher := services.NewEventPublisher(redisClients.Queue)
	authService := services.NewAuthService(userRepo, refreshStore, publisher, jwtAuth)
	alertService := services.NewAlertService(incidentRepo, redisClients.Queue)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService, userRepo)
	contactHandler := handlers.NewContactHandler(contactRepo, userRepo, notifRepo, publisher)
	messageHandler := handlers.NewMessageHandler(messageRepo, publisher)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	sosHandler := handlers.NewSOSHandler(alertService)
	notificationHandler := handlers.NewNotificationHandler(notifRepo, contactRepo, userRepo)
	referenceHandler := handlers.NewReferenceHandler()

	// ──── Step 6: Start Alert Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		emailService,
		publisher,
		userRepo,
		contactRepo,
		incidentRepo,
		notifRepo,
		cfg.AlertWorkers,
	)
	workerPool.Start()
	log.Printf("✓ Alert worker pool started (%d goroutines)", cfg.AlertWorkers)

	reminderScheduler := services.NewReminderScheduler(userRepo, emailService, redisClients.Queue)
	reminderScheduler.Start()
	log.Println("✓ Reminder scheduler started")

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		userHandler,
		contactHandler,
		messageHandler,
		assistantHandler,
		sosHandler,
		notificationHandler,
		referenceHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ ResQLink Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
