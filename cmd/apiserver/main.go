package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-go/internal/config"
	apihandlers "social-go/internal/handlers/apiserver"
	"social-go/internal/kafka"
	"social-go/internal/middleware"
	internalredis "social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/storage"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Starting %s API server v%s", cfg.AppName, cfg.AppVersion)

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
	}
	defer redisClient.Close()

	tokenBlacklist := internalredis.NewRedisTokenBlacklist(redisClient)
	rateLimiter := internalredis.NewFixedWindowRateLimiter(
		redisClient, cfg.RateLimit.FriendRequestQuota, cfg.RateLimit.FriendRequestWindow)

	// Friend events are best-effort; a broken broker should not keep the API
	// from serving.
	var producer kafka.MessageProducer
	if p, err := kafka.NewConfluentKafkaProducer(cfg.Kafka); err != nil {
		log.Printf("Warning: Kafka producer unavailable, friend events disabled: %v", err)
	} else {
		producer = p
		defer producer.Close()
	}

	userRepo := storage.NewGormUserRepository(db)
	friendRepo := storage.NewGormFriendRequestRepository(db)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	friendRequestService := services.NewFriendRequestService(
		userRepo, friendRepo, rateLimiter, producer, cfg.Kafka)

	authHandler := apihandlers.NewAuthHandler(authService, tokenBlacklist)
	userHandler := apihandlers.NewUserHandler(userService)
	friendRequestHandler := apihandlers.NewFriendRequestHandler(friendRequestService)

	router := mux.NewRouter()
	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	// Public routes.
	apiRouter.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	apiRouter.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Authenticated routes.
	authedRouter := apiRouter.PathPrefix("").Subrouter()
	authedRouter.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist))
	authedRouter.HandleFunc("/auth/logout", authHandler.LogoutHandler).Methods(http.MethodPost)
	authedRouter.HandleFunc("/users/me", userHandler.GetMyProfileHandler).Methods(http.MethodGet)
	authedRouter.HandleFunc("/users", userHandler.SearchUsersHandler).Methods(http.MethodGet)
	authedRouter.HandleFunc("/friend-requests", friendRequestHandler.SendFriendRequestHandler).Methods(http.MethodPost)
	authedRouter.HandleFunc("/friend-requests/pending", friendRequestHandler.ListPendingRequestsHandler).Methods(http.MethodGet)
	authedRouter.HandleFunc("/friend-requests/{requestID:[0-9]+}/status", friendRequestHandler.UpdateRequestStatusHandler).Methods(http.MethodPost)
	authedRouter.HandleFunc("/friends", friendRequestHandler.ListFriendsHandler).Methods(http.MethodGet)

	corsOptions := []gorillaHandlers.CORSOption{
		gorillaHandlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		gorillaHandlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		gorillaHandlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		gorillaHandlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, gorillaHandlers.AllowCredentials())
	}
	corsHandler := gorillaHandlers.CORS(corsOptions...)(router)

	addr := cfg.APIServer.Host + ":" + cfg.APIServer.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("API server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
	log.Println("API server stopped.")
}
