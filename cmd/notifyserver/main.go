package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-go/internal/config"
	notifyhandlers "social-go/internal/handlers/notifyserver"
	internalkafka "social-go/internal/kafka"
	internalredis "social-go/internal/redis"
	"social-go/internal/services"
	ws "social-go/internal/websocket"

	confluent "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Starting %s notify server v%s", cfg.AppName, cfg.AppVersion)

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

	hub := ws.NewHub()
	go hub.Run()

	consumer, err := internalkafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("Failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	go func() {
		err := consumer.Consume(consumerCtx, []string{cfg.Kafka.FriendEventTopic}, cfg.Kafka.ConsumerGroup,
			func(ctx context.Context, msg *confluent.Message) error {
				var event services.FriendEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					// Malformed payloads are dropped; redelivery would not help.
					log.Printf("Skipping malformed friend event at offset %v: %v", msg.TopicPartition.Offset, err)
					return nil
				}

				hub.Deliver(&ws.Notification{
					UserID:  event.NotifyUserID(),
					Payload: msg.Value,
				})
				return nil
			})
		if err != nil && consumerCtx.Err() == nil {
			log.Printf("Kafka consumer stopped with error: %v", err)
		}
	}()

	wsHandler := notifyhandlers.NewWebSocketHandler(hub, cfg.Auth.JWTSecretKey, tokenBlacklist, cfg.WebSocket)

	httpMux := http.NewServeMux()
	httpMux.HandleFunc(cfg.Notify.WebSocketPath, wsHandler.HandleConnection)

	addr := cfg.Notify.Host + ":" + cfg.Notify.Port
	server := &http.Server{
		Addr:           addr,
		Handler:        httpMux,
		ReadTimeout:    cfg.Notify.ReadTimeout,
		WriteTimeout:   cfg.Notify.WriteTimeout,
		MaxHeaderBytes: cfg.Notify.MaxHeaderBytes,
	}

	go func() {
		log.Printf("Notify server listening on %s (path %s)", addr, cfg.Notify.WebSocketPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Notify server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down notify server...")

	cancelConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Notify server shutdown error: %v", err)
	}
	log.Println("Notify server stopped.")
}
