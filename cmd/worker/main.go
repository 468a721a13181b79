package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/freshkart/freshkart-api/internal/checkout"
	"github.com/freshkart/freshkart-api/internal/config"
	"github.com/freshkart/freshkart-api/internal/dashboard"
	kafkax "github.com/freshkart/freshkart-api/internal/kafka"
	"github.com/freshkart/freshkart-api/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis holds the dashboard counters and the dedup set
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &dashboard.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-worker",
	}

	group := getenv("DASHBOARD_GROUP", "dashboard-svc")
	workers := mustAtoi(os.Getenv("DASHBOARD_WORKERS"), "8")

	// One consumer per topic, same handler: the envelope type routes inside.
	for _, topic := range []string{checkout.TopicOrderPlaced, checkout.TopicOrderStatus} {
		topic := topic
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func() {
			log.Printf("dashboard consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Printf("consumer exit (%s): %v", topic, err)
				cancel()
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
