package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-social-feed/config"
	"github.com/oksasatya/go-social-feed/internal/application"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
	pginfra "github.com/oksasatya/go-social-feed/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-feed/pkg/events"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

func summaryKey(postID string) string {
	return "post:comments:summary:" + postID
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitMQCommentsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	posts := pginfra.NewPostRepository(pool)

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQCommentsQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQCommentsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev events.CommentsChanged
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := refreshSummary(c, posts, rdb, ev.PostID)
			cancel()
			if err != nil {
				// A deleted post means there is nothing left to summarize.
				if errors.Is(err, repo.ErrNotFound) {
					_ = helpers.RedisDel(ctx, rdb, summaryKey(ev.PostID))
					_ = msg.Ack(false)
					continue
				}
				log.Printf("refresh summary for %s failed: %v", ev.PostID, err)
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("summary worker listening on queue=%s", cfg.RabbitMQCommentsQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func refreshSummary(ctx context.Context, posts repo.PostRepository, rdb *redis.Client, postID string) error {
	p, err := posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	sum := application.CommentSummary{
		PostID:       p.ID,
		CommentCount: len(p.Comments),
		ByAuthor:     make(map[string]int),
		UpdatedAt:    time.Now().UTC(),
	}
	for _, c := range p.Comments {
		sum.ByAuthor[c.AuthorID]++
	}
	return helpers.RedisSetJSON(ctx, rdb, summaryKey(p.ID), sum, 24*time.Hour)
}
