package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/koocao/reduzed-backend/internal/clicks"
	"github.com/koocao/reduzed-backend/pkg/bigquery"
	"github.com/koocao/reduzed-backend/pkg/config"
	"github.com/koocao/reduzed-backend/pkg/logger"
	"github.com/koocao/reduzed-backend/pkg/metrics"
	"github.com/koocao/reduzed-backend/pkg/outbox/idempotency"
	"github.com/koocao/reduzed-backend/pkg/outbox/registry"
	"github.com/koocao/reduzed-backend/pkg/pubsub"
	"github.com/koocao/reduzed-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "analytics-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "analytics-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	requireResource(ctx, logg, "bigquery client", err)
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(ctx, "failed to close bigquery client", err)
		}
	}()

	subscription := pubsubClient.ClicksSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "clicks subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.ClickIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := clicks.NewAnalyticsConsumer(manager, bqClient, cfg.BigQuery.ClickEventsTable, logg)
	requireResource(ctx, logg, "analytics consumer", err)

	workerMetrics := metrics.NewWorkerMetrics(prometheus.DefaultRegisterer)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env": cfg.App.Env,
	})
	logg.Info(runCtx, "analytics worker ready")

	err = subscription.Receive(runCtx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		if handleErr := consumer.Handle(msgCtx, msg.Data); handleErr != nil {
			var nonRetry registry.NonRetryableError
			if errors.As(handleErr, &nonRetry) {
				// Malformed payloads never become valid; drop them.
				logg.Warn(logg.WithField(msgCtx, "error", handleErr.Error()), "dropping malformed click event")
				workerMetrics.AddFailed(clicks.AnalyticsConsumerName, 1)
				msg.Ack()
				return
			}
			workerMetrics.AddFailed(clicks.AnalyticsConsumerName, 1)
			msg.Nack()
			return
		}
		workerMetrics.AddProcessed(clicks.AnalyticsConsumerName, 1)
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "analytics worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
