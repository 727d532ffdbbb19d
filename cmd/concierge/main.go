package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"concierge/internal/app/commands"
	"concierge/internal/app/concierge"
	plansapp "concierge/internal/app/handlers/plans"
	"concierge/internal/app/middleware"
	appoutbox "concierge/internal/app/outbox"
	"concierge/internal/app/policies"
	"concierge/internal/app/queries"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/infra/bookingsvc"
	"concierge/internal/infra/broker/kafka"
	"concierge/internal/infra/cache"
	"concierge/internal/infra/config"
	mongostore "concierge/internal/infra/db/mongo"
	ginserver "concierge/internal/infra/http/gin"
	"concierge/internal/infra/inbox"
	"concierge/internal/infra/llm"
	"concierge/internal/infra/obs"
	infraoutbox "concierge/internal/infra/outbox"
	"concierge/internal/infra/search/tavily"
	"concierge/internal/infra/storage/memory"
	"concierge/internal/infra/storage/s3"
	"concierge/internal/infra/weather/owm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger = obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	app.startBackground(ctx, cfg, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: app.metrics}, app.health, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "llm_provider", cfg.LLMProvider)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// outboxStore is both the write side used by handlers and the queue the worker drains.
type outboxStore interface {
	appoutbox.Outbox
	infraoutbox.Queue
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	metrics  *obs.Metrics

	commands commands.Bus
	outbox   outboxStore
	inbox    kafka.Inbox
	closers  []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{metrics: obs.NewMetrics()}

	model, err := llm.New(ctx, modelOptions(cfg))
	if err != nil {
		return nil, err
	}
	searcher := &cache.Searcher{
		Next:     tavily.New(cfg.TavilyAPIKey, cfg.TavilyBaseURL),
		Store:    cache.NewMemoryStore(cfg.SearchCacheTTL),
		TTL:      cfg.SearchCacheTTL,
		Logger:   logger,
		OnLookup: app.metrics.CacheLookup,
	}
	var pings []func(context.Context) error
	if !searcher.Enabled() {
		logger.Info("search cache disabled", "ttl", cfg.SearchCacheTTL)
	} else if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, "concierge:")
		searcher.Store = redisStore
		pings = append(pings, redisStore.Ping)
		app.closers = append(app.closers, func(context.Context) error { return redisStore.Close() })
	}
	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY not set, using mock forecasts")
	}
	service := &concierge.Service{
		Weather: owm.New(cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL),
		Search:  searcher,
		Model:   model,
		Logger:  logger,
		Metrics: app.metrics,
	}
	bookings := bookingsvc.New(cfg.BookingServiceURL, cfg.InternalAPIKey, logger)

	var (
		plans   domainplans.Repository
		idStore middleware.IdempotencyStore
	)
	if cfg.MongoURI != "" {
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		plans = mongostore.NewPlanRepository(ctx, client.DB)
		idStore = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		app.outbox = infraoutbox.NewStore(ctx, client.DB)
		app.inbox = inbox.NewStore(ctx, client.DB, cfg.KafkaGroupID, 7*24*time.Hour)
		pings = append(pings, client.Ping)
		app.closers = append(app.closers, client.Close)
		logger.Info("mongo storage enabled", "db", cfg.MongoDB)
	} else {
		plans = memory.NewPlanRepository()
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		if len(cfg.KafkaBrokers) > 0 {
			app.outbox = memory.NewOutbox()
		} else {
			app.outbox = memory.NewLocalOutbox(logger)
		}
		app.inbox = memory.NewInbox()
	}

	var archive policies.PlanArchive = s3.Disabled{}
	if cfg.ArchiveEnabled() {
		a, err := s3.NewArchive(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			return nil, err
		}
		archive = a
	}

	encoder := appoutbox.JSONEventEncoder{IDGenerator: uuid.NewString}
	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	plansapp.Register(cmdBus, queryBus, plansapp.Handlers{
		Generate: &plansapp.GeneratePlanHandler{
			Planner:  service,
			Bookings: bookings,
			Plans:    plans,
			Outbox:   app.outbox,
			Encoder:  encoder,
			Logger:   logger,
		},
		Export: &plansapp.ExportPlanHandler{
			Plans:   plans,
			Archive: archive,
			Outbox:  app.outbox,
			Encoder: encoder,
		},
		Answer: &plansapp.AnswerQueryHandler{Answerer: service, Bookings: bookings, Logger: logger},
		Latest: &plansapp.GetLatestPlanHandler{Plans: plans},
	})

	app.commands = middleware.ChainCommands(
		cmdBus,
		middleware.CommandLogging(logger, app.metrics),
		middleware.Validation(plansapp.Validator{}),
		middleware.Idempotency(idStore, nil),
		middleware.OutboxFlush(app.outbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger, app.metrics),
		middleware.QueryValidation(plansapp.Validator{}),
	)

	limiter := ginserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	app.handlers = ginserver.Handlers{
		Concierge: ginserver.ConciergeHandler{Commands: app.commands, Queries: queryBusWithMiddleware},
		RateLimit: limiter.Middleware(),
		Metrics:   app.metrics.Handler(),
	}
	app.health = obs.HealthHandlers{
		Ready: func(ctx context.Context) error {
			for _, ping := range pings {
				if err := ping(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		ServicesReachable: bookings.Reachable,
	}
	return app, nil
}

// startBackground runs the outbox publisher and booking-status consumer when Kafka is configured.
func (a *application) startBackground(ctx context.Context, cfg config.Config, logger *slog.Logger) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka not configured, outbox events are not published")
		return
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka producer unavailable", "error", err)
	} else {
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		worker := &infraoutbox.Worker{
			Queue:       a.outbox,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, &kafka.BookingStatusHandler{
		Bus:    a.commands,
		Inbox:  a.inbox,
		Logger: logger,
	}, logger)
	if err != nil {
		logger.Error("booking status consumer unavailable", "error", err)
		return
	}
	a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })
	go func() {
		if err := consumer.Run(ctx, []string{cfg.BookingStatusTopic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("booking status consumer stopped", "error", err)
		}
	}()
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func modelOptions(cfg config.Config) llm.Options {
	opts := llm.Options{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.ModelName,
		Temperature: cfg.ModelTemperature,
	}
	if cfg.LLMProvider == config.ProviderGemini {
		opts.APIKey = cfg.GeminiAPIKey
		opts.BaseURL = ""
		opts.Model = cfg.GeminiModel
	}
	return opts
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
