package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/tumbleweedd/workspace_system/internal/app/httpserver"
	"github.com/tumbleweedd/workspace_system/internal/config"
	amqpdelivery "github.com/tumbleweedd/workspace_system/internal/delivery/amqp"
	webhookHandler "github.com/tumbleweedd/workspace_system/internal/delivery/http/billing/webhook"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	accountRepository "github.com/tumbleweedd/workspace_system/internal/repository/account"
	outboxRepository "github.com/tumbleweedd/workspace_system/internal/repository/outbox"
	subscriptionRepository "github.com/tumbleweedd/workspace_system/internal/repository/subscription"
	accountApplyService "github.com/tumbleweedd/workspace_system/internal/services/account/apply"
	webhookService "github.com/tumbleweedd/workspace_system/internal/services/billing/webhook"
	relayService "github.com/tumbleweedd/workspace_system/internal/services/outbox/relay"
	"github.com/tumbleweedd/workspace_system/pkg/brokers/rabbitmq"
	"github.com/tumbleweedd/workspace_system/pkg/databases/postgres"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// App wires the billing service: the provider webhook endpoint that produces
// subscription outbox events, the relay that publishes them, and the
// consumer that mirrors workspace events into billing accounts.
type App struct {
	log logger.Logger

	db     *postgres.PgDB
	broker *rabbitmq.Broker

	httpServer *httpserver.App
	relay      *relayService.Service
	consumer   *amqpdelivery.Consumer
}

func NewApp(ctx context.Context, log logger.Logger, cfg *config.Config, dsn string) (*App, error) {
	const op = "app.billing.NewApp"

	db, err := postgres.NewPostgresDB(ctx, log, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: connect to postgres: %w", op, err)
	}

	broker, err := rabbitmq.New(log, cfg.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: connect to rabbitmq: %w", op, err)
	}

	if err = broker.DeclareTopology(cfg.Rabbit.Exchange, cfg.Rabbit.Queue, []string{"workspace.#", "project.#"}); err != nil {
		return nil, fmt.Errorf("%s: declare topology: %w", op, err)
	}

	publisher := rabbitmq.NewPublisher(log, broker, cfg.Rabbit.Exchange)

	outboxRepo := outboxRepository.New(log, db.GetDB())
	subscriptionRepo := subscriptionRepository.New(log, db.GetDB(), outboxRepo)
	accountRepo := accountRepository.New(log, db.GetDB())

	webhookSvc := webhookService.New(log, subscriptionRepo)
	applySvc := accountApplyService.New(log, accountRepo)

	relaySvc := relayService.New(log, cfg.Relay, outboxRepo, publisher)

	deliveries, err := broker.Consume(cfg.Rabbit.Queue, cfg.Rabbit.ConsumerTag)
	if err != nil {
		return nil, fmt.Errorf("%s: start consuming: %w", op, err)
	}

	consumer := amqpdelivery.NewConsumer(log, deliveries, func(ctx context.Context, evt models.Event) error {
		return models.DispatchWorkspaceEvent(ctx, applySvc, evt)
	})

	router := initRoutes(webhookHandler.NewHandler(log, webhookSvc))

	return &App{
		log:        log,
		db:         db,
		broker:     broker,
		httpServer: httpserver.NewApp(log, router, cfg.HTTP.Port),
		relay:      relaySvc,
		consumer:   consumer,
	}, nil
}

func initRoutes(webhook *webhookHandler.Handler) chi.Router {
	mux := chi.NewRouter()

	// Provider webhooks are authenticated by the provider's signature
	// scheme at the edge, not by the identity service.
	mux.Post("/webhooks/payment", webhook.HandleWebhook)

	return mux
}

func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.httpServer.Run()
	})

	g.Go(func() error {
		return a.consumer.Run(ctx)
	})

	g.Go(func() error {
		return a.relay.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return a.httpServer.Stop(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Stop() error {
	if err := a.broker.Close(); err != nil {
		return err
	}

	return a.db.Close()
}
