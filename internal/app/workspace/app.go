package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/tumbleweedd/workspace_system/internal/app/httpserver"
	"github.com/tumbleweedd/workspace_system/internal/config"
	amqpdelivery "github.com/tumbleweedd/workspace_system/internal/delivery/amqp"
	"github.com/tumbleweedd/workspace_system/internal/delivery/http/middleware"
	projectCreateHandler "github.com/tumbleweedd/workspace_system/internal/delivery/http/project/create"
	memberAddHandler "github.com/tumbleweedd/workspace_system/internal/delivery/http/workspace/addmember"
	workspaceCreateHandler "github.com/tumbleweedd/workspace_system/internal/delivery/http/workspace/create"
	workspaceGetHandler "github.com/tumbleweedd/workspace_system/internal/delivery/http/workspace/get"
	"github.com/tumbleweedd/workspace_system/internal/domain/models"
	outboxRepository "github.com/tumbleweedd/workspace_system/internal/repository/outbox"
	projectRepository "github.com/tumbleweedd/workspace_system/internal/repository/project"
	subscriptionViewRepository "github.com/tumbleweedd/workspace_system/internal/repository/subscriptionview"
	workspaceRepository "github.com/tumbleweedd/workspace_system/internal/repository/workspace"
	relayService "github.com/tumbleweedd/workspace_system/internal/services/outbox/relay"
	projectCreationService "github.com/tumbleweedd/workspace_system/internal/services/project/create"
	subscriptionApplyService "github.com/tumbleweedd/workspace_system/internal/services/subscription/apply"
	memberAdditionService "github.com/tumbleweedd/workspace_system/internal/services/workspace/addmember"
	workspaceCreationService "github.com/tumbleweedd/workspace_system/internal/services/workspace/create"
	workspaceRetrievalService "github.com/tumbleweedd/workspace_system/internal/services/workspace/get"
	"github.com/tumbleweedd/workspace_system/pkg/brokers/rabbitmq"
	"github.com/tumbleweedd/workspace_system/pkg/clients/identity"
	"github.com/tumbleweedd/workspace_system/pkg/databases/postgres"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

const (
	cacheSize = 256
	cacheTTL  = 10 * time.Minute
)

// App wires the workspace service: the HTTP API that produces outbox events,
// the relay that publishes them, and the consumer that applies subscription
// events coming back from billing.
type App struct {
	log logger.Logger

	db     *postgres.PgDB
	broker *rabbitmq.Broker

	httpServer *httpserver.App
	relay      *relayService.Service
	consumer   *amqpdelivery.Consumer
}

func NewApp(ctx context.Context, log logger.Logger, cfg *config.Config, dsn string) (*App, error) {
	const op = "app.workspace.NewApp"

	db, err := postgres.NewPostgresDB(ctx, log, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: connect to postgres: %w", op, err)
	}

	broker, err := rabbitmq.New(log, cfg.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: connect to rabbitmq: %w", op, err)
	}

	if err = broker.DeclareTopology(cfg.Rabbit.Exchange, cfg.Rabbit.Queue, []string{"subscription.#"}); err != nil {
		return nil, fmt.Errorf("%s: declare topology: %w", op, err)
	}

	publisher := rabbitmq.NewPublisher(log, broker, cfg.Rabbit.Exchange)

	outboxRepo := outboxRepository.New(log, db.GetDB())
	workspaceRepo := workspaceRepository.New(log, db.GetDB(), outboxRepo)
	projectRepo := projectRepository.New(log, db.GetDB(), outboxRepo)
	subscriptionViewRepo := subscriptionViewRepository.New(log, db.GetDB())

	cache := expirable.NewLRU[uuid.UUID, *models.Workspace](cacheSize, nil, cacheTTL)

	workspaceCreationSvc := workspaceCreationService.New(log, workspaceRepo)
	workspaceRetrievalSvc := workspaceRetrievalService.New(log, cache, workspaceRepo)
	memberAdditionSvc := memberAdditionService.New(log, workspaceRepo)
	projectCreationSvc := projectCreationService.New(log, projectRepo, workspaceRepo)
	applySvc := subscriptionApplyService.New(log, subscriptionViewRepo, subscriptionApplyService.DefaultPolicies())

	relaySvc := relayService.New(log, cfg.Relay, outboxRepo, publisher)

	deliveries, err := broker.Consume(cfg.Rabbit.Queue, cfg.Rabbit.ConsumerTag)
	if err != nil {
		return nil, fmt.Errorf("%s: start consuming: %w", op, err)
	}

	consumer := amqpdelivery.NewConsumer(log, deliveries, func(ctx context.Context, evt models.Event) error {
		return models.DispatchSubscriptionEvent(ctx, applySvc, evt)
	})

	identityClient := identity.NewClient(log, cfg.Identity.URL)

	router := initRoutes(
		log,
		identityClient,
		workspaceCreateHandler.NewHandler(log, workspaceCreationSvc),
		workspaceGetHandler.NewHandler(log, workspaceRetrievalSvc),
		memberAddHandler.NewHandler(log, memberAdditionSvc),
		projectCreateHandler.NewHandler(log, projectCreationSvc),
	)

	return &App{
		log:        log,
		db:         db,
		broker:     broker,
		httpServer: httpserver.NewApp(log, router, cfg.HTTP.Port),
		relay:      relaySvc,
		consumer:   consumer,
	}, nil
}

func initRoutes(
	log logger.Logger,
	identityClient *identity.Client,
	createHandler *workspaceCreateHandler.Handler,
	getHandler *workspaceGetHandler.Handler,
	addMemberHandler *memberAddHandler.Handler,
	projectHandler *projectCreateHandler.Handler,
) chi.Router {
	mux := chi.NewRouter()

	auth := middleware.Auth(log, identityClient)

	mux.Route("/workspaces", func(r chi.Router) {
		r.Use(auth)
		r.Post("/", createHandler.Create)
		r.Get("/{uuid}", getHandler.WorkspaceByUUID)
		r.Post("/{uuid}/members", addMemberHandler.AddMember)
	})

	mux.Route("/projects", func(r chi.Router) {
		r.Use(auth)
		r.Post("/", projectHandler.Create)
	})

	return mux
}

// Run supervises the HTTP server, the broker consumer, and the relay ticker.
// The first fatal error (or a canceled context) brings all three down.
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
