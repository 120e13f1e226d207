package main

import (
	"context"
	"fmt"

	"github.com/tumbleweedd/workspace_system/internal/config"
	outboxRepository "github.com/tumbleweedd/workspace_system/internal/repository/outbox"
	"github.com/tumbleweedd/workspace_system/internal/services/outbox/relay"
	"github.com/tumbleweedd/workspace_system/pkg/brokers/rabbitmq"
	"github.com/tumbleweedd/workspace_system/pkg/databases/postgres"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

// A one-shot drain of the outbox table. Useful for backfills and for
// pushing stragglers through after an incident; the long-running relay
// embedded in each service covers the steady state.
func main() {
	cfg := config.InitConfig()

	log := logger.NewSlogLogger(logger.SlogEnvironment(cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, log, postgresDSN(&cfg.Postgres))
	if err != nil {
		panic(fmt.Sprintf("failed connect to db: %v", err))
	}
	defer db.Close()

	broker, err := rabbitmq.New(log, cfg.Rabbit.URL)
	if err != nil {
		panic(fmt.Sprintf("failed connect to rabbitmq: %v", err))
	}
	defer broker.Close()

	publisher := rabbitmq.NewPublisher(log, broker, cfg.Rabbit.Exchange)

	relaySvc := relay.New(log, cfg.Relay, outboxRepository.New(log, db.GetDB()), publisher)

	processed, err := relaySvc.ProcessOutboxEvents(ctx, cfg.Relay.BatchSize)
	if err != nil {
		panic(fmt.Sprintf("failed to process outbox events: %v", err))
	}

	log.Info("outbox drained", logger.Int("processed", processed))
}

func postgresDSN(psqlCfg *config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		psqlCfg.Host, psqlCfg.Port, psqlCfg.User, psqlCfg.DbName, psqlCfg.Pwd, psqlCfg.SslMode)
}
