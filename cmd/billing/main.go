package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tumbleweedd/workspace_system/internal/app/billing"
	"github.com/tumbleweedd/workspace_system/internal/config"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

func main() {
	cfg := config.InitConfig()

	log := logger.NewSlogLogger(logger.SlogEnvironment(cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := billing.NewApp(ctx, log, &cfg, postgresDSN(&cfg.Postgres))
	if err != nil {
		panic(fmt.Sprintf("failed to create app: %v", err))
	}

	go func() {
		if runErr := application.Run(ctx); runErr != nil {
			log.Error("application run", logger.Err(runErr))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	cancel()

	if err = application.Stop(); err != nil {
		panic(fmt.Sprintf("failed to stop app: %v", err))
	}

	log.Info("application stopped")
}

func postgresDSN(psqlCfg *config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		psqlCfg.Host, psqlCfg.Port, psqlCfg.User, psqlCfg.DbName, psqlCfg.Pwd, psqlCfg.SslMode)
}
