package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type App struct {
	log        logger.Logger
	httpServer *http.Server
	port       int
}

func NewApp(log logger.Logger, handler http.Handler, port int) *App {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	return &App{
		log:        log,
		httpServer: httpServer,
		port:       port,
	}
}

func (a *App) Run() error {
	const op = "httpserver.Run"

	a.log.Info(op, logger.Int("port", a.port))

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	const op = "httpserver.Stop"

	a.log.Info(op)

	return a.httpServer.Shutdown(ctx)
}
