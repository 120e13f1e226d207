package logger

import (
	"context"
	"log/slog"
	"os"
)

type SlogLogger struct {
	logger *slog.Logger
}

type SlogEnvironment string

const (
	EnvLocal SlogEnvironment = "local"
	EnvDev   SlogEnvironment = "dev"
	EnvProd  SlogEnvironment = "prod"
)

func NewSlogLogger(env SlogEnvironment) *SlogLogger {
	var slogger *slog.Logger

	switch env {
	case EnvLocal:
		slogger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case EnvDev:
		slogger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		slogger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return &SlogLogger{
		logger: slogger,
	}
}

func toSlogArgs(fields []Attr) []any {
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, slog.Any(field.Key, field.Value))
	}
	return args
}

func (s *SlogLogger) Debug(msg string, fields ...Attr) {
	s.logger.Debug(msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) Info(msg string, fields ...Attr) {
	s.logger.Info(msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) Warn(msg string, fields ...Attr) {
	s.logger.Warn(msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) Error(msg string, fields ...Attr) {
	s.logger.Error(msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) DebugContext(ctx context.Context, msg string, fields ...Attr) {
	s.logger.DebugContext(ctx, msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) InfoContext(ctx context.Context, msg string, fields ...Attr) {
	s.logger.InfoContext(ctx, msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) WarnContext(ctx context.Context, msg string, fields ...Attr) {
	s.logger.WarnContext(ctx, msg, toSlogArgs(fields)...)
}

func (s *SlogLogger) ErrorContext(ctx context.Context, msg string, fields ...Attr) {
	s.logger.ErrorContext(ctx, msg, toSlogArgs(fields)...)
}
