package logger

import "context"

type Logger interface {
	Debug(msg string, fields ...Attr)
	Info(msg string, fields ...Attr)
	Warn(msg string, fields ...Attr)
	Error(msg string, fields ...Attr)

	DebugContext(ctx context.Context, msg string, fields ...Attr)
	InfoContext(ctx context.Context, msg string, fields ...Attr)
	WarnContext(ctx context.Context, msg string, fields ...Attr)
	ErrorContext(ctx context.Context, msg string, fields ...Attr)
}

type Attr struct {
	Key   string
	Value any
}

func String(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

func Int(key string, value int) Attr {
	return Attr{Key: key, Value: value}
}

func Err(err error) Attr {
	return Attr{Key: "error", Value: err.Error()}
}
