package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var base *slog.Logger

// Initialize は標準出力向けのロガーを作り slog のデフォルトにも設定する
func Initialize(level, format string) {
	InitializeTo(os.Stdout, level, format)
}

func InitializeTo(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	base = slog.New(h)
	slog.SetDefault(base)
}

// 不明な値は info
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func Get() *slog.Logger {
	if base == nil {
		Initialize("info", "text")
	}
	return base
}

// 起動・終了処理など request の外で使う
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

func InfoContext(ctx context.Context, msg string, args ...any) {
	From(ctx).InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	From(ctx).WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	From(ctx).ErrorContext(ctx, msg, args...)
}

type ctxKey struct{}

// With は request_id などを付けたロガーを ctx に積む
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the request scoped logger, or the default one.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Get()
}
