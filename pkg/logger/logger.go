package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with booking-domain helpers.
type Logger struct {
	*slog.Logger
}

// New creates a logger. Text handler in debug mode for readability,
// JSON handler otherwise.
func New() *Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID returns a logger scoped to one request.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithShowID returns a logger scoped to one show aggregate.
func (l *Logger) WithShowID(showID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("show_id", showID))}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// LogHTTPRequest logs a completed HTTP request.
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogSeatsHeld logs a committed pending hold.
func (l *Logger) LogSeatsHeld(ctx context.Context, showID, userID string, seatNumbers []string) {
	l.Logger.InfoContext(ctx,
		"Seats Held",
		slog.String("show_id", showID),
		slog.String("user_id", userID),
		slog.Any("seat_numbers", seatNumbers),
	)
}

// LogHoldsSwept logs an expiration sweep that released stale holds.
func (l *Logger) LogHoldsSwept(ctx context.Context, showID string, released int64) {
	l.Logger.InfoContext(ctx,
		"Stale Holds Released",
		slog.String("show_id", showID),
		slog.Int64("released", released),
	)
}

// LogBookingConfirmed logs a completed payment reconciliation.
func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, showID, userID string) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("booking_id", bookingID),
		slog.String("show_id", showID),
		slog.String("user_id", userID),
	)
}

// LogWebhookIgnored logs a webhook event type the handler does not act on.
func (l *Logger) LogWebhookIgnored(ctx context.Context, eventType string) {
	l.Logger.DebugContext(ctx,
		"Webhook Event Ignored",
		slog.String("event_type", eventType),
	)
}

// ErrorWithContext logs an error with free-form fields.
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global default instance; main may replace it once at startup.
var defaultLogger = New()

func GetDefault() *Logger {
	return defaultLogger
}

func SetDefault(logger *Logger) {
	defaultLogger = logger
}
