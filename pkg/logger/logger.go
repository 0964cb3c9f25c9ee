package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// GetDefault returns the process-wide logger, creating it on first use
func GetDefault() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New()
	})
	return defaultLogger
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
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

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogBookingCreated logs when a booking is created with its seats held
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, showtimeID string, seatCount int) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("showtime_id", showtimeID),
		slog.Int("seats", seatCount),
	)
}

// LogBookingConfirmed logs a successful PENDING -> CONFIRMED transition
func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, paymentRef string) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("booking_id", bookingID),
		slog.String("payment_ref", paymentRef),
	)
}

// LogBookingExpired logs when the sweeper reclaims a stale booking
func (l *Logger) LogBookingExpired(ctx context.Context, bookingID string) {
	l.Logger.InfoContext(ctx,
		"Booking Expired",
		slog.String("booking_id", bookingID),
	)
}

// LogPaymentOutcome logs a processed gateway outcome
func (l *Logger) LogPaymentOutcome(ctx context.Context, txnRef, outcome string) {
	l.Logger.InfoContext(ctx,
		"Payment Outcome Processed",
		slog.String("txn_ref", txnRef),
		slog.String("outcome", outcome),
	)
}

// LogReconciliationRequired logs a late success that could not be applied.
// These always require a manual or automated refund; they are never dropped.
func (l *Logger) LogReconciliationRequired(ctx context.Context, txnRef string) {
	l.Logger.ErrorContext(ctx,
		"Payment Reconciliation Required",
		slog.String("txn_ref", txnRef),
	)
}

// LogLostRace logs an InvalidState observed from a legitimate race between
// the sweeper and the payment confirmation path
func (l *Logger) LogLostRace(ctx context.Context, bookingID, operation string) {
	l.Logger.DebugContext(ctx,
		"Lost State Race",
		slog.String("booking_id", bookingID),
		slog.String("operation", operation),
	)
}

// LogSweepPass logs the result of one sweeper pass
func (l *Logger) LogSweepPass(ctx context.Context, expired, repaired int) {
	l.Logger.InfoContext(ctx,
		"Sweep Pass Completed",
		slog.Int("expired_bookings", expired),
		slog.Int("repaired_reservations", repaired),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}
