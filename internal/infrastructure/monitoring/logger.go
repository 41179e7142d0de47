// Package monitoring implements the observability stack: the zap-backed
// logger, Prometheus metrics, and OpenTelemetry tracing.
package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/constants"
	"github.com/finhealth/finhealth/pkg/logger"
)

type zapLogger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger builds the production logger. Format "console" is for
// local development; anything else emits JSON.
func NewZapLogger(cfg *config.LogConfig) (logger.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	parsed, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	level := zap.NewAtomicLevelAt(parsed)

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	return &zapLogger{
		base:  zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)),
		level: level,
	}, nil
}

// SetLogLevel changes a zap-backed logger's level at runtime. Loggers
// of other kinds are left alone.
func SetLogLevel(l logger.Logger, levelName string) {
	zl, ok := l.(*zapLogger)
	if !ok {
		return
	}
	parsed, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return
	}
	zl.level.SetLevel(parsed)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...logger.Field) {
	l.base.Debug(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...logger.Field) {
	l.base.Info(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...logger.Field) {
	l.base.Warn(msg, l.convert(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Field) {
	l.base.Error(msg, append(l.convert(ctx, fields), zap.Error(err))...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Field) {
	l.base.Fatal(msg, append(l.convert(ctx, fields), zap.Error(err))...)
}

func (l *zapLogger) WithComponent(name string) logger.Logger {
	return &zapLogger{base: l.base.With(zap.String("component", name)), level: l.level}
}

// convert maps logger fields to zap fields and attaches request-scoped
// identifiers found on the context.
func (l *zapLogger) convert(ctx context.Context, fields []logger.Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+2)
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	if ctx != nil {
		if traceID, ok := ctx.Value(constants.ContextKeyTraceID).(string); ok && traceID != "" {
			zapFields = append(zapFields, zap.String("trace_id", traceID))
		}
		if companyID, ok := ctx.Value(constants.ContextKeyCompanyID).(string); ok && companyID != "" {
			zapFields = append(zapFields, zap.String("company_id", companyID))
		}
	}
	return zapFields
}
