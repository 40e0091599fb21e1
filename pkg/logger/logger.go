package logger

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hirebridge/recruit-backend/config"
)

var once sync.Once
var core zapcore.Core

// GetZapLogger returns the process-wide zap logger. Debug mode tees
// debug/info to stdout and warn and above to stderr with the development
// encoder; production mode keeps info on stdout and warn and above on
// stderr with the production encoder. Log entries are also attached as
// events to the active trace span, if any.
func GetZapLogger(ctx context.Context) (*zap.Logger, error) {
	once.Do(func() {
		stdoutSyncer := zapcore.Lock(os.Stdout)
		stderrSyncer := zapcore.Lock(os.Stderr)

		warnOrAbove := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
			return level >= zapcore.WarnLevel
		})

		if config.Config.Server.Debug {
			belowWarn := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level < zapcore.WarnLevel
			})
			encoder := zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
			core = zapcore.NewTee(
				zapcore.NewCore(encoder, stdoutSyncer, belowWarn),
				zapcore.NewCore(encoder, stderrSyncer, warnOrAbove),
			)
		} else {
			infoOnly := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level == zapcore.InfoLevel
			})
			encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			core = zapcore.NewTee(
				zapcore.NewCore(encoder, stdoutSyncer, infoOnly),
				zapcore.NewCore(encoder, stderrSyncer, warnOrAbove),
			)
		}
	})

	logger := zap.New(core).WithOptions(
		zap.Hooks(func(entry zapcore.Entry) error {
			span := trace.SpanFromContext(ctx)
			if !span.IsRecording() {
				return nil
			}

			span.AddEvent("log", trace.WithAttributes(
				attribute.String("log.severity", entry.Level.String()),
				attribute.String("log.message", entry.Message),
			))

			if entry.Level >= zap.ErrorLevel {
				span.SetStatus(codes.Error, entry.Message)
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return nil
		}),
		zap.AddCaller(),
	)

	return logger, nil
}
