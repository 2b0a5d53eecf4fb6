package temporal

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// zapLogger routes Temporal SDK logs through zap
type zapLogger struct {
	logger *zap.Logger
}

// NewZapLoggerAdapter adapts a zap logger to Temporal's log.Logger
func NewZapLoggerAdapter(logger *zap.Logger) log.Logger {
	return &zapLogger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (z *zapLogger) Debug(msg string, keyvals ...interface{}) {
	z.logger.Debug(msg, keyvalFields(keyvals)...)
}

func (z *zapLogger) Info(msg string, keyvals ...interface{}) {
	z.logger.Info(msg, keyvalFields(keyvals)...)
}

func (z *zapLogger) Warn(msg string, keyvals ...interface{}) {
	z.logger.Warn(msg, keyvalFields(keyvals)...)
}

func (z *zapLogger) Error(msg string, keyvals ...interface{}) {
	z.logger.Error(msg, keyvalFields(keyvals)...)
}

// With implements log.WithLogger so that the SDK can attach workflow fields once
func (z *zapLogger) With(keyvals ...interface{}) log.Logger {
	return &zapLogger{logger: z.logger.With(keyvalFields(keyvals)...)}
}

// keyvalFields converts Temporal's key1, val1, key2, val2 pairs to zap fields.
// A trailing key without a value is kept under "extra"; non-string keys are dropped.
func keyvalFields(keyvals []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keyvals)/2+1)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 == len(keyvals) {
			fields = append(fields, zap.Any("extra", keyvals[i]))
			break
		}

		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		if err, ok := keyvals[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}
	return fields
}
