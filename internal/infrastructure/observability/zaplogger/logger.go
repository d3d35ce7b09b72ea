// Package zaplogger adapts a zap logger to the observability.Logger port.
package zaplogger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

type logger struct{ z *zap.Logger }

// New wraps z, nil meaning discard, and binds fixed to every entry.
func New(z *zap.Logger, fixed ...observability.Field) observability.Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &logger{z: z.With(fields(fixed)...)}
}

func (l *logger) With(fs ...observability.Field) observability.Logger {
	if len(fs) == 0 {
		return l
	}
	return &logger{z: l.z.With(fields(fs)...)}
}

func (l *logger) Debug(msg string, fs ...observability.Field) { l.z.Debug(msg, fields(fs)...) }
func (l *logger) Info(msg string, fs ...observability.Field)  { l.z.Info(msg, fields(fs)...) }
func (l *logger) Warn(msg string, fs ...observability.Field)  { l.z.Warn(msg, fields(fs)...) }
func (l *logger) Error(msg string, fs ...observability.Field) { l.z.Error(msg, fields(fs)...) }

// fields converts port fields to typed zap fields. Money is written as its
// exact decimal string.
func fields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		switch v := f.Value.(type) {
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		case decimal.Decimal:
			out = append(out, zap.String(f.Key, v.String()))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case time.Time:
			out = append(out, zap.Time(f.Key, v))
		case fmt.Stringer:
			out = append(out, zap.Stringer(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}
