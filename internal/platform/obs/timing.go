package obs

import (
	"context"
	"time"

	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/platform/metrics"

	"github.com/rs/zerolog"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

var log = logger.Nop()

// SetLogger installs the logger used for operation timings. Records are
// discarded until it is called.
func SetLogger(l logger.Logger) { log = l }

// WithRequestID stores the request id used to correlate timing records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time starts timing op and returns a func that records the duration.
// Use as: defer obs.Time(ctx, "op")(&err).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			metrics.OperationDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			log.Event(zerolog.WarnLevel).
				Str("req_id", reqID).Str("op", name).Int64("dur_ms", dur.Milliseconds()).Err(*errp).
				Msg("operation failed")
			return
		}
		metrics.OperationDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		log.Event(zerolog.DebugLevel).
			Str("req_id", reqID).Str("op", name).Int64("dur_ms", dur.Milliseconds()).
			Msg("operation done")
	}
}
