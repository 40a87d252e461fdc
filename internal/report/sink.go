package report

import (
	"context"

	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

// Sink delivers a scan payload to a downstream consumer. Delivery failures
// are reported to the caller, which logs and continues; notification is
// never allowed to fail a scan.
type Sink interface {
	Publish(ctx context.Context, payload *Payload) error
	Name() string
}

// LogSink writes the payload to the structured log. The default sink and
// the fallback when no broker is configured.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Publish(_ context.Context, payload *Payload) error {
	logger.Info("scan report",
		logger.String("run_id", payload.RunID),
		logger.String("date", payload.Date),
		logger.Int("env_score", payload.EnvScore),
		logger.String("variant", payload.Variant),
		logger.Int("top", len(payload.Top)),
		logger.Int("added", len(payload.Added)),
		logger.Int("removed", len(payload.Removed)),
		logger.Any("rows", payload.Top))
	return nil
}
