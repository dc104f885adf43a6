package action

import (
	"log/slog"

	"github.com/the-dev-tools/contextmap/pkg/mutation"
)

// LogTracker writes telemetry events to a logger at info level.
type LogTracker struct {
	logger *slog.Logger
}

func NewLogTracker(logger *slog.Logger) *LogTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracker{logger: logger}
}

func (t *LogTracker) Track(evt mutation.Event) {
	attrs := []any{"event", evt.Name(), "id", evt.ID}
	if evt.ParentID != "" {
		attrs = append(attrs, "parent_id", evt.ParentID)
	}
	t.logger.Info("telemetry", attrs...)
}
