package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/nucleusmind/contextengine/entity"
	"github.com/samber/lo"
)

// Recorder bumps access counters on selected memories. Recording is
// best-effort and detached from the request path: it runs in its own
// goroutine with its own deadline, and failures are logged and swallowed.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration
}

func NewRecorder(store Store, logger *slog.Logger, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

// RecordAccess updates AccessCount and LastAccessedAt for the selected
// memories without blocking the caller.
func (r *Recorder) RecordAccess(scope Scope, memories []*entity.Memory) {
	if len(memories) == 0 {
		return
	}

	ids := lo.Map(memories, func(m *entity.Memory, _ int) string {
		return m.ID
	})
	at := time.Now()

	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("panic while recording memory access", slog.Any("panic", p))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.RecordAccess(ctx, scope, ids, at); err != nil {
			r.logger.Warn("failed to record memory access",
				slog.String("organizationId", scope.OrganizationID),
				slog.Int("count", len(ids)),
				slog.Any("error", err))
		}
	}()
}
