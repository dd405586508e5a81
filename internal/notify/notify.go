// Package notify delivers classified triggers to downstream modules.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hiring-pipeline/internal/trigger"
)

// Dispatcher delivers triggers. Implementations must be safe for concurrent use.
type Dispatcher interface {
	Dispatch(ctx context.Context, triggers []trigger.Trigger) error
}

// LogDispatcher writes every trigger to the log and never fails.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogDispatcher{log: log.Named("triggers")}
}

func (d *LogDispatcher) Dispatch(_ context.Context, triggers []trigger.Trigger) error {
	for _, t := range triggers {
		d.log.Info("trigger",
			zap.String("type", t.Type),
			zap.String("priority", string(t.Priority)),
			zap.String("target", t.Target),
			zap.String("event", string(t.Event)),
			zap.String("tenant_id", t.TenantID),
			zap.Any("payload", t.Payload),
		)
	}
	return nil
}

// Fanout sends triggers to every dispatcher and joins their errors.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, triggers []trigger.Trigger) error {
	var errs []error
	for _, d := range f {
		if err := d.Dispatch(ctx, triggers); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
