package api

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hiring-pipeline/internal/trigger"
)

const dispatchTimeout = 30 * time.Second

// TriggerJob is one batch of triggers waiting for delivery.
type TriggerJob struct {
	TenantID  string
	Triggers  []trigger.Trigger
	Timestamp time.Time
}

// StartBackgroundWorkers starts n trigger dispatch workers.
func (a *API) StartBackgroundWorkers(n int) {
	for i := 0; i < n; i++ {
		a.workers.Go(func() { a.dispatchWorker(i) })
	}
	a.log.Info("background workers started", zap.Int("workers", n))
}

// dispatchWorker delivers trigger batches from the queue
func (a *API) dispatchWorker(id int) {
	log := a.log.With(zap.Int("worker", id))
	for job := range a.dispatchQueue {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		err := a.dispatcher.Dispatch(ctx, job.Triggers)
		cancel()
		if err != nil {
			log.Error("trigger dispatch failed",
				zap.String("tenant_id", job.TenantID),
				zap.Int("triggers", len(job.Triggers)),
				zap.Error(err),
			)
			continue
		}
		log.Debug("triggers dispatched",
			zap.String("tenant_id", job.TenantID),
			zap.Int("triggers", len(job.Triggers)),
			zap.Duration("queued_for", time.Since(job.Timestamp)),
		)
	}
}

// queueTriggers hands triggers to the workers without blocking the request.
func (a *API) queueTriggers(tenantID string, triggers []trigger.Trigger) {
	if len(triggers) == 0 {
		return
	}

	a.queueMu.RLock()
	defer a.queueMu.RUnlock()
	if a.queueClosed {
		a.log.Warn("dispatch queue closed, dropping triggers", zap.Int("triggers", len(triggers)))
		return
	}

	job := TriggerJob{
		TenantID:  tenantID,
		Triggers:  triggers,
		Timestamp: time.Now(),
	}

	// Non-blocking send
	select {
	case a.dispatchQueue <- job:
	default:
		a.log.Warn("dispatch queue full, dropping triggers",
			zap.String("tenant_id", tenantID),
			zap.Int("triggers", len(triggers)),
		)
	}
}

// Close stops accepting triggers and waits for queued batches to be delivered.
func (a *API) Close(ctx context.Context) error {
	a.queueMu.Lock()
	if !a.queueClosed {
		a.queueClosed = true
		close(a.dispatchQueue)
	}
	a.queueMu.Unlock()

	done := make(chan struct{})
	go func() {
		a.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("trigger queue did not drain"), ctx.Err())
	}
}
