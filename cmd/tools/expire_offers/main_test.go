package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"hiring-pipeline/internal/notify"
	"hiring-pipeline/internal/trigger"
	"hiring-pipeline/internal/workflow"
)

type fakeExpirer struct {
	calls int
	res   workflow.ExpireResult
}

func (f *fakeExpirer) ExpireOffers(context.Context, int) (workflow.ExpireResult, error) {
	f.calls++
	return f.res, nil
}

type recordingDispatcher struct {
	got []trigger.Trigger
}

func (r *recordingDispatcher) Dispatch(_ context.Context, ts []trigger.Trigger) error {
	r.got = append(r.got, ts...)
	return nil
}

func TestSweepDoesNotExpireWithoutDispatcher(t *testing.T) {
	t.Parallel()

	svc := &fakeExpirer{}
	dialErr := errors.New("connection refused")
	err := sweep(context.Background(), zaptest.NewLogger(t), svc, 10, func() (notify.Dispatcher, func(), error) {
		return nil, nil, dialErr
	})
	if !errors.Is(err, dialErr) {
		t.Fatalf("expected dial error, got %v", err)
	}
	if svc.calls != 0 {
		t.Fatalf("offers expired %d times before the dispatcher was connected", svc.calls)
	}
}

func TestSweepPublishesTriggers(t *testing.T) {
	t.Parallel()

	svc := &fakeExpirer{}
	svc.res.Triggers = []trigger.Trigger{{Type: "offer_expired_followup", TenantID: "acme"}}
	rec := &recordingDispatcher{}
	closed := false
	err := sweep(context.Background(), zaptest.NewLogger(t), svc, 10, func() (notify.Dispatcher, func(), error) {
		return rec, func() { closed = true }, nil
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if svc.calls != 1 || !closed {
		t.Fatalf("calls = %d, closed = %v", svc.calls, closed)
	}
	if diff := cmp.Diff(svc.res.Triggers, rec.got); diff != "" {
		t.Fatalf("dispatched triggers (-want +got):\n%s", diff)
	}
}
