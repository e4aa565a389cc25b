package cronrunner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAddRejectsBadSpec(t *testing.T) {
	r := New(nil, context.Background())
	if _, err := r.Add("bad", "not a spec", 0, func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for bad spec")
	}
	if _, err := r.Add("nil", "@every 1s", 0, nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
	if r.Len() != 0 {
		t.Fatalf("len=%d want=0", r.Len())
	}
}

func TestRunAppliesTimeoutAndRecovers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := New(zap.New(core), context.Background())

	r.run("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if got := logs.FilterMessage("cron job failed").Len(); got != 1 {
		t.Fatalf("failed logs=%d want=1", got)
	}

	r.run("panics", 0, func(context.Context) error { panic("boom") })
	if got := logs.FilterMessage("cron job panicked").Len(); got != 1 {
		t.Fatalf("panic logs=%d want=1", got)
	}
}

func TestRunSkipsAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(nil, ctx)
	cancel()
	var calls int32
	r.run("warm", 0, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("unreachable")
	})
	if calls != 0 {
		t.Fatalf("calls=%d want=0", calls)
	}
}

func TestStartRunsRegisteredJob(t *testing.T) {
	r := New(nil, context.Background())
	done := make(chan struct{}, 1)
	if _, err := r.Add("tick", "@every 1s", time.Second, func(context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("add err=%v", err)
	}
	r.Start()
	defer r.Stop()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
}
