package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPoolSubmitDropWhenBusy(t *testing.T) {
	p := New(1)
	defer p.Close()
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	ok := p.Submit(ctx, "slow", func(context.Context) error {
		close(started)
		<-release
		return nil
	}, nil)
	if !ok {
		t.Fatal("first submit should succeed")
	}
	<-started

	// The worker is busy: one job fits in the queue slot, the next drops.
	ok2 := p.Submit(ctx, "queued", func(context.Context) error { return nil }, nil)
	ok3 := p.Submit(ctx, "dropped", func(context.Context) error { return nil }, nil)
	if !ok2 {
		t.Fatal("expected the queue slot to accept one job")
	}
	if ok3 {
		t.Fatal("expected submit to drop due to full queue")
	}
	close(release)
}

func TestPoolReportsErrors(t *testing.T) {
	p := New(1)
	defer p.Close()

	want := errors.New("capture failed")
	got := make(chan error, 1)
	p.Submit(context.Background(), "failing", func(context.Context) error { return want }, func(err error) { got <- err })

	select {
	case err := <-got:
		if !errors.Is(err, want) {
			t.Fatalf("Expected %v, got %v", want, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestPoolSkipsCancelledJobs(t *testing.T) {
	p := New(1)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	got := make(chan error, 1)
	p.Submit(ctx, "cancelled", func(context.Context) error {
		ran = true
		return nil
	}, func(err error) { got <- err })

	if err := <-got; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if ran {
		t.Fatal("Expected cancelled job not to run")
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	p := New(1)
	defer p.Close()

	got := make(chan error, 1)
	p.Submit(context.Background(), "panicking", func(context.Context) error { panic("boom") }, func(err error) { got <- err })
	if err := <-got; err == nil {
		t.Fatal("Expected an error from a panicking job")
	}
}
