package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeLifecycleStore struct {
	mu           sync.Mutex
	activateDue  int64
	completeDue  int64
	activateErr  error
	completeErr  error
	activateCall int
	completeCall int
	lastNow      time.Time
}

func (f *fakeLifecycleStore) ActivateDue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activateCall++
	f.lastNow = now
	if f.activateErr != nil {
		return 0, f.activateErr
	}
	n := f.activateDue
	f.activateDue = 0 // promoted rows are gone on the next pass
	return n, nil
}

func (f *fakeLifecycleStore) CompleteDue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCall++
	if f.completeErr != nil {
		return 0, f.completeErr
	}
	n := f.completeDue
	f.completeDue = 0
	return n, nil
}

func (f *fakeLifecycleStore) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activateCall, f.completeCall
}

func newTestWorker(store LifecycleStore) *LifecycleWorker {
	return NewLifecycleWorker(store, time.Minute, zerolog.Nop())
}

func TestTick_PromotesOnce(t *testing.T) {
	store := &fakeLifecycleStore{activateDue: 2, completeDue: 1}
	w := newTestWorker(store)

	w.Tick(context.Background())
	if a, c := store.calls(); a != 1 || c != 1 {
		t.Fatalf("expected one call each, got activate=%d complete=%d", a, c)
	}

	// Second tick finds nothing left, a normal no-op.
	w.Tick(context.Background())
	if store.activateDue != 0 || store.completeDue != 0 {
		t.Fatal("expected no rows left to promote")
	}
	if a, c := store.calls(); a != 2 || c != 2 {
		t.Fatal("second tick must still run both promotions")
	}
}

func TestTick_UsesInjectedClock(t *testing.T) {
	store := &fakeLifecycleStore{}
	w := newTestWorker(store)

	frozen := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return frozen }

	w.Tick(context.Background())
	if !store.lastNow.Equal(frozen) {
		t.Fatalf("expected tick to pass injected clock time, got %v", store.lastNow)
	}
}

func TestTick_ActivationFailureDoesNotBlockCompletion(t *testing.T) {
	store := &fakeLifecycleStore{activateErr: errors.New("db down")}
	w := newTestWorker(store)

	w.Tick(context.Background())
	if _, c := store.calls(); c != 1 {
		t.Fatal("completion must run even when activation fails")
	}
}

func TestStart_EagerTickAndStop(t *testing.T) {
	store := &fakeLifecycleStore{}
	w := NewLifecycleWorker(store, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// The eager tick runs before the first interval elapses.
	deadline := time.After(time.Second)
	for {
		if a, _ := store.calls(); a > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected an eager tick at startup")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
