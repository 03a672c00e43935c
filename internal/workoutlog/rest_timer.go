package workoutlog

import (
	"context"
	"sync"
	"time"
)

// RestTimer counts rest seconds between sets. A single goroutine ticks once per interval and
// adds to the elapsed count while the timer runs. It knows nothing about the form.
type RestTimer struct {
	mu      sync.Mutex
	elapsed int
	running bool
	onTick  func(elapsed int)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRestTimer starts a paused timer. onTick, when set, is called with the elapsed seconds
// after every counted tick. The timer stops when ctx is done or Stop is called.
func NewRestTimer(ctx context.Context, onTick func(elapsed int)) *RestTimer {
	return newRestTimer(ctx, time.Second, onTick)
}

func newRestTimer(ctx context.Context, interval time.Duration, onTick func(elapsed int)) *RestTimer {
	ctx, cancel := context.WithCancel(ctx)
	t := &RestTimer{
		onTick: onTick,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, interval)
	return t
}

func (t *RestTimer) run(ctx context.Context, interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			if !t.running {
				t.mu.Unlock()
				continue
			}
			t.elapsed++
			elapsed := t.elapsed
			onTick := t.onTick
			t.mu.Unlock()

			if onTick != nil {
				onTick(elapsed)
			}
		}
	}
}

func (t *RestTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
}

func (t *RestTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Reset zeroes the count and pauses the timer.
func (t *RestTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = 0
	t.running = false
}

func (t *RestTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *RestTimer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Stop ends the ticking goroutine and waits for it to exit.
func (t *RestTimer) Stop() {
	t.cancel()
	<-t.done
}
