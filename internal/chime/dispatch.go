package chime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	appLog "timertable/internal/log"
)

// DefaultTimeout bounds a single playback.
const DefaultTimeout = 30 * time.Second

// Dispatcher rings a Player in the background. At most one playback is in
// flight; a Ring while the bell is still sounding is dropped.
type Dispatcher struct {
	ctx     context.Context
	player  Player
	timeout time.Duration

	busy atomic.Bool
	wg   sync.WaitGroup

	rung    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewDispatcher returns a Dispatcher whose playbacks are cancelled when ctx
// is done. A non-positive timeout uses DefaultTimeout.
func NewDispatcher(ctx context.Context, player Player, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{ctx: ctx, player: player, timeout: timeout}
}

// Ring starts playback and returns immediately. It reports whether a
// playback was started.
func (d *Dispatcher) Ring() bool {
	if !d.busy.CompareAndSwap(false, true) {
		d.dropped.Add(1)
		appLog.Debug("chime: already ringing, dropped")
		return false
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.busy.Store(false)

		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()

		d.rung.Add(1)
		if err := d.player.Play(ctx); err != nil {
			d.failed.Add(1)
			appLog.Error("chime playback failed", err)
		}
	}()
	return true
}

// Wait blocks until in-flight playback has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Rung    int64 `json:"rung"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

func (d *Dispatcher) Stats() Stats {
	return Stats{Rung: d.rung.Load(), Failed: d.failed.Load(), Dropped: d.dropped.Load()}
}

// Silent is a Player that does nothing. A disabled chime still counts
// transitions through a Dispatcher over Silent.
type Silent struct{}

func (Silent) Play(context.Context) error { return nil }
