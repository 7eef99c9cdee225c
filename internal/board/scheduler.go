package board

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"timertable/internal/config"
	appLog "timertable/internal/log"
)

// Scheduler ticks a Board on a cron spec with a seconds field. A tick that
// is still running when the next one is due is skipped.
type Scheduler struct {
	board *Board
	spec  string
	now   func() time.Time
}

// NewScheduler returns a Scheduler for b. An empty spec uses config.DefaultTick.
func NewScheduler(b *Board, spec string) *Scheduler {
	if spec == "" {
		spec = config.DefaultTick
	}
	return &Scheduler{board: b, spec: spec, now: time.Now}
}

// Start ticks once immediately, then on every schedule until ctx is done.
// It returns after the cron runner has stopped and any running tick has
// finished.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(s.board.Location()),
		cron.WithLogger(appLog.Cron()),
		cron.WithChain(cron.Recover(appLog.Cron()), cron.SkipIfStillRunning(appLog.Cron())),
	)
	if _, err := c.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("board: tick spec %q: %w", s.spec, err)
	}

	s.tick()
	c.Start()
	appLog.Info("scheduler started", "tick", s.spec)

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) tick() {
	s.board.Tick(s.now())
}
