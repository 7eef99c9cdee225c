package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timertable/internal/board"
	"timertable/internal/chime"
	appLog "timertable/internal/log"
	"timertable/internal/web"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the board: tick every second, ring on period changes, serve the page",
		RunE:  runServe,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appStart := time.Now()
	e, err := loadEnv(ctx)
	if err != nil {
		return err
	}

	appLog.Info("effective config",
		"listen", e.cfg.Listen,
		"timezone", e.loc.String(),
		"timetable", e.cfg.Timetable,
		"theme", e.cfg.Theme,
		"tick", e.cfg.Tick,
		"chime", e.cfg.ChimeEnabled(),
	)

	opts := board.Options{Location: e.loc, AppStart: appStart}
	var player chime.Player = chime.Silent{}
	if e.cfg.ChimeEnabled() {
		if _, err := os.Stat(e.cfg.Bell); err != nil {
			appLog.Warn("bell file not readable; chime will fail until it exists", "bell", e.cfg.Bell)
		}
		player = chime.NewFilePlayer(e.cfg.Bell)
	}
	bell := chime.NewDispatcher(ctx, player, chime.DefaultTimeout)
	opts.Notifier = bell

	b := board.New(e.week, e.theme, opts)
	sched := board.NewScheduler(b, e.cfg.Tick)
	srv := web.NewServer(e.cfg, b)

	// Either side failing stops the other.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				appLog.Error(name+" stopped with error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			cancel()
		}()
	}
	run("scheduler", sched.Start)
	run("http server", srv.Serve)

	<-ctx.Done()
	appLog.Info("shutting down")
	wg.Wait()
	bell.Wait()
	st := bell.Stats()
	appLog.Info("chime stats", "rung", st.Rung, "failed", st.Failed, "dropped", st.Dropped)
	appLog.Info("timertable exiting")
	return errors.Join(errs...)
}
