// Package cli implements the timertable commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timertable/internal/config"
	"timertable/internal/ics"
	appLog "timertable/internal/log"
	"timertable/internal/model"
	"timertable/internal/schedule"
)

var (
	configPath string
	listenFlag string
	baseDir    string
)

// RootCmd is the top-level command. Run without a subcommand it serves
// the board.
var RootCmd = &cobra.Command{
	Use:           "timertable",
	Short:         "Classroom timetable display with a period bell",
	Long:          "Shows the current period, a countdown to the next bell and the week timetable, and rings a chime when the period changes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file (created with defaults if missing)")
	RootCmd.PersistentFlags().StringVar(&listenFlag, "listen", "", "Override the listen address")
	RootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Resolve relative data paths against this directory")
}

// Execute runs RootCmd and reports a failure on stderr.
func Execute() error {
	defer appLog.Sync()
	err := RootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if listenFlag != "" {
		cfg.Listen = listenFlag
	}
	if baseDir != "" {
		cfg.Resolve(baseDir)
	}

	lvl, err := appLog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	appLog.SetLevel(lvl)
	return cfg, nil
}

// env is everything a command needs to classify the clock.
type env struct {
	cfg   *config.Config
	loc   *time.Location
	week  model.WeekTimetable
	theme model.Theme
}

// loadEnv loads the config, the timetable and the theme.
func loadEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	week, err := schedule.LoadTimetable(ctx, cfg.Timetable, loc, ics.NewFetcher(cfg.CacheDir))
	if err != nil {
		return nil, err
	}
	theme, err := schedule.LoadTheme(cfg.Theme)
	if err != nil {
		return nil, err
	}
	if missing := schedule.UnthemedSubjects(week, theme); len(missing) > 0 {
		appLog.Warn("subjects without theme colors", "subjects", strings.Join(missing, ", "))
	}

	return &env{cfg: cfg, loc: loc, week: week, theme: theme}, nil
}
