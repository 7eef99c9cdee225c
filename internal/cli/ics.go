package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timertable/internal/ics"
	appLog "timertable/internal/log"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export the timetable as an iCalendar file",
		RunE:  runICS,
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	cmd.Flags().Int("weeks", 0, "Number of weeks each lecture repeats (0 = forever)")
	RootCmd.AddCommand(cmd)
}

func runICS(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString("out")
	weeks, _ := cmd.Flags().GetInt("weeks")
	if weeks < 0 {
		return fmt.Errorf("--weeks must not be negative")
	}

	e, err := loadEnv(cmd.Context())
	if err != nil {
		return err
	}

	cal := ics.Export(e.week, ics.ExportOptions{From: time.Now().In(e.loc), Location: e.loc, Weeks: weeks})
	body := cal.Serialize()

	if out == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	appLog.Info("calendar exported", "out", out, "events", len(cal.Events()))
	return nil
}
