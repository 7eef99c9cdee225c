package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timertable/internal/board"
	"timertable/internal/phase"
)

func init() {
	cmd := &cobra.Command{
		Use:   "now",
		Short: "Print the period of an instant (default: now)",
		RunE:  runNow,
	}
	cmd.Flags().String("at", "", "Instant to classify, RFC 3339 (e.g. 2024-03-04T09:10:00+09:00)")
	cmd.Flags().Bool("json", false, "Print the full snapshot as JSON")
	RootCmd.AddCommand(cmd)
}

func runNow(cmd *cobra.Command, _ []string) error {
	atFlag, _ := cmd.Flags().GetString("at")
	asJSON, _ := cmd.Flags().GetBool("json")

	at := time.Now()
	if atFlag != "" {
		t, err := time.Parse(time.RFC3339, atFlag)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		at = t
	}

	e, err := loadEnv(cmd.Context())
	if err != nil {
		return err
	}
	at = at.In(e.loc)

	// A one-shot has no earlier start; the countdown runs from at.
	snap := board.Render(at, phase.Of(at, e.week), at, e.week, e.theme)

	out := cmd.OutOrStdout()
	if asJSON {
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}
	fmt.Fprintln(out, snap.Status)
	if snap.ProgressText != "" {
		fmt.Fprintln(out, snap.ProgressText)
	}
	return nil
}
