package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"timertable/internal/board"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the config, timetable and theme, then print a summary",
		RunE:  runCheck,
	})
}

func runCheck(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config:    %s\n", configPath)
	fmt.Fprintf(out, "timezone:  %s\n", e.loc)
	fmt.Fprintf(out, "timetable: %s\n", e.cfg.Timetable)
	for d, day := range e.week {
		fmt.Fprintf(out, "  %s: %d lectures", board.WeekdayName(d), len(day))
		if len(day) > 0 {
			fmt.Fprintf(out, " (%s - %s)", day[0].Begin, day[len(day)-1].End)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "theme:     %s (%d subjects)\n", e.cfg.Theme, len(e.theme))
	fmt.Fprintln(out, "ok")
	return nil
}
