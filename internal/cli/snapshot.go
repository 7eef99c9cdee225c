package cli

import (
	"time"

	"github.com/spf13/cobra"

	"timertable/internal/capture"
	appLog "timertable/internal/log"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Screenshot a running board page to PNG",
		RunE:  runSnapshot,
	}
	cmd.Flags().String("url", "", "Board page URL (default: http://<listen>/)")
	cmd.Flags().StringP("out", "o", "./cache/board.png", "Output PNG path")
	cmd.Flags().Int("width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().Int("height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().Duration("timeout", capture.DefaultTimeout, "Capture timeout")
	cmd.Flags().String("chrome", "", "Path to the Chromium binary")
	RootCmd.AddCommand(cmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url, _ := cmd.Flags().GetString("url")
	out, _ := cmd.Flags().GetString("out")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	chrome, _ := cmd.Flags().GetString("chrome")
	if url == "" {
		url = "http://" + cfg.Listen + "/"
	}

	opts := capture.Options{
		URL:        url,
		OutputPath: out,
		Width:      width,
		Height:     height,
		Timeout:    timeout,
		ExecPath:   chrome,
	}
	if cfg.BasicAuth != nil {
		opts.Username, opts.Password = cfg.BasicAuth.Username, cfg.BasicAuth.Password
	}

	start := time.Now()
	if err := capture.CaptureBoardPNG(cmd.Context(), opts); err != nil {
		return err
	}
	appLog.Info("board captured", "out", out, "elapsed", time.Since(start).String())
	return nil
}
