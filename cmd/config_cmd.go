package cmd

import (
	"fmt"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/config"
	"github.com/theirongolddev/foogie/internal/mealsync"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	status := "using defaults (no config file)"
	if config.Exists() {
		status = "loaded"
	}
	endpoint := config.SyncEndpoint(cfg)
	if endpoint == "" {
		endpoint = mealsync.DefaultEndpoint + " (default)"
	}
	baseURL := config.BackendURL(cfg)
	if baseURL == "" {
		baseURL = "not configured"
	}
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = "none"
	}

	sections := []struct {
		title string
		kv    [][2]string
	}{
		{"", [][2]string{{"Config file", config.Path()}, {"Status", status}}},
		{"General", [][2]string{{"Database", resolveDBPath(cfg)}}},
		{"Sync", [][2]string{
			{"Enabled", fmt.Sprint(cfg.Sync.Enabled)},
			{"Endpoint", endpoint},
			{"Timeout", config.SyncTimeout(cfg).String()},
		}},
		{"Backend", [][2]string{{"Base URL", baseURL}, {"Bin ID", cfg.Backend.BinID}}},
		{"Daemon", [][2]string{
			{"Address", cfg.Daemon.Addr},
			{"Interval", fmt.Sprintf("%ds", cfg.Daemon.PollIntervalSec)},
		}},
		{"Log", [][2]string{{"Level", cfg.Log.Level}, {"File", logFile}}},
		{"Appearance", [][2]string{{"Theme", cfg.Appearance.Theme}}},
	}
	for _, sec := range sections {
		if sec.title != "" {
			fmt.Fprintf(out, "  [%s]\n", sec.title)
		}
		for _, kv := range sec.kv {
			if kv[1] == "" {
				continue
			}
			fmt.Fprintln(out, cli.RenderKV(kv[0], kv[1]))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "  Run `foogie setup` to reconfigure.")
	return nil
}
