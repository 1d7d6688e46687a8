package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/foogie/internal/config"
	"github.com/theirongolddev/foogie/internal/tui"
	"github.com/theirongolddev/foogie/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup for goals and appearance",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		vals := tui.SettingsValuesFrom(s.ledger.Settings(), theme.ByName(s.cfg.Appearance.Theme).Name)

		fmt.Println()
		fmt.Println("  Welcome to foogie!")
		fmt.Println()

		if err := tui.NewSettingsForm(vals, true).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Setup cancelled, nothing changed.")
				return nil
			}
			return err
		}

		if _, err := s.ledger.ApplySettings(ctx, vals.Update()); err != nil {
			return err
		}

		cfg := s.cfg
		cfg.Appearance.Theme = vals.Theme
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println()
		fmt.Printf("  Goals saved to %s\n", s.dbPath)
		fmt.Printf("  Config saved to %s\n", config.Path())
		fmt.Println("  Run `foogie setup` anytime to reconfigure.")
		fmt.Println()
		return nil
	})
}
