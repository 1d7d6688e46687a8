package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/foogie/internal/tui"
	"github.com/theirongolddev/foogie/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Log lines on stderr would tear the alternate screen.
	flagQuiet = true

	return withSession(cmd, func(ctx context.Context, s *session) error {
		theme.SetActive(s.cfg.Appearance.Theme)

		// Force TrueColor profile so all styling produces ANSI codes
		lipgloss.SetColorProfile(termenv.TrueColor)

		app := tui.NewApp(ctx, s.ledger)
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}
