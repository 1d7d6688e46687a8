package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagSetCalories string
	flagSetMeals    string
	flagSetProgress bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the calorie goal settings",
	RunE:  runSettings,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change and save goal settings",
	Long: `Change and save goal settings. Values that don't start with a positive
whole number keep the current setting.`,
	Example: `  foogie settings set --calories 1800 --meals 4
  foogie settings set --progress=false`,
	RunE: runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().StringVar(&flagSetCalories, "calories", "", "Daily calorie goal")
	settingsSetCmd.Flags().StringVar(&flagSetMeals, "meals", "", "Meals per day")
	settingsSetCmd.Flags().BoolVar(&flagSetProgress, "progress", true, "Show the calorie progress bar")

	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(_ context.Context, s *session) error {
		printSettings(cmd.OutOrStdout(), s.ledger.Settings())
		return nil
	})
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		current := s.ledger.Settings()

		u := model.SettingsUpdate{}
		if cmd.Flags().Changed("calories") {
			u.DailyCalories = flagSetCalories
		}
		if cmd.Flags().Changed("meals") {
			u.DailyMeals = flagSetMeals
		}
		// An update without the flag turns the bar on, so carry the current value.
		show := current.ShowCalorieProgress
		if cmd.Flags().Changed("progress") {
			show = flagSetProgress
		}
		u.ShowCalorieProgress = &show

		next, err := s.ledger.ApplySettings(ctx, u)
		if err != nil {
			return err
		}

		printSettings(cmd.OutOrStdout(), next)
		return nil
	})
}

func printSettings(w io.Writer, s model.Settings) {
	fmt.Fprintln(w)
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title: "Settings",
		Rows: [][]string{
			{"Daily calories", cli.FormatCalories(float64(s.DailyCalories))},
			{"Meals per day", cli.FormatNumber(int64(s.DailyMeals))},
			{"Progress bar", onOff(s.ShowCalorieProgress)},
		},
	}))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
