package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/model"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Today's calories against the goal",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		sum, err := s.ledger.Summary(ctx)
		if err != nil {
			return err
		}
		renderSummary(cmd.OutOrStdout(), sum, s.ledger.Settings())
		return nil
	})
}

func renderSummary(w io.Writer, sum model.Summary, settings model.Settings) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("TODAY  "+cli.FormatDate(model.DayOf(nowFunc()))))
	fmt.Fprintln(w)

	remaining := cli.FormatCalories(sum.Remaining)
	if sum.IsOverGoal {
		remaining += "  (over goal)"
	}

	rows := [][]string{
		{"Goal", cli.FormatCalories(float64(sum.Goal))},
		{"Consumed", cli.FormatCalories(sum.Consumed)},
		{"Remaining", remaining},
		{"Consumed %", cli.FormatPercent(sum.PercentConsumed)},
		{"---"},
		{"Meals logged", cli.FormatNumber(int64(len(sum.Meals)))},
		{"Meals left", cli.FormatNumber(int64(sum.MealsLeft))},
		{"Per meal", cli.FormatCalories(float64(sum.CaloriesPerMeal))},
		{"---"},
		{"Protein", cli.FormatGrams(sum.Nutrition.Protein)},
		{"Carbs", cli.FormatGrams(sum.Nutrition.Carbs)},
		{"Fats", cli.FormatGrams(sum.Nutrition.Fats)},
	}

	fmt.Fprint(w, cli.RenderTable(cli.Table{Rows: rows}))

	if settings.ShowCalorieProgress {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  "+cli.RenderBudgetBar(sum.Consumed, sum.Goal, sum.PercentConsumed, 40))
	}
	fmt.Fprintln(w)
}
