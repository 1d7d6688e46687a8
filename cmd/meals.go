package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/foogie/internal/cli"

	"github.com/spf13/cobra"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "List today's meals",
	RunE:  runMeals,
}

func init() {
	rootCmd.AddCommand(mealsCmd)
}

func runMeals(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		sum, err := s.ledger.Summary(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sum.Meals) == 0 {
			fmt.Fprintln(out, "\n  No meals logged today.")
			return nil
		}

		now := nowFunc()
		rows := make([][]string, 0, len(sum.Meals)+2)
		for i, m := range sum.Meals {
			rows = append(rows, []string{
				fmt.Sprintf("%d  %s", i, m.Name),
				cli.FormatCalories(m.Calories),
				cli.FormatGrams(m.Protein),
				cli.FormatGrams(m.Carbs),
				cli.FormatGrams(m.Fats),
				cli.FormatServings(m.Servings),
				cli.FormatAgo(m.Timestamp, now),
			})
		}
		rows = append(rows, []string{"---"}, []string{
			"Total",
			cli.FormatCalories(sum.Consumed),
			cli.FormatGrams(sum.Nutrition.Protein),
			cli.FormatGrams(sum.Nutrition.Carbs),
			cli.FormatGrams(sum.Nutrition.Fats),
			"",
			"",
		})

		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Title:   "Today's meals",
			Headers: []string{"#  Meal", "Calories", "Protein", "Carbs", "Fats", "Servings", "When"},
			Rows:    rows,
		}))
		return nil
	})
}
