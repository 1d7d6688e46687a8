package cmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistorySince string
	flagHistoryUntil string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Totals for previous days",
	Example: `  foogie history -n 7
  foogie history --since 2024-03-01 --until 2024-03-31`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 14, "Number of days to show (0 for all)")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "First day to include (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&flagHistoryUntil, "until", "", "Last day to include (YYYY-MM-DD)")
	rootCmd.AddCommand(historyCmd)
}

// historyRange parses --since/--until. A missing bound is open.
func historyRange(since, until string) (from, to time.Time, filtered bool, err error) {
	from = time.Time{}
	to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.Local)
	if since != "" {
		if from, err = time.ParseInLocation(model.DateLayout, since, time.Local); err != nil {
			return from, to, false, fmt.Errorf("invalid --since %q: want YYYY-MM-DD", since)
		}
		filtered = true
	}
	if until != "" {
		if to, err = time.ParseInLocation(model.DateLayout, until, time.Local); err != nil {
			return from, to, false, fmt.Errorf("invalid --until %q: want YYYY-MM-DD", until)
		}
		filtered = true
	}
	if filtered && to.Before(from) {
		return from, to, false, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	return from, to, filtered, nil
}

// selectHistory narrows archived days to the range and the newest limit
// days, returned oldest first.
func selectHistory(days []model.DayRecord, from, to time.Time, filtered bool, limit int) []model.DayRecord {
	if filtered {
		days = pipeline.FilterByTime(days, from, to)
	}
	pipeline.SortByDate(days)
	if limit > 0 && len(days) > limit {
		days = days[len(days)-limit:]
	}
	return days
}

func runHistory(cmd *cobra.Command, _ []string) error {
	from, to, filtered, err := historyRange(flagHistorySince, flagHistoryUntil)
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		fetch := flagHistoryLimit
		if filtered {
			fetch = 0
		}
		days, err := s.ledger.History(ctx, fetch)
		if err != nil {
			return err
		}
		days = selectHistory(days, from, to, filtered, flagHistoryLimit)

		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintln(out, "\n  No previous days recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(days))
		totals := make([]float64, 0, len(days))
		for _, d := range days {
			pct := 0
			if d.Goal > 0 {
				pct = int(d.TotalCalories/float64(d.Goal)*100 + 0.5)
			}
			rows = append(rows, []string{
				cli.FormatDate(d.Date),
				cli.FormatCalories(d.TotalCalories),
				cli.FormatCalories(float64(d.Goal)),
				cli.FormatSignedCalories(float64(d.Goal) - d.TotalCalories),
				cli.FormatPercent(pct),
				cli.FormatNumber(int64(d.MealCount)),
			})
			totals = append(totals, d.TotalCalories)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("HISTORY  %s to %s", days[0].Date, days[len(days)-1].Date)))
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Calories", "Goal", "Left", "%", "Meals"},
			Rows:    rows,
		}))
		fmt.Fprintf(out, "\n  Trend %s\n\n", cli.RenderSparkline(totals))

		stats := pipeline.Aggregate(days)
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Title: "Averages",
			Rows: [][]string{
				{"Calories/day", cli.FormatCalories(stats.AvgCalories)},
				{"Goal/day", cli.FormatCalories(stats.AvgGoal)},
				{"Meals/day", fmt.Sprintf("%.1f", stats.AvgMeals)},
				{"Protein/day", cli.FormatGrams(math.Round(stats.AvgProtein))},
				{"---"},
				{"Within goal", fmt.Sprintf("%d of %d days", stats.DaysWithinGoal, stats.Days)},
				{"Longest streak", fmt.Sprintf("%d days", stats.LongestStreak)},
				{"Current streak", fmt.Sprintf("%d days", stats.CurrentStreak)},
				{"Highest day", stats.HighestDay.Date + "  " + cli.FormatCalories(stats.HighestDay.TotalCalories)},
			},
		}))
		return nil
	})
}
