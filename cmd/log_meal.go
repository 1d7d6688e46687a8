package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagProtein  float64
	flagCarbs    float64
	flagFats     float64
	flagServings float64
)

var logCmd = &cobra.Command{
	Use:   "log NAME CALORIES",
	Short: "Log a meal",
	Example: `  foogie log "Oatmeal" 350 --protein 12 --carbs 60 --fats 6
  foogie log "Pizza slice" 285 --servings 2`,
	Args: cobra.ExactArgs(2),
	RunE: runLog,
}

func init() {
	logCmd.Flags().Float64Var(&flagProtein, "protein", 0, "Protein in grams")
	logCmd.Flags().Float64Var(&flagCarbs, "carbs", 0, "Carbs in grams")
	logCmd.Flags().Float64Var(&flagFats, "fats", 0, "Fats in grams")
	logCmd.Flags().Float64Var(&flagServings, "servings", 1, "Servings eaten")
	rootCmd.AddCommand(logCmd)
}

var errBadCalories = errors.New("calories must be a non-negative number")

func parseCalories(s string) (float64, error) {
	c, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, errBadCalories
	}
	return c, nil
}

func runLog(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return errors.New("meal name is required")
	}
	calories, err := parseCalories(args[1])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		entry, err := s.ledger.LogMeal(ctx, name, calories, model.Nutrition{
			Protein:  flagProtein,
			Carbs:    flagCarbs,
			Fats:     flagFats,
			Servings: flagServings,
		})
		if err != nil {
			return err
		}
		sum, err := s.ledger.Summary(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  Logged %s (%s)\n", entry.Name, cli.FormatCalories(entry.Calories))
		fmt.Fprintf(out, "  Remaining today: %s", cli.FormatCalories(sum.Remaining))
		if sum.MealsLeft > 0 {
			fmt.Fprintf(out, "  (%s per meal over %d meals)", cli.FormatCalories(float64(sum.CaloriesPerMeal)), sum.MealsLeft)
		}
		fmt.Fprintln(out)
		return nil
	})
}
