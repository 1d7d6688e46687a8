package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/theirongolddev/foogie/internal/cli"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete INDEX",
	Aliases: []string{"rm"},
	Short:   "Delete a meal by its index in `foogie meals`",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		removed, ok, err := s.ledger.RemoveMeal(ctx, idx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ok {
			meals, err := s.ledger.TodaysMeals(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  No meal at index %d (%d logged today)\n", idx, len(meals))
			return nil
		}
		fmt.Fprintf(out, "  Deleted %s (%s)\n", removed.Name, cli.FormatCalories(removed.Calories))
		return nil
	})
}
