package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/foogie/internal/cli"
	"github.com/theirongolddev/foogie/internal/config"
	"github.com/theirongolddev/foogie/internal/recipe"

	"github.com/spf13/cobra"
)

var (
	flagRecipeCount   int
	flagRecipeDiet    string
	flagRecipeCuisine string
	flagRecipeMake    int
	flagRecipeBin     string
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Suggest recipes from the fridge inventory sized to the per-meal budget",
	Example: `  foogie recipes --count 5 --diet vegetarian
  foogie recipes --make 2 --bin kitchen-1`,
	RunE: runRecipes,
}

func init() {
	recipesCmd.Flags().IntVar(&flagRecipeCount, "count", 3, "Number of recipes to generate")
	recipesCmd.Flags().StringVar(&flagRecipeDiet, "diet", "", "Dietary restrictions")
	recipesCmd.Flags().StringVar(&flagRecipeCuisine, "cuisine", "", "Cuisine preference")
	recipesCmd.Flags().IntVar(&flagRecipeMake, "make", 0, "Log recipe N (as numbered in the list) as eaten")
	recipesCmd.Flags().StringVar(&flagRecipeBin, "bin", "", "Inventory bin to deduct used items from (default from config)")
	rootCmd.AddCommand(recipesCmd)
}

func runRecipes(cmd *cobra.Command, _ []string) error {
	if flagRecipeCount < 1 {
		return errors.New("--count must be at least 1")
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		sum, err := s.ledger.Summary(ctx)
		if err != nil {
			return err
		}

		client := recipe.NewClient(config.BackendURL(s.cfg))
		recipes, err := client.Generate(ctx, recipe.GenerateRequest{
			NumRecipes:            flagRecipeCount,
			DietaryRestrictions:   flagRecipeDiet,
			CuisinePreference:     flagRecipeCuisine,
			TargetCaloriesPerMeal: recipe.TargetCaloriesPerMeal(sum),
		})
		out := cmd.OutOrStdout()
		if errors.Is(err, recipe.ErrNoInventory) {
			fmt.Fprintln(out, "\n  No inventory available. Stock the fridge first!")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("RECIPES  %s left today", cli.FormatCalories(sum.Remaining))))
		for i, r := range recipes {
			renderRecipe(out, i, r, sum.Remaining)
		}

		if flagRecipeMake == 0 {
			return nil
		}
		if flagRecipeMake < 1 || flagRecipeMake > len(recipes) {
			return fmt.Errorf("--make %d: only %d recipes generated", flagRecipeMake, len(recipes))
		}

		chosen := recipes[flagRecipeMake-1]
		_, calories, n := chosen.Consumption()
		name := chosen.DisplayName(flagRecipeMake - 1)
		if _, err := s.ledger.LogMeal(ctx, name, calories, n); err != nil {
			return err
		}
		fmt.Fprintf(out, "  Logged %s (%s)\n", name, cli.FormatCalories(calories))

		bin := flagRecipeBin
		if bin == "" {
			bin = s.cfg.Backend.BinID
		}
		if bin == "" {
			return nil
		}
		if err := client.Consume(ctx, bin, chosen); err != nil {
			s.log.Warn("failed to update inventory", "bin", bin, "recipe", name, "err", err)
			fmt.Fprintln(out, cli.Muted("  Inventory not updated, see log."))
			return nil
		}
		fmt.Fprintf(out, "  Removed %d items from bin %s\n", len(chosen.InventoryItemsUsed), bin)
		return nil
	})
}

func renderRecipe(w io.Writer, i int, r recipe.Recipe, remaining float64) {
	fit := cli.Good("fits budget")
	if !r.FitsBudget(remaining) {
		fit = cli.Warn("over budget")
	}

	fmt.Fprintf(w, "\n  %d. %s  %s\n", i+1, r.DisplayName(i), fit)
	meta := []string{cli.FormatServings(r.Servings) + " servings"}
	if r.CookingTime != "" {
		meta = append(meta, r.CookingTime)
	}
	if r.Nutrition.Present {
		meta = append(meta, cli.FormatCalories(r.TotalCalories()))
	}
	if r.Urgency == recipe.UrgencyHigh {
		meta = append(meta, "use soon")
	}
	fmt.Fprintln(w, cli.Muted("     "+strings.Join(meta, " · ")))

	if len(r.InventoryItemsUsed) > 0 {
		fmt.Fprintf(w, "     From inventory: %s\n", strings.Join(r.InventoryItemsUsed, ", "))
	}
	if len(r.AdditionalIngredients) > 0 {
		fmt.Fprintf(w, "     Also needs: %s\n", strings.Join(r.AdditionalIngredients, ", "))
	}
	for j, step := range r.Instructions {
		fmt.Fprintf(w, "     %d) %s\n", j+1, step)
	}
}
