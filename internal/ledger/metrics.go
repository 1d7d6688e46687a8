package ledger

import (
	"math"

	"github.com/theirongolddev/foogie/internal/model"
)

func remaining(s model.Settings, log model.DailyLog) float64 {
	return float64(s.DailyCalories) - log.TotalCalories
}

func mealsLeft(s model.Settings, log model.DailyLog) int {
	return max(0, s.DailyMeals-len(log.Meals))
}

// caloriesPerMeal is 0 when no meals are left or the budget is already spent.
func caloriesPerMeal(s model.Settings, log model.DailyLog) int {
	left := mealsLeft(s, log)
	if left == 0 {
		return 0
	}
	return max(0, int(roundHalfUp(remaining(s, log)/float64(left))))
}

func percentConsumed(s model.Settings, log model.DailyLog) int {
	if s.DailyCalories <= 0 {
		return 0
	}
	return int(roundHalfUp(100 * log.TotalCalories / float64(s.DailyCalories)))
}

func summarize(s model.Settings, log model.DailyLog) model.Summary {
	rem := remaining(s, log)
	return model.Summary{
		Goal:            s.DailyCalories,
		Consumed:        log.TotalCalories,
		Remaining:       rem,
		MealsLeft:       mealsLeft(s, log),
		CaloriesPerMeal: caloriesPerMeal(s, log),
		PercentConsumed: percentConsumed(s, log),
		IsOverGoal:      rem < 0,
		Meals:           log.Meals,
		Nutrition: model.MacroTotals{
			Protein: log.TotalProtein,
			Carbs:   log.TotalCarbs,
			Fats:    log.TotalFats,
		},
	}
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
