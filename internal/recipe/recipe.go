// Package recipe models AI-generated recipes and converts a cooked recipe
// into a ledger meal.
package recipe

import (
	"encoding/json"
	"strconv"

	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/nutrition"
)

// DefaultTargetCaloriesPerMeal is sent when the ledger has no per-meal budget.
const DefaultTargetCaloriesPerMeal = 500

// Urgency levels reported by the backend for inventory freshness.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// PerServing is the decoded nutrition_per_serving block.
type PerServing struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
	Present  bool
}

// Recipe is one generated recipe.
type Recipe struct {
	Name                  string     `json:"name"`
	CookingTime           string     `json:"cooking_time"`
	Servings              float64    `json:"-"`
	Urgency               string     `json:"urgency"`
	UrgencyReason         string     `json:"urgency_reason"`
	FoodTypesUsed         []string   `json:"food_types_used"`
	InventoryItemsUsed    []string   `json:"inventory_items_used"`
	AdditionalIngredients []string   `json:"additional_ingredients"`
	Instructions          []string   `json:"instructions"`
	InventoryOnly         bool       `json:"inventory_only"`
	Nutrition             PerServing `json:"-"`
}

// UnmarshalJSON decodes the loosely-typed fields (servings, nutrition)
// through the tolerant nutrition decoder.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	var aux struct {
		plain
		Servings  any             `json:"servings"`
		Nutrition json.RawMessage `json:"nutrition_per_serving"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Recipe(aux.plain)

	r.Servings = 1
	if n, ok := nutrition.Number(aux.Servings); ok && n > 0 {
		r.Servings = n
	}

	if len(aux.Nutrition) > 0 {
		f := nutrition.DecodeJSON(aux.Nutrition)
		r.Nutrition = PerServing{
			Calories: f.Calories.Or(0),
			Protein:  f.Protein.Or(0),
			Carbs:    f.Carbs.Or(0),
			Fats:     f.Fats.Or(0),
			Present:  f.Calories.OK || f.Protein.OK || f.Carbs.OK || f.Fats.OK,
		}
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyLow
	}
	return nil
}

// MarshalJSON writes the recipe back in the backend's shape.
func (r Recipe) MarshalJSON() ([]byte, error) {
	type plain Recipe
	out := struct {
		plain
		Servings  float64        `json:"servings"`
		Nutrition map[string]any `json:"nutrition_per_serving,omitempty"`
	}{plain: plain(r), Servings: r.servings()}
	if r.Nutrition.Present {
		out.Nutrition = map[string]any{
			"calories": r.Nutrition.Calories,
			"protein":  r.Nutrition.Protein,
			"carbs":    r.Nutrition.Carbs,
			"fats":     r.Nutrition.Fats,
		}
	}
	return json.Marshal(out)
}

func (r Recipe) servings() float64 {
	if r.Servings <= 0 {
		return 1
	}
	return r.Servings
}

// DisplayName falls back to "Recipe N" for unnamed recipes (index is 0-based).
func (r Recipe) DisplayName(index int) string {
	if r.Name != "" {
		return r.Name
	}
	return "Recipe " + strconv.Itoa(index+1)
}

// TotalCalories is the per-serving calories times the servings.
func (r Recipe) TotalCalories() float64 {
	return r.Nutrition.Calories * r.servings()
}

// FitsBudget reports whether cooking every serving stays within remaining.
func (r Recipe) FitsBudget(remaining float64) bool {
	return r.TotalCalories() <= remaining
}

// Consumption returns the ledger arguments for eating the whole recipe:
// macros are scaled by the servings like the calories are.
func (r Recipe) Consumption() (name string, calories float64, n model.Nutrition) {
	s := r.servings()
	return r.Name, r.TotalCalories(), model.Nutrition{
		Protein:  r.Nutrition.Protein * s,
		Carbs:    r.Nutrition.Carbs * s,
		Fats:     r.Nutrition.Fats * s,
		Servings: s,
	}
}

// TargetCaloriesPerMeal picks the per-meal target for a generation request.
func TargetCaloriesPerMeal(s model.Summary) int {
	if s.CaloriesPerMeal > 0 {
		return s.CaloriesPerMeal
	}
	return DefaultTargetCaloriesPerMeal
}
