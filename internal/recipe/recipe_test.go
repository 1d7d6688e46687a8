package recipe

import (
	"encoding/json"
	"testing"

	"github.com/theirongolddev/foogie/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecipe = `{
	"name": "Veggie Frittata",
	"cooking_time": "25 minutes",
	"servings": "2",
	"urgency": "high",
	"urgency_reason": "Spinach expires tomorrow",
	"inventory_items_used": ["eggs", "spinach"],
	"additional_ingredients": ["salt"],
	"instructions": ["Whisk eggs", "Bake"],
	"nutrition_per_serving": {"calories": "310 kcal", "protein": 21, "carbohydrates": "8g", "fat": 22}
}`

func TestUnmarshal_TolerantFields(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(sampleRecipe), &r))

	assert.Equal(t, "Veggie Frittata", r.Name)
	assert.Equal(t, 2.0, r.Servings)
	assert.Equal(t, UrgencyHigh, r.Urgency)
	assert.True(t, r.Nutrition.Present)
	assert.Equal(t, 310.0, r.Nutrition.Calories)
	assert.Equal(t, 21.0, r.Nutrition.Protein)
	assert.Equal(t, 8.0, r.Nutrition.Carbs)
	assert.Equal(t, 22.0, r.Nutrition.Fats)
	assert.Equal(t, []string{"eggs", "spinach"}, r.InventoryItemsUsed)
}

func TestUnmarshal_Defaults(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"servings":0}`), &r))
	assert.Equal(t, 1.0, r.Servings)
	assert.Equal(t, UrgencyLow, r.Urgency)
	assert.False(t, r.Nutrition.Present)
	assert.Equal(t, "Recipe 3", r.DisplayName(2))
}

func TestConsumption_ScalesByServings(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(sampleRecipe), &r))

	name, cal, n := r.Consumption()
	assert.Equal(t, "Veggie Frittata", name)
	assert.Equal(t, 620.0, cal)
	assert.Equal(t, model.Nutrition{Protein: 42, Carbs: 16, Fats: 44, Servings: 2}, n)
}

func TestFitsBudget(t *testing.T) {
	r := Recipe{Servings: 2, Nutrition: PerServing{Calories: 300, Present: true}}
	assert.True(t, r.FitsBudget(600))
	assert.False(t, r.FitsBudget(599))
	assert.False(t, r.FitsBudget(-10))
}

func TestTargetCaloriesPerMeal(t *testing.T) {
	assert.Equal(t, 600, TargetCaloriesPerMeal(model.Summary{CaloriesPerMeal: 600}))
	assert.Equal(t, DefaultTargetCaloriesPerMeal, TargetCaloriesPerMeal(model.Summary{}))
}

func TestMarshal_RoundTripShape(t *testing.T) {
	r := Recipe{Name: "Soup", Servings: 3, Nutrition: PerServing{Calories: 150, Protein: 6, Present: true}}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Recipe
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 3.0, back.Servings)
	assert.Equal(t, 150.0, back.Nutrition.Calories)
	assert.Equal(t, 450.0, back.TotalCalories())
}
