package model

// MacroTotals holds the day's macronutrient sums.
type MacroTotals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// Summary is a read-only projection of the current log against the settings.
// Remaining and PercentConsumed are deliberately unclamped.
type Summary struct {
	Goal            int         `json:"goal"`
	Consumed        float64     `json:"consumed"`
	Remaining       float64     `json:"remaining"`
	MealsLeft       int         `json:"mealsLeft"`
	CaloriesPerMeal int         `json:"caloriesPerMeal"`
	PercentConsumed int         `json:"percentConsumed"`
	IsOverGoal      bool        `json:"isOverGoal"`
	Meals           []MealEntry `json:"meals"`
	Nutrition       MacroTotals `json:"nutrition"`
}

// DayRecord is an archived day, written when a stale log is superseded.
// Goal is the daily calorie goal in effect when the rollover happened, which
// is the first read on a later day. A goal changed before that read is the
// one recorded.
type DayRecord struct {
	Date          string      `json:"date"`
	Goal          int         `json:"goal"`
	MealCount     int         `json:"mealCount"`
	TotalCalories float64     `json:"totalCalories"`
	TotalProtein  float64     `json:"totalProtein"`
	TotalCarbs    float64     `json:"totalCarbs"`
	TotalFats     float64     `json:"totalFats"`
	Meals         []MealEntry `json:"meals"`
}
