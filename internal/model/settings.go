package model

// Default settings applied per field when the stored value is absent or invalid.
const (
	DefaultDailyCalories = 2000
	DefaultDailyMeals    = 3
)

// Settings is the user's daily goal configuration.
type Settings struct {
	DailyCalories       int  `json:"dailyCalories"`
	DailyMeals          int  `json:"dailyMeals"`
	ShowCalorieProgress bool `json:"showCalorieProgress"`
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		DailyCalories:       DefaultDailyCalories,
		DailyMeals:          DefaultDailyMeals,
		ShowCalorieProgress: true,
	}
}

// SettingsUpdate is a loosely-typed partial settings change. DailyCalories and
// DailyMeals accept JSON numbers or numeric strings; nil leaves the field as is.
// A nil ShowCalorieProgress means true.
type SettingsUpdate struct {
	DailyCalories       any   `json:"dailyCalories,omitempty"`
	DailyMeals          any   `json:"dailyMeals,omitempty"`
	ShowCalorieProgress *bool `json:"showCalorieProgress,omitempty"`
}
