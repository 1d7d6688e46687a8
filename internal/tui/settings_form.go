package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/tui/theme"
)

// SettingsValues backs the settings form. Goal fields stay strings so the
// ledger's lenient parsing applies to whatever was typed.
type SettingsValues struct {
	Calories     string
	Meals        string
	ShowProgress bool
	Theme        string
}

// SettingsValuesFrom seeds form values from the settings in effect.
func SettingsValuesFrom(s model.Settings, themeName string) *SettingsValues {
	return &SettingsValues{
		Calories:     strconv.Itoa(s.DailyCalories),
		Meals:        strconv.Itoa(s.DailyMeals),
		ShowProgress: s.ShowCalorieProgress,
		Theme:        themeName,
	}
}

// Update converts the form values to a ledger settings update.
func (v *SettingsValues) Update() model.SettingsUpdate {
	show := v.ShowProgress
	return model.SettingsUpdate{
		DailyCalories:       v.Calories,
		DailyMeals:          v.Meals,
		ShowCalorieProgress: &show,
	}
}

// NewSettingsForm builds the goal settings form. withTheme adds a theme picker.
func NewSettingsForm(v *SettingsValues, withTheme bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Daily calorie goal").
			Description("kcal per day").
			Value(&v.Calories).
			Validate(positiveInt),
		huh.NewInput().
			Title("Meals per day").
			Value(&v.Meals).
			Validate(positiveInt),
		huh.NewConfirm().
			Title("Show the calorie progress bar?").
			Value(&v.ShowProgress),
	}
	if withTheme {
		names := make([]string, 0, len(theme.All))
		for _, t := range theme.All {
			names = append(names, t.Name)
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Color theme").
			Options(huh.NewOptions(names...)...).
			Value(&v.Theme))
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true)
}

var errNotPositive = errors.New("enter a whole number above zero")

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errNotPositive
	}
	return nil
}
