package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/foogie/internal/ledger"
	"github.com/theirongolddev/foogie/internal/logger"
	"github.com/theirongolddev/foogie/internal/model"
	"github.com/theirongolddev/foogie/internal/store"
)

func newTestApp(t *testing.T, meals ...model.MealEntry) (App, *ledger.Ledger) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 13, 0, 0, 0, time.Local)
	l, err := ledger.New(ctx, store.NewMemStore(),
		ledger.WithClock(func() time.Time { return now }),
		ledger.WithLogger(logger.Discard()),
	)
	require.NoError(t, err)
	for _, m := range meals {
		_, err := l.LogMeal(ctx, m.Name, m.Calories, model.Nutrition{Protein: m.Protein})
		require.NoError(t, err)
	}

	a := NewApp(ctx, l)
	a.now = func() time.Time { return now }
	next, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a = next.(App)
	a = load(t, a)
	return a, l
}

func load(t *testing.T, a App) App {
	t.Helper()
	msg := a.loadSummary()()
	next, _ := a.Update(msg)
	return next.(App)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_SummaryAndMeals(t *testing.T) {
	a, _ := newTestApp(t,
		model.MealEntry{Name: "Oatmeal", Calories: 500, Protein: 20},
		model.MealEntry{Name: "Chicken Bowl", Calories: 300},
	)

	out := a.View()
	for _, want := range []string{"2,000 kcal", "800 kcal", "1,200 kcal", "1 meal left", "40%", "Oatmeal", "Chicken Bowl"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "█", "progress bar shown by default")
}

func TestView_HidesProgressBarWhenDisabled(t *testing.T) {
	a, l := newTestApp(t, model.MealEntry{Name: "Toast", Calories: 200})

	off := false
	l.UpdateSettings(model.SettingsUpdate{ShowCalorieProgress: &off})

	out := a.View()
	assert.NotContains(t, out, "█")
	assert.NotContains(t, out, "░")
	assert.Contains(t, out, "10%", "percent still shown on the Consumed card")
}

func TestView_OverGoalClampsBar(t *testing.T) {
	a, _ := newTestApp(t, model.MealEntry{Name: "Feast", Calories: 2400})

	out := a.View()
	assert.Contains(t, out, "120%")
	assert.NotContains(t, out, "░", "bar is full past the goal")
	assert.Contains(t, out, "-400 kcal")
}

func TestKeys_CursorAndDelete(t *testing.T) {
	ctx := context.Background()
	a, l := newTestApp(t,
		model.MealEntry{Name: "A", Calories: 100},
		model.MealEntry{Name: "B", Calories: 200},
		model.MealEntry{Name: "C", Calories: 300},
	)

	next, _ := a.Update(key("j"))
	a = next.(App)
	next, _ = a.Update(key("j"))
	a = next.(App)
	next, _ = a.Update(key("j"))
	a = next.(App)
	assert.Equal(t, 2, a.cursor, "cursor stops at the last meal")

	next, _ = a.Update(key("k"))
	a = next.(App)
	require.Equal(t, 1, a.cursor)

	next, cmd := a.Update(key("d"))
	a = next.(App)
	require.NotNil(t, cmd)
	msg := cmd()
	next, cmd = a.Update(msg)
	a = next.(App)
	assert.Equal(t, "deleted B", a.status)
	require.NotNil(t, cmd)
	next, _ = a.Update(cmd())
	a = next.(App)

	meals, err := l.TodaysMeals(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "A", meals[0].Name)
	assert.Equal(t, "C", meals[1].Name)
	assert.Len(t, a.sum.Meals, 2)
}

func TestKeys_DeleteLastClampsCursor(t *testing.T) {
	a, _ := newTestApp(t, model.MealEntry{Name: "Only", Calories: 100})

	_, cmd := a.Update(key("d"))
	require.NotNil(t, cmd)
	next, cmd := a.Update(cmd())
	a = next.(App)
	next, _ = a.Update(cmd())
	a = next.(App)

	assert.Equal(t, 0, a.cursor)
	assert.Contains(t, a.View(), "No meals logged yet")

	_, cmd = a.Update(key("d"))
	assert.Nil(t, cmd, "delete on an empty list is a no-op")
}

func TestKeys_SettingsFormOpens(t *testing.T) {
	a, _ := newTestApp(t)

	next, _ := a.Update(key("s"))
	a = next.(App)
	require.NotNil(t, a.form)
	assert.Equal(t, "2000", a.formVals.Calories)
	assert.True(t, a.formVals.ShowProgress)
	assert.True(t, strings.Contains(a.View(), "Daily calorie goal"))
}

func TestSettingsValuesUpdate(t *testing.T) {
	v := SettingsValuesFrom(model.Settings{DailyCalories: 1800, DailyMeals: 4, ShowCalorieProgress: false}, "terminal")
	assert.Equal(t, "1800", v.Calories)
	assert.Equal(t, "4", v.Meals)

	u := v.Update()
	require.NotNil(t, u.ShowCalorieProgress)
	assert.False(t, *u.ShowCalorieProgress)
	assert.Equal(t, "1800", u.DailyCalories)
}

func TestPositiveInt(t *testing.T) {
	assert.NoError(t, positiveInt(" 2000 "))
	assert.Error(t, positiveInt("0"))
	assert.Error(t, positiveInt("-5"))
	assert.Error(t, positiveInt("abc"))
}

func TestDisplayFraction(t *testing.T) {
	assert.Equal(t, 1.0, displayFraction(120))
	assert.Equal(t, 0.4, displayFraction(40))
	assert.Equal(t, 0.0, displayFraction(-5))
}
