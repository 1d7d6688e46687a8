// Package model defines the ledger's persisted and derived data types.
package model

import "time"

// DateLayout is the calendar-day identifier format stored in DailyLog.Date.
const DateLayout = "2006-01-02"

// Nutrition carries the optional macro fields supplied when logging a meal.
// Zero values mean "unspecified": macros default to 0 and Servings to 1.
type Nutrition struct {
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fats     float64 `json:"fats,omitempty"`
	Servings float64 `json:"servings,omitempty"`
}

// MealEntry is one logged consumption event.
type MealEntry struct {
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	Servings  float64   `json:"servings"`
	Timestamp time.Time `json:"timestamp"`
}

// DailyLog is the persisted record for a single calendar day.
// The Total* fields always equal the sum of the matching field across Meals.
type DailyLog struct {
	Date          string      `json:"date"`
	Meals         []MealEntry `json:"meals"`
	TotalCalories float64     `json:"totalCalories"`
	TotalProtein  float64     `json:"totalProtein"`
	TotalCarbs    float64     `json:"totalCarbs"`
	TotalFats     float64     `json:"totalFats"`
}

// NewDailyLog returns an empty log dated for the local calendar day of now.
func NewDailyLog(now time.Time) DailyLog {
	return DailyLog{
		Date:  DayOf(now),
		Meals: []MealEntry{},
	}
}

// DayOf formats t as a local calendar-day identifier.
func DayOf(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// IsCurrent reports whether the log belongs to the calendar day of now.
func (l DailyLog) IsCurrent(now time.Time) bool {
	return l.Date == DayOf(now)
}

// Add appends m and increments the running totals.
func (l *DailyLog) Add(m MealEntry) {
	l.Meals = append(l.Meals, m)
	l.TotalCalories += m.Calories
	l.TotalProtein += m.Protein
	l.TotalCarbs += m.Carbs
	l.TotalFats += m.Fats
}

// Remove deletes the meal at index i and recomputes the running totals from
// the remaining meals, so repeated deletes leave no rounding residue. It
// returns false when i is out of range.
func (l *DailyLog) Remove(i int) bool {
	if i < 0 || i >= len(l.Meals) {
		return false
	}
	l.Meals = append(l.Meals[:i], l.Meals[i+1:]...)
	l.recompute()
	return true
}

// recompute sums the totals in logging order, matching what successive Add
// calls produce.
func (l *DailyLog) recompute() {
	l.TotalCalories, l.TotalProtein, l.TotalCarbs, l.TotalFats = 0, 0, 0, 0
	for _, m := range l.Meals {
		l.TotalCalories += m.Calories
		l.TotalProtein += m.Protein
		l.TotalCarbs += m.Carbs
		l.TotalFats += m.Fats
	}
}

// Clone returns a copy whose Meals slice does not alias l's.
func (l DailyLog) Clone() DailyLog {
	c := l
	c.Meals = make([]MealEntry, len(l.Meals))
	copy(c.Meals, l.Meals)
	return c
}
