// Package pipeline aggregates archived days into history statistics.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/foogie/internal/model"
)

// FilterByTime returns days whose date falls in [since, until]. Records with
// an unparseable date are dropped.
func FilterByTime(days []model.DayRecord, since, until time.Time) []model.DayRecord {
	from := model.DayOf(since)
	to := model.DayOf(until)

	out := make([]model.DayRecord, 0, len(days))
	for _, d := range days {
		if _, err := time.ParseInLocation(model.DateLayout, d.Date, time.Local); err != nil {
			continue
		}
		// YYYY-MM-DD sorts lexically.
		if d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	return out
}

// SortByDate orders days oldest first.
func SortByDate(days []model.DayRecord) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
}

// Aggregate computes history statistics over days, in any order.
func Aggregate(days []model.DayRecord) model.HistoryStats {
	var stats model.HistoryStats
	if len(days) == 0 {
		return stats
	}

	sorted := make([]model.DayRecord, len(days))
	copy(sorted, days)
	SortByDate(sorted)

	var goals, meals, protein, carbs, fats float64
	stats.HighestDay = sorted[0]
	stats.LowestDay = sorted[0]

	streak := 0
	var prev time.Time
	for i, d := range sorted {
		stats.Days++
		stats.TotalCalories += d.TotalCalories
		goals += float64(d.Goal)
		meals += float64(d.MealCount)
		protein += d.TotalProtein
		carbs += d.TotalCarbs
		fats += d.TotalFats

		if d.TotalCalories > stats.HighestDay.TotalCalories {
			stats.HighestDay = d
		}
		if d.TotalCalories < stats.LowestDay.TotalCalories {
			stats.LowestDay = d
		}

		within := d.Goal > 0 && d.TotalCalories <= float64(d.Goal)
		if within {
			stats.DaysWithinGoal++
		} else {
			stats.DaysOverGoal++
		}

		day, _ := time.ParseInLocation(model.DateLayout, d.Date, time.Local)
		consecutive := i > 0 && !prev.IsZero() && day.Equal(prev.AddDate(0, 0, 1))
		switch {
		case !within:
			streak = 0
		case consecutive:
			streak++
		default:
			streak = 1
		}
		if streak > stats.LongestStreak {
			stats.LongestStreak = streak
		}
		prev = day
	}
	stats.CurrentStreak = streak

	n := float64(stats.Days)
	stats.AvgCalories = stats.TotalCalories / n
	stats.AvgGoal = goals / n
	stats.AvgMeals = meals / n
	stats.AvgProtein = protein / n
	stats.AvgCarbs = carbs / n
	stats.AvgFats = fats / n
	stats.WithinGoalRatio = float64(stats.DaysWithinGoal) / n

	return stats
}
