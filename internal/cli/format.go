// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatCalories renders a calorie amount rounded to a whole number.
// e.g., 1234.6 -> "1,235 kcal"
func FormatCalories(c float64) string {
	return FormatNumber(int64(math.Round(c))) + " kcal"
}

// FormatSignedCalories is FormatCalories with an explicit sign, used for
// remaining budget which goes negative past the goal.
func FormatSignedCalories(c float64) string {
	if c < 0 {
		return "-" + FormatCalories(-c)
	}
	return "+" + FormatCalories(c)
}

// FormatGrams formats a macro amount; whole numbers drop the decimal.
func FormatGrams(g float64) string {
	if g == math.Trunc(g) {
		return strconv.FormatFloat(g, 'f', 0, 64) + "g"
	}
	return strconv.FormatFloat(g, 'f', 1, 64) + "g"
}

// FormatPercent formats a whole-number percentage.
func FormatPercent(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// FormatServings renders a servings multiplier, e.g. 1.5 -> "1.5x".
func FormatServings(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64) + "x"
}

// FormatAgo renders t relative to now, e.g. "3 hours ago".
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDate renders a YYYY-MM-DD date with its weekday, e.g. "Mon 2024-03-04".
// Unparseable input is returned as is.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return FormatDayOfWeek(int(t.Weekday())) + " " + date
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
