package model

import (
	"testing"
	"time"
)

func TestRemoveLeavesNoResidue(t *testing.T) {
	l := NewDailyLog(time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local))
	l.Add(MealEntry{Name: "a", Calories: 0.1, Protein: 0.1})
	l.Add(MealEntry{Name: "b", Calories: 0.2, Protein: 0.2})

	if !l.Remove(0) {
		t.Fatal("Remove(0) = false, want true")
	}
	if l.TotalCalories != 0.2 {
		t.Fatalf("TotalCalories = %v, want exactly 0.2", l.TotalCalories)
	}
	if l.TotalProtein != 0.2 {
		t.Fatalf("TotalProtein = %v, want exactly 0.2", l.TotalProtein)
	}

	l.Remove(0)
	if l.TotalCalories != 0 || l.TotalProtein != 0 || len(l.Meals) != 0 {
		t.Fatalf("after removing everything: calories=%v protein=%v meals=%d", l.TotalCalories, l.TotalProtein, len(l.Meals))
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	l := NewDailyLog(time.Now())
	l.Add(MealEntry{Name: "a", Calories: 100})
	for _, i := range []int{-1, 1, 5} {
		if l.Remove(i) {
			t.Fatalf("Remove(%d) = true on a one-meal log", i)
		}
	}
	if l.TotalCalories != 100 || len(l.Meals) != 1 {
		t.Fatalf("log changed by out-of-range Remove: %+v", l)
	}
}
