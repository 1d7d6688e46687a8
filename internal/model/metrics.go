package model

// HistoryStats summarizes a run of archived days.
type HistoryStats struct {
	Days            int
	TotalCalories   float64
	AvgCalories     float64
	AvgGoal         float64
	AvgMeals        float64
	AvgProtein      float64
	AvgCarbs        float64
	AvgFats         float64
	DaysOverGoal    int
	DaysWithinGoal  int
	LongestStreak   int // consecutive calendar days within goal
	CurrentStreak   int // streak ending on the most recent day
	HighestDay      DayRecord
	LowestDay       DayRecord
	WithinGoalRatio float64
}
