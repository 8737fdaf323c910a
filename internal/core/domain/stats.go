package domain

import "time"

type Summary struct {
	AsOf          string      `json:"as_of" yaml:"as_of"`
	TotalHabits   int         `json:"total_habits" yaml:"total_habits"`
	DailyHabits   int         `json:"daily_habits" yaml:"daily_habits"`
	WeeklyHabits  int         `json:"weekly_habits" yaml:"weekly_habits"`
	LongestStreak int         `json:"longest_current_streak" yaml:"longest_current_streak"`
	HabitStats    []HabitStat `json:"habits" yaml:"habits"`
}

type HabitStat struct {
	Name             string      `json:"name" yaml:"name"`
	Periodicity      Periodicity `json:"periodicity" yaml:"periodicity"`
	CreationDate     string      `json:"creation_date" yaml:"creation_date"`
	CurrentStreak    int         `json:"current_streak" yaml:"current_streak"`
	LongestStreak    int         `json:"longest_streak" yaml:"longest_streak"`
	TotalCompletions int         `json:"total_completions" yaml:"total_completions"`
	CompletedToday   bool        `json:"completed_today" yaml:"completed_today"`
}

type StatsInput struct {
	Habits []*Habit
	AsOf   time.Time
}
