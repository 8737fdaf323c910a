package services

import (
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

type predefinedHabit struct {
	name        string
	periodicity domain.Periodicity
	count       int
	stepDays    int
}

var predefinedHabits = []predefinedHabit{
	{"Drink Water", domain.PeriodicityDaily, 28, 1},
	{"Call Parents", domain.PeriodicityWeekly, 4, 7},
	{"Exercise", domain.PeriodicityDaily, 14, 2},
	{"Read Book", domain.PeriodicityDaily, 10, 3},
	{"Clean Room", domain.PeriodicityWeekly, 4, 7},
}

// PredefinedHabits returns five example habits created four weeks before
// today, with completions counting back from today.
func PredefinedHabits(today time.Time) []*domain.Habit {
	today = domain.DateOf(today)
	created := domain.AddDays(today, -28)

	habits := make([]*domain.Habit, 0, len(predefinedHabits))
	for _, p := range predefinedHabits {
		h := &domain.Habit{
			Name:         p.name,
			Periodicity:  p.periodicity,
			CreationDate: created,
			Completions:  make([]time.Time, 0, p.count),
		}
		for i := 0; i < p.count; i++ {
			h.CheckOff(domain.AddDays(today, -i*p.stepDays))
		}
		habits = append(habits, h)
	}
	return habits
}
