package domain

import (
	"fmt"
	"time"
)

// HabitRecord is the storage form of a Habit. Dates are YYYY-MM-DD strings.
type HabitRecord struct {
	Name         string   `json:"name" yaml:"name"`
	Periodicity  string   `json:"periodicity" yaml:"periodicity"`
	CreationDate string   `json:"creation_date" yaml:"creation_date"`
	Completions  []string `json:"completions" yaml:"completions"`
}

func (h *Habit) ToRecord() HabitRecord {
	completions := make([]string, 0, len(h.Completions))
	for _, c := range h.Completions {
		completions = append(completions, FormatDate(c))
	}

	return HabitRecord{
		Name:         h.Name,
		Periodicity:  h.Periodicity.String(),
		CreationDate: FormatDate(h.CreationDate),
		Completions:  completions,
	}
}

// HabitFromRecord rebuilds a habit, preserving completion order. A missing
// creation date means today. Names are taken as stored; one with surrounding
// spaces is rejected rather than trimmed.
func HabitFromRecord(rec HabitRecord) (*Habit, error) {
	periodicity, err := ParsePeriodicity(rec.Periodicity)
	if err != nil {
		return nil, fmt.Errorf("habit %q: %w", rec.Name, err)
	}

	var created time.Time
	if rec.CreationDate != "" {
		created, err = ParseDate(rec.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("habit %q creation date: %w", rec.Name, err)
		}
	}

	h, err := NewHabit(rec.Name, periodicity, created)
	if err != nil {
		return nil, err
	}
	if h.Name != rec.Name {
		return nil, fmt.Errorf("habit %q: %w", rec.Name, ErrHabitNameUntrimmed)
	}

	seen := make(map[time.Time]bool, len(rec.Completions))
	for _, raw := range rec.Completions {
		day, err := ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("habit %q completion: %w", rec.Name, err)
		}
		if seen[day] {
			return nil, fmt.Errorf("habit %q: %w: %s", rec.Name, ErrDuplicateCompletion, raw)
		}
		seen[day] = true
		h.Completions = append(h.Completions, day)
	}

	return h, nil
}

func ToRecords(habits []*Habit) []HabitRecord {
	records := make([]HabitRecord, 0, len(habits))
	for _, h := range habits {
		records = append(records, h.ToRecord())
	}
	return records
}

func HabitsFromRecords(records []HabitRecord) ([]*Habit, error) {
	habits := make([]*Habit, 0, len(records))
	for i, rec := range records {
		h, err := HabitFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		habits = append(habits, h)
	}
	return habits, nil
}
