package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrHabitNameEmpty      = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong    = errors.New("habit name is too long (max 100 chars)")
	ErrHabitNameUntrimmed  = errors.New("habit name has leading or trailing spaces")
	ErrInvalidPeriodicity  = errors.New("invalid periodicity (must be daily or weekly)")
	ErrInvalidDate         = errors.New("invalid date (must be YYYY-MM-DD)")
	ErrDuplicateCompletion = errors.New("duplicate completion date")
)

const MaxNameLen = 100

// Periodicity is how often a habit is expected to be completed.
type Periodicity string

const (
	PeriodicityDaily  Periodicity = "daily"
	PeriodicityWeekly Periodicity = "weekly"
)

func ParsePeriodicity(s string) (Periodicity, error) {
	p := Periodicity(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", ErrInvalidPeriodicity
	}
	return p, nil
}

func (p Periodicity) IsValid() bool {
	switch p {
	case PeriodicityDaily, PeriodicityWeekly:
		return true
	default:
		return false
	}
}

// Gap is the number of days between two consecutive expected completions.
func (p Periodicity) Gap() int {
	if p == PeriodicityWeekly {
		return 7
	}
	return 1
}

func (p Periodicity) String() string {
	return string(p)
}

// Habit is a recurring task and the calendar dates on which it was done.
// CreationDate and every completion are calendar dates as returned by DateOf.
type Habit struct {
	Name         string
	Periodicity  Periodicity
	CreationDate time.Time
	Completions  []time.Time
}

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLen {
		return "", ErrHabitNameTooLong
	}
	return trimmed, nil
}

// NewHabit validates its input and returns a habit with no completions.
// A zero creationDate means today.
func NewHabit(name string, periodicity Periodicity, creationDate time.Time) (*Habit, error) {
	cleanName, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if !periodicity.IsValid() {
		return nil, ErrInvalidPeriodicity
	}

	if creationDate.IsZero() {
		creationDate = Today()
	}

	return &Habit{
		Name:         cleanName,
		Periodicity:  periodicity,
		CreationDate: DateOf(creationDate),
		Completions:  []time.Time{},
	}, nil
}

// Validate checks a habit that was not built through NewHabit.
func (h *Habit) Validate() error {
	cleanName, err := validateName(h.Name)
	if err != nil {
		return err
	}
	if cleanName != h.Name {
		return ErrHabitNameUntrimmed
	}
	if !h.Periodicity.IsValid() {
		return ErrInvalidPeriodicity
	}
	if h.CreationDate.IsZero() || !isCalendarDate(h.CreationDate) {
		return fmt.Errorf("%w: creation date %s", ErrInvalidDate, h.CreationDate)
	}

	seen := make(map[time.Time]bool, len(h.Completions))
	for _, c := range h.Completions {
		if !isCalendarDate(c) {
			return fmt.Errorf("%w: completion %s", ErrInvalidDate, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %s", ErrDuplicateCompletion, FormatDate(c))
		}
		seen[c] = true
	}
	return nil
}

// isCalendarDate reports whether t is already in the form DateOf returns.
func isCalendarDate(t time.Time) bool {
	return t.Location() == time.UTC && t.Equal(DateOf(t))
}

// CheckOff marks the habit done on day. It reports false when day was
// already recorded.
func (h *Habit) CheckOff(day time.Time) bool {
	if h.CompletedOn(day) {
		return false
	}
	h.Completions = append(h.Completions, DateOf(day))
	return true
}

func (h *Habit) CompletedOn(day time.Time) bool {
	target := DateOf(day)
	for _, c := range h.Completions {
		if c.Equal(target) {
			return true
		}
	}
	return false
}

func (h *Habit) TotalCompletions() int {
	return len(h.Completions)
}

func (h *Habit) LastCompletion() (time.Time, bool) {
	if len(h.Completions) == 0 {
		return time.Time{}, false
	}
	return slices.MaxFunc(h.Completions, func(a, b time.Time) int { return a.Compare(b) }), true
}

func (h *Habit) sortedCompletions() []time.Time {
	dates := slices.Clone(h.Completions)
	slices.SortFunc(dates, func(a, b time.Time) int { return b.Compare(a) })
	return dates
}

// CurrentStreak counts completions backward from asOf, one per period. The
// most recent completion must fall on asOf itself, and every earlier one
// exactly one gap before the one after it; the count stops at the first
// completion that does not.
func (h *Habit) CurrentStreak(asOf time.Time) int {
	if len(h.Completions) == 0 {
		return 0
	}

	gap := h.Periodicity.Gap()
	expected := DateOf(asOf)
	streak := 0

	for _, d := range h.sortedCompletions() {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = AddDays(d, -gap)
	}

	return streak
}

// LongestStreak is the longest run of completions spaced exactly one gap
// apart, anywhere in the history.
func (h *Habit) LongestStreak() int {
	dates := h.sortedCompletions()
	if len(dates) == 0 {
		return 0
	}

	gap := h.Periodicity.Gap()
	longest := 1
	run := 1

	for i := 0; i < len(dates)-1; i++ {
		if AddDays(dates[i], -gap).Equal(dates[i+1]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return longest
}

func (h *Habit) Clone() *Habit {
	clone := *h
	clone.Completions = slices.Clone(h.Completions)
	if clone.Completions == nil {
		clone.Completions = []time.Time{}
	}
	return &clone
}
