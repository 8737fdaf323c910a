package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

const ruleWidth = 50

type printer struct {
	out     io.Writer
	heading lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// newPrinter binds styles to out so colors are only emitted on terminals.
func newPrinter(out io.Writer) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:     out,
		heading: r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

func (p *printer) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *printer) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *printer) section(title string) {
	p.println()
	p.println(p.heading.Render("--- " + title + " ---"))
}

func (p *printer) banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	pad := (ruleWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	p.println()
	p.println(rule)
	p.println(p.heading.Render(strings.Repeat(" ", pad) + title))
	p.println(rule)
}

func (p *printer) ok(format string, a ...any) {
	p.println(p.success.Render(fmt.Sprintf(format, a...)))
}

func (p *printer) fail(format string, a ...any) {
	p.println(p.failure.Render(fmt.Sprintf(format, a...)))
}

func (p *printer) numbered(habits []*domain.Habit) {
	for i, h := range habits {
		p.printf("%d. %s (%s)\n", i+1, h.Name, h.Periodicity)
	}
}

func (p *printer) habitList(habits []*domain.Habit, asOf time.Time) {
	if len(habits) == 0 {
		p.println("No habits found!")
		return
	}

	p.section("Your Habits")
	for i, h := range habits {
		p.printf("%d. %s\n", i+1, h.Name)
		p.printf("   Periodicity: %s\n", h.Periodicity)
		p.printf("   Created: %s\n", domain.FormatDate(h.CreationDate))
		p.printf("   Current streak: %d\n", h.CurrentStreak(asOf))
		p.printf("   Total completions: %d\n", h.TotalCompletions())
		p.println()
	}
}

func (p *printer) summary(s domain.Summary) {
	if s.TotalHabits == 0 {
		p.println("No habits to analyze!")
		return
	}

	p.section("Habit Statistics")
	p.printf("Total habits: %d\n", s.TotalHabits)
	p.printf("Daily habits: %d\n", s.DailyHabits)
	p.printf("Weekly habits: %d\n", s.WeeklyHabits)
	p.println()
	p.printf("Longest current streak: %d\n", s.LongestStreak)
	p.println()
	p.println("Current streaks by habit:")
	for _, st := range s.HabitStats {
		p.printf("  %s: %d (best %d)\n", st.Name, st.CurrentStreak, st.LongestStreak)
	}
}

func (p *printer) seeded(habits []*domain.Habit) {
	p.section("Loading Predefined Habits")
	p.printf("Loading %d predefined habits with 4 weeks of example data:\n", len(habits))
	for _, h := range habits {
		p.printf("  • %s (%s) - %d completions\n", h.Name, h.Periodicity, h.TotalCompletions())
	}
	p.println()
	p.ok("Predefined habits loaded successfully!")
	p.println("You can now view, check off, and analyze these example habits.")
}
