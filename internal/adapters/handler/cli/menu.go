package cli

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

func (r *root) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runMenu(cmd)
		},
	}
}

func (r *root) runMenu(cmd *cobra.Command) error {
	app, err := r.requireApp()
	if err != nil {
		return err
	}

	m := &menu{
		cmd:     cmd,
		app:     app,
		in:      bufio.NewScanner(cmd.InOrStdin()),
		printer: newPrinter(cmd.OutOrStdout()),
	}
	return m.run()
}

// menu is the numbered interactive loop. Each action is followed by a pause
// for Enter. It ends on "7" or when input runs out.
type menu struct {
	cmd     *cobra.Command
	app     *App
	in      *bufio.Scanner
	printer *printer
}

func (m *menu) prompt(label string) (string, bool) {
	m.printer.printf("%s", label)
	if !m.in.Scan() {
		m.printer.println()
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *menu) run() error {
	p := m.printer
	p.println("Welcome to Habit Tracker!")
	p.println("This app helps you build and track your daily and weekly habits.")

	if len(m.app.Tracker.Habits()) == 0 {
		p.println()
		p.println("No habits found. Loading predefined example habits...")
		if err := loadPredefined(m.cmd, m.app); err != nil {
			return err
		}
	}

	for {
		m.showMenu()
		choice, ok := m.prompt("Enter your choice (1-7): ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch choice {
		case "1":
			err = m.create()
		case "2":
			err = m.delete()
		case "3":
			err = m.checkOff()
		case "4":
			p.habitList(m.app.Tracker.Habits(), m.app.Tracker.Today())
		case "5":
			p.summary(services.BuildSummary(domain.StatsInput{
				Habits: m.app.Tracker.Habits(),
				AsOf:   m.app.Tracker.Today(),
			}))
		case "6":
			err = loadPredefined(m.cmd, m.app)
		case "7":
			p.println("Thank you for using Habit Tracker!")
			return nil
		default:
			p.println("Invalid choice! Please enter a number between 1 and 7.")
		}

		if err != nil {
			m.app.Logger.Warn("menu action failed", zap.String("choice", choice), zap.Error(err))
			p.fail("Error: %v", err)
		}

		p.println()
		if _, ok := m.prompt("Press Enter to continue..."); !ok {
			return m.in.Err()
		}
	}
}

func (m *menu) showMenu() {
	p := m.printer
	p.banner("HABIT TRACKER")
	p.println("1. Create a new habit")
	p.println("2. Delete a habit")
	p.println("3. Check off a habit (mark as completed)")
	p.println("4. List all habits")
	p.println("5. View habit statistics")
	p.println("6. Load predefined habits (for testing)")
	p.println("7. Exit")
	p.println(strings.Repeat("=", ruleWidth))
}

func (m *menu) create() error {
	p := m.printer
	p.section("Create New Habit")

	name, ok := m.prompt("Enter habit name: ")
	if !ok {
		return nil
	}
	if name == "" {
		p.println("Habit name cannot be empty!")
		return nil
	}

	p.println("Select periodicity:")
	p.println("1. Daily")
	p.println("2. Weekly")
	choice, ok := m.prompt("Enter choice (1 or 2): ")
	if !ok {
		return nil
	}

	var periodicity domain.Periodicity
	switch choice {
	case "1":
		periodicity = domain.PeriodicityDaily
	case "2":
		periodicity = domain.PeriodicityWeekly
	default:
		p.println("Invalid choice! Please enter 1 or 2.")
		return nil
	}

	habit, err := m.app.Tracker.Create(m.cmd.Context(), name, periodicity.String())
	if err != nil {
		return err
	}
	p.ok("Habit '%s' created successfully!", habit.Name)
	return nil
}

// pick lists the habits and reads a 1-based choice.
func (m *menu) pick(action string) (*domain.Habit, bool) {
	p := m.printer
	habits := m.app.Tracker.Habits()
	if len(habits) == 0 {
		p.printf("No habits to %s!\n", action)
		return nil, false
	}

	p.println("Current habits:")
	p.numbered(habits)

	answer, ok := m.prompt("Enter the number of the habit to " + action + ": ")
	if !ok {
		return nil, false
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		p.println("Please enter a valid number!")
		return nil, false
	}
	if n < 1 || n > len(habits) {
		p.println("Invalid choice!")
		return nil, false
	}
	return habits[n-1], true
}

func (m *menu) delete() error {
	m.printer.section("Delete Habit")
	habit, ok := m.pick("delete")
	if !ok {
		return nil
	}

	if _, err := m.app.Tracker.Delete(m.cmd.Context(), habit.Name); err != nil {
		return err
	}
	m.printer.ok("Habit '%s' deleted successfully!", habit.Name)
	return nil
}

func (m *menu) checkOff() error {
	m.printer.section("Check Off Habit")
	habit, ok := m.pick("check off")
	if !ok {
		return nil
	}

	done, err := m.app.Tracker.CheckOff(m.cmd.Context(), habit.Name)
	if err != nil {
		return err
	}
	if !done {
		m.printer.fail("Failed to check off habit!")
		return nil
	}
	m.printer.ok("'%s' marked as completed!", habit.Name)
	return nil
}
