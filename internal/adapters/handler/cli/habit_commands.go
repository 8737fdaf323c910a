package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

func (r *root) createCmd() *cobra.Command {
	var periodicity string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new habit",
		Example: `  kanso create "Drink Water"
  kanso create "Call Parents" --periodicity weekly`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			habit, err := app.Tracker.Create(cmd.Context(), name, periodicity)
			if err != nil {
				return fmt.Errorf("cannot create habit: %w", err)
			}

			newPrinter(cmd.OutOrStdout()).ok("Habit '%s' created successfully!", habit.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&periodicity, "periodicity", "p", string(domain.PeriodicityDaily), "daily or weekly")
	return cmd
}

func (r *root) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete every habit with the given name",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			removed, err := app.Tracker.Delete(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%w: %q", domain.ErrHabitNotFound, name)
			}

			newPrinter(cmd.OutOrStdout()).ok("Habit '%s' deleted successfully!", name)
			return nil
		},
	}
}

func (r *root) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done NAME",
		Aliases: []string{"check", "checkoff"},
		Short:   "Mark a habit as completed today",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			ok, err := app.Tracker.CheckOff(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrHabitNotFound, name)
			}

			habit, _ := app.Tracker.Find(name)
			p := newPrinter(cmd.OutOrStdout())
			p.ok("'%s' marked as completed!", name)
			p.printf("Current streak: %d\n", habit.CurrentStreak(app.Tracker.Today()))
			return nil
		},
	}
}

func (r *root) listCmd() *cobra.Command {
	var periodicity string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List habits with their streaks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}

			habits := services.AllHabits(app.Tracker.Habits())
			if periodicity != "" {
				p, err := domain.ParsePeriodicity(periodicity)
				if err != nil {
					return err
				}
				habits = services.FilterByPeriodicity(habits, p)
			}

			newPrinter(cmd.OutOrStdout()).habitList(habits, app.Tracker.Today())
			return nil
		},
	}

	cmd.Flags().StringVarP(&periodicity, "periodicity", "p", "", "only show daily or weekly habits")
	return cmd
}
