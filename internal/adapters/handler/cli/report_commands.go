package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var errUnknownFormat = errors.New("unknown output format")

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func (r *root) statsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"analytics"},
		Short:   "Show habit statistics and streaks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}

			summary := services.BuildSummary(domain.StatsInput{
				Habits: app.Tracker.Habits(),
				AsOf:   app.Tracker.Today(),
			})

			if format == formatText {
				newPrinter(cmd.OutOrStdout()).summary(summary)
				return nil
			}
			return encode(cmd.OutOrStdout(), format, summary)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

func (r *root) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all habits with the predefined example habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}
			return loadPredefined(cmd, app)
		},
	}
}

func loadPredefined(cmd *cobra.Command, app *App) error {
	habits := services.PredefinedHabits(app.Tracker.Today())
	if err := app.Tracker.Replace(cmd.Context(), habits); err != nil {
		return fmt.Errorf("cannot load predefined habits: %w", err)
	}
	newPrinter(cmd.OutOrStdout()).seeded(habits)
	return nil
}

func (r *root) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export habits in the storage record format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.requireApp()
			if err != nil {
				return err
			}

			records := domain.ToRecords(app.Tracker.Habits())

			if output == "" {
				return encode(cmd.OutOrStdout(), format, records)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("cannot create export file: %w", err)
			}
			if err := encode(f, format, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).ok("Exported %d habits to %s", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
