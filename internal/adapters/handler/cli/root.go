package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoApp = errors.New("application not initialized")

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type root struct {
	cmd     *cobra.Command
	factory AppFactory
	opts    Options
	app     *App
	info    commandContext
}

func newRoot(factory AppFactory) *root {
	r := &root{factory: factory}

	r.cmd = &cobra.Command{
		Use:   "kanso",
		Short: "Kanso - track daily and weekly habits",
		Long: `Kanso helps you build and track your daily and weekly habits.

Check habits off as you do them, and kanso keeps your current streaks.
Run without arguments to open the interactive menu.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
		PersistentPostRun: r.finish,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runMenu(cmd)
		},
	}

	flags := r.cmd.PersistentFlags()
	flags.StringVarP(&r.opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	flags.StringVar(&r.opts.DataPath, "data", "", "habit storage path (overrides KANSO_DATA_PATH)")
	flags.StringVar(&r.opts.Storage, "storage", "", "storage driver: json, sqlite or memory")
	flags.BoolVarP(&r.opts.Verbose, "verbose", "v", false, "verbose output")

	r.cmd.AddCommand(
		r.createCmd(),
		r.deleteCmd(),
		r.doneCmd(),
		r.listCmd(),
		r.statsCmd(),
		r.seedCmd(),
		r.exportCmd(),
		r.menuCmd(),
	)

	return r
}

func (r *root) setup(cmd *cobra.Command, args []string) error {
	if r.app != nil {
		return nil
	}

	app, err := r.factory(cmd.Context(), r.opts)
	if err != nil {
		return err
	}
	r.app = app

	r.info = commandContext{
		correlationID: uuid.New(),
		startedAt:     time.Now(),
	}
	r.app.Logger.Debug("command start",
		zap.String("command", cmd.CommandPath()),
		zap.String("correlation_id", r.info.correlationID.String()),
	)
	return nil
}

func (r *root) finish(cmd *cobra.Command, args []string) {
	if r.app == nil {
		return
	}
	r.app.Logger.Debug("command end",
		zap.String("command", cmd.CommandPath()),
		zap.String("correlation_id", r.info.correlationID.String()),
		zap.Int64("duration_ms", time.Since(r.info.startedAt).Milliseconds()),
	)
}

func (r *root) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

func (r *root) requireApp() (*App, error) {
	if r.app == nil {
		return nil, errNoApp
	}
	return r.app, nil
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute(ctx context.Context, factory AppFactory) int {
	return run(ctx, factory, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, factory AppFactory, args []string, in io.Reader, out, errOut io.Writer) int {
	if args == nil {
		args = []string{}
	}

	r := newRoot(factory)
	r.cmd.SetArgs(args)
	r.cmd.SetIn(in)
	r.cmd.SetOut(out)
	r.cmd.SetErr(errOut)

	err := r.cmd.ExecuteContext(ctx)
	if closeErr := r.close(); err == nil {
		err = closeErr
	}

	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
