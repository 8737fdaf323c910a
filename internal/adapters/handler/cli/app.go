package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
)

// App holds the dependencies the commands run against.
type App struct {
	Tracker *services.HabitTracker
	Logger  *zap.Logger

	closers []func() error
}

func NewApp(tracker *services.HabitTracker, logger *zap.Logger, closers ...func() error) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Tracker: tracker,
		Logger:  logger,
		closers: closers,
	}
}

// Close runs the registered closers in reverse order and returns the first
// error.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return first
}

// Options are the global flags that influence how the App is built.
type Options struct {
	ConfigPath string
	DataPath   string
	Storage    string
	Verbose    bool
}

// AppFactory builds the App once flags are parsed.
type AppFactory func(ctx context.Context, opts Options) (*App, error)
