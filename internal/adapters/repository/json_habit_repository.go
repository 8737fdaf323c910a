package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

const DefaultJSONPath = "data/habits.json"

var _ domain.HabitRepository = (*JSONHabitRepository)(nil)

// JSONHabitRepository keeps the habits as one JSON array in a single file.
type JSONHabitRepository struct {
	path string
}

// NewJSONHabitRepository creates the parent directory of path if needed.
func NewJSONHabitRepository(path string) (*JSONHabitRepository, error) {
	if path == "" {
		path = DefaultJSONPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return &JSONHabitRepository{path: path}, nil
}

func (r *JSONHabitRepository) Path() string {
	return r.path
}

func (r *JSONHabitRepository) LoadAll(ctx context.Context) ([]*domain.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrStorageNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	var records []domain.HabitRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, r.path, err)
	}

	habits, err := domain.HabitsFromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, r.path, err)
	}

	return habits, nil
}

// SaveAll writes to a temporary file next to the target and renames it over
// the target, so readers see either the old or the new collection.
func (r *JSONHabitRepository) SaveAll(ctx context.Context, habits []*domain.Habit) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(domain.ToRecords(habits), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal habits: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), "."+filepath.Base(r.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}

	return nil
}

func (r *JSONHabitRepository) Close() error {
	return nil
}
