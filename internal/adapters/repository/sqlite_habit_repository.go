package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

const DefaultSQLitePath = "data/habits.db"

var _ domain.HabitRepository = (*SQLiteHabitRepository)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS habits (
    position      INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    periodicity   TEXT NOT NULL,
    creation_date TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS completions (
    habit_position INTEGER NOT NULL REFERENCES habits(position) ON DELETE CASCADE,
    seq            INTEGER NOT NULL,
    day            TEXT NOT NULL,
    PRIMARY KEY (habit_position, seq)
);
CREATE TABLE IF NOT EXISTS kanso_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// SQLiteHabitRepository stores the collection in two tables; habit order is
// the position column and completion order the seq column.
type SQLiteHabitRepository struct {
	path    string
	db      *sqlx.DB
	corrupt error
}

type habitRow struct {
	Position     int    `db:"position"`
	Name         string `db:"name"`
	Periodicity  string `db:"periodicity"`
	CreationDate string `db:"creation_date"`
}

type completionRow struct {
	HabitPosition int    `db:"habit_position"`
	Day           string `db:"day"`
}

// NewSQLiteHabitRepository opens (or creates) the database at path and
// ensures the schema exists. A file that is not a usable SQLite database
// does not fail construction: LoadAll reports it as corrupt and the next
// SaveAll replaces it.
func NewSQLiteHabitRepository(ctx context.Context, path string) (*SQLiteHabitRepository, error) {
	if path == "" {
		path = DefaultSQLitePath
	}

	if dir := filepath.Dir(sqliteFile(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	r := &SQLiteHabitRepository{path: path}

	db, err := openSQLite(ctx, path)
	if err != nil {
		if !isCorruptDB(err) {
			return nil, err
		}
		r.corrupt = fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, path, err)
		return r, nil
	}

	r.db = db
	return r, nil
}

func openSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// sqliteFile strips DSN parameters from path.
func sqliteFile(path string) string {
	file, _, _ := strings.Cut(path, "?")
	return file
}

func isCorruptDB(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	default:
		return false
	}
}

// reset replaces an unreadable database file with a fresh one.
func (r *SQLiteHabitRepository) reset(ctx context.Context) error {
	file := sqliteFile(r.path)
	for _, name := range []string{file, file + "-journal", file + "-wal", file + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove corrupt database %s: %w", name, err)
		}
	}

	db, err := openSQLite(ctx, r.path)
	if err != nil {
		return err
	}
	r.db = db
	r.corrupt = nil
	return nil
}

func (r *SQLiteHabitRepository) LoadAll(ctx context.Context) ([]*domain.Habit, error) {
	if r.corrupt != nil {
		return nil, r.corrupt
	}

	var marker string
	err := r.db.GetContext(ctx, &marker, `SELECT value FROM kanso_meta WHERE key = 'saved'`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStorageNotFound
		}
		return nil, r.queryError(err)
	}

	var habits []habitRow
	if err := r.db.SelectContext(ctx, &habits,
		`SELECT position, name, periodicity, creation_date FROM habits ORDER BY position ASC`); err != nil {
		return nil, r.queryError(err)
	}

	var completions []completionRow
	if err := r.db.SelectContext(ctx, &completions,
		`SELECT habit_position, day FROM completions ORDER BY habit_position ASC, seq ASC`); err != nil {
		return nil, r.queryError(err)
	}

	byHabit := make(map[int][]string, len(habits))
	for _, c := range completions {
		byHabit[c.HabitPosition] = append(byHabit[c.HabitPosition], c.Day)
	}

	records := make([]domain.HabitRecord, 0, len(habits))
	for _, h := range habits {
		records = append(records, domain.HabitRecord{
			Name:         h.Name,
			Periodicity:  h.Periodicity,
			CreationDate: h.CreationDate,
			Completions:  byHabit[h.Position],
		})
	}

	result, err := domain.HabitsFromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	return result, nil
}

func (r *SQLiteHabitRepository) queryError(err error) error {
	if isCorruptDB(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, r.path, err)
	}
	return fmt.Errorf("query error: %w", err)
}

// SaveAll rewrites both tables in a single transaction.
func (r *SQLiteHabitRepository) SaveAll(ctx context.Context, habits []*domain.Habit) error {
	if r.db == nil {
		if err := r.reset(ctx); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM completions`); err != nil {
		return fmt.Errorf("failed to clear completions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM habits`); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}

	for pos, h := range habits {
		rec := h.ToRecord()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO habits (position, name, periodicity, creation_date) VALUES (?, ?, ?, ?)`,
			pos, rec.Name, rec.Periodicity, rec.CreationDate,
		); err != nil {
			return fmt.Errorf("failed to insert habit %q: %w", rec.Name, err)
		}

		for seq, day := range rec.Completions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO completions (habit_position, seq, day) VALUES (?, ?, ?)`,
				pos, seq, day,
			); err != nil {
				return fmt.Errorf("failed to insert completion for %q: %w", rec.Name, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kanso_meta (key, value) VALUES ('saved', '1')
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`); err != nil {
		return fmt.Errorf("failed to mark storage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *SQLiteHabitRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
