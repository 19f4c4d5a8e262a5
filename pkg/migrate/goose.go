package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where `migrate -cmd=create` writes new files.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source returns the migrations baked into the binary when dir is empty and
// the files under dir otherwise.
func Source(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, "migrations")
}

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	// Goose owns the Postgres schema; SQLite deployments use AutoMigrate.
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes up, down or status and reports each step to out.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, command string, out io.Writer) error {
	provider, err := newProvider(db, fsys)
	if err != nil {
		return err
	}
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		report(out, results...)
		return wrap("up", err)
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			report(out, result)
		}
		return wrap("down", err)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return wrap("status", err)
		}
		for _, st := range statuses {
			applied := "-"
			if !st.AppliedAt.IsZero() {
				applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-8s %-20s %s\n", st.State, applied, st.Source.Path)
		}
		return nil
	}
	return fmt.Errorf("unsupported goose command %q", command)
}

// MigrateToVersion moves the schema up or down to the YYYYMMDDHHMMSS version.
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, version string, out io.Writer) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", version, err)
	}
	provider, err := newProvider(db, fsys)
	if err != nil {
		return err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	report(out, results...)
	return wrap(fmt.Sprintf("migrate %d -> %d", current, target), err)
}

func report(out io.Writer, results ...*goose.MigrationResult) {
	if out == nil {
		return
	}
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fmt.Fprintf(out, "%-4s %s (%s)\n", r.Direction, r.Source.Path, r.Duration.Round(1e6))
	}
}

func wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("goose %s: %w", step, err)
}
