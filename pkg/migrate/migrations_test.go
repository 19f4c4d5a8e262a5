package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	if err := migrate.ValidateDir(""); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}
	fsys, err := migrate.Source("")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	embedded, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) != len(onDisk) || len(embedded) == 0 {
		t.Fatalf("embedded %d migrations, disk has %d", len(embedded), len(onDisk))
	}
}

func TestValidateRejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{
		"1_bad.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	if err := migrate.Validate(fsys); err == nil {
		t.Fatal("expected filename error")
	}
	fsys = fstest.MapFS{
		"20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	if err := migrate.Validate(fsys); err == nil {
		t.Fatal("expected duplicate version error")
	}
	fsys = fstest.MapFS{
		"20250101000000_a.sql": {Data: []byte("-- +goose Up\n")},
	}
	if err := migrate.Validate(fsys); err == nil {
		t.Fatal("expected missing down marker error")
	}
}

func TestPricingMigrationEnforcesUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_pricing_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS prices",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_prices_product_location",
		"CREATE TABLE IF NOT EXISTS deals",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_deals_product_location",
		"CHECK (start_at <= end_at)",
		"CREATE TABLE IF NOT EXISTS price_submissions",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEngagementMigrationContainsTables(t *testing.T) {
	content := readMigration(t, "*_create_engagement_tables.sql")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS favorites",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_user_product_price",
		"CREATE TABLE IF NOT EXISTS alerts",
		"CREATE TABLE IF NOT EXISTS reviews",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Store Hours!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_store_hours.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
