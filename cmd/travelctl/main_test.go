package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-travelapp/internal/config"
	"backend-travelapp/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

func mockDeps(t *testing.T) (cliDeps, pgxmock.PgxPoolIface, *config.Config) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	var seen config.Config
	deps := cliDeps{
		loadConfig: func() config.Config { return config.Config{PostgresURL: "postgres://from-env"} },
		connect: func(cfg config.Config) (db.Querier, func(), error) {
			seen = cfg
			return mock, nil, nil
		},
	}
	return deps, mock, &seen
}

func execute(t *testing.T, deps cliDeps, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateUpReportsApplied(t *testing.T) {
	deps, mock, seen := mockDeps(t)
	migrations, _ := db.Migrations()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).WillReturnRows(pgxmock.NewRows([]string{"version"}))
	for _, m := range migrations {
		mock.ExpectBegin()
		mock.ExpectExec(`CREATE TABLE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs(m.Version, m.Name).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
	}

	out, err := execute(t, deps, "migrate", "up", "--db", "postgres://override")
	if err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if !strings.Contains(out, "applied 0001") {
		t.Fatalf("unexpected output %q", out)
	}
	if seen.PostgresURL != "postgres://override" {
		t.Fatalf("expected --db to override config, got %q", seen.PostgresURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrateDownNothingApplied(t *testing.T) {
	deps, mock, seen := mockDeps(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).WillReturnRows(pgxmock.NewRows([]string{"version"}))

	out, err := execute(t, deps, "migrate", "down", "--steps", "2")
	if err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if !strings.Contains(out, "nothing reverted") {
		t.Fatalf("unexpected output %q", out)
	}
	if seen.PostgresURL != "postgres://from-env" {
		t.Fatalf("expected config url, got %q", seen.PostgresURL)
	}
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	deps, _, _ := mockDeps(t)
	if _, err := execute(t, deps, "migrate", "down", "--steps", "0"); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}

func TestConnectFailure(t *testing.T) {
	deps := cliDeps{
		loadConfig: func() config.Config { return config.Config{} },
		connect: func(config.Config) (db.Querier, func(), error) {
			return nil, nil, errors.New("refused")
		},
	}
	_, err := execute(t, deps, "seed")
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	deps, mock, _ := mockDeps(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	for _, name := range seedTags {
		mock.ExpectQuery(`SELECT id, name, created_at FROM tags WHERE name=\$1`).WithArgs(name).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow("tag-"+name, name, now))
	}
	mock.ExpectQuery(`FROM locations\s+WHERE country=\$1`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "country", "region", "city", "description", "created_at"}).
			AddRow("loc-1", "Brasil", "Norte", "Manaus", "Encontro das Águas", now))

	out, err := execute(t, deps, "seed")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "seeded 1 users, 2 tags, 1 locations") {
		t.Fatalf("unexpected output %q", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDefaultDeps(t *testing.T) {
	deps := defaultDeps()
	if deps.loadConfig == nil || deps.connect == nil {
		t.Fatalf("expected default deps")
	}
}
