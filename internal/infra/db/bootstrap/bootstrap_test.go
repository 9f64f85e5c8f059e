package bootstrap

import (
	"strings"
	"testing"
)

func TestCreateRoleSQL(t *testing.T) {
	got := createRoleSQL("bot_user", "secret")
	want := `CREATE ROLE "bot_user" WITH LOGIN PASSWORD 'secret'`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCreateRoleSQL_EscapesPassword(t *testing.T) {
	got := createRoleSQL("bot_user", "it's")
	if !strings.Contains(got, `'it''s'`) {
		t.Errorf("single quote not doubled: %q", got)
	}
}

func TestCreateDatabaseSQL(t *testing.T) {
	got := createDatabaseSQL("telegram_bot", "bot_user")
	want := `CREATE DATABASE "telegram_bot" OWNER "bot_user"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := createDatabaseSQL("telegram_bot", ""); strings.Contains(got, "OWNER") {
		t.Errorf("empty owner must be omitted: %q", got)
	}
}

func TestIdentifierSanitizing(t *testing.T) {
	// A hostile role name must end up quoted, not spliced into the statement.
	got := createRoleSQL(`bot"; DROP TABLE players; --`, "pw")
	if !strings.HasPrefix(got, `CREATE ROLE "bot""; DROP TABLE players; --"`) {
		t.Errorf("identifier not sanitized: %q", got)
	}
}

func TestPlayerStatsSchemaBoundsADR(t *testing.T) {
	// The application validates ADR on input; the table enforces the same
	// range so rows written by other tools cannot skew balancing.
	if !strings.Contains(createPlayerStatsTable, "CHECK (adr >= 0 AND adr <= 150)") {
		t.Errorf("adr column must carry the range constraint:\n%s", createPlayerStatsTable)
	}
}

func TestGrantStatements(t *testing.T) {
	stmts := GrantStatements("bot_user")
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	wantFragments := []string{
		`GRANT ALL ON SCHEMA public`,
		`ON ALL TABLES IN SCHEMA public`,
		`ON ALL SEQUENCES IN SCHEMA public`,
		`ON ALL FUNCTIONS IN SCHEMA public`,
	}
	for i, frag := range wantFragments {
		if !strings.Contains(stmts[i], frag) {
			t.Errorf("statement %d missing %q: %q", i, frag, stmts[i])
		}
		if !strings.HasSuffix(stmts[i], `TO "bot_user"`) {
			t.Errorf("statement %d must grant to the role: %q", i, stmts[i])
		}
	}
}

func TestDefaultPrivilegeStatements(t *testing.T) {
	stmts := DefaultPrivilegeStatements("bot_user")
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	for _, s := range stmts {
		if !strings.HasPrefix(s, "ALTER DEFAULT PRIVILEGES IN SCHEMA public") {
			t.Errorf("unexpected statement: %q", s)
		}
	}
}

func TestReplaceDatabase(t *testing.T) {
	dsn, err := replaceDatabase("postgres://admin:pw@db:5432/postgres?sslmode=disable", "telegram_bot")
	if err != nil {
		t.Fatalf("replaceDatabase failed: %v", err)
	}
	for _, frag := range []string{"host=db", "port=5432", "dbname=telegram_bot", "user=admin", "password=pw", "sslmode=disable"} {
		if !strings.Contains(dsn, frag) {
			t.Errorf("missing %q in %q", frag, dsn)
		}
	}
}
