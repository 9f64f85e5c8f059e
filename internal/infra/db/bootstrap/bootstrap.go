// Package bootstrap establishes the persistent database state the bot needs:
// a login role, the database itself, privileges on its public schema, and the
// table schema. Every operation is idempotent, so the whole sequence is safe
// to re-run against an already-initialized cluster.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Options describes the target state.
type Options struct {
	Role     string
	Password string
	Database string
	// DefaultPrivileges also issues ALTER DEFAULT PRIVILEGES statements so
	// objects created after bootstrap inherit the grants. Off by default:
	// without it, only objects existing at bootstrap time are covered, and a
	// table created later needs an explicit grant.
	DefaultPrivileges bool
}

// Run connects twice: once to the maintenance database to ensure role and
// database, then to the target database to apply grants and the schema.
func Run(ctx context.Context, adminDSN string, opts Options, log *zerolog.Logger) error {
	if opts.Role == "" || opts.Database == "" {
		return fmt.Errorf("bootstrap: role and database are required")
	}

	admin, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		return fmt.Errorf("connect maintenance db: %w", err)
	}
	defer admin.Close(ctx)

	created, err := EnsureRole(ctx, admin, opts.Role, opts.Password)
	if err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}
	log.Info().Str("role", opts.Role).Bool("created", created).Msg("role ensured")

	created, err = EnsureDatabase(ctx, admin, opts.Database, opts.Role)
	if err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}
	log.Info().Str("database", opts.Database).Bool("created", created).Msg("database ensured")

	targetDSN, err := replaceDatabase(adminDSN, opts.Database)
	if err != nil {
		return err
	}
	target, err := pgx.Connect(ctx, targetDSN)
	if err != nil {
		return fmt.Errorf("connect target db: %w", err)
	}
	defer target.Close(ctx)

	if err := Grant(ctx, target, opts.Role); err != nil {
		return fmt.Errorf("grant: %w", err)
	}
	log.Info().Str("role", opts.Role).Msg("grants applied")

	if opts.DefaultPrivileges {
		if err := GrantDefaultPrivileges(ctx, target, opts.Role); err != nil {
			return fmt.Errorf("default privileges: %w", err)
		}
		log.Info().Str("role", opts.Role).Msg("default privileges applied")
	}
	return nil
}

// EnsureRole creates a login role unless it already exists.
func EnsureRole(ctx context.Context, conn *pgx.Conn, role, password string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)`, role).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	_, err = conn.Exec(ctx, createRoleSQL(role, password))
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureDatabase creates the database unless it already exists. The CREATE
// DATABASE statement is issued over the same plain connection — outside any
// transaction — because the engine rejects it inside a transaction block.
func EnsureDatabase(ctx context.Context, conn *pgx.Conn, name, owner string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	_, err = conn.Exec(ctx, createDatabaseSQL(name, owner))
	if err != nil {
		return false, err
	}
	return true, nil
}

// Grant applies blanket privileges on the public schema and every object
// currently in it. Re-granting is a no-op, so this refreshes on re-run.
func Grant(ctx context.Context, conn *pgx.Conn, role string) error {
	for _, stmt := range GrantStatements(role) {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// GrantDefaultPrivileges makes future tables/sequences/functions inherit the
// grants as well.
func GrantDefaultPrivileges(ctx context.Context, conn *pgx.Conn, role string) error {
	for _, stmt := range DefaultPrivilegeStatements(role) {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// GrantStatements returns the statements covering objects that exist now.
func GrantStatements(role string) []string {
	r := pgx.Identifier{role}.Sanitize()
	return []string{
		`GRANT ALL ON SCHEMA public TO ` + r,
		`GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA public TO ` + r,
		`GRANT ALL PRIVILEGES ON ALL SEQUENCES IN SCHEMA public TO ` + r,
		`GRANT ALL PRIVILEGES ON ALL FUNCTIONS IN SCHEMA public TO ` + r,
	}
}

// DefaultPrivilegeStatements returns the statements covering objects created
// later.
func DefaultPrivilegeStatements(role string) []string {
	r := pgx.Identifier{role}.Sanitize()
	return []string{
		`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL PRIVILEGES ON TABLES TO ` + r,
		`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL PRIVILEGES ON SEQUENCES TO ` + r,
		`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL PRIVILEGES ON FUNCTIONS TO ` + r,
	}
}

func createRoleSQL(role, password string) string {
	return fmt.Sprintf(`CREATE ROLE %s WITH LOGIN PASSWORD %s`,
		pgx.Identifier{role}.Sanitize(), quoteLiteral(password))
}

func createDatabaseSQL(name, owner string) string {
	s := `CREATE DATABASE ` + pgx.Identifier{name}.Sanitize()
	if owner != "" {
		s += ` OWNER ` + pgx.Identifier{owner}.Sanitize()
	}
	return s
}

// quoteLiteral renders a string constant for DDL statements that cannot take
// bind parameters.
func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

// replaceDatabase swaps the database path of a postgres:// DSN.
func replaceDatabase(dsn, database string) (string, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse admin dsn: %w", err)
	}
	// Rebuild in keyword/value form, which pgx.Connect accepts.
	parts := []string{
		"host=" + cfg.Host,
		fmt.Sprintf("port=%d", cfg.Port),
		"dbname=" + database,
	}
	if cfg.User != "" {
		parts = append(parts, "user="+cfg.User)
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+cfg.Password)
	}
	if cfg.TLSConfig == nil {
		parts = append(parts, "sslmode=disable")
	}
	return strings.Join(parts, " "), nil
}
