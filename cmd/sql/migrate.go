package sql

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/vcbrates/cmd/env"
	dbpkg "github.com/sig-0/vcbrates/storage/sql"
)

var errMissingDBURL = errors.New("missing DB URL")

// migrateCfg wraps the migrate configuration
type migrateCfg struct {
	rootCfg *sqlCfg
}

// newMigrateCmd creates the migrate command
func newMigrateCmd(rootCfg *sqlCfg) *ffcli.Command {
	cfg := &migrateCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	rootCfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "migrate",
		ShortUsage: "sql migrate [flags] [migration.sql ...]",
		LongHelp:   "Runs the DB migrations. Without arguments, all bundled migrations run in order",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *migrateCfg) exec(ctx context.Context, args []string) error {
	// Load .env
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	dsn := c.rootCfg.dsn
	if dsn == "" {
		dsn = os.Getenv(env.DBURLKey)
	}

	if dsn == "" {
		return fmt.Errorf("%w (set -db-url or %s)", errMissingDBURL, env.DBURLKey)
	}

	names, err := migrationNames(args)
	if err != nil {
		return err
	}

	// Open the DB
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}

	defer func() {
		if err := db.Close(); err != nil {
			fmt.Printf("Unable to gracefully close DB: %s\n", err.Error())
		}
	}()

	// Ping the DB
	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("unable to ping DB: %w", err)
	}

	for _, name := range names {
		sqlBytes, err := dbpkg.SchemaFS.ReadFile(path.Join("schema", name))
		if err != nil {
			return fmt.Errorf("unable to read migration %q: %w", name, err)
		}

		fmt.Printf("Running migration %s...\n", name)

		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("unable to run migration %q: %w", name, err)
		}

		fmt.Printf("Migration %q complete\n", name)
	}

	fmt.Println("All migrations complete!")

	return nil
}

// migrationNames resolves the migrations to run.
// No arguments selects every bundled migration, in lexical order
func migrationNames(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	names, err := fs.Glob(dbpkg.SchemaFS, "schema/*.sql")
	if err != nil {
		return nil, fmt.Errorf("unable to list migrations: %w", err)
	}

	for i, name := range names {
		names[i] = path.Base(name)
	}

	return names, nil
}
