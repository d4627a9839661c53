// Command travelctl runs schema migrations and loads seed data.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"backend-travelapp/internal/config"
	"backend-travelapp/internal/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type cliDeps struct {
	loadConfig func() config.Config
	connect    func(config.Config) (db.Querier, func(), error)
}

func defaultDeps() cliDeps {
	return cliDeps{
		loadConfig: config.Load,
		connect: func(cfg config.Config) (db.Querier, func(), error) {
			pool, err := db.ConnectPostgres(cfg)
			if err != nil {
				return nil, nil, err
			}
			return pool, pool.Close, nil
		},
	}
}

var exit = os.Exit

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}

func newRootCmd(deps cliDeps) *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:           "travelctl",
		Short:         "Operational tasks for the travel app backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL URL (defaults to POSTGRES_URL)")

	// withDB opens a connection for the duration of fn.
	withDB := func(fn func(ctx context.Context, q db.Querier) error) error {
		cfg := deps.loadConfig()
		if dbURL != "" {
			cfg.PostgresURL = dbURL
		}
		q, closeFn, err := deps.connect(cfg)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		if closeFn != nil {
			defer closeFn()
		}
		return fn(context.Background(), q)
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the embedded schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(ctx context.Context, q db.Querier) error {
				applied, err := db.MigrateUp(ctx, q)
				if err != nil {
					return err
				}
				report(cmd.OutOrStdout(), "applied", applied)
				return nil
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDB(func(ctx context.Context, q db.Querier) error {
				reverted, err := db.MigrateDown(ctx, q, steps)
				if err != nil {
					return err
				}
				report(cmd.OutOrStdout(), "reverted", reverted)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, tags and locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(ctx context.Context, q db.Querier) error {
				r, err := seed(ctx, q)
				if err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
					"seeded %d users, %d tags, %d locations\n", r.Users, r.Tags, r.Locations)
				return nil
			})
		},
	}

	migrate.AddCommand(up, down)
	root.AddCommand(migrate, seedCmd)
	return root
}

func report(w io.Writer, verb string, versions []string) {
	if len(versions) == 0 {
		color.New(color.FgYellow).Fprintf(w, "nothing %s\n", verb)
		return
	}
	for _, v := range versions {
		color.New(color.FgGreen).Fprintf(w, "%s %s\n", verb, v)
	}
}
