package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/librisapp/libris/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	if err := newApp().Run(os.Args); err != nil {
		log.Err(err).Fatal("migrations failed")
	}
}

func newApp() *cli.App {
	var db *bun.DB

	app := &cli.App{
		Name:  "migrations",
		Usage: "manage the libris database schema",
		// The database is opened lazily so help output works without config.
		Before: func(c *cli.Context) error {
			if c.Args().Len() == 0 || c.Args().First() == "help" {
				return nil
			}
			cfg, err := config.New()
			if err != nil {
				return err
			}
			db, err = database.New(cfg)
			return err
		},
		After: func(c *cli.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the bun_migrations bookkeeping tables",
				Action: func(c *cli.Context) error {
					return migrations.NewMigrator(db).Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply every pending migration as one group",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}
					printGroup("Applied", group)
					return nil
				},
			},
			{
				Name:  "mark_applied",
				Usage: "record pending migrations as applied without running them",
				Action: func(c *cli.Context) error {
					group, err := migrations.NewMigrator(db).Migrate(c.Context, migrate.WithNopMigration())
					if err != nil {
						return err
					}
					printGroup("Marked", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the most recent migration groups",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of groups to roll back"},
				},
				Action: func(c *cli.Context) error {
					migrator := migrations.NewMigrator(db)
					for i := 0; i < c.Int("steps"); i++ {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							break
						}
						printGroup("Rolled back", group)
					}
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "scaffold a Go migration in pkg/migrations",
				ArgsUsage: "<words of the migration name>",
				Action: func(c *cli.Context) error {
					name := strings.ToLower(strings.Join(c.Args().Slice(), "_"))
					if name == "" {
						return errors.New("a migration name is required")
					}
					mf, err := migrations.NewMigrator(db).CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return err
					}
					fmt.Printf("Created %s\n", mf.Path)
					return nil
				},
			},
			{
				Name:  "unlock",
				Usage: "release the migration lock left by an interrupted run",
				Action: func(c *cli.Context) error {
					return migrations.NewMigrator(db).Unlock(c.Context)
				},
			},
			{
				Name:  "status",
				Usage: "list every migration and whether it has been applied",
				Action: func(c *cli.Context) error {
					ms, err := migrations.NewMigrator(db).MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					for _, m := range ms {
						if m.GroupID == 0 {
							fmt.Printf("  pending   %s\n", m.Name)
							continue
						}
						fmt.Printf("  group %-3d %s (%s)\n", m.GroupID, m.Name, m.MigratedAt.Format("2006-01-02 15:04"))
					}
					fmt.Printf("%d pending, last group %s\n", len(ms.Unapplied()), ms.LastGroup())
					return nil
				},
			},
		},
	}
	return app
}

func printGroup(verb string, group *migrate.MigrationGroup) {
	if group.IsZero() {
		fmt.Println("Nothing to do")
		return
	}
	fmt.Printf("%s %s\n", verb, group)
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
