package main

import (
	"fmt"
	"os"

	"github.com/linskybing/survey-platform/internal/application"
	"github.com/linskybing/survey-platform/internal/config"
	"github.com/linskybing/survey-platform/internal/config/db"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logrus.New()
	app := &cli.App{
		Name:  "formctl",
		Usage: "operator tasks for the survey forms service",
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.ConfigureLogger(log)
			c.App.Metadata = map[string]interface{}{"config": cfg}
			return nil
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(log),
			tokenCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the database schema",
		Action: func(c *cli.Context) error {
			conn, err := db.Init(configFrom(c))
			if err != nil {
				return err
			}
			return db.Migrate(conn)
		},
	}
}

func seedCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "import offices and families from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "seed file", Required: true},
			&cli.BoolFlag{Name: "migrate", Usage: "run migrations first", Value: true},
		},
		Action: func(c *cli.Context) error {
			dir, err := application.LoadDirectoryFile(c.String("file"))
			if err != nil {
				return err
			}
			conn, err := db.Init(configFrom(c))
			if err != nil {
				return err
			}
			if c.Bool("migrate") {
				if err := db.Migrate(conn); err != nil {
					return err
				}
			}
			return application.ImportDirectory(repository.NewRepositories(conn), dir, log)
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a development token for a caller",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "user", Usage: "user id", Required: true},
			&cli.StringFlag{Name: "type", Usage: "moha, district, division or gn", Required: true},
			&cli.StringFlag{Name: "office", Usage: "office code", Required: true},
			&cli.StringFlag{Name: "username", Value: "operator"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime (default TOKEN_TTL)"},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			ttl := c.Duration("ttl")
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			caller := office.Caller{
				UserID:     c.Uint("user"),
				Type:       office.UserType(c.String("type")),
				OfficeCode: c.String("office"),
			}
			tok, err := utils.GenerateToken([]byte(cfg.JwtSecret), cfg.Issuer, caller, c.String("username"), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, tok)
			return nil
		},
	}
}
