package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"Forge/config"
	"Forge/pkg/database"
	"Forge/pkg/log"
	"Forge/pkg/server"
)

func configPath(ctx *cli.Context) string {
	if p := ctx.String("config"); p != "" {
		return p
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	cliApp := &cli.App{
		Name:  "api-server",
		Usage: "Forge api and live view server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file, defaults to configs/config.$APP_ENV.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http and live server",
				Action: func(ctx *cli.Context) error {
					cfg := config.New(configPath(ctx))
					log.SetDebug(cfg.Debug())
					app, cleanup, err := InitServer(cfg)
					if err != nil {
						return err
					}
					defer cleanup()
					return server.Run(ctx, app)
				},
			},
			{
				Name:  "migrate",
				Usage: "create or update tables",
				Action: func(ctx *cli.Context) error {
					cfg := config.New(configPath(ctx))
					if err := database.Migrate(database.NewDB(cfg)); err != nil {
						return err
					}
					log.L.Info("migrate success")
					return nil
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("failed to start server", zap.Error(err))
	}
}
