package commands

import (
	"github.com/content-services/modulemd-backend/pkg/config"
	"github.com/urfave/cli/v2"
)

// NewApp builds the modulemd command line.
func NewApp() *cli.App {
	strictFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "strict",
			Usage: "fail on unknown keys instead of skipping them",
			Value: config.Get().Options.Strict,
		}
	}
	return &cli.App{
		Name:  config.DefaultAppName,
		Usage: "validate, reformat and serve modulemd YAML documents",
		Before: func(c *cli.Context) error {
			config.ConfigureLogging()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "parse and validate every document of the given files",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{strictFlag()},
				Action:    ValidateAction,
			},
			{
				Name:      "reformat",
				Usage:     "re-emit a file in canonical form",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					strictFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write to `FILE` instead of standard output",
					},
				},
				Action: ReformatAction,
			},
			{
				Name:   "serve",
				Usage:  "run the validation service",
				Action: ServeAction,
			},
		},
	}
}
