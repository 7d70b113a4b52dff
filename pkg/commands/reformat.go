package commands

import (
	"os"

	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func ReformatAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("reformat requires exactly one FILE", 2)
	}
	file := c.Args().First()
	body, err := readInput(c, file)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out, err := validation.NewValidator(nil, nil).Reformat(c.Context, body, c.Bool("strict"))
	if err != nil {
		return cli.Exit(errors.Wrapf(err, "%s", file).Error(), 1)
	}

	if output := c.String("output"); output != "" {
		if err = os.WriteFile(output, []byte(out), 0o644); err != nil {
			return cli.Exit(errors.Wrapf(err, "could not write %s", output).Error(), 1)
		}
		log.Info().Str("input", file).Str("output", output).Msg("Reformatted documents")
		return nil
	}
	_, err = c.App.Writer.Write([]byte(out))
	return err
}
