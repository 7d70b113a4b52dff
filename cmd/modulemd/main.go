package main

import (
	"os"

	"github.com/content-services/modulemd-backend/pkg/commands"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := commands.NewApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("modulemd failed")
	}
}
