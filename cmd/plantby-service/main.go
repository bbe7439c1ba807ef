package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/plantbygpt/plantbygpt/plantservice"
)

func main() {
	if err := plantservice.Run(); err != nil {
		log.Error().Err(err).Msg("plantby-service exited with error")
		os.Exit(1)
	}
}
