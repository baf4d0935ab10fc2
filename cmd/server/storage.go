package main

import (
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/storage"
)

// InitStorage selects and returns the configured storage backend
func InitStorage(env Environment) storage.Storage {
	if env.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			env.SpacesEndpoint,
			env.SpacesRegion,
			env.SpacesBucket,
			env.SpacesCDNURL,
			env.SpacesAccessKey,
			env.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", env.SpacesCDNURL).Msg("Using DigitalOcean Spaces storage")
		return spacesStorage
	}

	log.Info().Msg("Using local file storage in ./uploads")
	return storage.NewLocalStorage("./uploads")
}
