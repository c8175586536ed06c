// Command migrate applies or rolls back the embedded database schema.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/database"
	"QROLY_BACK-END/internal/logger"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	if err := database.Migrate(cfg.GetDSN(), direction); err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("Migration failed")
	}
	log.Info().Str("direction", direction).Msg("Migration complete")
}
