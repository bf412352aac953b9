package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"socialhub/config"
	"socialhub/database"
	"socialhub/handlers"
	"socialhub/realtime"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(level).With().Timestamp().Logger()

	if err := database.Initialize(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("initialize database")
	}

	hub := realtime.NewHub()
	api := handlers.New(hub, cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := http.ListenAndServe(addr, api.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
