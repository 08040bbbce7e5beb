package main

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huecmd/internal/app"
	"github.com/dokzlo13/huecmd/internal/command"
	"github.com/dokzlo13/huecmd/internal/config"
)

func main() {
	// .env is optional; it feeds ${VAR} placeholders and AWS credentials
	envErr := godotenv.Load()

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		setupLogging("info", false, true)
		log.Fatal().Err(err).Str("config", configPath).Msg("Failed to load configuration")
	}

	setupLogging(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Colors)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Unable to load .env")
	}
	log.Debug().Str("config", configPath).Str("bridge", cfg.Hue.BaseURL).Msg("Configuration loaded")

	application := app.New(cfg, os.Stdout)
	defer application.Close()

	ctx := app.SignalContext()

	if err := application.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, command.ErrUsage) {
			log.Error().Err(err).Msg("Type huecmd -h for help")
			application.Close()
			os.Exit(2)
		}
		log.Error().Err(err).Msg("Command failed")
		application.Close()
		os.Exit(1)
	}
}

func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
