package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/irtassedat/qrmenu-gateway/internal/config"
	"github.com/irtassedat/qrmenu-gateway/internal/webserver"
)

func main() {
	confPath := flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	conf, err := config.LoadFromTomlFileAndValidate(*confPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	server, err := webserver.New(conf, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up webserver")
	}

	if err := server.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
