// Command scenecored runs a standalone world behind the debug HTTP surface.
// The editor embeds the library directly; this binary exists for headless
// inspection and play-mode testing against a live redis.
package main

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vibe-engine/scenecore"
	"github.com/vibe-engine/scenecore/config"
	"github.com/vibe-engine/scenecore/server"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}

	opts := []scenecore.WorldOption{scenecore.WithLogger(logger)}
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		opts = append(opts, scenecore.WithRedisSnapshots(client))
		logger.Info().Str("redis_address", cfg.RedisAddress).Msg("snapshots backed by redis")
	}

	world, err := scenecore.NewWorld(opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create world")
	}

	srv := server.New(world, server.WithPort(cfg.ServerPort))
	if err := srv.Serve(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
