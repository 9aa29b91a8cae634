package config

import (
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// Config carries the runtime settings that come from the environment rather
// than from code: the optional redis snapshot backend and the debug server.
type Config struct {
	RedisAddress  string `config:"SCENECORE_REDIS_ADDRESS"`
	RedisPassword string `config:"SCENECORE_REDIS_PASSWORD"`
	ServerPort    string `config:"SCENECORE_PORT"`
	LogLevel      string `config:"SCENECORE_LOG_LEVEL"`
}

// Load reads SCENECORE_* environment variables over the defaults.
func Load() (Config, error) {
	cfg := Config{
		ServerPort: "4040",
		LogLevel:   "info",
	}
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "")
	}
	return cfg, nil
}
