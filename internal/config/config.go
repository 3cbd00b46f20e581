package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Game       Game   `yaml:"game"`
	Redis      Redis  `yaml:"redis"`
}

type Game struct {
	Port              string        `yaml:"port" env-default:"55555"`
	AcceptBacklog     int           `yaml:"accept-backlog" env-default:"50"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env-default:"5s"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat-timeout" env-default:"10s"`
	TickInterval      time.Duration `yaml:"tick-interval" env-default:"100ms"`
}

type Redis struct {
	Host string `yaml:"host" env-default:""`
	Port string `yaml:"port" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// GetRedisAddr - returns the redis address, or an empty string when match
// history recording is disabled.
func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
