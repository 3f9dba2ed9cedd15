package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	// AllowedOrigins is the origin allow-list for the websocket handshake.
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	BadgeDBPath    string        `mapstructure:"badge_db_path" yaml:"badge_db_path"`
	DedupTTL       time.Duration `mapstructure:"dedup_ttl" yaml:"dedup_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		AllowedOrigins:    []string{"localhost:*", "127.0.0.1:*"},
		BadgeDBPath:       "walletchat.db",
		DedupTTL:          10 * time.Second,
	}
}
