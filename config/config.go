// Package config loads database settings from a YAML file with
// environment-variable overrides.
package config

import (
	"log"

	"github.com/spf13/viper"

	"github.com/patisson/gqlpg/session"
)

// LoadSessionConfig reads config.yaml from configPath and overlays it on
// the defaults. Environment variables with the DB_ prefix (DB_HOST,
// DB_PORT, ...) take precedence over the file.
func LoadSessionConfig(configPath string) (session.Config, error) {
	cfg := session.DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("DB")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, defaults plus env vars still apply.
		log.Printf("[CONFIG] No config.yaml found in %s, using defaults and env vars", configPath)
	}

	if v.IsSet("database.host") {
		cfg.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.SSLMode = v.GetString("database.sslmode")
	}

	return cfg, nil
}
