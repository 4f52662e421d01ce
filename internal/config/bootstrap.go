// Package config provides configuration management for the Tailtown platform.
// Bootstrap settings (server, database, scheduler) come from config.yaml and
// environment variables; runtime governance settings live in the database and
// are served by ConfigService.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Bootstrap holds the settings needed before the database is reachable
type Bootstrap struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	JWTSecret   string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SchedulerConfig struct {
	Enabled   bool
	SweepTime string
	PurgeDay  int
	PurgeTime string
}

func defaultBootstrap() Bootstrap {
	return Bootstrap{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "tailtown",
			DBName:  "tailtown",
			SSLMode: "disable",
		},
		Scheduler: SchedulerConfig{
			Enabled:   true,
			SweepTime: "02:00",
			PurgeDay:  0,
			PurgeTime: "03:00",
		},
	}
}

// LoadBootstrap reads config.yaml from configPath with TAILTOWN_* environment
// overrides. A missing file is not an error; defaults plus env apply.
func LoadBootstrap(configPath string) (Bootstrap, error) {
	cfg := defaultBootstrap()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("TAILTOWN")

	v.BindEnv("server.port", "TAILTOWN_PORT")
	v.BindEnv("server.environment", "TAILTOWN_ENV")
	v.BindEnv("server.jwt_secret", "TAILTOWN_JWT_SECRET")
	v.BindEnv("database.host", "TAILTOWN_DB_HOST")
	v.BindEnv("database.port", "TAILTOWN_DB_PORT")
	v.BindEnv("database.user", "TAILTOWN_DB_USER")
	v.BindEnv("database.password", "TAILTOWN_DB_PASSWORD")
	v.BindEnv("database.dbname", "TAILTOWN_DB_NAME")
	v.BindEnv("database.sslmode", "TAILTOWN_DB_SSLMODE")
	v.BindEnv("scheduler.enabled", "TAILTOWN_SCHEDULER_ENABLED")
	v.BindEnv("scheduler.sweep_time", "TAILTOWN_SWEEP_TIME")
	v.BindEnv("scheduler.purge_day", "TAILTOWN_PURGE_DAY")
	v.BindEnv("scheduler.purge_time", "TAILTOWN_PURGE_TIME")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	}

	if v.IsSet("server.port") {
		cfg.Server.Port = v.GetString("server.port")
	}
	if v.IsSet("server.environment") {
		cfg.Server.Environment = v.GetString("server.environment")
	}
	if v.IsSet("server.jwt_secret") {
		cfg.Server.JWTSecret = v.GetString("server.jwt_secret")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("scheduler.enabled") {
		cfg.Scheduler.Enabled = v.GetBool("scheduler.enabled")
	}
	if v.IsSet("scheduler.sweep_time") {
		cfg.Scheduler.SweepTime = v.GetString("scheduler.sweep_time")
	}
	if v.IsSet("scheduler.purge_day") {
		cfg.Scheduler.PurgeDay = v.GetInt("scheduler.purge_day")
	}
	if v.IsSet("scheduler.purge_time") {
		cfg.Scheduler.PurgeTime = v.GetString("scheduler.purge_time")
	}

	return cfg, nil
}
