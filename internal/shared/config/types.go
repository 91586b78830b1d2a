// Package config defines the configuration structures shared across the
// application. Loading and defaults live in internal/infrastructure/config.
package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis endpoint is configured. The plan cache
// degrades to direct database reads when it is not.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type CacheConfig struct {
	PlanTTLMinutes int `mapstructure:"plan_ttl_minutes"`
}

type BillingConfig struct {
	// SchedulerIntervalMinutes controls how often the billing scheduler scans
	// for subscriptions whose billing date has passed.
	SchedulerIntervalMinutes int `mapstructure:"scheduler_interval_minutes"`
	// SchedulerBatchSize caps the number of subscriptions processed per scan.
	SchedulerBatchSize int `mapstructure:"scheduler_batch_size"`
}
