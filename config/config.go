// Ininicializing common application configuration
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Events    EventsConfig    `mapstructure:"events"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"app_version"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout int           `mapstructure:"request_timeout"` // в секундах
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres | memory
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Настройки пула соединений
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type BookingConfig struct {
	// SlotClockOffset is the wall clock hour of slot 0.
	SlotClockOffset int           `mapstructure:"slot_clock_offset"`
	Timezone        string        `mapstructure:"timezone"`
	WindowDays      int           `mapstructure:"window_days"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`

	location *time.Location
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl"`
	PageSize int           `mapstructure:"page_size"`
}

type EventsConfig struct {
	Driver   string `mapstructure:"driver"` // kafka | rabbitmq | none
	Brokers  string `mapstructure:"brokers"`
	Topic    string `mapstructure:"topic"`
	AMQPURL  string `mapstructure:"amqp_url"`
	Queue    string `mapstructure:"queue"`
	Failures uint32 `mapstructure:"breaker_failures"`
}

type WorkerConfig struct {
	ProvisionInterval time.Duration `mapstructure:"provision_interval"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Location returns the time zone the booking day is counted in. It is resolved
// by ParseConfig; a zero BookingConfig counts in UTC.
func (b BookingConfig) Location() *time.Location {
	if b.location == nil {
		return time.UTC
	}
	return b.location
}

func (b *BookingConfig) validate() error {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return fmt.Errorf("invalid booking.timezone %q: %w", b.Timezone, err)
	}
	if b.SlotClockOffset < 0 || b.SlotClockOffset > 12 {
		return fmt.Errorf("booking.slot_clock_offset must be between 0 and 12, got %d", b.SlotClockOffset)
	}
	b.location = loc
	return nil
}

func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func LoadConfig() (*viper.Viper, error) {
	// .env is optional
	_ = godotenv.Load()

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()
	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := c.Booking.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("storage.driver", "postgres")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "coworkconnect")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "coworkconnect")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Redis defaults
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	// JWT defaults
	v.SetDefault("jwt.expiration", 24*time.Hour)

	// Booking defaults
	v.SetDefault("booking.slot_clock_offset", 8)
	v.SetDefault("booking.timezone", "UTC")
	v.SetDefault("booking.window_days", 91)
	v.SetDefault("booking.max_retries", 5)
	v.SetDefault("booking.retry_base_delay", 20*time.Millisecond)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.page_size", 20)

	// Events defaults
	v.SetDefault("events.driver", "none")
	v.SetDefault("events.topic", "booking-events")
	v.SetDefault("events.queue", "booking_events")
	v.SetDefault("events.breaker_failures", 5)

	// Worker defaults
	v.SetDefault("worker.provision_interval", time.Hour)

	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)
}
