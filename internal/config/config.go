package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"valve_timer/internal/gpio"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. VALVE_GPIO_DRIVER.
const EnvPrefix = "VALVE"

type Config struct {
	Port   string       `mapstructure:"port"`
	DB     DBConfig     `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	GPIO   GPIOConfig   `mapstructure:"gpio"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Manual ManualConfig `mapstructure:"manual"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type GPIOConfig struct {
	Driver         string `mapstructure:"driver"` // sim | periph
	DefaultChannel int    `mapstructure:"default_channel"`
	QueueSize      int    `mapstructure:"queue_size"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type ManualConfig struct {
	RatePerSec float64 `mapstructure:"rate_per_sec"`
	Burst      int     `mapstructure:"burst"`
}

// MQTTConfig enables state publishing when Broker is set.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool { return strings.TrimSpace(m.Broker) != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("gpio.driver", gpio.DriverSim)
	v.SetDefault("gpio.default_channel", 476)
	v.SetDefault("gpio.queue_size", 32)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("manual.rate_per_sec", 2.0)
	v.SetDefault("manual.burst", 4)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "valve-timer")
	v.SetDefault("mqtt.topic_prefix", "valve")
}

// Load reads configs/config.yml (or the file at path when given), applies
// VALVE_* environment overrides and validates the result. A missing default
// config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the runtime cannot start with.
func (c *Config) Validate() error {
	switch c.GPIO.Driver {
	case gpio.DriverSim, gpio.DriverPeriph:
	default:
		return fmt.Errorf("gpio.driver %q: %w", c.GPIO.Driver, gpio.ErrUnknownDriver)
	}
	if c.GPIO.DefaultChannel < 0 {
		return fmt.Errorf("gpio.default_channel must not be negative, got %d", c.GPIO.DefaultChannel)
	}
	if c.GPIO.QueueSize <= 0 {
		return fmt.Errorf("gpio.queue_size must be positive, got %d", c.GPIO.QueueSize)
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("auth.signing_key is required (set VALVE_AUTH_SIGNING_KEY)")
	}
	if c.Manual.RatePerSec < 0 {
		return fmt.Errorf("manual.rate_per_sec must not be negative, got %v", c.Manual.RatePerSec)
	}
	return nil
}
