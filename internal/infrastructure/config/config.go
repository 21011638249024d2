package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	Server ServerConfig `mapstructure:",squash"`
	Store  StoreConfig  `mapstructure:",squash"`

	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	GinMode         string        `mapstructure:"gin_mode" validate:"required,oneof=debug release test"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// StoreConfig holds document store configuration
type StoreConfig struct {
	URI            string        `mapstructure:"mongo_uri" validate:"required,storeuri"`
	Database       string        `mapstructure:"mongo_database" validate:"required"`
	Collection     string        `mapstructure:"mongo_collection" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"mongo_connect_timeout" validate:"gt=0"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

var defaults = map[string]interface{}{
	"port":                  5000,
	"gin_mode":              "release",
	"shutdown_timeout":      10 * time.Second,
	"log_level":             "info",
	"mongo_uri":             "mongodb://localhost:27017",
	"mongo_database":        "crud_db",
	"mongo_collection":      "items",
	"mongo_connect_timeout": 10 * time.Second,
}

// LoadConfig resolves configuration from the environment, falling back to
// defaults for anything unset.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.RegisterValidation("storeuri", validateStoreURI); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func validateStoreURI(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv", "memory":
		return true
	}
	return false
}
