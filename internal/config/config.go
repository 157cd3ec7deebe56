// Package config loads service settings from an optional YAML file and
// FORESTDASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type Server struct {
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	APIKey  string `mapstructure:"api_key"`
	TLSCert string `mapstructure:"tls_cert" validate:"required_with=TLSKey"`
	TLSKey  string `mapstructure:"tls_key" validate:"required_with=TLSCert"`
}

type Log struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type Storage struct {
	Path string `mapstructure:"path"`
}

type Forest struct {
	RevealDelay time.Duration `mapstructure:"reveal_delay" validate:"gte=0"`
	RevealStep  time.Duration `mapstructure:"reveal_step" validate:"gte=0"`
	Catalog     string        `mapstructure:"catalog"`
}

type Training struct {
	Engine      string        `mapstructure:"engine" validate:"oneof=synthetic fitted"`
	Delay       time.Duration `mapstructure:"delay" validate:"gte=0"`
	FailureRate float64       `mapstructure:"failure_rate" validate:"gte=0,lte=1"`
	Seed        uint64        `mapstructure:"seed"`
}

type Settings struct {
	Server   Server   `mapstructure:"server"`
	Log      Log      `mapstructure:"log"`
	Storage  Storage  `mapstructure:"storage"`
	Forest   Forest   `mapstructure:"forest"`
	Training Training `mapstructure:"training"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.tls_cert", "")
	v.SetDefault("server.tls_key", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.path", "data/history")
	v.SetDefault("forest.reveal_delay", 1500*time.Millisecond)
	v.SetDefault("forest.reveal_step", 150*time.Millisecond)
	v.SetDefault("forest.catalog", "")
	v.SetDefault("training.engine", "synthetic")
	v.SetDefault("training.delay", 1500*time.Millisecond)
	v.SetDefault("training.failure_rate", 0.1)
	v.SetDefault("training.seed", 0)
}

// Load reads path when given, otherwise ./forestdash.yaml if present, then
// applies environment overrides. PORT, API_KEY and LOG_FILE are honored as
// well.
func Load(path string) (*Settings, error) {
	v := viper.New()
	defaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("forestdash")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("FORESTDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "FORESTDASH_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.api_key", "FORESTDASH_SERVER_API_KEY", "API_KEY")
	_ = v.BindEnv("log.file", "FORESTDASH_LOG_FILE", "LOG_FILE")

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var validate = validator.New()

// Validate reports every invalid field at once.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var all error
	for _, fe := range verrs {
		all = multierr.Append(all, fmt.Errorf("config %s: failed %s check (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return all
}
