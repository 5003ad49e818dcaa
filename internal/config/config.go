package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ProjectID              string
	Region                 string
	LogLevel               string
	Timezone               string
	Location               *time.Location
	ListenAddr             string
	PropagationConcurrency int
	EmulatorHost           string
}

// NewViper returns a viper instance bound to the service's environment
// variables and defaults. The CLI layers flags and a config file on top.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "", "-", ""))
	v.AutomaticEnv()

	v.SetDefault("loglevel", "info")
	v.SetDefault("timezone", "Local")
	v.SetDefault("listenaddr", ":8080")
	v.SetDefault("propagationconcurrency", 0)

	_ = v.BindEnv("projectid", "PROJECTID", "GOOGLE_CLOUD_PROJECT")
	_ = v.BindEnv("region", "REGION")
	_ = v.BindEnv("loglevel", "LOGLEVEL")
	_ = v.BindEnv("timezone", "TIMEZONE")
	_ = v.BindEnv("listenaddr", "LISTENADDR")
	_ = v.BindEnv("propagationconcurrency", "PROPAGATIONCONCURRENCY")
	_ = v.BindEnv("emulatorhost", "FIRESTORE_EMULATOR_HOST")
	return v
}

// New loads the configuration from the environment.
func New() (*Config, error) {
	return FromViper(NewViper())
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ProjectID:              v.GetString("projectid"),
		Region:                 v.GetString("region"),
		LogLevel:               v.GetString("loglevel"),
		Timezone:               v.GetString("timezone"),
		ListenAddr:             v.GetString("listenaddr"),
		PropagationConcurrency: v.GetInt("propagationconcurrency"),
		EmulatorHost:           v.GetString("emulatorhost"),
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if cfg.PropagationConcurrency < 0 {
		return cfg, fmt.Errorf("propagation concurrency must be >= 0, got %d", cfg.PropagationConcurrency)
	}
	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
		}
		return loc, nil
	}
}
