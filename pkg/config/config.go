package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"

	"github.com/socialrank/collector/pkg/collector"
	"github.com/socialrank/collector/pkg/lib"
	"github.com/socialrank/collector/pkg/lib/log"
	"github.com/socialrank/collector/pkg/metrics"
	"github.com/socialrank/collector/pkg/rank"
	"github.com/socialrank/collector/pkg/storage/postgres"
)

type Config struct {
	DB        postgres.Config         `env:""`
	Log       log.Config              `env:""`
	Platform  rank.PlatformConfig     `env:""`
	Collector collector.Config        `env:""`
	Trainer   collector.TrainerConfig `env:""`
	Metrics   metrics.Config          `env:""`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := lib.ValidateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
