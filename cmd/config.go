package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foliocrawl/folio/chase"
	"github.com/foliocrawl/folio/etrade"
	"github.com/foliocrawl/folio/merrill"
)

// Config selects the database and the brokers a fetch run covers.
type Config struct {
	Database string   `yaml:"database"`
	Brokers  []string `yaml:"brokers"`

	// EtradeRows is the row dump file written by the E*TRADE extraction
	// script; that grid cannot be fetched as HTML.
	EtradeRows string `yaml:"etrade_rows"`
}

// LoadConfig returns the configuration: flag defaults, overridden by the
// YAML file when -config is given.
func LoadConfig() (Config, error) {
	cfg := Config{
		Database:   *dbPath,
		Brokers:    []string{chase.Name, merrill.Name, etrade.Name},
		EtradeRows: "etrade_rows.json",
	}
	if *configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(*configPath)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %q: %w", *configPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %q: %w", *configPath, err)
	}
	return cfg, nil
}
