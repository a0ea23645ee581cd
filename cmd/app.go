// Package cmd implements the CLI application to fetch, store and report
// brokerage holdings.
package cmd

import (
	"flag"

	"github.com/google/subcommands"

	"github.com/foliocrawl/folio/store"
)

// Register the subcommands.
// A main package calls Register() to install them, and Execute() on the
// user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&fetchCmd{}, "crawling")
	c.Register(&sessionCmd{}, "crawling")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
}

// as a CLI application it is short lived, so global flags are fine.

var dbPath = flag.String("db", "folio.db", "Path to the snapshot database")
var configPath = flag.String("config", "", "Path to the YAML configuration file")

// OpenStore opens the snapshot database selected by flags and configuration.
func OpenStore() (*store.Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Database)
}
