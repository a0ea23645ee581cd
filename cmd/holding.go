package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/foliocrawl/folio"
	"github.com/foliocrawl/folio/renderer"
	"github.com/foliocrawl/folio/store"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the holdings stored for a date" }
func (*holdingCmd) Usage() string {
	return `folio holding [-d <date>]

  Displays the consolidated holdings saved on a given date, most valuable
  first. Defaults to the latest snapshot.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the snapshot (YYYY-MM-DD), latest by default")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	var on folio.Date
	if c.date == "" {
		on, err = st.LatestDate()
		if errors.Is(err, store.ErrNoSnapshot) {
			fmt.Fprintln(os.Stderr, "no snapshot saved yet, run 'folio fetch' first")
			return subcommands.ExitFailure
		}
	} else {
		on, err = folio.ParseDate(c.date)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, err := st.Portfolio(on)
	if errors.Is(err, store.ErrNoSnapshot) {
		fmt.Fprintf(os.Stderr, "no snapshot for %s\n", on)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HoldingsMarkdown(p))
	return subcommands.ExitSuccess
}
