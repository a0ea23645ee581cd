package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/foliocrawl/folio/renderer"
)

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display total value over time" }
func (*historyCmd) Usage() string {
	return `folio history

  Displays the headline figures of every saved snapshot in date order.
`
}

func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	history, err := st.History()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(history) == 0 {
		fmt.Fprintln(os.Stderr, "no snapshot saved yet, run 'folio fetch' first")
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HistoryMarkdown(history))
	return subcommands.ExitSuccess
}
