package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/foliocrawl/folio/store"
)

// sessionCmd imports session headers captured from a logged-in browser.
type sessionCmd struct {
	broker string
	file   string
	days   int
}

func (*sessionCmd) Name() string     { return "session" }
func (*sessionCmd) Synopsis() string { return "import a broker's session headers" }
func (*sessionCmd) Usage() string {
	return `folio session -b <broker> -f <headers file> [-days <n>]

  Imports the request headers of a logged-in browser session, one
  "Key: Value" header per line as copied from the browser's devtools.
  Login and 2FA happen in the browser; this command only stores the result
  so 'folio fetch' can reuse it until it expires.
`
}

func (c *sessionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.broker, "b", "", "broker name the session belongs to")
	f.StringVar(&c.file, "f", "", "file containing the captured headers")
	f.IntVar(&c.days, "days", 1, "days before the session expires")
}

func (c *sessionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.broker == "" || c.file == "" {
		fmt.Fprintln(os.Stderr, "both -b and -f must be provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading headers file: %v\n", err)
		return subcommands.ExitFailure
	}
	headers := store.ParseHeaders(string(data))
	if len(headers) == 0 {
		fmt.Fprintf(os.Stderr, "no headers found in %q\n", c.file)
		return subcommands.ExitFailure
	}

	st, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	expires := time.Now().Add(time.Duration(c.days) * 24 * time.Hour)
	if err := st.SaveSession(c.broker, headers, expires); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving session: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Saved %s session (%d headers), valid until %s\n",
		c.broker, len(headers), expires.Format(time.RFC3339))
	return subcommands.ExitSuccess
}
