package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/foliocrawl/folio"
	"github.com/foliocrawl/folio/chase"
	"github.com/foliocrawl/folio/etrade"
	"github.com/foliocrawl/folio/merrill"
	"github.com/foliocrawl/folio/renderer"
	"github.com/foliocrawl/folio/store"
)

type fetchCmd struct {
	dryRun bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "scrape all brokers and save today's snapshot" }
func (*fetchCmd) Usage() string {
	return `folio fetch [-n]

  Scrapes each configured broker's holdings, reconciles them against the
  page-reported totals, merges them into one portfolio snapshot and saves
  it for today. A broker failure is reported but never blocks the others.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "fetch and report without saving the snapshot")
}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	client := &http.Client{Timeout: 60 * time.Second}

	// Brokers run one after another: each scrape depends on an exclusive
	// interactive session, and the portals are rate sensitive.
	var results []folio.CrawlerResult
	for _, broker := range cfg.Brokers {
		results = append(results, runBroker(cfg, st, client, broker))
	}

	p := folio.BuildPortfolio(results, folio.Today())

	if !c.dryRun && len(p.BrokersUpdated) > 0 {
		if err := st.SavePortfolio(p); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving snapshot: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.ResultsMarkdown(results, p))

	if len(p.BrokersUpdated) == 0 {
		fmt.Fprintln(os.Stderr, "no broker succeeded, nothing saved")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runBroker runs one broker's scrape to a terminal CrawlerResult; errors
// never propagate past here.
func runBroker(cfg Config, st *store.Store, client *http.Client, broker string) folio.CrawlerResult {
	var holdings []folio.Holding
	var err error

	switch broker {
	case etrade.Name:
		holdings, err = etrade.Load(cfg.EtradeRows)
	case chase.Name, merrill.Name:
		var headers http.Header
		headers, err = st.Session(broker)
		if errors.Is(err, store.ErrNoSession) {
			return folio.CrawlerResult{
				Broker:       broker,
				Requires2FA:  true,
				ErrorMessage: "no valid session",
			}
		}
		if err == nil {
			if broker == chase.Name {
				holdings, err = chase.Fetch(client, headers)
			} else {
				holdings, err = merrill.Fetch(client, headers)
			}
		}
	default:
		err = fmt.Errorf("unknown broker %q", broker)
	}

	if err != nil {
		return folio.CrawlerResult{Broker: broker, ErrorMessage: err.Error()}
	}
	return folio.CrawlerResult{Broker: broker, Success: true, Holdings: holdings}
}
