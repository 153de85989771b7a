package fetch

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/vcbrates/cmd/env"
	"github.com/sig-0/vcbrates/fetcher"
	"github.com/sig-0/vcbrates/normalize"
)

const absentMark = "-"

var errMissingRelay = errors.New("missing relay URL")

// fetchCfg wraps the fetch configuration
type fetchCfg struct {
	relayURL string
	path     string
	timeout  time.Duration
	retries  uint64
	verbose  bool
}

// NewFetchCmd creates the fetch subcommand
func NewFetchCmd() *ffcli.Command {
	cfg := &fetchCfg{}

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "fetch",
		ShortUsage: "fetch -relay <url> [flags]",
		LongHelp:   "Fetches the current rates from a relay and prints them as a table",
		FlagSet:    fs,
		Exec: func(ctx context.Context, _ []string) error {
			return cfg.exec(ctx, os.Stdout, os.Stderr)
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *fetchCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.relayURL,
		"relay",
		"",
		"the base URL of the relay (e.g. http://127.0.0.1:8080)",
	)

	fs.StringVar(
		&c.path,
		"path",
		fetcher.DefaultRelayPath,
		"the relay path",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		fetcher.DefaultTimeout,
		"the relay request timeout",
	)

	fs.Uint64Var(
		&c.retries,
		"retries",
		fetcher.DefaultRetryNum,
		"the number of repeated requests after a failed fetch",
	)

	fs.BoolVar(
		&c.verbose,
		"verbose",
		false,
		"log fetch errors",
	)
}

func (c *fetchCfg) exec(ctx context.Context, out, errOut io.Writer) error {
	if c.relayURL == "" {
		return errMissingRelay
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.verbose {
		logger = slog.New(slog.NewTextHandler(errOut, nil))
	}

	f, err := fetcher.New(
		c.relayURL,
		fetcher.WithPath(c.path),
		fetcher.WithLogger(logger),
		fetcher.WithRetryNum(c.retries),
		fetcher.WithHTTPClient(&http.Client{
			Timeout: c.timeout,
		}),
	)
	if err != nil {
		return err
	}

	return writeTable(out, f.FetchRates(ctx))
}

// writeTable prints the rates, absent values as "-"
func writeTable(out io.Writer, rates []normalize.Rate) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, "CODE\tNAME\tBUY\tTRANSFER\tSELL\t")

	for _, rate := range rates {
		_, _ = fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\t%s\t\n",
			rate.Code,
			rate.Name,
			display(rate.Buy),
			display(rate.Transfer),
			display(rate.Sell),
		)
	}

	return w.Flush()
}

func display(v *float64) string {
	if v == nil {
		return absentMark
	}

	s, ok := normalize.FormatNumber(normalize.Number(*v))
	if !ok {
		return absentMark
	}

	return s
}
