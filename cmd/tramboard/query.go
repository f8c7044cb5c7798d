package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tramboard/internal/config"
	"tramboard/internal/departure"
	"tramboard/internal/notify"
	"tramboard/internal/query"
	"tramboard/internal/resolver"
)

// errQueryFailed is returned after a failed query has been rendered.
var errQueryFailed = errors.New("query failed")

var queryCmd = &cobra.Command{
	Use:   "query <stop name...>",
	Short: "Show the next departures for a stop",
	Example: `  tramboard query bors
  tramboard query hauptbahnhof --pick "Hauptbahnhof Nord"
  tramboard query marienplatz --types BUS --limit 5`,
	Args: cobra.MinimumNArgs(1),
}

func init() {
	queryCmd.RunE = withApp(runQuery)
	queryCmd.Flags().String("pick", "", "stop to use when several match (skips the prompt)")
	queryCmd.Flags().Int("limit", 0, "maximum number of departures (default from config)")
	queryCmd.Flags().StringSlice("types", nil, "transport types, e.g. TRAM,BUS (default from config)")
}

// queryOverrides are the per-query flags that replace config values.
type queryOverrides struct {
	limit int // 0 keeps the configured limit
	types []string
}

// apply sets the overrides on cfg and validates the result.
func (o queryOverrides) apply(cfg *config.Config) error {
	if o.limit != 0 {
		cfg.Limit = o.limit
	}
	if len(o.types) > 0 {
		cfg.TransportTypes = o.types
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("query flags: %w", err)
	}
	return nil
}

func runQuery(ctx context.Context, a *app, args []string) error {
	flags := queryCmd.Flags()
	var o queryOverrides
	o.limit, _ = flags.GetInt("limit")
	o.types, _ = flags.GetStringSlice("types")
	if err := o.apply(a.cfg); err != nil {
		return err
	}
	pick, _ := flags.GetString("pick")
	interactive := isTerminal(os.Stdout) && isTerminal(os.Stdin)

	term := notify.NewTerminal(os.Stdout, a.db, confirmNotifications)
	switch p := notify.ParsePermission(a.cfg.Notifications); p {
	case notify.Granted, notify.Denied:
		if err := term.SetPermission(ctx, p); err != nil {
			a.logger.Warn("storing notification permission", "error", err)
		}
	}

	var fetcher query.Fetcher = a.fetcher
	if interactive {
		fetcher = spinnerFetcher{next: a.fetcher, title: a.msgs.Searching()}
	}
	orch, notifier := a.orchestrator(fetcher, term)
	if interactive {
		notifier.RequestPermission(ctx)
	}

	var d resolver.Disambiguator
	switch {
	case pick != "":
		d = resolver.Choice(pick)
	case interactive:
		d = selectStop(a.msgs.ChooseStop())
	}

	res := orch.Submit(ctx, strings.Join(args, " "), d)
	renderResult(os.Stdout, res, a.msgs)
	notifier.Wait()

	if res.Failed() {
		return errQueryFailed
	}
	return nil
}

// selectStop asks the user to pick one of several matching stops.
func selectStop(title string) resolver.Disambiguator {
	return resolver.DisambiguatorFunc(func(ctx context.Context, candidates []string) (string, error) {
		var choice string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(title).
					Options(huh.NewOptions(candidates...)...).
					Value(&choice),
			),
		).RunWithContext(ctx)
		if err != nil {
			return "", err
		}
		return choice, nil
	})
}

func confirmNotifications(ctx context.Context) (bool, error) {
	allow := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show a departure summary after each query?").
				Description("The answer is stored and can be changed with TRAMBOARD_NOTIFICATIONS.").
				Value(&allow).
				Affirmative("Yes").
				Negative("No"),
		),
	).RunWithContext(ctx)
	return allow, err
}

// spinnerFetcher shows a spinner while the wrapped fetch runs.
type spinnerFetcher struct {
	next  query.Fetcher
	title string
	// spin shows title until wait returns; nil uses the huh spinner.
	spin func(title string, wait func()) error
}

func huhSpinner(title string, wait func()) error {
	return spinner.New().
		Title(title).
		Action(wait).
		Run()
}

func (s spinnerFetcher) Fetch(ctx context.Context, stop resolver.Stop, limit int, types []string) ([]departure.Departure, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var deps []departure.Departure
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		deps, err = s.next.Fetch(ctx, stop, limit, types)
	}()

	spin := s.spin
	if spin == nil {
		spin = huhSpinner
	}
	if spinErr := spin(s.title, func() { <-done }); spinErr != nil {
		cancel()
	}
	// A spinner aborted by the user returns before the fetch is done.
	select {
	case <-done:
	default:
		cancel()
	}
	<-done
	return deps, err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
