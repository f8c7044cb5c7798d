// Package query runs one user query from search term to displayed departures.
package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"tramboard/internal/departure"
	"tramboard/internal/directory"
	"tramboard/internal/messages"
	"tramboard/internal/notify"
	"tramboard/internal/resolver"
	"tramboard/internal/stoplist"
)

// Fetcher loads departures for a resolved stop. *departure.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, stop resolver.Stop, limit int, transportTypes []string) ([]departure.Departure, error)
}

// Options are the per-query fetch parameters.
type Options struct {
	Limit          int
	TransportTypes []string
}

// Orchestrator sequences resolve, fetch, record and notify for each query.
//
// Overlapping queries run independently. Only the newest one may change the
// recent list or send a notification; older ones still return their
// departures with Result.Stale set.
type Orchestrator struct {
	dir      *directory.Directory
	fetcher  Fetcher
	store    *stoplist.Store
	notifier *notify.Dispatcher
	msgs     *messages.Printer
	opts     Options
	logger   *slog.Logger

	// OnTransition, if set, observes state changes of the newest query.
	// It is called without any lock held.
	OnTransition func(from, to State)

	mu    sync.Mutex
	state State
	gen   uint64
}

// New creates an Orchestrator.
func New(dir *directory.Directory, fetcher Fetcher, store *stoplist.Store, notifier *notify.Dispatcher,
	msgs *messages.Printer, opts Options, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		dir:      dir,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		msgs:     msgs,
		opts:     opts,
		logger:   logger,
	}
}

// State returns the state of the newest query.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit runs a query for term. d is consulted only when several stops match;
// a nil d turns that case into InvalidSelection with the candidates listed.
// Failures are reported in the Result, never as an error or panic.
func (o *Orchestrator) Submit(ctx context.Context, term string, d resolver.Disambiguator) Result {
	gen := o.begin()

	stop, err := resolver.Resolve(ctx, term, o.dir, d)
	if err != nil {
		res := o.resolveFailure(strings.TrimSpace(term), err)
		o.logger.Info("query failed", "term", term, "kind", res.Kind, "error", err)
		return o.finish(gen, Failed, res)
	}

	o.transition(gen, Fetching)
	deps, err := o.fetcher.Fetch(ctx, stop, o.opts.Limit, o.opts.TransportTypes)
	if err != nil {
		o.logger.Warn("fetching departures", "stop", stop.Name, "error", err)
		return o.finish(gen, Failed, Result{
			Stop:    stop,
			Kind:    NetworkError,
			Message: o.msgs.NetworkError(),
		})
	}

	res := Result{Stop: stop, Departures: deps}
	if len(deps) == 0 {
		res.Kind = EmptyResult
		res.Message = o.msgs.EmptyResult(stop.Name)
		return o.finish(gen, Succeeded, res)
	}

	o.mu.Lock()
	if gen != o.gen {
		res.Stale = true
	} else {
		if err := o.store.RecordRecent(ctx, stop.Name); err != nil {
			o.logger.Warn("recording recent stop", "stop", stop.Name, "error", err)
		}
		o.notifier.Notify(ctx, stop.Name, deps)
	}
	o.mu.Unlock()

	if res.Stale {
		o.logger.Debug("discarding side effects of superseded query", "stop", stop.Name)
	}
	return o.finish(gen, Succeeded, res)
}

func (o *Orchestrator) resolveFailure(term string, err error) Result {
	var noMatch *resolver.NoMatchError
	var sel *resolver.SelectionError
	switch {
	case errors.Is(err, resolver.ErrEmptyTerm):
		return Result{Kind: EmptyTerm, Message: o.msgs.EmptyTerm()}
	case errors.As(err, &noMatch):
		return Result{Kind: NoMatch, Message: o.msgs.NoMatch(noMatch.Term)}
	case errors.As(err, &sel):
		return Result{Kind: InvalidSelection, Message: o.msgs.InvalidSelection(), Candidates: sel.Candidates}
	default:
		return Result{Kind: InvalidSelection, Message: o.msgs.InvalidSelection()}
	}
}

// begin starts a new generation and moves it to Resolving.
func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	o.gen++
	gen := o.gen
	from := o.state
	o.state = Resolving
	o.mu.Unlock()

	o.notifyTransition(from, Resolving)
	return gen
}

func (o *Orchestrator) transition(gen uint64, to State) {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return
	}
	from := o.state
	o.state = to
	o.mu.Unlock()

	o.notifyTransition(from, to)
}

// finish moves the query through its terminal state back to Idle.
func (o *Orchestrator) finish(gen uint64, terminal State, res Result) Result {
	o.transition(gen, terminal)
	o.transition(gen, Idle)
	return res
}

func (o *Orchestrator) notifyTransition(from, to State) {
	if o.OnTransition != nil && from != to {
		o.OnTransition(from, to)
	}
}

// Recent returns the recent stops, most recent first.
func (o *Orchestrator) Recent() []string { return o.store.Recent() }

// Favorites returns the favorite stops.
func (o *Orchestrator) Favorites() []string { return o.store.Favorites() }

// IsFavorite reports whether name is a favorite.
func (o *Orchestrator) IsFavorite(name string) bool { return o.store.IsFavorite(name) }

// ToggleFavorite flips name's favorite membership and reports whether it is
// now a favorite. Any name can be favorited, including stops that are no
// longer in the directory. A blank name is ignored. Persistence failures are
// logged; the in-memory list keeps the change.
func (o *Orchestrator) ToggleFavorite(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	fav, err := o.store.ToggleFavorite(ctx, name)
	if err != nil {
		o.logger.Warn("saving favorites", "stop", name, "error", err)
	}
	return fav
}

// RemoveFavorite drops name from the favorites if present.
func (o *Orchestrator) RemoveFavorite(ctx context.Context, name string) {
	if err := o.store.RemoveFavorite(ctx, strings.TrimSpace(name)); err != nil {
		o.logger.Warn("saving favorites", "stop", name, "error", err)
	}
}

// ClearRecent empties the recent list.
func (o *Orchestrator) ClearRecent(ctx context.Context) {
	if err := o.store.ClearRecent(ctx); err != nil {
		o.logger.Warn("clearing recent stops", "error", err)
	}
}
