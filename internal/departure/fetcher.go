package departure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tramboard/internal/mvg"
	"tramboard/internal/resolver"
)

// ErrNetwork is matched by every *NetworkError.
var ErrNetwork = errors.New("network error")

// NetworkError wraps any transport or decoding failure of a fetch.
type NetworkError struct {
	StopID string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch departures for %s: %v", e.StopID, e.Err)
}

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func (e *NetworkError) Unwrap() error { return e.Err }

// Source returns raw departures for a stop id. *mvg.Client implements it.
type Source interface {
	Departures(ctx context.Context, globalID string, limit int, transportTypes []string) ([]mvg.RawDeparture, error)
}

// Fetcher loads and normalizes departures for resolved stops.
type Fetcher struct {
	source  Source
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher. Times are shown in loc; each fetch is bounded by timeout.
func NewFetcher(source Source, loc *time.Location, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if loc == nil {
		loc = time.Local
	}
	return &Fetcher{
		source:  source,
		loc:     loc,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// SetClock replaces the time source.
func (f *Fetcher) SetClock(now func() time.Time) {
	f.now = now
}

// Fetch returns the departures for stop in provider order. An empty slice with
// a nil error means the stop has no upcoming departures. Any failure is a
// *NetworkError and no partial data is returned.
func (f *Fetcher) Fetch(ctx context.Context, stop resolver.Stop, limit int, transportTypes []string) ([]Departure, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	raw, err := f.source.Departures(ctx, stop.ID, limit, transportTypes)
	if err != nil {
		return nil, &NetworkError{StopID: stop.ID, Err: err}
	}

	// One reference instant for the whole response.
	now := f.now()
	deps := make([]Departure, 0, len(raw))
	for _, r := range raw {
		deps = append(deps, Normalize(r, now, f.loc))
	}

	f.logger.Debug("departures fetched", "stop", stop.Name, "id", stop.ID, "count", len(deps))
	return deps, nil
}
