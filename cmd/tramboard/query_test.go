package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"tramboard/internal/config"
	"tramboard/internal/departure"
	"tramboard/internal/resolver"
)

func TestQueryOverrides(t *testing.T) {
	tests := []struct {
		name      string
		o         queryOverrides
		wantErr   bool
		wantLimit int
	}{
		{"none", queryOverrides{}, false, 10},
		{"limit", queryOverrides{limit: 5, types: []string{"TRAM"}}, false, 5},
		{"limit too high", queryOverrides{limit: 500}, true, 0},
		{"negative limit", queryOverrides{limit: -1}, true, 0},
		{"blank type", queryOverrides{types: []string{""}}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			err := tt.o.apply(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", cfg.Limit, tt.wantLimit)
			}
		})
	}
}

type fetchFunc func(ctx context.Context) ([]departure.Departure, error)

func (f fetchFunc) Fetch(ctx context.Context, _ resolver.Stop, _ int, _ []string) ([]departure.Departure, error) {
	return f(ctx)
}

// untilCancelled blocks until its context ends.
var untilCancelled = fetchFunc(func(ctx context.Context) ([]departure.Departure, error) {
	<-ctx.Done()
	return nil, ctx.Err()
})

func fetchWithin(t *testing.T, f spinnerFetcher) ([]departure.Departure, error) {
	t.Helper()
	type result struct {
		deps []departure.Departure
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		deps, err := f.Fetch(context.Background(), resolver.Stop{Name: "Borstei"}, 10, nil)
		ch <- result{deps, err}
	}()
	select {
	case r := <-ch:
		return r.deps, r.err
	case <-time.After(2 * time.Second):
		t.Fatal("fetch kept running after the spinner returned")
		return nil, nil
	}
}

func TestSpinnerFetcher_AbortCancelsFetch(t *testing.T) {
	aborted := spinnerFetcher{
		next: untilCancelled,
		spin: func(string, func()) error { return errors.New("user aborted") },
	}
	if _, err := fetchWithin(t, aborted); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	quit := spinnerFetcher{
		next: untilCancelled,
		spin: func(string, func()) error { return nil },
	}
	if _, err := fetchWithin(t, quit); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSpinnerFetcher_WaitsForFetch(t *testing.T) {
	want := []departure.Departure{{Line: "TRAM20", Destination: "Moosach"}}
	f := spinnerFetcher{
		next: fetchFunc(func(ctx context.Context) ([]departure.Departure, error) {
			time.Sleep(10 * time.Millisecond)
			return want, ctx.Err()
		}),
		title: "Searching…",
		spin: func(title string, wait func()) error {
			if title != "Searching…" {
				t.Errorf("title = %q", title)
			}
			wait()
			return nil
		},
	}
	deps, err := fetchWithin(t, f)
	if err != nil || len(deps) != 1 || deps[0].Line != "TRAM20" {
		t.Errorf("Fetch = %v, %v", deps, err)
	}
}
