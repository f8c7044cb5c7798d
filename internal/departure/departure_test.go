package departure

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tramboard/internal/mvg"
	"tramboard/internal/resolver"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var berlin = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}()

type fakeSource struct {
	deps  []mvg.RawDeparture
	err   error
	calls int
}

func (f *fakeSource) Departures(ctx context.Context, id string, limit int, types []string) ([]mvg.RawDeparture, error) {
	f.calls++
	return f.deps, f.err
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, Status{Kind: Cancelled}, StatusOf(true, 7), "cancelled wins over delay")
	assert.Equal(t, Status{Kind: Delayed, DelayMinutes: 3}, StatusOf(false, 3))
	assert.Equal(t, Status{Kind: OnTime}, StatusOf(false, 0))
	assert.Equal(t, Status{Kind: OnTime}, StatusOf(false, -2))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "On time", StatusOf(false, 0).String())
	assert.Equal(t, "Delayed +4min", StatusOf(false, 4).String())
	assert.Equal(t, "Cancelled", StatusOf(true, 4).String())
}

func TestStatus_JSON(t *testing.T) {
	b, err := json.Marshal(StatusOf(false, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"delayed","delayMinutes":4}`, string(b))

	b, err = json.Marshal(StatusOf(true, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"cancelled"}`, string(b))
}

func TestNormalize_Borstei(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, berlin)
	raw := mvg.RawDeparture{
		TransportType:         "TRAM",
		Label:                 "20",
		Destination:           "Moosach",
		RealtimeDepartureTime: now.UnixMilli() + 300000,
	}

	d := Normalize(raw, now, berlin)
	assert.Equal(t, "TRAM20", d.Line)
	assert.Equal(t, "Moosach", d.Destination)
	assert.Equal(t, 5, d.MinutesUntil)
	assert.Equal(t, "08:05", d.Time)
	assert.Equal(t, Status{Kind: OnTime}, d.Status)
}

func TestNormalize_Rounding(t *testing.T) {
	now := time.Date(2026, 3, 2, 23, 58, 0, 0, berlin)
	tests := []struct {
		offsetMs int64
		want     int
	}{
		{0, 0},
		{29999, 0},
		{30000, 1},
		{90000, 2},
		{-90000, -1},
		{-150000, -2},
		{-600000, -10},
	}
	for _, tt := range tests {
		raw := mvg.RawDeparture{RealtimeDepartureTime: now.UnixMilli() + tt.offsetMs}
		assert.Equal(t, tt.want, Normalize(raw, now, berlin).MinutesUntil, "offset %dms", tt.offsetMs)
	}

	wrapped := Normalize(mvg.RawDeparture{RealtimeDepartureTime: now.UnixMilli() + 5*60000}, now, berlin)
	assert.Equal(t, "00:03", wrapped.Time, "24-hour clock wraps past midnight")
}

func TestFetch_SingleReferenceInstant(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, berlin)
	clock := base
	src := &fakeSource{deps: []mvg.RawDeparture{
		{TransportType: "TRAM", Label: "20", RealtimeDepartureTime: base.Add(2 * time.Minute).UnixMilli()},
		{TransportType: "TRAM", Label: "21", RealtimeDepartureTime: base.Add(4 * time.Minute).UnixMilli()},
		{TransportType: "BUS", Label: "53", RealtimeDepartureTime: base.Add(1 * time.Minute).UnixMilli()},
	}}

	f := NewFetcher(src, berlin, time.Second, testLogger)
	f.SetClock(func() time.Time {
		cur := clock
		clock = clock.Add(45 * time.Second)
		return cur
	})

	deps, err := f.Fetch(context.Background(), resolver.Stop{Name: "Borstei", ID: "de:09184:460"}, 10, []string{"TRAM"})
	require.NoError(t, err)
	require.Len(t, deps, 3)

	assert.Equal(t, []int{2, 4, 1}, []int{deps[0].MinutesUntil, deps[1].MinutesUntil, deps[2].MinutesUntil})
	assert.Equal(t, []string{"TRAM20", "TRAM21", "BUS53"}, []string{deps[0].Line, deps[1].Line, deps[2].Line}, "provider order kept")
}

func TestFetch_Empty(t *testing.T) {
	f := NewFetcher(&fakeSource{}, berlin, time.Second, testLogger)
	deps, err := f.Fetch(context.Background(), resolver.Stop{ID: "x"}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestFetch_NetworkError(t *testing.T) {
	src := &fakeSource{
		deps: []mvg.RawDeparture{{Label: "20"}},
		err:  errors.New("connection refused"),
	}
	f := NewFetcher(src, berlin, time.Second, testLogger)

	deps, err := f.Fetch(context.Background(), resolver.Stop{ID: "x"}, 10, nil)
	assert.Nil(t, deps, "no partial data")
	assert.ErrorIs(t, err, ErrNetwork)

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "x", ne.StopID)
}

type slowSource struct{}

func (slowSource) Departures(ctx context.Context, id string, limit int, types []string) ([]mvg.RawDeparture, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetch_Timeout(t *testing.T) {
	f := NewFetcher(slowSource{}, berlin, 20*time.Millisecond, testLogger)
	_, err := f.Fetch(context.Background(), resolver.Stop{ID: "x"}, 10, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGroupByLine_StableFirstSeen(t *testing.T) {
	deps := []Departure{
		{Line: "TRAM20", Destination: "Moosach"},
		{Line: "TRAM21", Destination: "Westfriedhof"},
		{Line: "TRAM20", Destination: "Karlsplatz"},
		{Line: "BUS53", Destination: "Münchner Freiheit"},
		{Line: "TRAM21", Destination: "Karlsplatz"},
	}

	groups := GroupByLine(deps)
	require.Len(t, groups, 3)
	assert.Equal(t, "TRAM20", groups[0].Line)
	assert.Equal(t, "TRAM21", groups[1].Line)
	assert.Equal(t, "BUS53", groups[2].Line)
	assert.Equal(t, "Moosach", groups[0].Departures[0].Destination)
	assert.Equal(t, "Karlsplatz", groups[0].Departures[1].Destination)

	assert.Empty(t, GroupByLine(nil))
}
