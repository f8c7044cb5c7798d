// Package departure normalizes raw provider departures into board entries.
package departure

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"tramboard/internal/mvg"
)

// StatusKind is the punctuality class of a departure.
type StatusKind int

const (
	OnTime StatusKind = iota
	Delayed
	Cancelled
)

func (k StatusKind) String() string {
	switch k {
	case Delayed:
		return "delayed"
	case Cancelled:
		return "cancelled"
	default:
		return "on_time"
	}
}

// Status is a departure's punctuality. DelayMinutes is only set for Delayed.
type Status struct {
	Kind         StatusKind
	DelayMinutes int
}

// StatusOf derives the status of a raw departure. Cancellation wins over delay.
func StatusOf(cancelled bool, delayMinutes int) Status {
	switch {
	case cancelled:
		return Status{Kind: Cancelled}
	case delayMinutes > 0:
		return Status{Kind: Delayed, DelayMinutes: delayMinutes}
	default:
		return Status{Kind: OnTime}
	}
}

// String renders the status as shown in notifications.
func (s Status) String() string {
	switch s.Kind {
	case Cancelled:
		return "Cancelled"
	case Delayed:
		return fmt.Sprintf("Delayed +%dmin", s.DelayMinutes)
	default:
		return "On time"
	}
}

type statusJSON struct {
	Kind         string `json:"kind"`
	DelayMinutes int    `json:"delayMinutes,omitempty"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{Kind: s.Kind.String(), DelayMinutes: s.DelayMinutes})
}

// Departure is a normalized departure.
type Departure struct {
	Line         string    `json:"line"` // transport type + label, e.g. "TRAM20"
	Destination  string    `json:"destination"`
	Time         string    `json:"time"`         // 24-hour HH:MM in the viewer's zone
	MinutesUntil int       `json:"minutesUntil"` // negative when overdue
	Status       Status    `json:"status"`
	DepartsAt    time.Time `json:"departsAt"`
}

// Normalize converts a raw departure relative to now, formatting the clock time in loc.
func Normalize(raw mvg.RawDeparture, now time.Time, loc *time.Location) Departure {
	at := time.UnixMilli(raw.RealtimeDepartureTime).In(loc)
	return Departure{
		Line:         raw.TransportType + raw.Label,
		Destination:  raw.Destination,
		Time:         at.Format("15:04"),
		MinutesUntil: minutesUntil(at, now),
		Status:       StatusOf(raw.Cancelled, raw.DelayInMinutes),
		DepartsAt:    at,
	}
}

// minutesUntil rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func minutesUntil(at, now time.Time) int {
	ms := float64(at.UnixMilli() - now.UnixMilli())
	return int(math.Floor(ms/60000 + 0.5))
}
