// Package notify delivers departure summaries to the user after a successful query.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tramboard/internal/departure"
)

// Permission is the user's notification consent.
type Permission string

const (
	Default Permission = "default"
	Granted Permission = "granted"
	Denied  Permission = "denied"
)

// ParsePermission maps a stored or configured value to a Permission.
// "prompt" and unknown values are Default.
func ParsePermission(s string) Permission {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case Granted:
		return Granted
	case Denied:
		return Denied
	}
	return Default
}

// Notification is one user-visible message.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Capability is a platform's ability to show notifications.
type Capability interface {
	Permission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, n Notification) error
}

// Compose builds the notification for a stop's departures: one
// "<line> → <destination>: <time> (<status>)" line per departure.
func Compose(stopName string, deps []departure.Departure) Notification {
	lines := make([]string, len(deps))
	for i, d := range deps {
		lines[i] = fmt.Sprintf("%s → %s: %s (%s)", d.Line, d.Destination, d.Time, d.Status)
	}
	return Notification{Title: stopName, Body: strings.Join(lines, "\n")}
}

// Dispatcher sends departure summaries through a Capability. Delivery is
// fire-and-forget: Notify never blocks on Show and never reports its failure.
type Dispatcher struct {
	cap    Capability
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A nil capability disables notifications.
func NewDispatcher(c Capability, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{cap: c, logger: logger}
}

// RequestPermission asks for consent once. Errors are logged and reported as Default.
func (d *Dispatcher) RequestPermission(ctx context.Context) Permission {
	if d.cap == nil {
		return Denied
	}
	p, err := d.cap.RequestPermission(ctx)
	if err != nil {
		d.logger.Warn("notification permission request failed", "error", err)
		return Default
	}
	d.logger.Debug("notification permission", "permission", p)
	return p
}

// Notify shows a summary of deps titled stopName if permission is granted.
// Both the permission check and delivery run on their own goroutine so a
// slow capability never holds up the caller.
func (d *Dispatcher) Notify(ctx context.Context, stopName string, deps []departure.Departure) {
	if d.cap == nil || len(deps) == 0 {
		return
	}

	n := Compose(stopName, deps)
	// The caller's context usually ends with the request.
	showCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		p, err := d.cap.Permission(showCtx)
		if err != nil {
			d.logger.Warn("reading notification permission", "error", err)
			return
		}
		if p != Granted {
			return
		}
		if err := d.cap.Show(showCtx, n); err != nil {
			d.logger.Warn("showing notification", "stop", stopName, "error", err)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
