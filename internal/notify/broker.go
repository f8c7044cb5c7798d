package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a notification as streamed to web clients.
type Event struct {
	ID string `json:"id"`
	Notification
}

// Target names the web client a notification belongs to.
type Target struct {
	Client string
	// NextPage holds the notification for the client's next subscription,
	// for queries answered with a new page that replaces the subscribed one.
	NextPage bool
}

type targetKey struct{}

// WithTarget attaches the client a query's notification is meant for.
func WithTarget(ctx context.Context, t Target) context.Context {
	return context.WithValue(ctx, targetKey{}, t)
}

// TargetFrom returns the target attached by WithTarget.
func TargetFrom(ctx context.Context) (Target, bool) {
	t, ok := ctx.Value(targetKey{}).(Target)
	return t, ok
}

const (
	// subscriberBuffer is how many events a subscriber may fall behind before
	// events are dropped for it. It also caps a client's pending events.
	subscriberBuffer = 8
	// pendingTTL is how long an undelivered event waits for its client.
	pendingTTL = time.Minute
)

type pendingEvent struct {
	ev Event
	at time.Time
}

// Broker delivers notifications to the Server-Sent-Event subscribers of the
// client that ran the query. Events for a client with no subscriber are held
// until it subscribes or they expire. Browsers hold the real permission, so
// the broker's own permission only says whether the server forwards anything
// at all.
type Broker struct {
	mu      sync.Mutex
	subs    map[string]map[chan Event]struct{}
	pending map[string][]pendingEvent
	perm    Permission
	logger  *slog.Logger
	now     func() time.Time
}

// NewBroker creates a Broker. Use Denied to stop forwarding.
func NewBroker(perm Permission, logger *slog.Logger) *Broker {
	return &Broker{
		subs:    make(map[string]map[chan Event]struct{}),
		pending: make(map[string][]pendingEvent),
		perm:    perm,
		logger:  logger,
		now:     time.Now,
	}
}

func (b *Broker) Permission(context.Context) (Permission, error) { return b.perm, nil }

func (b *Broker) RequestPermission(context.Context) (Permission, error) { return b.perm, nil }

// Show sends n to the subscribers of the client named by ctx's Target without
// blocking, or holds it for that client's next subscription. A notification
// without a target is dropped.
func (b *Broker) Show(ctx context.Context, n Notification) error {
	t, ok := TargetFrom(ctx)
	if !ok || t.Client == "" {
		b.logger.Debug("dropping notification without client", "title", n.Title)
		return nil
	}
	ev := Event{ID: uuid.NewString(), Notification: n}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.prune()

	subs := b.subs[t.Client]
	if t.NextPage || len(subs) == 0 {
		q := append(b.pending[t.Client], pendingEvent{ev: ev, at: b.now()})
		if len(q) > subscriberBuffer {
			q = q[len(q)-subscriberBuffer:]
		}
		b.pending[t.Client] = q
		return nil
	}
	for ch := range subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("dropping notification for slow subscriber", "id", ev.ID)
		}
	}
	return nil
}

// Subscribe registers a subscriber for client and hands it the client's
// pending events. The returned cancel func must be called once the
// subscriber is done; it closes the channel.
func (b *Broker) Subscribe(client string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.prune()
	if b.subs[client] == nil {
		b.subs[client] = make(map[chan Event]struct{})
	}
	b.subs[client][ch] = struct{}{}
	for _, p := range b.pending[client] {
		ch <- p.ev
	}
	delete(b.pending, client)
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[client], ch)
			if len(b.subs[client]) == 0 {
				delete(b.subs, client)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// prune drops expired pending events. Callers hold b.mu.
func (b *Broker) prune() {
	cutoff := b.now().Add(-pendingTTL)
	for client, q := range b.pending {
		i := 0
		for i < len(q) && q[i].at.Before(cutoff) {
			i++
		}
		if i == len(q) {
			delete(b.pending, client)
		} else {
			b.pending[client] = q[i:]
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.subs {
		n += len(s)
	}
	return n
}
