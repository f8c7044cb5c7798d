package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// PermissionKey is the key-value entry holding the terminal's permission.
const PermissionKey = "notificationPermission"

// KV is the persistent key-value capability. *storage.DB implements it.
type KV interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
}

// Prompt asks the user whether notifications may be shown.
type Prompt func(ctx context.Context) (bool, error)

// Terminal shows notifications as a bordered box on a writer.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	kv     KV
	prompt Prompt

	box   lipgloss.Style
	title lipgloss.Style
}

// NewTerminal creates a Terminal writing to w. prompt may be nil, in which
// case the permission stays Default until SetPermission is called.
func NewTerminal(w io.Writer, kv KV, prompt Prompt) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:      w,
		kv:     kv,
		prompt: prompt,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4f9cf9")).
			Padding(0, 1),
		title: r.NewStyle().Bold(true),
	}
}

func (t *Terminal) Permission(ctx context.Context) (Permission, error) {
	v, err := t.kv.GetValue(ctx, PermissionKey)
	if err != nil {
		return Default, fmt.Errorf("read notification permission: %w", err)
	}
	return ParsePermission(v), nil
}

// RequestPermission prompts only while the permission is Default and
// persists the answer.
func (t *Terminal) RequestPermission(ctx context.Context) (Permission, error) {
	p, err := t.Permission(ctx)
	if err != nil || p != Default || t.prompt == nil {
		return p, err
	}
	ok, err := t.prompt(ctx)
	if err != nil {
		return Default, fmt.Errorf("notification prompt: %w", err)
	}
	p = Denied
	if ok {
		p = Granted
	}
	return p, t.SetPermission(ctx, p)
}

// SetPermission stores p without prompting.
func (t *Terminal) SetPermission(ctx context.Context, p Permission) error {
	if err := t.kv.SetValue(ctx, PermissionKey, string(p)); err != nil {
		return fmt.Errorf("save notification permission: %w", err)
	}
	return nil
}

func (t *Terminal) Show(_ context.Context, n Notification) error {
	out := t.box.Render(t.title.Render(n.Title) + "\n" + n.Body)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, out)
	return err
}
