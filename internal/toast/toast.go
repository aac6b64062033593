// Package toast keeps short-lived notifications that dismiss themselves.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tone styles a toast.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
)

// DefaultTimeout is how long a toast stays visible unless overridden.
const DefaultTimeout = 2200 * time.Millisecond

// Toast is one visible notification.
type Toast struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Tone      Tone   `json:"tone"`
	TimeoutMs int64  `json:"timeoutMs"`
}

// Option customises a toast.
type Option func(*settings)

type settings struct {
	tone    Tone
	timeout time.Duration
}

// WithTone sets the tone.
func WithTone(t Tone) Option {
	return func(s *settings) { s.tone = t }
}

// WithTimeout sets how long the toast stays visible.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// Center holds the visible toasts in display order. It is safe for
// concurrent use.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	timers map[string]*time.Timer
	newID  func() string
}

// NewCenter returns an empty Center.
func NewCenter() *Center {
	return &Center{
		timers: make(map[string]*time.Timer),
		newID:  func() string { return "t_" + uuid.NewString() },
	}
}

// Show appends a toast and schedules its dismissal.
func (c *Center) Show(message string, opts ...Option) Toast {
	cfg := settings{tone: ToneNeutral, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := Toast{
		ID:        c.newID(),
		Message:   message,
		Tone:      cfg.tone,
		TimeoutMs: cfg.timeout.Milliseconds(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = append(append([]Toast(nil), c.toasts...), t)
	c.timers[t.ID] = time.AfterFunc(cfg.timeout, func() { c.Dismiss(t.ID) })
	return t
}

// Success shows a toast with ToneSuccess.
func (c *Center) Success(message string) Toast {
	return c.Show(message, WithTone(ToneSuccess))
}

// Danger shows a toast with ToneDanger.
func (c *Center) Danger(message string) Toast {
	return c.Show(message, WithTone(ToneDanger))
}

// Dismiss removes a toast. Unknown ids are ignored.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	kept := make([]Toast, 0, len(c.toasts))
	for _, t := range c.toasts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.toasts = kept
}

// List returns the visible toasts, oldest first.
func (c *Center) List() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Toast(nil), c.toasts...)
}

// Close stops pending timers and drops every toast.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	c.toasts = nil
}
