// Package confirm asks the operator a yes/no question and waits for the
// answer.
package confirm

import (
	"context"
	"sync"
)

// Variant styles the dialog.
type Variant string

const (
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
)

const (
	DefaultConfirmLabel = "Confirm"
	DefaultCancelLabel  = "Cancel"
)

// Options describe one question.
type Options struct {
	Title        string  `json:"title"`
	Message      string  `json:"message"`
	ConfirmLabel string  `json:"confirmLabel"`
	CancelLabel  string  `json:"cancelLabel"`
	Variant      Variant `json:"variant"`
}

// WithDefaults fills empty labels and variant.
func (o Options) WithDefaults() Options {
	if o.ConfirmLabel == "" {
		o.ConfirmLabel = DefaultConfirmLabel
	}
	if o.CancelLabel == "" {
		o.CancelLabel = DefaultCancelLabel
	}
	if o.Variant == "" {
		o.Variant = VariantDanger
	}
	return o
}

// Asker resolves a question to true (confirmed) or false (cancelled).
type Asker interface {
	Ask(ctx context.Context, opts Options) (bool, error)
}

// AskerFunc adapts a function to Asker.
type AskerFunc func(ctx context.Context, opts Options) (bool, error)

// Ask calls f.
func (f AskerFunc) Ask(ctx context.Context, opts Options) (bool, error) {
	return f(ctx, opts)
}

// Always answers every question with answer.
func Always(answer bool) Asker {
	return AskerFunc(func(context.Context, Options) (bool, error) { return answer, nil })
}

type pending struct {
	opts   Options
	answer chan bool
}

// Dialog holds at most one open question. Ask blocks until Confirm, Cancel,
// a newer Ask or ctx ends it.
type Dialog struct {
	mu      sync.Mutex
	current *pending
	opened  chan Options
}

// NewDialog returns a closed dialog.
func NewDialog() *Dialog {
	return &Dialog{opened: make(chan Options, 1)}
}

// Ask opens the dialog. A question already open is answered with false.
func (d *Dialog) Ask(ctx context.Context, opts Options) (bool, error) {
	p := &pending{opts: opts.WithDefaults(), answer: make(chan bool, 1)}

	d.mu.Lock()
	if prev := d.current; prev != nil {
		prev.answer <- false
	}
	d.current = p
	select {
	case <-d.opened:
	default:
	}
	d.opened <- p.opts
	d.mu.Unlock()

	select {
	case ok := <-p.answer:
		return ok, nil
	case <-ctx.Done():
		d.mu.Lock()
		if d.current == p {
			d.current = nil
		}
		d.mu.Unlock()
		return false, ctx.Err()
	}
}

// Opened delivers the options of the most recently opened question.
func (d *Dialog) Opened() <-chan Options {
	return d.opened
}

// Current returns the open question, if any.
func (d *Dialog) Current() (Options, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Options{}, false
	}
	return d.current.opts, true
}

// Confirm answers the open question with true. It reports whether a
// question was open.
func (d *Dialog) Confirm() bool {
	return d.resolve(true)
}

// Cancel answers the open question with false.
func (d *Dialog) Cancel() bool {
	return d.resolve(false)
}

func (d *Dialog) resolve(answer bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return false
	}
	d.current.answer <- answer
	d.current = nil
	return true
}
