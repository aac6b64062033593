// Package navigation holds the register's screens and the guards that run
// when moving between them.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/odyssey-erp/celtis-pos/internal/confirm"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
)

// Route is a screen path.
type Route string

const (
	RouteRoot    Route = "/"
	RouteSell    Route = "/sell"
	RouteParked  Route = "/parked"
	RouteHistory Route = "/history"
)

var (
	// ErrUnknownRoute is returned for paths that are not screens.
	ErrUnknownRoute = errors.New("navigation: unknown route")
	// ErrCancelled is returned when a guard refuses the move.
	ErrCancelled = errors.New("navigation: cancelled")
)

// Routes lists the screens in menu order.
func Routes() []Route {
	return []Route{RouteSell, RouteParked, RouteHistory}
}

// Resolve maps a path to its screen, following the root redirect.
func Resolve(path string) (Route, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = string(RouteRoot)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = string(RouteRoot)
		}
	}
	switch Route(p) {
	case RouteRoot:
		return RouteSell, nil
	case RouteSell, RouteParked, RouteHistory:
		return Route(p), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRoute, path)
}

// Guard approves a move. Returning false keeps the current screen.
type Guard func(ctx context.Context, from, to Route) (bool, error)

// Router tracks the current screen. It is safe for concurrent use.
type Router struct {
	mu      sync.Mutex
	current Route
	guards  []Guard
	logger  *slog.Logger
}

// NewRouter starts on RouteSell.
func NewRouter(logger *slog.Logger, guards ...Guard) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{current: RouteSell, guards: guards, logger: logger}
}

// Current returns the active screen.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate moves to path after every guard approves. Moving to the current
// screen is a no-op and skips the guards.
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	to, err := Resolve(path)
	if err != nil {
		return r.Current(), err
	}
	from := r.Current()
	if from == to {
		return to, nil
	}
	for _, guard := range r.guards {
		ok, err := guard(ctx, from, to)
		if err != nil {
			return from, fmt.Errorf("navigation: guard: %w", err)
		}
		if !ok {
			r.logger.Debug("navigation cancelled", slog.String("from", string(from)), slog.String("to", string(to)))
			return from, ErrCancelled
		}
	}
	r.mu.Lock()
	r.current = to
	r.mu.Unlock()
	return to, nil
}

// SaleChecker reports whether the active sale has lines.
type SaleChecker interface {
	HasActiveItems() bool
}

// Translator renders UI strings.
type Translator interface {
	T(key string, vars i18n.Vars) string
}

// LeavesOpenSale reports whether moving from -> to abandons the sell
// screen while the active sale has items.
func LeavesOpenSale(sale SaleChecker, from, to Route) bool {
	return from == RouteSell && to != RouteSell && sale.HasActiveItems()
}

// LeaveSalePrompt is the question asked before leaving an open sale.
func LeaveSalePrompt(tr Translator) confirm.Options {
	return confirm.Options{
		Title:        tr.T("unsavedLeaveConfirm", nil),
		Message:      tr.T("unsavedLeaveMessage", nil),
		ConfirmLabel: tr.T("confirm", nil),
		CancelLabel:  tr.T("cancel", nil),
		Variant:      confirm.VariantWarning,
	}
}

// LeaveSaleGuard asks for confirmation before leaving the sell screen with
// an open sale.
func LeaveSaleGuard(sale SaleChecker, asker confirm.Asker, tr Translator) Guard {
	return func(ctx context.Context, from, to Route) (bool, error) {
		if !LeavesOpenSale(sale, from, to) {
			return true, nil
		}
		return asker.Ask(ctx, LeaveSalePrompt(tr))
	}
}
