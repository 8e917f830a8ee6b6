package events

import (
	"context"
	"errors"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

// Func adapts a function to ledger.Notifier.
type Func func(ctx context.Context, e ledger.Event) error

func (f Func) Notify(ctx context.Context, e ledger.Event) error {
	return f(ctx, e)
}

// Multi delivers every event to each notifier in turn. A failing notifier does
// not stop the others; their errors are joined.
type Multi []ledger.Notifier

func (m Multi) Notify(ctx context.Context, e ledger.Event) error {
	var errs []error

	for _, n := range m {
		if n == nil {
			continue
		}

		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
