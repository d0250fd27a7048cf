package ports

import "context"

// Dispatcher runs work on the host interaction thread and waits for it.
type Dispatcher interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// DirectDispatcher runs fn on the calling goroutine.
type DirectDispatcher struct{}

func (DirectDispatcher) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
