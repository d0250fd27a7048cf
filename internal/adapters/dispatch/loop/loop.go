// Package loop runs work on a single dedicated goroutine, standing in for a
// host application's interaction thread.
package loop

import (
	"context"
	"errors"
	"sync"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/ports"
)

var ErrStopped = errors.New("interaction loop stopped")

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

type Loop struct {
	jobs chan job
	quit chan struct{}

	stopOnce sync.Once
	finished chan struct{}
}

var _ ports.Dispatcher = (*Loop)(nil)

// Start launches the loop goroutine.
func Start() *Loop {
	l := &Loop{
		jobs:     make(chan job),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go l.run()
	return l
}

// Do runs fn on the loop goroutine and returns its error. It gives up when
// ctx is done before fn starts; once started, fn runs to completion.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrStopped
	}

	return <-j.done
}

// Stop ends the loop after the job in progress, if any.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	<-l.finished
}

func (l *Loop) run() {
	defer close(l.finished)

	for {
		select {
		case <-l.quit:
			return
		case j := <-l.jobs:
			j.done <- j.fn(j.ctx)
		}
	}
}
