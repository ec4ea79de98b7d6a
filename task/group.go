// Package task runs the long-lived tasks of a storefront process (serving
// HTTP, draining it, watching for signals) as a Group which stops together.
package task

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Func is a task of a Group. It's passed the Group Context, and must return
// once that Context is cancelled.
type Func func(ctx context.Context) error

// Group is a group of named tasks which run concurrently, and which are
// collectively blocked on until all are complete. The Group Context is
// cancelled by the first task to return a non-nil error, by Cancel, or by
// cancellation of the parent Context. A task which returns context.Canceled
// after the Group is cancelled has exited cleanly.
//
// Group is not itself thread-safe: tasks are queued, run, and waited on from
// a single goroutine.
type Group struct {
	ctx      context.Context
	cancelFn context.CancelFunc

	tasks   []namedTask
	eg      *errgroup.Group
	started bool
}

type namedTask struct {
	name string
	fn   Func
}

// NewGroup returns a new, empty Group with the given parent Context.
func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{ctx: ctx, eg: eg, cancelFn: cancel}
}

// Context returns the Group Context.
func (g *Group) Context() context.Context { return g.ctx }

// Cancel the Group Context.
func (g *Group) Cancel() { g.cancelFn() }

// Queue a task |name| for execution by GoRun. Queue panics if GoRun was
// already called.
func (g *Group) Queue(name string, fn Func) {
	if g.started {
		panic("Queue called after GoRun")
	}
	g.tasks = append(g.tasks, namedTask{name: name, fn: fn})
}

// GoRun starts all queued tasks. It panics if called more than once.
func (g *Group) GoRun() {
	if g.started {
		panic("GoRun already called")
	}
	g.started = true

	for i := range g.tasks {
		var t = g.tasks[i]
		g.eg.Go(func() error { return g.run(t) })
	}
}

// Wait for started tasks, returning only after all complete. The first
// failed task's error is returned, prefixed with its name. Wait panics if
// GoRun wasn't called.
func (g *Group) Wait() error {
	if !g.started {
		panic("Wait called before GoRun")
	}
	return g.eg.Wait()
}

func (g *Group) run(t namedTask) error {
	var started = time.Now()
	log.WithField("task", t.name).Debug("task started")

	var err = t.fn(g.ctx)
	if errors.Is(err, context.Canceled) && g.ctx.Err() != nil {
		err = nil
	}

	var fields = log.Fields{"task": t.name, "elapsed": time.Since(started)}
	if err != nil {
		fields["err"] = err
		log.WithFields(fields).Warn("task failed")
	} else {
		log.WithFields(fields).Debug("task exited")
	}
	return errors.WithMessage(err, t.name)
}
