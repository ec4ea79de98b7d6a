package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupCancelsOnFirstError(t *testing.T) {
	var g = NewGroup(context.Background())
	var stopped = make(chan struct{})

	g.Queue("waits", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	})
	g.Queue("fails", func(context.Context) error { return errors.New("whoops") })
	g.GoRun()

	require.EqualError(t, g.Wait(), "fails: whoops")
	<-stopped
	require.Error(t, g.Context().Err())
}

func TestGroupCancel(t *testing.T) {
	var g = NewGroup(context.Background())
	g.Queue("waits", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	// Returning the Context's error after cancellation is a clean exit.
	g.Queue("returns ctx.Err", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.GoRun()
	g.Cancel()

	require.NoError(t, g.Wait())
}

func TestGroupParentCancel(t *testing.T) {
	var parent, cancel = context.WithCancel(context.Background())
	var g = NewGroup(parent)

	g.Queue("waits", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.GoRun()
	cancel()

	require.NoError(t, g.Wait())
	require.Equal(t, context.Canceled, g.Context().Err())
}

func TestGroupCanceledBeforeCancellation(t *testing.T) {
	var g = NewGroup(context.Background())

	// context.Canceled from a task is a failure if the Group is still running.
	g.Queue("fails", func(context.Context) error { return context.Canceled })
	g.GoRun()

	require.EqualError(t, g.Wait(), "fails: context canceled")
}

func TestGroupMisuse(t *testing.T) {
	var g = NewGroup(context.Background())
	require.Panics(t, func() { _ = g.Wait() })

	g.GoRun()
	require.Panics(t, func() { g.GoRun() })
	require.Panics(t, func() { g.Queue("late", func(context.Context) error { return nil }) })
	require.NoError(t, g.Wait())
}
