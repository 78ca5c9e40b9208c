// Package groutine runs the daemon's long-lived loops as named goroutines.
// The name is attached as a pprof label so profiles show which loop is busy.
package groutine

import (
	"context"
	"fmt"
	"runtime/pprof"
)

type ctxKey string

const goroutineNameKey ctxKey = "goroutine_name"

// Go starts fn in a goroutine labelled name and returns a channel that
// receives its result exactly once. A panic in fn is reported as an error.
//
//	done := groutine.Go(ctx, "dispatcher", d.Run)
//	err := <-done
//
// If parentCtx is nil, context.Background() is used.
func Go(parentCtx context.Context, name string, fn func(ctx context.Context) error) <-chan error {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	done := make(chan error, 1)

	labels := pprof.Labels("goroutine_name", name)
	go pprof.Do(parentCtx, labels, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s panicked: %v", name, r)
			}
			close(done)
		}()
		ctx = context.WithValue(ctx, goroutineNameKey, name)
		done <- fn(ctx)
	})

	return done
}

// GetName retrieves the goroutine name from the context.
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(goroutineNameKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
