package execution

import (
	"context"
	"fmt"

	schema "github.com/gqlkit/gqlkit/internal/schema"
)

// deferred normalizes every resolver outcome into one eventually-available
// value, so completion logic is written once for synchronous and asynchronous
// results alike.
type deferred struct {
	done  chan struct{} // nil when the value was available immediately
	value any
	err   error
}

func immediate(value any, err error) *deferred {
	return &deferred{value: value, err: err}
}

// start launches the thunk. The work always runs to completion; null
// bubbling may later discard the value's placement, never the work.
func start(t schema.Thunk) *deferred {
	d := &deferred{done: make(chan struct{})}
	go func() {
		defer close(d.done)
		defer func() {
			if r := recover(); r != nil {
				d.err = panicError(r)
			}
		}()
		d.value, d.err = t()
	}()
	return d
}

func (d *deferred) await() (any, error) {
	if d.done != nil {
		<-d.done
	}
	return d.value, d.err
}

// resolveField invokes the resolver, recovering panics, and normalizes the
// outcome. A returned Thunk is started right away so siblings never wait on
// it.
func resolveField(ctx context.Context, fn schema.FieldResolveFn, p schema.ResolveParams) *deferred {
	value, err := safeResolve(ctx, fn, p)
	if err != nil {
		return immediate(nil, err)
	}
	switch t := value.(type) {
	case schema.Thunk:
		return start(t)
	case func() (any, error):
		return start(t)
	}
	return immediate(value, nil)
}

func safeResolve(ctx context.Context, fn schema.FieldResolveFn, p schema.ResolveParams) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn(ctx, p)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
