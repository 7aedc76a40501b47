package schema

import (
	"context"

	language "github.com/gqlkit/gqlkit/internal/language"
)

// FieldResolveFn produces a field's value from the parent value, coerced
// arguments, and request context. It may return the value directly or return
// a Thunk; the engine treats a Thunk as a pending asynchronous result and
// never blocks sibling fields on it.
type FieldResolveFn func(ctx context.Context, p ResolveParams) (any, error)

// Thunk is a deferred resolver result. The engine starts it as soon as the
// resolver returns and awaits it only when the field's value is completed.
type Thunk func() (any, error)

// ResolveParams carries the per-invocation inputs of a resolver.
type ResolveParams struct {
	// Source is the parent value; for root fields it is the request's root
	// value.
	Source any
	// Args holds the field's arguments coerced against their declared types.
	Args map[string]any
	// Info is the resolve metadata for the field being executed.
	Info ResolveInfo
}

// ResolveInfo describes where in the request a resolver is running.
type ResolveInfo struct {
	FieldName      string
	FieldASTs      []*language.Field
	ReturnType     Type
	ParentType     *Object
	Path           []any
	Schema         *Schema
	Fragments      map[string]*language.FragmentDefinition
	RootValue      any
	Operation      *language.OperationDefinition
	VariableValues map[string]any
}
