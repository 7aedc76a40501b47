// Package events declares the notification types published on the event bus
// at each stage of serving a request: HTTP transport, GraphQL operation, and
// individual field resolution.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when an HTTP request is received.
// Context carries the request context.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the handler completes.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after executing a GraphQL operation.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// ResolveStart is emitted when a field's resolver is invoked.
type ResolveStart struct {
	ParentType string
	Field      string
	Path       []any
}

// ResolveFinish is emitted once a field's value is available, including the
// time spent awaiting deferred work.
type ResolveFinish struct {
	ParentType string
	Field      string
	Path       []any
	Err        error
	Duration   time.Duration
}
