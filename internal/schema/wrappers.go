package schema

import "fmt"

// List wraps another type, declaring a list of that type. Lists compose
// without limit.
type List struct {
	ofType Type
	err    error
}

func NewList(ofType Type) *List {
	l := &List{ofType: ofType}
	if ofType == nil {
		l.err = fmt.Errorf("Expected %v to be a GraphQL type.", typeRepr(ofType))
	}
	return l
}

// OfType returns the wrapped type.
func (l *List) OfType() Type { return deref(l.ofType) }

func (l *List) String() string {
	if l.ofType == nil {
		return "[<nil>]"
	}
	return "[" + l.ofType.String() + "]"
}

func (l *List) Err() error { return l.err }

// NonNull wraps another type, rejecting null at that position. NonNull may
// never wrap NonNull.
type NonNull struct {
	ofType Type
	err    error
}

func NewNonNull(ofType Type) *NonNull {
	n := &NonNull{ofType: ofType}
	switch inner := ofType.(type) {
	case nil:
		n.err = fmt.Errorf("Expected %v to be a GraphQL type.", typeRepr(ofType))
	case *NonNull:
		n.err = fmt.Errorf("Expected %v to be a GraphQL nullable type.", inner)
	}
	return n
}

// OfType returns the wrapped type.
func (n *NonNull) OfType() Type { return deref(n.ofType) }

func (n *NonNull) String() string {
	if n.ofType == nil {
		return "<nil>!"
	}
	return n.ofType.String() + "!"
}

func (n *NonNull) Err() error { return n.err }
