package schema

// Named unwraps lists, non-nulls, and lazy references down to the underlying
// named type. It returns nil for nil or malformed wrappers.
func Named(t Type) NamedType {
	for t != nil {
		switch tt := deref(t).(type) {
		case *List:
			t = tt.ofType
		case *NonNull:
			t = tt.ofType
		case NamedType:
			return tt
		default:
			return nil
		}
	}
	return nil
}

// Nullable strips one NonNull wrapper, if present.
func Nullable(t Type) Type {
	if nn, ok := deref(t).(*NonNull); ok {
		return nn.OfType()
	}
	return t
}

// IsInputType reports whether t may appear in input positions: Scalar, Enum,
// InputObject, or any wrapping thereof.
func IsInputType(t Type) bool {
	switch Named(t).(type) {
	case *Scalar, *Enum, *InputObject:
		return true
	}
	return false
}

// IsOutputType reports whether t may appear in output positions: Scalar,
// Object, Interface, Union, Enum, or any wrapping thereof.
func IsOutputType(t Type) bool {
	switch Named(t).(type) {
	case *Scalar, *Object, *Interface, *Union, *Enum:
		return true
	}
	return false
}

// IsLeafType reports whether t is a serializable leaf kind.
func IsLeafType(t Type) bool {
	switch t.(type) {
	case *Scalar, *Enum:
		return true
	}
	return false
}

// IsAbstractType reports whether t requires concrete type resolution per
// value.
func IsAbstractType(t Type) bool {
	switch t.(type) {
	case *Interface, *Union:
		return true
	}
	return false
}
