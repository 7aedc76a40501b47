package schema

import (
	"fmt"
	"math"
	"strconv"
)

// Built-in scalar types. They are always available to a schema and are added
// to the type map when reachable.
var (
	String = NewScalar(ScalarConfig{
		Name:        "String",
		Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
		Serialize:   coerceString,
		ParseValue:  parseString,
	})

	Int = NewScalar(ScalarConfig{
		Name:        "Int",
		Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
		Serialize:   coerceInt,
		ParseValue:  coerceInt,
	})

	Float = NewScalar(ScalarConfig{
		Name:        "Float",
		Description: "The `Float` scalar type represents signed double-precision fractional values.",
		Serialize:   coerceFloat,
		ParseValue:  coerceFloat,
	})

	Boolean = NewScalar(ScalarConfig{
		Name:        "Boolean",
		Description: "The `Boolean` scalar type represents `true` or `false`.",
		Serialize:   coerceBoolean,
		ParseValue:  coerceBoolean,
	})

	ID = NewScalar(ScalarConfig{
		Name:        "ID",
		Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
		Serialize:   coerceID,
		ParseValue:  coerceID,
	})
)

func coerceInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("cannot coerce %v to Int", v)
		}
		return int(v), nil
	case float32:
		return coerceInt(float64(v))
	case string:
		if iv, err := strconv.Atoi(v); err == nil {
			return iv, nil
		}
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if fv, err := strconv.ParseFloat(v, 64); err == nil {
			return fv, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Float", value, value)
}

func coerceString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}

func parseString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
}

func coerceBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to ID", value, value)
}

// Built-in directives. @skip and @include are evaluated during field
// collection; @deprecated is schema metadata only.
var (
	IncludeDirective = &Directive{
		Name:        "include",
		Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		Args: []*Argument{{
			Name:        "if",
			Description: "Included when true.",
			Type:        NewNonNull(Boolean),
		}},
	}

	SkipDirective = &Directive{
		Name:        "skip",
		Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		Args: []*Argument{{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        NewNonNull(Boolean),
		}},
	}

	DeprecatedDirective = &Directive{
		Name:        "deprecated",
		Description: "Marks an element of a GraphQL schema as no longer supported.",
		Locations:   []string{"FIELD_DEFINITION", "ENUM_VALUE"},
		Args: []*Argument{{
			Name:         "reason",
			Description:  "Explains why this element was deprecated.",
			Type:         String,
			DefaultValue: "No longer supported",
		}},
	}
)
