package execution

import (
	"fmt"
	"sort"
	"strconv"

	language "github.com/gqlkit/gqlkit/internal/language"
	schema "github.com/gqlkit/gqlkit/internal/schema"
)

// coerceVariableValues coerces the request's raw variable map against the
// operation's variable definitions. Any failure is a request error: no field
// executes with half-coerced variables.
func coerceVariableValues(s *schema.Schema, operation *language.OperationDefinition, input map[string]any) (map[string]any, *Error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, def := range operation.VariableDefinitions {
		varType := typeFromAST(s, def.Type)
		if varType == nil || !schema.IsInputType(varType) {
			return nil, &Error{Message: fmt.Sprintf("Variable $%s expected value of type %s which cannot be used as an input type", def.Variable, def.Type.String())}
		}

		value, provided := input[def.Variable]
		if !provided {
			if def.DefaultValue != nil {
				dv, err := coerceInputValue(valueFromAST(def.DefaultValue, nil), varType)
				if err != nil {
					return nil, &Error{Message: fmt.Sprintf("Variable $%s got invalid default value %v; %v", def.Variable, def.DefaultValue.Raw, err)}
				}
				coerced[def.Variable] = dv
				continue
			}
			if _, nonNull := varType.(*schema.NonNull); nonNull {
				return nil, &Error{Message: fmt.Sprintf("Variable $%s of required type %s was not provided", def.Variable, def.Type.String())}
			}
			continue
		}

		cv, err := coerceInputValue(value, varType)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("Variable $%s got invalid value %v; %v", def.Variable, value, err)}
		}
		coerced[def.Variable] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces a field's literal and variable-supplied
// arguments against the field definition, applying declared defaults. A
// failure here is a field error charged to the field's position.
func coerceArgumentValues(ec *executionContext, fieldDef *schema.Field, field *language.Field) (map[string]any, error) {
	coerced := make(map[string]any, len(fieldDef.Args))
	for _, argDef := range fieldDef.Args {
		arg := field.Arguments.ForName(argDef.Name)

		if arg != nil && arg.Value != nil && arg.Value.Kind == language.Variable {
			// Variables were already coerced against their declared type;
			// coercing them again would corrupt enum and custom scalar
			// internal forms.
			value, provided := ec.variableValues[arg.Value.Raw]
			_, nonNull := argDef.Type.(*schema.NonNull)
			switch {
			case provided && value != nil:
				coerced[argDef.Name] = value
			case !provided && argDef.DefaultValue != nil:
				coerced[argDef.Name] = argDef.DefaultValue
			case nonNull:
				return nil, fmt.Errorf("Argument %q of required type %q was not provided", argDef.Name, argDef.Type.String())
			case provided:
				coerced[argDef.Name] = nil
			}
			continue
		}

		var value any
		hasValue := false
		if arg != nil {
			value = valueFromAST(arg.Value, ec.variableValues)
			hasValue = true
		}

		if !hasValue {
			if argDef.DefaultValue != nil {
				coerced[argDef.Name] = argDef.DefaultValue
				continue
			}
			if _, nonNull := argDef.Type.(*schema.NonNull); nonNull {
				return nil, fmt.Errorf("Argument %q of required type %q was not provided", argDef.Name, argDef.Type.String())
			}
			continue
		}

		cv, err := coerceInputValue(value, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("Argument %q has invalid value %v; %v", argDef.Name, value, err)
		}
		coerced[argDef.Name] = cv
	}
	return coerced, nil
}

// coerceInputValue coerces a runtime value against an input type, recursing
// through wrappers and input object fields.
func coerceInputValue(value any, t schema.Type) (any, error) {
	if nonNull, ok := t.(*schema.NonNull); ok {
		if value == nil {
			return nil, fmt.Errorf("expected non-nullable type %s not to be null", t.String())
		}
		return coerceInputValue(value, nonNull.OfType())
	}
	if value == nil {
		return nil, nil
	}

	switch tt := t.(type) {
	case *schema.List:
		if list, ok := value.([]any); ok {
			out := make([]any, len(list))
			for i, item := range list {
				cv, err := coerceInputValue(item, tt.OfType())
				if err != nil {
					return nil, err
				}
				out[i] = cv
			}
			return out, nil
		}
		// A single value coerces to a list of one.
		cv, err := coerceInputValue(value, tt.OfType())
		if err != nil {
			return nil, err
		}
		return []any{cv}, nil

	case *schema.Scalar:
		return tt.ParseValue(value)

	case *schema.Enum:
		return tt.ParseValue(value)

	case *schema.InputObject:
		fieldValues, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected type %s to be an object", tt.TypeName())
		}
		fields := tt.Fields()
		out := make(map[string]any, len(fields))
		for _, f := range sortedInputFieldNames(fields) {
			def := fields[f]
			fv, provided := fieldValues[f]
			if !provided {
				if def.DefaultValue != nil {
					out[f] = def.DefaultValue
					continue
				}
				if _, nonNull := def.Type.(*schema.NonNull); nonNull {
					return nil, fmt.Errorf("field %s.%s of required type %s was not provided", tt.TypeName(), f, def.Type.String())
				}
				continue
			}
			cv, err := coerceInputValue(fv, def.Type)
			if err != nil {
				return nil, err
			}
			out[f] = cv
		}
		for name := range fieldValues {
			if _, known := fields[name]; !known {
				return nil, fmt.Errorf("field %q is not defined by type %s", name, tt.TypeName())
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot coerce value for type %s", t.String())
}

// valueFromAST converts a literal to its runtime value, substituting
// variables from vars. Absent variables become nil.
func valueFromAST(value *language.Value, vars map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		return vars[value.Raw]
	case language.IntValue:
		if iv, err := strconv.Atoi(value.Raw); err == nil {
			return iv
		}
		// Out of int range; keep the magnitude rather than truncating.
		if fv, err := strconv.ParseFloat(value.Raw, 64); err == nil {
			return fv
		}
		return value.Raw
	case language.FloatValue:
		if fv, err := strconv.ParseFloat(value.Raw, 64); err == nil {
			return fv
		}
		return value.Raw
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, vars)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			m[c.Name] = valueFromAST(c.Value, vars)
		}
		return m
	}
	return nil
}

// typeFromAST resolves a variable definition's type reference against the
// schema, rebuilding List and NonNull wrappers around the named type.
func typeFromAST(s *schema.Schema, ref *language.Type) schema.Type {
	if ref == nil {
		return nil
	}
	var t schema.Type
	if ref.NamedType != "" {
		named := s.Type(ref.NamedType)
		if named == nil {
			return nil
		}
		t = named
	} else {
		inner := typeFromAST(s, ref.Elem)
		if inner == nil {
			return nil
		}
		t = schema.NewList(inner)
	}
	if ref.NonNull {
		t = schema.NewNonNull(t)
	}
	return t
}

func sortedInputFieldNames(m map[string]*schema.InputField) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
