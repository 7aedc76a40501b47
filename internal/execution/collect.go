package execution

import (
	language "github.com/gqlkit/gqlkit/internal/language"
	schema "github.com/gqlkit/gqlkit/internal/schema"
)

// fieldGroup is every field in a selection set that shares one response key,
// in encounter order. Merged selections keep the position of their first
// occurrence.
type fieldGroup struct {
	responseKey string
	fields      []*language.Field
}

type fieldCollector struct {
	groups []*fieldGroup
	index  map[string]int
}

func (c *fieldCollector) add(responseKey string, field *language.Field) {
	if i, ok := c.index[responseKey]; ok {
		c.groups[i].fields = append(c.groups[i].fields, field)
		return
	}
	c.index[responseKey] = len(c.groups)
	c.groups = append(c.groups, &fieldGroup{responseKey: responseKey, fields: []*language.Field{field}})
}

// collectFields flattens a selection set against a concrete object type:
// fragments are expanded in place when their type condition matches, @skip
// and @include are evaluated against coerced variables, and fields are
// grouped by response key preserving first-encounter order. visited guards
// against fragment spread cycles; pass acc nil at the top of a selection.
func collectFields(ec *executionContext, objectType *schema.Object, set language.SelectionSet, visited map[string]bool, acc *fieldCollector) []*fieldGroup {
	if acc == nil {
		acc = &fieldCollector{index: make(map[string]int)}
	}
	for _, selection := range set {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(ec, sel.Directives) {
				continue
			}
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			acc.add(key, sel)

		case *language.InlineFragment:
			if !shouldIncludeNode(ec, sel.Directives) {
				continue
			}
			if !typeConditionMatches(ec, sel.TypeCondition, objectType) {
				continue
			}
			collectFields(ec, objectType, sel.SelectionSet, visited, acc)

		case *language.FragmentSpread:
			if !shouldIncludeNode(ec, sel.Directives) {
				continue
			}
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			frag := ec.fragments[sel.Name]
			if frag == nil {
				continue
			}
			if !typeConditionMatches(ec, frag.TypeCondition, objectType) {
				continue
			}
			collectFields(ec, objectType, frag.SelectionSet, visited, acc)
		}
	}
	return acc.groups
}

// typeConditionMatches reports whether a fragment applies to the concrete
// type being executed: the condition names the type itself, an interface it
// implements, or a union it belongs to.
func typeConditionMatches(ec *executionContext, condition string, objectType *schema.Object) bool {
	if condition == "" || condition == objectType.TypeName() {
		return true
	}
	named := ec.schema.Type(condition)
	if named == nil {
		return false
	}
	if schema.IsAbstractType(named) {
		return ec.schema.IsPossibleType(named, objectType)
	}
	return false
}

// shouldIncludeNode evaluates @skip and @include. @skip wins when both are
// present; a malformed or missing if argument leaves the node included
// (skipped, for @include with a non-true value).
func shouldIncludeNode(ec *executionContext, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := directiveIfArgument(ec, skip); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := directiveIfArgument(ec, include); !ok || !v {
			return false
		}
	}
	return true
}

func directiveIfArgument(ec *executionContext, directive *language.Directive) (bool, bool) {
	arg := directive.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, ok := valueFromAST(arg.Value, ec.variableValues).(bool)
	return v, ok
}
