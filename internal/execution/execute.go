package execution

import (
	"context"
	"fmt"
	"reflect"
	"time"

	eventbus "github.com/gqlkit/gqlkit/internal/eventbus"
	events "github.com/gqlkit/gqlkit/internal/events"
	language "github.com/gqlkit/gqlkit/internal/language"
	schema "github.com/gqlkit/gqlkit/internal/schema"
)

// Params carries one request: a built schema, a parsed and validated
// document, and per-request values. The request context passed to Do is
// forwarded to every resolver.
type Params struct {
	Schema         *schema.Schema
	Document       *language.QueryDocument
	RootValue      any
	VariableValues map[string]any
	OperationName  string
	// DefaultResolver is used for fields without a declared resolver.
	// Defaults to DefaultResolveFn.
	DefaultResolver schema.FieldResolveFn
}

// executionContext is the per-request state: shared schema reference,
// fragment definitions, coerced variables, and the append-only error sink.
// It is exclusively owned by one request and discarded with it.
type executionContext struct {
	ctx             context.Context
	schema          *schema.Schema
	fragments       map[string]*language.FragmentDefinition
	rootValue       any
	variableValues  map[string]any
	operation       *language.OperationDefinition
	defaultResolver schema.FieldResolveFn
	errors          []*Error
}

// Do executes the document's selected operation against the schema and
// assembles the response tree. Request-level failures (unknown or ambiguous
// operation, variable coercion) abort the whole execution with a single
// error; field-level failures are recovered at the field boundary and
// reported alongside partial data.
func Do(ctx context.Context, p Params) *Response {
	operation, err := selectOperation(p.Document, p.OperationName)
	if err != nil {
		return &Response{Errors: []*Error{err}}
	}

	rootType, err := rootTypeFor(p.Schema, operation)
	if err != nil {
		return &Response{Errors: []*Error{err}}
	}

	variableValues, err := coerceVariableValues(p.Schema, operation, p.VariableValues)
	if err != nil {
		return &Response{Errors: []*Error{err}}
	}

	resolver := p.DefaultResolver
	if resolver == nil {
		resolver = DefaultResolveFn
	}
	fragments := make(map[string]*language.FragmentDefinition, len(p.Document.Fragments))
	for _, f := range p.Document.Fragments {
		fragments[f.Name] = f
	}

	ec := &executionContext{
		ctx:             ctx,
		schema:          p.Schema,
		fragments:       fragments,
		rootValue:       p.RootValue,
		variableValues:  variableValues,
		operation:       operation,
		defaultResolver: resolver,
	}

	groups := collectFields(ec, rootType, operation.SelectionSet, make(map[string]bool), nil)
	serial := operation.Operation == language.Mutation
	result := ec.executeFields(rootType, ec.rootValue, groups, nil, serial)

	resp := &Response{Errors: ec.errors}
	if result != nil {
		resp.Data = result
	}
	return resp
}

func selectOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, *Error) {
	if name == "" {
		if len(doc.Operations) == 1 {
			return doc.Operations[0], nil
		}
		return nil, &Error{Message: "operation name is required when the document defines multiple operations"}
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, &Error{Message: fmt.Sprintf("operation %q not found", name)}
}

func rootTypeFor(s *schema.Schema, op *language.OperationDefinition) (*schema.Object, *Error) {
	switch op.Operation {
	case language.Query:
		return s.QueryType(), nil
	case language.Mutation:
		if s.MutationType() == nil {
			return nil, &Error{Message: "schema does not define a Mutation root type"}
		}
		return s.MutationType(), nil
	case language.Subscription:
		if s.SubscriptionType() == nil {
			return nil, &Error{Message: "schema does not define a Subscription root type"}
		}
		return s.SubscriptionType(), nil
	}
	return nil, &Error{Message: fmt.Sprintf("unsupported operation type: %s", op.Operation)}
}

// pendingField is one response-key group mid-flight: its resolver has been
// invoked (and any thunk started), its completion has not.
type pendingField struct {
	group    *fieldGroup
	fieldDef *schema.Field
	d        *deferred
	path     *pathNode
	started  time.Time
	typename bool
	skipped  bool
}

// executeFields runs one object's grouped fields. In serial mode (top-level
// mutation fields) each group is fully completed before the next resolver
// runs; otherwise all resolvers are invoked before any result is awaited, so
// one slow field never delays its siblings' start.
//
// A nil return means a non-null violation must bubble past this object
// position.
func (ec *executionContext) executeFields(objectType *schema.Object, source any, groups []*fieldGroup, path *pathNode, serial bool) *OrderedMap {
	result := NewOrderedMap()

	if serial {
		for _, group := range groups {
			pending := ec.beginField(objectType, source, group, path)
			if !ec.finishField(result, objectType, pending) {
				return nil
			}
		}
		return result
	}

	pendings := make([]*pendingField, len(groups))
	for i, group := range groups {
		pendings[i] = ec.beginField(objectType, source, group, path)
	}
	for _, pending := range pendings {
		if !ec.finishField(result, objectType, pending) {
			return nil
		}
	}
	return result
}

// beginField coerces arguments and invokes the field's resolver without
// awaiting the outcome.
func (ec *executionContext) beginField(objectType *schema.Object, source any, group *fieldGroup, path *pathNode) *pendingField {
	field := group.fields[0]
	fieldPath := path.child(group.responseKey)

	if field.Name == "__typename" {
		return &pendingField{group: group, path: fieldPath, typename: true}
	}

	fieldDef := objectType.Fields()[field.Name]
	if fieldDef == nil {
		ec.addError(fmt.Sprintf("Cannot query field %q on type %q", field.Name, objectType.TypeName()), fieldPath, group.fields)
		return &pendingField{group: group, path: fieldPath, skipped: true}
	}

	args, err := coerceArgumentValues(ec, fieldDef, field)
	if err != nil {
		return &pendingField{group: group, fieldDef: fieldDef, path: fieldPath, d: immediate(nil, err), started: time.Now()}
	}

	resolver := fieldDef.Resolve
	if resolver == nil {
		resolver = ec.defaultResolver
	}

	params := schema.ResolveParams{
		Source: source,
		Args:   args,
		Info: schema.ResolveInfo{
			FieldName:      field.Name,
			FieldASTs:      group.fields,
			ReturnType:     fieldDef.Type,
			ParentType:     objectType,
			Path:           fieldPath.slice(),
			Schema:         ec.schema,
			Fragments:      ec.fragments,
			RootValue:      ec.rootValue,
			Operation:      ec.operation,
			VariableValues: ec.variableValues,
		},
	}

	started := time.Now()
	eventbus.Publish(ec.ctx, events.ResolveStart{
		ParentType: objectType.TypeName(),
		Field:      field.Name,
		Path:       params.Info.Path,
	})

	return &pendingField{
		group:    group,
		fieldDef: fieldDef,
		d:        resolveField(ec.ctx, resolver, params),
		path:     fieldPath,
		started:  started,
	}
}

// finishField awaits the pending resolution, completes the value, and writes
// it under the response key. It reports false when a non-null violation must
// bubble past the enclosing object.
func (ec *executionContext) finishField(result *OrderedMap, objectType *schema.Object, pending *pendingField) bool {
	if pending.typename {
		result.Set(pending.group.responseKey, objectType.TypeName())
		return true
	}
	if pending.skipped {
		return true
	}

	value, err := pending.d.await()
	eventbus.Publish(ec.ctx, events.ResolveFinish{
		ParentType: objectType.TypeName(),
		Field:      pending.fieldDef.Name,
		Path:       pending.path.slice(),
		Err:        err,
		Duration:   time.Since(pending.started),
	})

	var completed any
	if err != nil {
		ec.addError(err.Error(), pending.path, pending.group.fields)
	} else {
		completed = ec.completeValue(pending.fieldDef.Type, pending.group.fields, objectType, pending.fieldDef.Name, value, pending.path)
	}

	if _, nonNull := pending.fieldDef.Type.(*schema.NonNull); nonNull && isNullish(completed) {
		return false
	}
	if isNullish(completed) {
		result.Set(pending.group.responseKey, nil)
	} else {
		result.Set(pending.group.responseKey, completed)
	}
	return true
}

// completeValue recursively completes a resolved value against the expected
// type, dispatching on the type's kind.
func (ec *executionContext) completeValue(returnType schema.Type, fields []*language.Field, parentType *schema.Object, fieldName string, value any, path *pathNode) any {
	if nonNull, ok := returnType.(*schema.NonNull); ok {
		if isNullish(value) {
			if !ec.hasErrorAt(path) {
				ec.addError(fmt.Sprintf("Cannot return null for non-nullable field %s.%s", parentType.TypeName(), fieldName), path, fields)
			}
			return nil
		}
		completed := ec.completeValue(nonNull.OfType(), fields, parentType, fieldName, value, path)
		if isNullish(completed) {
			// The violation was reported where it happened; only propagate.
			return nil
		}
		return completed
	}

	if isNullish(value) {
		return nil
	}

	switch t := returnType.(type) {
	case *schema.List:
		return ec.completeListValue(t, fields, parentType, fieldName, value, path)
	case *schema.Scalar:
		return ec.completeLeafValue(t.TypeName(), t.Serialize, fields, value, path)
	case *schema.Enum:
		return ec.completeLeafValue(t.TypeName(), t.Serialize, fields, value, path)
	case *schema.Object:
		return ec.completeObjectValue(t, fields, value, path)
	case *schema.Interface:
		return ec.completeAbstractValue(t, fields, parentType, fieldName, value, path)
	case *schema.Union:
		return ec.completeAbstractValue(t, fields, parentType, fieldName, value, path)
	}
	ec.addError(fmt.Sprintf("Cannot complete value of unexpected type: %v", returnType), path, fields)
	return nil
}

// completeListValue completes each element against the inner type,
// preserving index order in both output and error paths. One element's
// bubbling null affects only its own slot unless the inner type is non-null.
func (ec *executionContext) completeListValue(listType *schema.List, fields []*language.Field, parentType *schema.Object, fieldName string, value any, path *pathNode) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		ec.addError(fmt.Sprintf("Expected Iterable, but did not find one for field %s.%s", parentType.TypeName(), fieldName), path, fields)
		return nil
	}

	inner := listType.OfType()
	_, innerNonNull := inner.(*schema.NonNull)
	completed := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := ec.completeValue(inner, fields, parentType, fieldName, rv.Index(i).Interface(), path.child(i))
		if innerNonNull && isNullish(elem) {
			// A non-null element violation nulls the whole list position.
			return nil
		}
		if isNullish(elem) {
			completed[i] = nil
		} else {
			completed[i] = elem
		}
	}
	return completed
}

func (ec *executionContext) completeLeafValue(typeName string, serialize func(any) (any, error), fields []*language.Field, value any, path *pathNode) any {
	serialized, err := serialize(value)
	if err != nil || serialized == nil {
		ec.addError(fmt.Sprintf("Expected type %s but got: %v", typeName, value), path, fields)
		return nil
	}
	return serialized
}

// completeAbstractValue resolves the concrete object type for a value of an
// interface or union, then completes it as that object.
func (ec *executionContext) completeAbstractValue(abstract schema.NamedType, fields []*language.Field, parentType *schema.Object, fieldName string, value any, path *pathNode) any {
	var concrete *schema.Object
	switch t := abstract.(type) {
	case *schema.Interface:
		concrete = t.ResolveType(value)
	case *schema.Union:
		concrete = t.ResolveType(value)
	}
	if concrete == nil {
		for _, candidate := range ec.schema.PossibleTypes(abstract) {
			if candidate.IsTypeOf(value) {
				concrete = candidate
				break
			}
		}
	}
	if concrete == nil {
		ec.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime for field %s.%s", abstract.TypeName(), parentType.TypeName(), fieldName), path, fields)
		return nil
	}
	if !ec.schema.IsPossibleType(abstract, concrete) {
		ec.addError(fmt.Sprintf("Runtime Object type %q is not a possible type for %q", concrete.TypeName(), abstract.TypeName()), path, fields)
		return nil
	}
	return ec.completeObjectValue(concrete, fields, value, path)
}

// completeObjectValue collects the merged sub-selections against the
// concrete type and executes them. Sub-selections always run in the
// non-blocking mode; only top-level mutation fields are serial.
func (ec *executionContext) completeObjectValue(objectType *schema.Object, fields []*language.Field, value any, path *pathNode) any {
	var sub language.SelectionSet
	for _, f := range fields {
		sub = append(sub, f.SelectionSet...)
	}
	groups := collectFields(ec, objectType, sub, make(map[string]bool), nil)
	result := ec.executeFields(objectType, value, groups, path, false)
	if result == nil {
		return nil
	}
	return result
}

func (ec *executionContext) addError(message string, path *pathNode, nodes []*language.Field) {
	e := &Error{Message: message, Path: path.slice()}
	for _, n := range nodes {
		if n != nil && n.Position != nil {
			e.Locations = append(e.Locations, Location{Line: n.Position.Line, Column: n.Position.Column})
		}
	}
	ec.errors = append(ec.errors, e)
}

// hasErrorAt reports whether an error was already recorded at exactly this
// path, so a non-null wrapper does not restate its inner type's failure.
func (ec *executionContext) hasErrorAt(path *pathNode) bool {
	p := path.slice()
	for _, e := range ec.errors {
		if reflect.DeepEqual(e.Path, p) {
			return true
		}
	}
	return false
}

// isNullish reports nil interfaces and typed nils; a typed nil completes to
// GraphQL null like an untyped one.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
