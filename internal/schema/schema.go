package schema

import (
	"fmt"
	"sort"
)

// Directive is a directive definition known to a schema. The engine
// evaluates @skip and @include during field collection; every other directive
// passes through unexamined.
type Directive struct {
	Name        string
	Description string
	Locations   []string
	Args        []*Argument
}

// SchemaConfig declares the roots of a schema. Types lists types that are
// reachable only as interface implementors and would otherwise never be
// discovered by traversal.
type SchemaConfig struct {
	Query        *Object
	Mutation     *Object
	Subscription *Object
	Types        []Type
	Directives   []*Directive
}

// Schema owns the root types and the map of every named type transitively
// reachable from them. It is validated and immutable once built, and safe for
// concurrent reads across simultaneous executions.
type Schema struct {
	query        *Object
	mutation     *Object
	subscription *Object
	typeMap      map[string]NamedType
	directives   []*Directive
	possible     map[string][]*Object
}

// NewSchema builds and validates a schema. Construction fails on a missing
// Query root, duplicate type names, invalid union members, malformed
// wrappers, and misplaced input/output types; no request is served from a
// schema that failed to build.
func NewSchema(config SchemaConfig) (*Schema, error) {
	if config.Query == nil {
		return nil, fmt.Errorf("Schema must contain a Query root type.")
	}

	s := &Schema{
		query:        config.Query,
		mutation:     config.Mutation,
		subscription: config.Subscription,
		typeMap:      make(map[string]NamedType),
		possible:     make(map[string][]*Object),
	}

	s.directives = append(s.directives, SkipDirective, IncludeDirective, DeprecatedDirective)
	s.directives = append(s.directives, config.Directives...)

	roots := []Type{config.Query}
	if config.Mutation != nil {
		roots = append(roots, config.Mutation)
	}
	if config.Subscription != nil {
		roots = append(roots, config.Subscription)
	}
	roots = append(roots, config.Types...)

	for _, t := range roots {
		if err := s.collect(t); err != nil {
			return nil, err
		}
	}
	for _, d := range s.directives {
		for _, arg := range d.Args {
			if err := s.collect(arg.Type); err != nil {
				return nil, err
			}
		}
	}

	// Abstract type membership is derived from the completed map: objects
	// declare their interfaces, unions declare their members.
	names := make([]string, 0, len(s.typeMap))
	for name := range s.typeMap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch t := s.typeMap[name].(type) {
		case *Object:
			for _, iface := range t.Interfaces() {
				s.possible[iface.name] = append(s.possible[iface.name], t)
			}
		case *Union:
			s.possible[t.name] = append([]*Object(nil), t.Types()...)
		}
	}

	return s, nil
}

// collect adds every named type reachable from t to the type map, exactly
// once, failing on construction errors and name collisions.
func (s *Schema) collect(t Type) error {
	t = deref(t)
	if t == nil {
		return fmt.Errorf("Expected %v to be a GraphQL type.", typeRepr(t))
	}
	if err := t.Err(); err != nil {
		return err
	}

	switch tt := t.(type) {
	case *List:
		return s.collect(tt.ofType)
	case *NonNull:
		return s.collect(tt.ofType)
	}

	named, ok := t.(NamedType)
	if !ok {
		return fmt.Errorf("Expected %v to be a GraphQL type.", typeRepr(t))
	}
	name := named.TypeName()
	if existing, ok := s.typeMap[name]; ok {
		if existing != named {
			return fmt.Errorf("Schema must contain uniquely named types but contains multiple types named %q.", name)
		}
		return nil
	}
	s.typeMap[name] = named

	switch tt := named.(type) {
	case *Object:
		fields := tt.Fields()
		if err := tt.Err(); err != nil {
			return err
		}
		for _, iface := range tt.Interfaces() {
			if err := s.collect(iface); err != nil {
				return err
			}
		}
		if err := s.collectFieldTypes(name, fields); err != nil {
			return err
		}
	case *Interface:
		fields := tt.Fields()
		if err := tt.Err(); err != nil {
			return err
		}
		if err := s.collectFieldTypes(name, fields); err != nil {
			return err
		}
	case *Union:
		members := tt.Types()
		if err := tt.Err(); err != nil {
			return err
		}
		for _, m := range members {
			if err := s.collect(m); err != nil {
				return err
			}
		}
	case *InputObject:
		for _, f := range sortedInputFields(tt.Fields()) {
			f.Type = deref(f.Type)
			if f.Type == nil || !IsInputType(f.Type) {
				return fmt.Errorf("%v.%v field type must be Input Type but got: %v.", name, f.Name, typeRepr(f.Type))
			}
			if err := s.collect(f.Type); err != nil {
				return err
			}
		}
	case *Enum:
		if err := tt.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) collectFieldTypes(owner string, fields map[string]*Field) error {
	for _, f := range sortedFields(fields) {
		f.Type = deref(f.Type)
		if f.Type == nil || !IsOutputType(f.Type) {
			return fmt.Errorf("%v.%v field type must be Output Type but got: %v.", owner, f.Name, typeRepr(f.Type))
		}
		if err := s.collect(f.Type); err != nil {
			return err
		}
		for _, arg := range f.Args {
			arg.Type = deref(arg.Type)
			if arg.Type == nil || !IsInputType(arg.Type) {
				return fmt.Errorf("%v.%v(%v:) argument type must be Input Type but got: %v.", owner, f.Name, arg.Name, typeRepr(arg.Type))
			}
			if err := s.collect(arg.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedFields(m map[string]*Field) []*Field {
	out := make([]*Field, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedInputFields(m map[string]*InputField) []*InputField {
	out := make([]*InputField, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// QueryType returns the root query type.
func (s *Schema) QueryType() *Object { return s.query }

// MutationType returns the root mutation type, or nil when absent.
func (s *Schema) MutationType() *Object { return s.mutation }

// SubscriptionType returns the root subscription type, or nil when absent.
func (s *Schema) SubscriptionType() *Object { return s.subscription }

// Type looks up a named type, or nil when unknown.
func (s *Schema) Type(name string) NamedType { return s.typeMap[name] }

// TypeMap returns the map of every reachable named type keyed by name. The
// map is owned by the schema and must not be mutated.
func (s *Schema) TypeMap() map[string]NamedType { return s.typeMap }

// Directives returns the schema's directive definitions.
func (s *Schema) Directives() []*Directive { return s.directives }

// Directive looks up a directive definition by name.
func (s *Schema) Directive(name string) *Directive {
	for _, d := range s.directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// PossibleTypes returns the concrete object types a value of the abstract
// type may resolve to.
func (s *Schema) PossibleTypes(abstract NamedType) []*Object {
	return s.possible[abstract.TypeName()]
}

// IsPossibleType reports whether obj is a member of (or implementor of) the
// abstract type.
func (s *Schema) IsPossibleType(abstract NamedType, obj *Object) bool {
	for _, t := range s.possible[abstract.TypeName()] {
		if t == obj {
			return true
		}
	}
	return false
}
