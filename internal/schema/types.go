package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Type is implemented by every GraphQL type: the six named kinds (Scalar,
// Object, Interface, Union, Enum, InputObject) and the two wrapping kinds
// (List, NonNull).
//
// Constructors never fail directly; a violated construction invariant is
// carried on the type and surfaced by NewSchema, so deeply nested wrapper
// expressions stay composable.
type Type interface {
	// String renders the type reference form: Name, Name!, [T], [T]!.
	String() string
	// Err returns the deferred construction error, if any.
	Err() error
}

// NamedType is implemented by the six named kinds.
type NamedType interface {
	Type
	TypeName() string
}

// Lazy defers a type reference until first use. It exists for mutually
// recursive definitions across separate bindings; the producer runs once and
// the result is memoized. NewSchema forces every lazy reference it reaches, so
// the engine only ever observes concrete types.
func Lazy(f func() Type) Type {
	return &lazyType{f: f}
}

type lazyType struct {
	once sync.Once
	f    func() Type
	t    Type
}

func (l *lazyType) resolve() Type {
	l.once.Do(func() { l.t = l.f() })
	return l.t
}

func (l *lazyType) String() string {
	if t := l.resolve(); t != nil {
		return t.String()
	}
	return "<nil>"
}

func (l *lazyType) Err() error {
	if t := l.resolve(); t != nil {
		return t.Err()
	}
	return fmt.Errorf("Expected <nil> to be a GraphQL type.")
}

// deref unwraps a lazy reference to its concrete type.
func deref(t Type) Type {
	if l, ok := t.(*lazyType); ok {
		return l.resolve()
	}
	return t
}

// Scalar is a leaf type with host-defined serialization and input coercion.
type Scalar struct {
	name        string
	description string
	serialize   SerializeFn
	parseValue  ParseValueFn
}

// SerializeFn converts an internal value into its response form. Returning an
// error or a nil value marks the value as unrepresentable in this type.
type SerializeFn func(value any) (any, error)

// ParseValueFn converts a variable or literal input value into the internal
// form. Returning an error rejects the input.
type ParseValueFn func(value any) (any, error)

type ScalarConfig struct {
	Name        string
	Description string
	Serialize   SerializeFn
	ParseValue  ParseValueFn
}

func NewScalar(config ScalarConfig) *Scalar {
	return &Scalar{
		name:        config.Name,
		description: config.Description,
		serialize:   config.Serialize,
		parseValue:  config.ParseValue,
	}
}

func (s *Scalar) TypeName() string    { return s.name }
func (s *Scalar) Description() string { return s.description }
func (s *Scalar) String() string      { return s.name }
func (s *Scalar) Err() error          { return nil }

// Serialize applies the scalar's serialization routine. A scalar without one
// passes values through unchanged.
func (s *Scalar) Serialize(value any) (any, error) {
	if s.serialize == nil {
		return value, nil
	}
	return s.serialize(value)
}

// ParseValue applies the scalar's input coercion. A scalar without one passes
// values through unchanged.
func (s *Scalar) ParseValue(value any) (any, error) {
	if s.parseValue == nil {
		return value, nil
	}
	return s.parseValue(value)
}

// Field is a field definition owned by an Object or Interface. Definitions
// are copied out of their configs at materialization, so later mutation of the
// caller's config never affects the type.
type Field struct {
	Name              string
	Description       string
	Type              Type
	Args              []*Argument
	Resolve           FieldResolveFn
	DeprecationReason string
}

// Argument declares one input value accepted by a field.
type Argument struct {
	Name         string
	Description  string
	Type         Type
	DefaultValue any
}

// FieldConfig declares a single field. Name is taken from the Fields map key.
type FieldConfig struct {
	Description       string
	Type              Type
	Args              ArgumentConfigMap
	Resolve           FieldResolveFn
	DeprecationReason string
}

type Fields map[string]*FieldConfig

// FieldsThunk defers field materialization, permitting co-recursive object
// definitions.
type FieldsThunk func() Fields

type ArgumentConfig struct {
	Description  string
	Type         Type
	DefaultValue any
}

type ArgumentConfigMap map[string]*ArgumentConfig

// IsTypeOfFn reports whether a runtime value belongs to the object type. It
// is the fallback capability for abstract type resolution.
type IsTypeOfFn func(value any) bool

// ResolveTypeFn maps a runtime value of an abstract type to its concrete
// object type. Returning nil defers to each candidate's IsTypeOfFn.
type ResolveTypeFn func(value any) *Object

// Object is a named composite output type.
type Object struct {
	name        string
	description string
	isTypeOf    IsTypeOfFn

	fieldsOnce  sync.Once
	fieldsThunk FieldsThunk
	fields      map[string]*Field

	ifacesOnce  sync.Once
	ifacesThunk InterfacesThunk
	interfaces  []*Interface

	err error
}

type InterfacesThunk func() []*Interface

type ObjectConfig struct {
	Name        string
	Description string
	// Fields or FieldsThunk declares the field set; exactly one should be set.
	Fields      Fields
	FieldsThunk FieldsThunk
	// Interfaces or InterfacesThunk declares implemented interfaces.
	Interfaces      []*Interface
	InterfacesThunk InterfacesThunk
	IsTypeOf        IsTypeOfFn
}

func NewObject(config ObjectConfig) *Object {
	o := &Object{
		name:        config.Name,
		description: config.Description,
		isTypeOf:    config.IsTypeOf,
		fieldsThunk: config.FieldsThunk,
		ifacesThunk: config.InterfacesThunk,
	}
	if config.Fields != nil {
		fields := config.Fields
		o.fieldsThunk = func() Fields { return fields }
		// Copy definitions now so the config map can be reused or mutated.
		o.Fields()
	}
	if config.Interfaces != nil {
		ifaces := append([]*Interface(nil), config.Interfaces...)
		o.ifacesThunk = func() []*Interface { return ifaces }
	}
	return o
}

func (o *Object) TypeName() string    { return o.name }
func (o *Object) Description() string { return o.description }
func (o *Object) String() string      { return o.name }
func (o *Object) Err() error          { return o.err }

// IsTypeOf probes the object's type-membership capability. It reports false
// when the object declares none.
func (o *Object) IsTypeOf(value any) bool {
	return o.isTypeOf != nil && o.isTypeOf(value)
}

// HasTypeOf reports whether the object declares a type-membership capability.
func (o *Object) HasTypeOf() bool { return o.isTypeOf != nil }

// Fields materializes and returns the field definitions keyed by name. The
// thunk runs once; the result is cached.
func (o *Object) Fields() map[string]*Field {
	o.fieldsOnce.Do(func() {
		if o.fieldsThunk == nil {
			o.fields = map[string]*Field{}
			return
		}
		o.fields, o.err = materializeFields(o.name, o.fieldsThunk())
	})
	return o.fields
}

// Interfaces returns the interfaces this object implements.
func (o *Object) Interfaces() []*Interface {
	o.ifacesOnce.Do(func() {
		if o.ifacesThunk != nil {
			o.interfaces = o.ifacesThunk()
		}
	})
	return o.interfaces
}

// Interface is a named abstract output type carrying a field contract.
type Interface struct {
	name        string
	description string
	resolveType ResolveTypeFn

	fieldsOnce  sync.Once
	fieldsThunk FieldsThunk
	fields      map[string]*Field

	err error
}

type InterfaceConfig struct {
	Name        string
	Description string
	Fields      Fields
	FieldsThunk FieldsThunk
	ResolveType ResolveTypeFn
}

func NewInterface(config InterfaceConfig) *Interface {
	i := &Interface{
		name:        config.Name,
		description: config.Description,
		resolveType: config.ResolveType,
		fieldsThunk: config.FieldsThunk,
	}
	if config.Fields != nil {
		fields := config.Fields
		i.fieldsThunk = func() Fields { return fields }
		i.Fields()
	}
	return i
}

func (i *Interface) TypeName() string    { return i.name }
func (i *Interface) Description() string { return i.description }
func (i *Interface) String() string      { return i.name }
func (i *Interface) Err() error          { return i.err }

// ResolveType applies the interface's concrete-type resolver capability.
// It returns nil when none is declared or when the capability declines.
func (i *Interface) ResolveType(value any) *Object {
	if i.resolveType == nil {
		return nil
	}
	return i.resolveType(value)
}

func (i *Interface) Fields() map[string]*Field {
	i.fieldsOnce.Do(func() {
		if i.fieldsThunk == nil {
			i.fields = map[string]*Field{}
			return
		}
		i.fields, i.err = materializeFields(i.name, i.fieldsThunk())
	})
	return i.fields
}

// Union is a named abstract output type over a closed set of object types.
type Union struct {
	name        string
	description string
	resolveType ResolveTypeFn

	typesOnce  sync.Once
	typesThunk TypesThunk
	types      []*Object

	err error
}

// TypesThunk defers the member list, permitting forward references.
type TypesThunk func() []Type

type UnionConfig struct {
	Name        string
	Description string
	// Types or TypesThunk declares the member set. Members must all be
	// Object types; the check is deferred until first access.
	Types       []Type
	TypesThunk  TypesThunk
	ResolveType ResolveTypeFn
}

func NewUnion(config UnionConfig) *Union {
	u := &Union{
		name:        config.Name,
		description: config.Description,
		resolveType: config.ResolveType,
		typesThunk:  config.TypesThunk,
	}
	if config.Types != nil {
		types := append([]Type(nil), config.Types...)
		u.typesThunk = func() []Type { return types }
		u.Types()
	}
	return u
}

func (u *Union) TypeName() string    { return u.name }
func (u *Union) Description() string { return u.description }
func (u *Union) String() string      { return u.name }
func (u *Union) Err() error          { return u.err }

func (u *Union) ResolveType(value any) *Object {
	if u.resolveType == nil {
		return nil
	}
	return u.resolveType(value)
}

// Types materializes and returns the member object types. Membership is
// validated on first access: every member must be an Object type.
func (u *Union) Types() []*Object {
	u.typesOnce.Do(func() {
		if u.typesThunk == nil {
			return
		}
		for _, t := range u.typesThunk() {
			obj, ok := deref(t).(*Object)
			if !ok {
				u.err = fmt.Errorf("%v may only contain Object types, it cannot contain: %v.", u.name, typeRepr(t))
				u.types = nil
				return
			}
			u.types = append(u.types, obj)
		}
	})
	return u.types
}

// Enum is a leaf type over a closed set of named values.
type Enum struct {
	name        string
	description string
	values      []*EnumValue
	byName      map[string]*EnumValue
	err         error
}

type EnumValue struct {
	Name              string
	Description       string
	Value             any
	DeprecationReason string
}

// EnumValueConfig declares one enum value. A nil Value defaults to the name
// itself.
type EnumValueConfig struct {
	Name              string
	Description       string
	Value             any
	DeprecationReason string
}

type EnumConfig struct {
	Name        string
	Description string
	Values      []EnumValueConfig
}

func NewEnum(config EnumConfig) *Enum {
	e := &Enum{
		name:        config.Name,
		description: config.Description,
		byName:      make(map[string]*EnumValue, len(config.Values)),
	}
	for _, vc := range config.Values {
		if _, exists := e.byName[vc.Name]; exists {
			e.err = fmt.Errorf("%v may only define a value once, it redefines: %v.", e.name, vc.Name)
			continue
		}
		v := &EnumValue{
			Name:              vc.Name,
			Description:       vc.Description,
			Value:             vc.Value,
			DeprecationReason: vc.DeprecationReason,
		}
		if v.Value == nil {
			v.Value = v.Name
		}
		e.values = append(e.values, v)
		e.byName[v.Name] = v
	}
	return e
}

func (e *Enum) TypeName() string    { return e.name }
func (e *Enum) Description() string { return e.description }
func (e *Enum) String() string      { return e.name }
func (e *Enum) Err() error          { return e.err }

func (e *Enum) Values() []*EnumValue { return e.values }

// Value looks up an enum value by name.
func (e *Enum) Value(name string) *EnumValue { return e.byName[name] }

// Serialize maps an internal value back to its enum value name.
func (e *Enum) Serialize(value any) (any, error) {
	for _, v := range e.values {
		if v.Value == value || v.Name == value {
			return v.Name, nil
		}
	}
	return nil, fmt.Errorf("invalid value for enum %v: %v", e.name, value)
}

// ParseValue maps an enum value name to its internal value.
func (e *Enum) ParseValue(value any) (any, error) {
	name, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("enum %v cannot represent non-string value: %v", e.name, value)
	}
	v := e.byName[name]
	if v == nil {
		return nil, fmt.Errorf("value %q does not exist in %v enum", name, e.name)
	}
	return v.Value, nil
}

// InputField is a field definition owned by an InputObject.
type InputField struct {
	Name         string
	Description  string
	Type         Type
	DefaultValue any
}

type InputFieldConfig struct {
	Description  string
	Type         Type
	DefaultValue any
}

type InputFields map[string]*InputFieldConfig

type InputFieldsThunk func() InputFields

// InputObject is a named composite input type.
type InputObject struct {
	name        string
	description string

	fieldsOnce  sync.Once
	fieldsThunk InputFieldsThunk
	fields      map[string]*InputField
}

type InputObjectConfig struct {
	Name        string
	Description string
	Fields      InputFields
	FieldsThunk InputFieldsThunk
}

func NewInputObject(config InputObjectConfig) *InputObject {
	io := &InputObject{
		name:        config.Name,
		description: config.Description,
		fieldsThunk: config.FieldsThunk,
	}
	if config.Fields != nil {
		fields := config.Fields
		io.fieldsThunk = func() InputFields { return fields }
		io.Fields()
	}
	return io
}

func (io *InputObject) TypeName() string    { return io.name }
func (io *InputObject) Description() string { return io.description }
func (io *InputObject) String() string      { return io.name }
func (io *InputObject) Err() error          { return nil }

func (io *InputObject) Fields() map[string]*InputField {
	io.fieldsOnce.Do(func() {
		io.fields = map[string]*InputField{}
		if io.fieldsThunk == nil {
			return
		}
		for name, fc := range io.fieldsThunk() {
			io.fields[name] = &InputField{
				Name:         name,
				Description:  fc.Description,
				Type:         fc.Type,
				DefaultValue: fc.DefaultValue,
			}
		}
	})
	return io.fields
}

// materializeFields copies field configs into definitions, sorting argument
// lists by name for deterministic iteration.
func materializeFields(owner string, configs Fields) (map[string]*Field, error) {
	fields := make(map[string]*Field, len(configs))
	for name, fc := range configs {
		if fc == nil || fc.Type == nil {
			return nil, fmt.Errorf("%v.%v field type must be provided.", owner, name)
		}
		f := &Field{
			Name:              name,
			Description:       fc.Description,
			Type:              fc.Type,
			Resolve:           fc.Resolve,
			DeprecationReason: fc.DeprecationReason,
		}
		for argName, ac := range fc.Args {
			f.Args = append(f.Args, &Argument{
				Name:         argName,
				Description:  ac.Description,
				Type:         ac.Type,
				DefaultValue: ac.DefaultValue,
			})
		}
		sort.Slice(f.Args, func(i, j int) bool { return f.Args[i].Name < f.Args[j].Name })
		fields[name] = f
	}
	return fields, nil
}

// typeRepr renders a value for error messages, tolerating non-types.
func typeRepr(v any) string {
	if v == nil {
		return "<nil>"
	}
	if t, ok := v.(Type); ok && t != nil {
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}
