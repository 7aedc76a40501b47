package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapperRendering(t *testing.T) {
	require.Equal(t, "[String]", NewList(String).String())
	require.Equal(t, "String!", NewNonNull(String).String())
	require.Equal(t, "[String!]", NewList(NewNonNull(String)).String())
	require.Equal(t, "[String!]!", NewNonNull(NewList(NewNonNull(String))).String())
	require.Equal(t, "[[Int]]", NewList(NewList(Int)).String())
}

func TestWrapperConstructionErrors(t *testing.T) {
	t.Run("list of nil", func(t *testing.T) {
		l := NewList(nil)
		require.Error(t, l.Err())
		require.Equal(t, "Expected <nil> to be a GraphQL type.", l.Err().Error())
	})

	t.Run("non-null of nil", func(t *testing.T) {
		n := NewNonNull(nil)
		require.Error(t, n.Err())
		require.Equal(t, "Expected <nil> to be a GraphQL type.", n.Err().Error())
	})

	t.Run("non-null of non-null", func(t *testing.T) {
		n := NewNonNull(NewNonNull(String))
		require.Error(t, n.Err())
		require.Equal(t, "Expected String! to be a GraphQL nullable type.", n.Err().Error())
	})

	t.Run("valid wrappers carry no error", func(t *testing.T) {
		require.NoError(t, NewList(NewNonNull(String)).Err())
		require.NoError(t, NewNonNull(NewList(String)).Err())
	})
}

func TestUnionMemberValidation(t *testing.T) {
	obj := NewObject(ObjectConfig{
		Name:   "Photo",
		Fields: Fields{"url": {Type: String}},
	})

	t.Run("object members", func(t *testing.T) {
		u := NewUnion(UnionConfig{Name: "Media", Types: []Type{obj}})
		require.NoError(t, u.Err())
		require.Equal(t, []*Object{obj}, u.Types())
	})

	t.Run("scalar member rejected", func(t *testing.T) {
		u := NewUnion(UnionConfig{Name: "Media", Types: []Type{obj, String}})
		require.Error(t, u.Err())
		require.Equal(t, "Media may only contain Object types, it cannot contain: String.", u.Err().Error())
	})

	t.Run("deferred members validated on access", func(t *testing.T) {
		u := NewUnion(UnionConfig{
			Name:       "Media",
			TypesThunk: func() []Type { return []Type{NewList(obj)} },
		})
		require.NoError(t, u.Err())
		u.Types()
		require.Error(t, u.Err())
		require.Equal(t, "Media may only contain Object types, it cannot contain: [Photo].", u.Err().Error())
	})
}

func TestEnumValues(t *testing.T) {
	t.Run("duplicate name rejected", func(t *testing.T) {
		e := NewEnum(EnumConfig{
			Name: "Color",
			Values: []EnumValueConfig{
				{Name: "RED"},
				{Name: "RED"},
			},
		})
		require.Error(t, e.Err())
		require.Equal(t, "Color may only define a value once, it redefines: RED.", e.Err().Error())
	})

	t.Run("serialize maps internal value to name", func(t *testing.T) {
		e := NewEnum(EnumConfig{
			Name: "Color",
			Values: []EnumValueConfig{
				{Name: "RED", Value: 1},
				{Name: "GREEN", Value: 2},
			},
		})
		require.NoError(t, e.Err())

		name, err := e.Serialize(2)
		require.NoError(t, err)
		require.Equal(t, "GREEN", name)

		_, err = e.Serialize(3)
		require.Error(t, err)
	})

	t.Run("parse maps name to internal value", func(t *testing.T) {
		e := NewEnum(EnumConfig{
			Name: "Color",
			Values: []EnumValueConfig{
				{Name: "RED", Value: 1},
			},
		})
		v, err := e.ParseValue("RED")
		require.NoError(t, err)
		require.Equal(t, 1, v)

		_, err = e.ParseValue("BLUE")
		require.Error(t, err)

		_, err = e.ParseValue(7)
		require.Error(t, err)
	})

	t.Run("value defaults to name", func(t *testing.T) {
		e := NewEnum(EnumConfig{
			Name:   "Color",
			Values: []EnumValueConfig{{Name: "RED"}},
		})
		v, err := e.ParseValue("RED")
		require.NoError(t, err)
		require.Equal(t, "RED", v)
	})
}

func TestObjectFieldMaterialization(t *testing.T) {
	t.Run("thunk runs once", func(t *testing.T) {
		calls := 0
		obj := NewObject(ObjectConfig{
			Name: "Query",
			FieldsThunk: func() Fields {
				calls++
				return Fields{"a": {Type: String}}
			},
		})
		obj.Fields()
		obj.Fields()
		require.Equal(t, 1, calls)
	})

	t.Run("configs are copied eagerly", func(t *testing.T) {
		cfg := Fields{"a": {Type: String}}
		obj := NewObject(ObjectConfig{Name: "Query", Fields: cfg})
		cfg["b"] = &FieldConfig{Type: Int}

		fields := obj.Fields()
		require.Contains(t, fields, "a")
		require.NotContains(t, fields, "b")
	})

	t.Run("nil field type deferred to materialization", func(t *testing.T) {
		obj := NewObject(ObjectConfig{
			Name:   "Query",
			Fields: Fields{"broken": {}},
		})
		require.Error(t, obj.Err())
		require.Equal(t, "Query.broken field type must be provided.", obj.Err().Error())
	})

	t.Run("arguments sorted by name", func(t *testing.T) {
		obj := NewObject(ObjectConfig{
			Name: "Query",
			Fields: Fields{
				"search": {
					Type: String,
					Args: ArgumentConfigMap{
						"limit": {Type: Int},
						"after": {Type: ID},
						"query": {Type: NewNonNull(String)},
					},
				},
			},
		})
		require.NoError(t, obj.Err())
		args := obj.Fields()["search"].Args
		require.Len(t, args, 3)
		require.Equal(t, "after", args[0].Name)
		require.Equal(t, "limit", args[1].Name)
		require.Equal(t, "query", args[2].Name)
	})
}

func TestLazyReference(t *testing.T) {
	calls := 0
	var node *Object
	ref := Lazy(func() Type {
		calls++
		return node
	})
	node = NewObject(ObjectConfig{
		Name: "Node",
		Fields: Fields{
			"id": {Type: NewNonNull(ID)},
		},
	})

	require.Equal(t, "Node", ref.String())
	require.NoError(t, ref.Err())
	require.Same(t, Type(node), deref(ref))
	require.Equal(t, 1, calls)
}

func TestPredicates(t *testing.T) {
	obj := NewObject(ObjectConfig{Name: "Obj", Fields: Fields{"a": {Type: String}}})
	input := NewInputObject(InputObjectConfig{Name: "In", Fields: InputFields{"a": {Type: String}}})
	iface := NewInterface(InterfaceConfig{Name: "Node", Fields: Fields{"id": {Type: ID}}})
	union := NewUnion(UnionConfig{Name: "U", Types: []Type{obj}})
	enum := NewEnum(EnumConfig{Name: "E", Values: []EnumValueConfig{{Name: "A"}}})

	require.True(t, IsInputType(String))
	require.True(t, IsInputType(enum))
	require.True(t, IsInputType(NewNonNull(NewList(input))))
	require.False(t, IsInputType(obj))

	require.True(t, IsOutputType(String))
	require.True(t, IsOutputType(NewList(union)))
	require.True(t, IsOutputType(iface))
	require.False(t, IsOutputType(input))

	require.True(t, IsLeafType(String))
	require.True(t, IsLeafType(enum))
	require.False(t, IsLeafType(obj))

	require.True(t, IsAbstractType(iface))
	require.True(t, IsAbstractType(union))
	require.False(t, IsAbstractType(obj))

	require.Equal(t, "Obj", Named(NewNonNull(NewList(obj))).TypeName())
	require.Same(t, Type(obj), Nullable(NewNonNull(obj)))
	list := NewList(obj)
	require.Same(t, Type(list), Nullable(list))
}
