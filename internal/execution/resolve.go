package execution

import (
	"context"
	"reflect"
	"strings"

	schema "github.com/gqlkit/gqlkit/internal/schema"
)

// DefaultResolveFn resolves a field with no declared resolver by property
// lookup on the source: map entry by field name, or exported struct field
// matched by json tag or case-insensitive name. Pointers are dereferenced
// first; a nil source or missing property resolves to null.
func DefaultResolveFn(ctx context.Context, p schema.ResolveParams) (any, error) {
	source := p.Source
	if source == nil {
		return nil, nil
	}

	if m, ok := source.(map[string]any); ok {
		return m[p.Info.FieldName], nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		v := rv.MapIndex(reflect.ValueOf(p.Info.FieldName))
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil

	case reflect.Struct:
		if v, ok := structField(rv, p.Info.FieldName); ok {
			return v, nil
		}
	}
	return nil, nil
}

func structField(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == name {
				return rv.Field(i).Interface(), true
			}
			if tagName != "" {
				continue
			}
		}
		if strings.EqualFold(f.Name, name) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
