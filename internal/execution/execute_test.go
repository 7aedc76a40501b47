package execution

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/gqlkit/gqlkit/internal/language"
	schema "github.com/gqlkit/gqlkit/internal/schema"
)

func mustParseQuery(t *testing.T, source string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(source)
	require.NoError(t, err)
	return doc
}

func mustSchema(t *testing.T, config schema.SchemaConfig) *schema.Schema {
	t.Helper()
	s, err := schema.NewSchema(config)
	require.NoError(t, err)
	return s
}

func run(t *testing.T, s *schema.Schema, query string, opts ...func(*Params)) *Response {
	t.Helper()
	p := Params{Schema: s, Document: mustParseQuery(t, query)}
	for _, opt := range opts {
		opt(&p)
	}
	return Do(context.Background(), p)
}

func withVariables(vars map[string]any) func(*Params) {
	return func(p *Params) { p.VariableValues = vars }
}

func withRoot(root any) func(*Params) {
	return func(p *Params) { p.RootValue = root }
}

func withOperationName(name string) func(*Params) {
	return func(p *Params) { p.OperationName = name }
}

// dataJSON renders the response data for order-sensitive comparison.
func dataJSON(t *testing.T, resp *Response) string {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	return string(b)
}

func articleSchema(t *testing.T) *schema.Schema {
	t.Helper()
	author := schema.NewObject(schema.ObjectConfig{
		Name: "Author",
		Fields: schema.Fields{
			"name": {Type: schema.NewNonNull(schema.String)},
		},
	})
	article := schema.NewObject(schema.ObjectConfig{
		Name: "Article",
		Fields: schema.Fields{
			"id":    {Type: schema.NewNonNull(schema.ID)},
			"title": {Type: schema.NewNonNull(schema.String)},
			"body":  {Type: schema.String},
			"author": {
				Type: author,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return map[string]any{"name": "Ada"}, nil
				},
			},
		},
	})
	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"article": {
				Type: article,
				Args: schema.ArgumentConfigMap{
					"id": {Type: schema.NewNonNull(schema.ID)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return map[string]any{
						"id":    p.Args["id"],
						"title": "On Computable Numbers",
						"body":  "…",
					}, nil
				},
			},
			"articles": {
				Type: schema.NewList(article),
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return []any{
						map[string]any{"id": "1", "title": "First"},
						map[string]any{"id": "2", "title": "Second"},
					}, nil
				},
			},
		},
	})
	return mustSchema(t, schema.SchemaConfig{Query: query})
}

func TestExecuteBasicQuery(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `{ article(id: "42") { id title author { name } } }`)

	require.Empty(t, resp.Errors)
	want := `{"article":{"id":"42","title":"On Computable Numbers","author":{"name":"Ada"}}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecutePreservesDeclarationOrder(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `{ article(id: "1") { title body id } }`)

	require.Empty(t, resp.Errors)
	want := `{"article":{"title":"On Computable Numbers","body":"…","id":"1"}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteAliases(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `{
		first: article(id: "1") { title }
		second: article(id: "2") { name: title }
	}`)

	require.Empty(t, resp.Errors)
	want := `{"first":{"title":"On Computable Numbers"},"second":{"name":"On Computable Numbers"}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteFragments(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `
		query {
			article(id: "1") {
				...Meta
				... on Article { body }
			}
		}
		fragment Meta on Article { id title }
	`)

	require.Empty(t, resp.Errors)
	want := `{"article":{"id":"1","title":"On Computable Numbers","body":"…"}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteMergesDuplicateResponseKeys(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `{
		article(id: "1") { id }
		article(id: "1") { title }
	}`)

	require.Empty(t, resp.Errors)
	want := `{"article":{"id":"1","title":"On Computable Numbers"}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteSkipAndInclude(t *testing.T) {
	s := articleSchema(t)

	t.Run("literals", func(t *testing.T) {
		resp := run(t, s, `{
			article(id: "1") {
				id @skip(if: true)
				title @include(if: true)
				body @include(if: false)
			}
		}`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"title":"On Computable Numbers"}}`, dataJSON(t, resp))
	})

	t.Run("variables", func(t *testing.T) {
		resp := run(t, s, `query ($withBody: Boolean!) {
			article(id: "1") {
				title
				body @include(if: $withBody)
			}
		}`, withVariables(map[string]any{"withBody": false}))
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"title":"On Computable Numbers"}}`, dataJSON(t, resp))
	})

	t.Run("skip wins over include", func(t *testing.T) {
		resp := run(t, s, `{
			article(id: "1") { title @skip(if: true) @include(if: true) id }
		}`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"id":"1"}}`, dataJSON(t, resp))
	})

	t.Run("on fragment spread", func(t *testing.T) {
		resp := run(t, s, `
			{ article(id: "1") { id ...Meta @skip(if: true) } }
			fragment Meta on Article { title }
		`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"id":"1"}}`, dataJSON(t, resp))
	})
}

func TestExecuteTypename(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `{ __typename article(id: "1") { __typename title } }`)

	require.Empty(t, resp.Errors)
	want := `{"__typename":"Query","article":{"__typename":"Article","title":"On Computable Numbers"}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteListField(t *testing.T) {
	s := articleSchema(t)
	resp := run(t, s, `{ articles { id title } }`)

	require.Empty(t, resp.Errors)
	want := `{"articles":[{"id":"1","title":"First"},{"id":"2","title":"Second"}]}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteVariableCoercion(t *testing.T) {
	s := articleSchema(t)

	t.Run("missing required variable is a request error", func(t *testing.T) {
		resp := run(t, s, `query ($id: ID!) { article(id: $id) { id } }`)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, "Variable $id of required type ID! was not provided")
		require.Nil(t, resp.Data)
	})

	t.Run("default value applies", func(t *testing.T) {
		resp := run(t, s, `query ($id: ID = "7") { article(id: $id) { id } }`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"id":"7"}}`, dataJSON(t, resp))
	})

	t.Run("int coerces to ID", func(t *testing.T) {
		resp := run(t, s, `query ($id: ID!) { article(id: $id) { id } }`,
			withVariables(map[string]any{"id": 42}))
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"id":"42"}}`, dataJSON(t, resp))
	})
}

func TestExecuteOperationSelection(t *testing.T) {
	s := articleSchema(t)
	doc := `
		query A { article(id: "1") { id } }
		query B { article(id: "2") { id } }
	`

	t.Run("by name", func(t *testing.T) {
		resp := run(t, s, doc, withOperationName("B"))
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"article":{"id":"2"}}`, dataJSON(t, resp))
	})

	t.Run("ambiguous without name", func(t *testing.T) {
		resp := run(t, s, doc)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, "operation name is required")
	})

	t.Run("unknown name", func(t *testing.T) {
		resp := run(t, s, doc, withOperationName("C"))
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, `operation "C" not found`)
	})
}

func TestExecuteDefaultResolver(t *testing.T) {
	type article struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Byline string
	}

	articleType := schema.NewObject(schema.ObjectConfig{
		Name: "Article",
		Fields: schema.Fields{
			"id":     {Type: schema.NewNonNull(schema.ID)},
			"title":  {Type: schema.String},
			"byline": {Type: schema.String},
		},
	})
	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"article": {
				Type: articleType,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return &article{ID: "9", Title: "Structs", Byline: "by tag or name"}, nil
				},
			},
		},
	})
	s := mustSchema(t, schema.SchemaConfig{Query: query})

	resp := run(t, s, `{ article { id title byline } }`)
	require.Empty(t, resp.Errors)
	want := `{"article":{"id":"9","title":"Structs","byline":"by tag or name"}}`
	require.Equal(t, want, dataJSON(t, resp))
}

func TestExecuteDeferredResolvers(t *testing.T) {
	release := make(chan struct{})

	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"slow": {
				Type: schema.String,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return schema.Thunk(func() (any, error) {
						<-release
						return "slow value", nil
					}), nil
				},
			},
			"fast": {
				Type: schema.String,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					// Runs before the slow sibling completes; proves siblings
					// are invoked without waiting on each other.
					close(release)
					return "fast value", nil
				},
			},
		},
	})
	s := mustSchema(t, schema.SchemaConfig{Query: query})

	resp := run(t, s, `{ slow fast }`)
	require.Empty(t, resp.Errors)
	require.Equal(t, `{"slow":"slow value","fast":"fast value"}`, dataJSON(t, resp))
}

func TestExecuteRawFuncThunk(t *testing.T) {
	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"value": {
				Type: schema.Int,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return func() (any, error) { return 7, nil }, nil
				},
			},
		},
	})
	s := mustSchema(t, schema.SchemaConfig{Query: query})

	resp := run(t, s, `{ value }`)
	require.Empty(t, resp.Errors)
	require.Equal(t, `{"value":7}`, dataJSON(t, resp))
}

func TestExecuteMutationSerial(t *testing.T) {
	var order []string

	mutation := schema.NewObject(schema.ObjectConfig{
		Name: "Mutation",
		Fields: schema.Fields{
			"first": {
				Type: schema.String,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return schema.Thunk(func() (any, error) {
						time.Sleep(10 * time.Millisecond)
						order = append(order, "first")
						return "first", nil
					}), nil
				},
			},
			"second": {
				Type: schema.String,
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					order = append(order, "second")
					return "second", nil
				},
			},
		},
	})
	query := schema.NewObject(schema.ObjectConfig{
		Name:   "Query",
		Fields: schema.Fields{"ok": {Type: schema.Boolean}},
	})
	s := mustSchema(t, schema.SchemaConfig{Query: query, Mutation: mutation})

	resp := run(t, s, `mutation { first second }`)
	require.Empty(t, resp.Errors)
	require.Equal(t, `{"first":"first","second":"second"}`, dataJSON(t, resp))

	// The first field's deferred work finishes before the second resolver
	// starts.
	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Fatalf("mutation order mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteArgumentDefaults(t *testing.T) {
	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"greet": {
				Type: schema.String,
				Args: schema.ArgumentConfigMap{
					"name": {Type: schema.String, DefaultValue: "world"},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return "hello " + p.Args["name"].(string), nil
				},
			},
		},
	})
	s := mustSchema(t, schema.SchemaConfig{Query: query})

	t.Run("default applies", func(t *testing.T) {
		resp := run(t, s, `{ greet }`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"greet":"hello world"}`, dataJSON(t, resp))
	})

	t.Run("literal overrides", func(t *testing.T) {
		resp := run(t, s, `{ greet(name: "gopher") }`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"greet":"hello gopher"}`, dataJSON(t, resp))
	})
}

func TestExecuteInputObjectArgument(t *testing.T) {
	filter := schema.NewInputObject(schema.InputObjectConfig{
		Name: "Filter",
		Fields: schema.InputFields{
			"query": {Type: schema.NewNonNull(schema.String)},
			"limit": {Type: schema.Int, DefaultValue: 10},
		},
	})
	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"search": {
				Type: schema.String,
				Args: schema.ArgumentConfigMap{
					"filter": {Type: schema.NewNonNull(filter)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					f := p.Args["filter"].(map[string]any)
					b, err := json.Marshal(map[string]any{"q": f["query"], "n": f["limit"]})
					return string(b), err
				},
			},
		},
	})
	s := mustSchema(t, schema.SchemaConfig{Query: query})

	t.Run("literal with field default", func(t *testing.T) {
		resp := run(t, s, `{ search(filter: {query: "go"}) }`)
		require.Empty(t, resp.Errors)
		require.Equal(t, `{"search":"{\"n\":10,\"q\":\"go\"}"}`, dataJSON(t, resp))
	})

	t.Run("missing required input field", func(t *testing.T) {
		resp := run(t, s, `{ search(filter: {limit: 3}) }`)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, "Filter.query of required type String! was not provided")
		require.Equal(t, []any{"search"}, resp.Errors[0].Path)
	})

	t.Run("unknown input field", func(t *testing.T) {
		resp := run(t, s, `{ search(filter: {query: "go", bogus: 1}) }`)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, `field "bogus" is not defined by type Filter`)
	})
}
