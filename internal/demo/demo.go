// Package demo builds a small blog schema over an in-memory store. It is the
// reference consumer of the type system: every kind of type, deferred
// resolvers, and serial mutations appear here, and the serve command exposes
// it over HTTP.
package demo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	schema "github.com/gqlkit/gqlkit/internal/schema"
)

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	IsActive       bool   `json:"isActive"`
	CreatedAt      string `json:"createdAt"`
	OrganizationID string `json:"-"`
}

type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
	AuthorID  string `json:"-"`
}

type Comment struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	PostID   string `json:"-"`
	AuthorID string `json:"-"`
}

type Profile struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

// Store is an in-memory dataset guarded by one lock. Reads happen from
// concurrent resolver goroutines; writes only from serial mutation fields.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*User
	usersByEmail  map[string]*User
	organizations map[string]*Organization
	posts         map[string]*Post
	comments      map[string]*Comment
	profiles      map[string]*Profile
	nextID        int
}

func NewStore() *Store {
	s := &Store{
		users:         make(map[string]*User),
		usersByEmail:  make(map[string]*User),
		organizations: make(map[string]*Organization),
		posts:         make(map[string]*Post),
		comments:      make(map[string]*Comment),
		profiles:      make(map[string]*Profile),
		nextID:        1,
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	now := time.Now().Format(time.RFC3339)

	for _, org := range []*Organization{
		{ID: "org-1", Name: "Tech Corp", Description: "A technology company"},
		{ID: "org-2", Name: "Design Studio", Description: "Creative design agency"},
	} {
		s.organizations[org.ID] = org
	}

	for _, u := range []*User{
		{ID: "user-1", Email: "john@example.com", Name: "John Doe", Age: 30, IsActive: true, CreatedAt: now, OrganizationID: "org-1"},
		{ID: "user-2", Email: "jane@example.com", Name: "Jane Smith", Age: 28, IsActive: true, CreatedAt: now, OrganizationID: "org-1"},
		{ID: "user-3", Email: "bob@example.com", Name: "Bob Johnson", Age: 35, IsActive: false, CreatedAt: now, OrganizationID: "org-2"},
	} {
		s.users[u.ID] = u
		s.usersByEmail[u.Email] = u
	}

	for _, p := range []*Profile{
		{ID: "profile-1", UserID: "user-1", Bio: "Software engineer with passion for Go", AvatarURL: "https://example.com/avatar/john.jpg"},
		{ID: "profile-2", UserID: "user-2", Bio: "Full-stack developer", AvatarURL: "https://example.com/avatar/jane.jpg"},
	} {
		s.profiles[p.ID] = p
	}

	for _, p := range []*Post{
		{ID: "post-1", Title: "Getting Started with Go", Content: "Go is a statically typed, compiled programming language...", Published: true, AuthorID: "user-1"},
		{ID: "post-2", Title: "GraphQL Best Practices", Content: "When designing GraphQL APIs, consider these best practices...", Published: true, AuthorID: "user-2"},
		{ID: "post-3", Title: "Draft Post", Content: "This is a draft post...", Published: false, AuthorID: "user-1"},
	} {
		s.posts[p.ID] = p
	}

	for _, c := range []*Comment{
		{ID: "comment-1", Content: "Great article!", PostID: "post-1", AuthorID: "user-2"},
		{ID: "comment-2", Content: "Very helpful, thanks!", PostID: "post-1", AuthorID: "user-3"},
		{ID: "comment-3", Content: "I disagree with some points...", PostID: "post-2", AuthorID: "user-1"},
	} {
		s.comments[c.ID] = c
	}

	// Seeded IDs occupy the 1..3 range; generated IDs continue after it.
	s.nextID = 3
}

func (s *Store) generateID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *Store) userPosts(authorID string) []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Post
	for _, id := range sortedKeys(s.posts) {
		if s.posts[id].AuthorID == authorID {
			out = append(out, s.posts[id])
		}
	}
	return out
}

func (s *Store) postComments(postID string) []*Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Comment
	for _, id := range sortedKeys(s.comments) {
		if s.comments[id].PostID == postID {
			out = append(out, s.comments[id])
		}
	}
	return out
}

func (s *Store) organizationMembers(orgID string) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, id := range sortedKeys(s.users) {
		if s.users[id].OrganizationID == orgID {
			out = append(out, s.users[id])
		}
	}
	return out
}

func (s *Store) profileOf(userID string) *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewSchema wires the blog types and resolvers over the store.
func NewSchema(store *Store) (*schema.Schema, error) {
	var userType, organizationType, postType, commentType, profileType *schema.Object

	node := schema.NewInterface(schema.InterfaceConfig{
		Name:        "Node",
		Description: "An object identifiable by a globally unique ID.",
		Fields: schema.Fields{
			"id": {Type: schema.NewNonNull(schema.ID)},
		},
		ResolveType: func(value any) *schema.Object {
			switch value.(type) {
			case *User:
				return userType
			case *Organization:
				return organizationType
			case *Post:
				return postType
			case *Comment:
				return commentType
			case *Profile:
				return profileType
			}
			return nil
		},
	})

	userType = schema.NewObject(schema.ObjectConfig{
		Name:       "User",
		Interfaces: []*schema.Interface{node},
		IsTypeOf: func(value any) bool {
			_, ok := value.(*User)
			return ok
		},
		FieldsThunk: func() schema.Fields {
			return schema.Fields{
				"id":        {Type: schema.NewNonNull(schema.ID)},
				"email":     {Type: schema.NewNonNull(schema.String)},
				"name":      {Type: schema.NewNonNull(schema.String)},
				"age":       {Type: schema.Int},
				"isActive":  {Type: schema.NewNonNull(schema.Boolean)},
				"createdAt": {Type: schema.String},
				"organization": {
					Type: organizationType,
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						u := p.Source.(*User)
						store.mu.RLock()
						defer store.mu.RUnlock()
						return store.organizations[u.OrganizationID], nil
					},
				},
				"posts": {
					Type: schema.NewNonNull(schema.NewList(schema.NewNonNull(postType))),
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						u := p.Source.(*User)
						return schema.Thunk(func() (any, error) {
							posts := store.userPosts(u.ID)
							out := make([]any, len(posts))
							for i, post := range posts {
								out[i] = post
							}
							return out, nil
						}), nil
					},
				},
				"profile": {
					Type: profileType,
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						u := p.Source.(*User)
						return schema.Thunk(func() (any, error) {
							return store.profileOf(u.ID), nil
						}), nil
					},
				},
			}
		},
	})

	organizationType = schema.NewObject(schema.ObjectConfig{
		Name:       "Organization",
		Interfaces: []*schema.Interface{node},
		IsTypeOf: func(value any) bool {
			_, ok := value.(*Organization)
			return ok
		},
		FieldsThunk: func() schema.Fields {
			return schema.Fields{
				"id":          {Type: schema.NewNonNull(schema.ID)},
				"name":        {Type: schema.NewNonNull(schema.String)},
				"description": {Type: schema.String},
				"members": {
					Type: schema.NewNonNull(schema.NewList(schema.NewNonNull(userType))),
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						org := p.Source.(*Organization)
						members := store.organizationMembers(org.ID)
						out := make([]any, len(members))
						for i, m := range members {
							out[i] = m
						}
						return out, nil
					},
				},
				"memberCount": {
					Type: schema.NewNonNull(schema.Int),
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						org := p.Source.(*Organization)
						return len(store.organizationMembers(org.ID)), nil
					},
				},
			}
		},
	})

	commentType = schema.NewObject(schema.ObjectConfig{
		Name:       "Comment",
		Interfaces: []*schema.Interface{node},
		IsTypeOf: func(value any) bool {
			_, ok := value.(*Comment)
			return ok
		},
		FieldsThunk: func() schema.Fields {
			return schema.Fields{
				"id":      {Type: schema.NewNonNull(schema.ID)},
				"content": {Type: schema.NewNonNull(schema.String)},
				"author": {
					Type: userType,
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						c := p.Source.(*Comment)
						store.mu.RLock()
						defer store.mu.RUnlock()
						return store.users[c.AuthorID], nil
					},
				},
			}
		},
	})

	postType = schema.NewObject(schema.ObjectConfig{
		Name:       "Post",
		Interfaces: []*schema.Interface{node},
		IsTypeOf: func(value any) bool {
			_, ok := value.(*Post)
			return ok
		},
		FieldsThunk: func() schema.Fields {
			return schema.Fields{
				"id":        {Type: schema.NewNonNull(schema.ID)},
				"title":     {Type: schema.NewNonNull(schema.String)},
				"content":   {Type: schema.NewNonNull(schema.String)},
				"published": {Type: schema.NewNonNull(schema.Boolean)},
				"author": {
					Type: userType,
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						post := p.Source.(*Post)
						store.mu.RLock()
						defer store.mu.RUnlock()
						return store.users[post.AuthorID], nil
					},
				},
				"comments": {
					Type: schema.NewNonNull(schema.NewList(schema.NewNonNull(commentType))),
					Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
						post := p.Source.(*Post)
						return schema.Thunk(func() (any, error) {
							comments := store.postComments(post.ID)
							out := make([]any, len(comments))
							for i, c := range comments {
								out[i] = c
							}
							return out, nil
						}), nil
					},
				},
			}
		},
	})

	profileType = schema.NewObject(schema.ObjectConfig{
		Name:       "Profile",
		Interfaces: []*schema.Interface{node},
		IsTypeOf: func(value any) bool {
			_, ok := value.(*Profile)
			return ok
		},
		Fields: schema.Fields{
			"id":        {Type: schema.NewNonNull(schema.ID)},
			"bio":       {Type: schema.String},
			"avatarUrl": {Type: schema.String},
		},
	})

	searchResult := schema.NewUnion(schema.UnionConfig{
		Name:        "SearchResult",
		Description: "Anything matched by a full-text search.",
		TypesThunk: func() []schema.Type {
			return []schema.Type{userType, organizationType, postType}
		},
	})

	createUserInput := schema.NewInputObject(schema.InputObjectConfig{
		Name: "CreateUserInput",
		Fields: schema.InputFields{
			"email":          {Type: schema.NewNonNull(schema.String)},
			"name":           {Type: schema.NewNonNull(schema.String)},
			"age":            {Type: schema.Int},
			"organizationId": {Type: schema.ID},
		},
	})

	updateUserInput := schema.NewInputObject(schema.InputObjectConfig{
		Name: "UpdateUserInput",
		Fields: schema.InputFields{
			"email":    {Type: schema.String},
			"name":     {Type: schema.String},
			"age":      {Type: schema.Int},
			"isActive": {Type: schema.Boolean},
		},
	})

	query := schema.NewObject(schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"user": {
				Type: userType,
				Args: schema.ArgumentConfigMap{
					"id": {Type: schema.NewNonNull(schema.ID)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					store.mu.RLock()
					defer store.mu.RUnlock()
					return store.users[p.Args["id"].(string)], nil
				},
			},
			"users": {
				Type: schema.NewNonNull(schema.NewList(schema.NewNonNull(userType))),
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					store.mu.RLock()
					defer store.mu.RUnlock()
					out := make([]any, 0, len(store.users))
					for _, id := range sortedKeys(store.users) {
						out = append(out, store.users[id])
					}
					return out, nil
				},
			},
			"node": {
				Type: node,
				Args: schema.ArgumentConfigMap{
					"id": {Type: schema.NewNonNull(schema.ID)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					id := p.Args["id"].(string)
					store.mu.RLock()
					defer store.mu.RUnlock()
					if u, ok := store.users[id]; ok {
						return u, nil
					}
					if org, ok := store.organizations[id]; ok {
						return org, nil
					}
					if post, ok := store.posts[id]; ok {
						return post, nil
					}
					if c, ok := store.comments[id]; ok {
						return c, nil
					}
					if pr, ok := store.profiles[id]; ok {
						return pr, nil
					}
					return nil, nil
				},
			},
			"search": {
				Type: schema.NewNonNull(schema.NewList(schema.NewNonNull(searchResult))),
				Args: schema.ArgumentConfigMap{
					"term": {Type: schema.NewNonNull(schema.String)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					term := strings.ToLower(p.Args["term"].(string))
					return schema.Thunk(func() (any, error) {
						return store.search(term), nil
					}), nil
				},
			},
		},
	})

	mutation := schema.NewObject(schema.ObjectConfig{
		Name: "Mutation",
		Fields: schema.Fields{
			"createUser": {
				Type: userType,
				Args: schema.ArgumentConfigMap{
					"input": {Type: schema.NewNonNull(createUserInput)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return store.createUser(p.Args["input"].(map[string]any))
				},
			},
			"updateUser": {
				Type: userType,
				Args: schema.ArgumentConfigMap{
					"id":    {Type: schema.NewNonNull(schema.ID)},
					"input": {Type: schema.NewNonNull(updateUserInput)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return store.updateUser(p.Args["id"].(string), p.Args["input"].(map[string]any))
				},
			},
			"deleteUser": {
				Type: schema.NewNonNull(schema.Boolean),
				Args: schema.ArgumentConfigMap{
					"id": {Type: schema.NewNonNull(schema.ID)},
				},
				Resolve: func(ctx context.Context, p schema.ResolveParams) (any, error) {
					return store.deleteUser(p.Args["id"].(string)), nil
				},
			},
		},
	})

	return schema.NewSchema(schema.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func (s *Store) search(needle string) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := func(values ...string) bool {
		for _, v := range values {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}

	var out []any
	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; matches(u.Name, u.Email) {
			out = append(out, u)
		}
	}
	for _, id := range sortedKeys(s.organizations) {
		if org := s.organizations[id]; matches(org.Name, org.Description) {
			out = append(out, org)
		}
	}
	for _, id := range sortedKeys(s.posts) {
		if p := s.posts[id]; matches(p.Title, p.Content) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) createUser(input map[string]any) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := input["email"].(string)
	if _, exists := s.usersByEmail[email]; exists {
		return nil, fmt.Errorf("user with email %q already exists", email)
	}

	u := &User{
		ID:        s.generateID("user"),
		Email:     email,
		Name:      input["name"].(string),
		IsActive:  true,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if age, ok := input["age"].(int); ok {
		u.Age = age
	}
	if orgID, ok := input["organizationId"].(string); ok {
		if _, exists := s.organizations[orgID]; !exists {
			return nil, fmt.Errorf("organization %q not found", orgID)
		}
		u.OrganizationID = orgID
	}

	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u
	return u, nil
}

func (s *Store) updateUser(id string, input map[string]any) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, fmt.Errorf("user %q not found", id)
	}

	if email, ok := input["email"].(string); ok && email != u.Email {
		if _, taken := s.usersByEmail[email]; taken {
			return nil, fmt.Errorf("user with email %q already exists", email)
		}
		delete(s.usersByEmail, u.Email)
		u.Email = email
		s.usersByEmail[email] = u
	}
	if name, ok := input["name"].(string); ok {
		u.Name = name
	}
	if age, ok := input["age"].(int); ok {
		u.Age = age
	}
	if active, ok := input["isActive"].(bool); ok {
		u.IsActive = active
	}
	return u, nil
}

func (s *Store) deleteUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return false
	}
	delete(s.users, id)
	delete(s.usersByEmail, u.Email)
	for pid, p := range s.profiles {
		if p.UserID == id {
			delete(s.profiles, pid)
		}
	}
	return true
}
