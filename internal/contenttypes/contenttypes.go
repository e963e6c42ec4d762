// Package contenttypes resolves generic "app.model" + primary key references
// to the persisted objects comments, ratings and keywords attach to.
package contenttypes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"myblog/internal/models"
	"myblog/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrUnknownType = errors.New("unknown content type")
	ErrNotFound    = errors.New("content object not found")
)

// Object is anything a comment, rating or keyword can be attached to.
type Object interface {
	ContentID() uint
	AbsoluteURL() string
	// OwnerID is nil when the object has no owning user.
	OwnerID() *uint
	String() string
}

// Rateable objects carry denormalised rating aggregates.
type Rateable interface {
	Object
	Ratings() models.RatingSummary
}

// Loader fetches one object by primary key.
type Loader func(ctx context.Context, tx *gorm.DB, pk uint) (Object, error)

// Type describes one registered model.
type Type struct {
	Label string // "app.model"
	Table string
	Load  Loader
}

type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register adds or replaces a content type.
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[strings.ToLower(t.Label)] = t
}

// Lookup returns the registered type for a label.
func (r *Registry) Lookup(label string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[strings.ToLower(strings.TrimSpace(label))]
	return t, ok
}

// Labels lists registered labels in sorted order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	labels := make([]string, 0, len(r.types))
	for l := range r.types {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Resolve loads the object named by a submitted content_type/object_pk pair.
func (r *Registry) Resolve(ctx context.Context, tx *gorm.DB, label, pk string) (Object, error) {
	t, ok := r.Lookup(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, label)
	}
	id, ok := utils.StringToUint(pk)
	if !ok {
		return nil, fmt.Errorf("%w: invalid pk %q", ErrNotFound, pk)
	}
	obj, err := t.Load(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s.%d", ErrNotFound, t.Label, id)
		}
		return nil, fmt.Errorf("failed to load %s.%d: %w", t.Label, id, err)
	}
	return obj, nil
}

// Key is the "<content_type>.<object_pk>" form used by the rating cookie.
func Key(label string, pk uint) string {
	return fmt.Sprintf("%s.%d", strings.ToLower(label), pk)
}

// Default returns a registry with every model this application exposes.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Type{
		Label: models.PostContentType,
		Table: "posts",
		Load: func(ctx context.Context, tx *gorm.DB, pk uint) (Object, error) {
			var post models.Post
			if err := tx.WithContext(ctx).First(&post, pk).Error; err != nil {
				return nil, err
			}
			return &post, nil
		},
	})
	return r
}
