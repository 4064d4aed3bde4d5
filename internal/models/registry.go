package models

import (
	"fmt"
	"sort"
)

// Entity is a hydratable, persistable row.
type Entity interface {
	TableName() string
	Load(row map[string]any, links Links) error
	Persistable(links Links) map[string]any
	Validate() error
	Key() int64
	ContentType() string
}

// Constructor returns a zero entity with its discriminator and defaults set.
type Constructor func() Entity

// Registry maps a discriminator (the "type" column) to the entity it hydrates into.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a registry with every content, expert and block type registered.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}

	r.Register(TypeArticle, func() Entity { return &Article{newContent(TypeArticle)} })
	r.Register(TypeAudio, func() Entity { return &Audio{newContent(TypeAudio)} })
	r.Register(TypeCollection, func() Entity { return &Collection{newContent(TypeCollection)} })
	r.Register(TypeDownload, func() Entity { return &Download{newContent(TypeDownload)} })
	r.Register(TypeImage, func() Entity { return &Image{newContent(TypeImage)} })
	r.Register(TypeStatic, func() Entity { return &Static{newContent(TypeStatic)} })
	r.Register(TypeTag, func() Entity { return &Tag{newContent(TypeTag)} })
	r.Register(TypeVideo, func() Entity { return &Video{newContent(TypeVideo)} })

	r.Register(TypeExpert, func() Entity { return NewExpert() })

	for _, kind := range []string{TypeBlockHTML, TypeBlockRecentContent, TypeBlockSpotlight} {
		kind := kind
		r.Register(kind, func() Entity { return &Block{Type: kind} })
	}

	return r
}

// Register adds or replaces a constructor.
func (r *Registry) Register(discriminator string, ctor Constructor) {
	r.constructors[discriminator] = ctor
}

// New returns a zero entity for the discriminator.
func (r *Registry) New(discriminator string) (Entity, error) {
	ctor, ok := r.constructors[discriminator]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, discriminator)
	}
	return ctor(), nil
}

// Hydrate builds the entity selected by row["type"] and loads the row into it.
func (r *Registry) Hydrate(row map[string]any, links Links) (Entity, error) {
	discriminator, err := asString(row["type"])
	if err != nil || discriminator == "" {
		return nil, fmt.Errorf("%w: row has no type column", ErrUnknownType)
	}
	entity, err := r.New(discriminator)
	if err != nil {
		return nil, err
	}
	if err := entity.Load(row, links); err != nil {
		return nil, err
	}
	return entity, nil
}

// HydrateTable is Hydrate restricted to the entities stored in table. A discriminator registered
// for another table is rejected with ErrUnknownType.
func (r *Registry) HydrateTable(table string, row map[string]any, links Links) (Entity, error) {
	discriminator, err := asString(row["type"])
	if err != nil || discriminator == "" {
		return nil, fmt.Errorf("%w: row has no type column", ErrUnknownType)
	}
	entity, err := r.New(discriminator)
	if err != nil {
		return nil, err
	}
	if entity.TableName() != table {
		return nil, fmt.Errorf("%w: %q is not stored in %s", ErrUnknownType, discriminator, table)
	}
	if err := entity.Load(row, links); err != nil {
		return nil, err
	}
	return entity, nil
}

// Types returns the registered discriminators, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.constructors))
	for k := range r.constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
