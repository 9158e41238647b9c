package catalog

import (
	"context"
	"strings"
	"sync/atomic"

	"modelsagent/internal/core"
)

// Source is the catalog transport used by a Catalog.
type Source interface {
	FetchModels(ctx context.Context) ([]core.ModelDescriptor, error)
	FetchSchema(ctx context.Context, registry, name string) (core.ModelSchema, error)
}

// Catalog is a request-scoped view of the model catalog. The model list is
// fetched on first use and then served from memory. The cell is lock-free:
// two concurrent first readers may both fetch, and whichever stores first wins.
// Schemas are always fetched live.
type Catalog struct {
	source Source
	models atomic.Pointer[[]core.ModelDescriptor]
}

var _ core.ModelCatalog = (*Catalog)(nil)

// New creates an empty Catalog backed by source.
func New(source Source) *Catalog {
	return &Catalog{source: source}
}

// ListModels returns the memoized model list, fetching it on first use.
// A failed fetch is not memoized.
func (c *Catalog) ListModels(ctx context.Context) ([]core.ModelDescriptor, error) {
	if cached := c.models.Load(); cached != nil {
		return *cached, nil
	}

	models, err := c.source.FetchModels(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []core.ModelDescriptor{}
	}
	if c.models.CompareAndSwap(nil, &models) {
		return models, nil
	}
	return *c.models.Load(), nil
}

// GetModel resolves name against the model list. An exact name match wins;
// otherwise a case-insensitive match on the name, or on the name part of a
// "publisher/name" or "registry/name" form, is accepted.
func (c *Catalog) GetModel(ctx context.Context, name string) (core.ModelDescriptor, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return core.ModelDescriptor{}, err
	}

	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}

	wanted := name
	if i := strings.LastIndex(wanted, "/"); i >= 0 {
		wanted = wanted[i+1:]
	}
	for _, m := range models {
		if strings.EqualFold(m.Name, wanted) {
			return m, nil
		}
	}
	return core.ModelDescriptor{}, core.NewNotFound("model", name)
}

// GetModelSchema fetches the schema of the named model. Never memoized.
func (c *Catalog) GetModelSchema(ctx context.Context, name string) (core.ModelSchema, error) {
	model, err := c.GetModel(ctx, name)
	if err != nil {
		return core.ModelSchema{}, err
	}
	return c.source.FetchSchema(ctx, model.Registry, model.Name)
}
