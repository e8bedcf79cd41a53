package common

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"infinite-experiment/logbook/internal/constants"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
)

// AliasCache maps normalized aircraft aliases to catalog records
type AliasCache interface {
	// Get returns the record cached for alias
	Get(ctx context.Context, alias string) (*gormModels.AircraftModel, bool)

	// Set caches model under alias
	Set(ctx context.Context, alias string, model *gormModels.AircraftModel)

	// Delete evicts alias
	Delete(ctx context.Context, alias string)

	// Close releases any underlying connection
	Close() error
}

func aliasKey(alias string) string {
	return string(constants.CachePrefixAircraftAlias) + alias
}

// MemoryAliasCache is the in-process alias cache
type MemoryAliasCache struct {
	cache *cache.Cache
}

var _ AliasCache = (*MemoryAliasCache)(nil)

func NewMemoryAliasCache(ttl time.Duration) *MemoryAliasCache {
	return &MemoryAliasCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *MemoryAliasCache) Get(_ context.Context, alias string) (*gormModels.AircraftModel, bool) {
	val, found := c.cache.Get(aliasKey(alias))
	if !found {
		return nil, false
	}
	model, ok := val.(gormModels.AircraftModel)
	if !ok {
		return nil, false
	}
	return &model, true
}

// Set stores a copy so callers cannot mutate the cached record
func (c *MemoryAliasCache) Set(_ context.Context, alias string, model *gormModels.AircraftModel) {
	if model == nil {
		return
	}
	c.cache.SetDefault(aliasKey(alias), *model)
}

func (c *MemoryAliasCache) Delete(_ context.Context, alias string) {
	c.cache.Delete(aliasKey(alias))
}

// Close is a no-op for the in-memory cache
func (c *MemoryAliasCache) Close() error {
	return nil
}
