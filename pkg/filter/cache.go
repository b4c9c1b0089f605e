package filter

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/config"
)

// CachedInterest is one per-callsite cache slot, tagged with the epoch it
// was computed against.
type CachedInterest struct {
	Epoch uint64
	Value Interest
}

// Cache memoizes ComputeInterest per callsite. Concurrent recomputation of
// the same slot is tolerated: the function is pure given (metadata, epoch),
// so the last write is always a correct value for that epoch.
type Cache struct {
	filter *Filter

	// cache: *Metadata -> (epoch, interest)
	slots *lru.Cache[*callsite.Metadata, CachedInterest]
}

func NewCache(f *Filter) *Cache {
	var c Cache
	c.filter = f
	c.slots, _ = lru.New[*callsite.Metadata, CachedInterest](config.MaxNumCallsite)
	return &c
}

// Filter exposes the underlying filter, for Evaluate and Reload.
func (c *Cache) Filter() *Filter {
	return c.filter
}

// Interest returns the cached decision for md, recomputing when the stored
// epoch is stale.
func (c *Cache) Interest(md *callsite.Metadata) Interest {
	epoch := c.filter.Epoch()
	if hit, ok := c.slots.Get(md); ok && hit.Epoch == epoch {
		return hit.Value
	}
	v := c.filter.ComputeInterest(md)
	c.slots.Add(md, CachedInterest{Epoch: epoch, Value: v})
	return v
}
