package destination

import (
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/gezi-ai/internal/types"
)

const listingKey = "cities"

// ListingCache holds the enriched city listing for TTL. The zero TTL disables caching.
type ListingCache struct {
	TTL   time.Duration
	store *cache.Cache
}

func NewListingCache(ttl time.Duration) *ListingCache {
	cleanup := ttl * 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &ListingCache{
		TTL:   ttl,
		store: cache.New(ttl, cleanup),
	}
}

// Get returns a copy of the cached listing.
func (c *ListingCache) Get() ([]types.CityCard, bool) {
	v, found := c.store.Get(listingKey)
	if !found {
		return nil, false
	}
	cards, ok := v.([]types.CityCard)
	if !ok {
		return nil, false
	}
	return slices.Clone(cards), true
}

func (c *ListingCache) Set(cards []types.CityCard) {
	if c.TTL <= 0 {
		return
	}
	c.store.Set(listingKey, slices.Clone(cards), c.TTL)
}

// Invalidate drops the cached listing; the next read refetches.
func (c *ListingCache) Invalidate() {
	c.store.Delete(listingKey)
}

// Country returns the country of the cached city named place, if any.
func (c *ListingCache) Country(place string) (string, bool) {
	cards, ok := c.Get()
	if !ok {
		return "", false
	}
	for _, card := range cards {
		if samePlace(card.Name, place) && card.Country != "" {
			return card.Country, true
		}
	}
	return "", false
}
