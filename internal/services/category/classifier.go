package category

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/typesteps/typesteps/internal/models"
)

// DefaultCacheSize bounds the number of memoized (app, bundle) pairs.
const DefaultCacheSize = 256

type cacheKey struct {
	app    string
	bundle string
}

// Classifier memoizes Classify for the hot ingest path, where the same few
// applications repeat for every keystroke.
type Classifier struct {
	cache *lru.Cache[cacheKey, models.Category]
}

// NewClassifier creates a classifier with an LRU cache of the given size.
func NewClassifier(size int) (*Classifier, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, models.Category](size)
	if err != nil {
		return nil, err
	}
	return &Classifier{cache: cache}, nil
}

// Classify returns the category for an app, consulting the cache first.
func (c *Classifier) Classify(appName, bundleID string) models.Category {
	key := cacheKey{app: appName, bundle: bundleID}
	if cat, ok := c.cache.Get(key); ok {
		return cat
	}
	cat := Classify(appName, bundleID)
	c.cache.Add(key, cat)
	return cat
}

// Len returns the number of cached entries.
func (c *Classifier) Len() int {
	return c.cache.Len()
}
