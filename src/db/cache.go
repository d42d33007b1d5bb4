package db

import (
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cached transaction responses carry an issue_flag derived from wall-clock
// age, so entries must expire: an OK row crosses the stale threshold with no
// write to invalidate it.
const cacheTTL = time.Hour

// Storing cache keys in concurrent data structures to allow for clearing all
// caches of a certain type. Only the read-side transaction endpoints are
// cached; the dashboard summary is recomputed on every request and must
// never land here.
var (
	Cache                *ristretto.Cache
	TransactionCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	TransactionDetailCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Transaction List Cache Functions
func SetTransactionCache(cacheKey string, value interface{}) {
	TransactionCacheKeys.Lock()
	TransactionCacheKeys.m[cacheKey] = struct{}{}
	TransactionCacheKeys.Unlock()
	Cache.SetWithTTL(cacheKey, value, 1, cacheTTL)
}

func ClearAllTransactionCaches() {
	TransactionCacheKeys.Lock()
	for key := range TransactionCacheKeys.m {
		Cache.Del(key)
	}
	TransactionCacheKeys.m = make(map[string]struct{})
	TransactionCacheKeys.Unlock()
}

// Transaction Detail Cache Functions
func SetTransactionDetailCache(cacheKey string, value interface{}) {
	TransactionDetailCacheKeys.Lock()
	TransactionDetailCacheKeys.m[cacheKey] = struct{}{}
	TransactionDetailCacheKeys.Unlock()
	Cache.SetWithTTL(cacheKey, value, 1, cacheTTL)
}

func ClearAllTransactionDetailCaches() {
	TransactionDetailCacheKeys.Lock()
	for key := range TransactionDetailCacheKeys.m {
		Cache.Del(key)
	}
	TransactionDetailCacheKeys.m = make(map[string]struct{})
	TransactionDetailCacheKeys.Unlock()
}
