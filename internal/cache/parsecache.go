package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/errtax"
	"github.com/JamieLittle16/marco/internal/logging"
)

// DefaultParseCacheCapacity is used when a non-positive capacity is
// requested (spec §4.7).
const DefaultParseCacheCapacity = 256

// ParseCache is a content-addressed, bounded cache from fingerprint to
// a built document. Concurrent misses on the same fingerprint are
// coalesced via singleflight so only one build runs.
type ParseCache struct {
	cache  *lru.Cache[uint64, *ast.Document]
	flight singleflight.Group
	log    logging.Sink

	mu     sync.Mutex
	closed bool

	hits   uint64
	misses uint64
}

// NewParseCache creates a ParseCache bounded to capacity entries
// (DefaultParseCacheCapacity if capacity <= 0).
func NewParseCache(capacity int, log logging.Sink) (*ParseCache, error) {
	if capacity <= 0 {
		capacity = DefaultParseCacheCapacity
	}
	if log == nil {
		log = logging.Noop()
	}
	c, err := lru.New[uint64, *ast.Document](capacity)
	if err != nil {
		return nil, errtax.Wrap(errtax.Invalid, "create parse cache", err)
	}
	return &ParseCache{cache: c, log: log}, nil
}

// GetOrBuild returns the cached document for fingerprint, building it
// with build and caching the result on a miss. build is called at
// most once per fingerprint even under concurrent callers.
func (pc *ParseCache) GetOrBuild(fingerprint uint64, build func() (*ast.Document, error)) (*ast.Document, error) {
	if doc, ok := pc.cache.Get(fingerprint); ok {
		pc.mu.Lock()
		pc.hits++
		pc.mu.Unlock()
		pc.log.Debug("parse cache hit", map[string]any{"fingerprint": fingerprint})
		return doc, nil
	}

	pc.mu.Lock()
	pc.misses++
	pc.mu.Unlock()

	v, err, shared := pc.flight.Do(fingerprintKey(fingerprint), func() (interface{}, error) {
		doc, err := build()
		if err != nil {
			return nil, err
		}
		pc.cache.Add(fingerprint, doc)
		return doc, nil
	})
	pc.log.Debug("parse cache miss", map[string]any{"fingerprint": fingerprint, "coalesced": shared})
	if err != nil {
		return nil, err
	}
	return v.(*ast.Document), nil
}

// Invalidate removes a single fingerprint's cached document.
func (pc *ParseCache) Invalidate(fingerprint uint64) {
	pc.cache.Remove(fingerprint)
}

// Clear empties the cache entirely.
func (pc *ParseCache) Clear() {
	pc.cache.Purge()
}

// Stats reports cumulative hit/miss counters.
func (pc *ParseCache) Stats() (hits, misses uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hits, pc.misses
}

// Shutdown releases cached entries. Safe to call more than once.
func (pc *ParseCache) Shutdown() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.closed {
		return
	}
	pc.closed = true
	pc.cache.Purge()
}
