package cache

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JamieLittle16/marco/internal/errtax"
	"github.com/JamieLittle16/marco/internal/logging"
)

type fileEntry struct {
	bytes      []byte
	modTime    time.Time
	lastAccess time.Time
}

// FileCache maps a filesystem path to its last-read bytes, revalidated
// against the file's mtime on every read rather than a fixed TTL
// (spec §4.7). Concurrent reads of an unread or stale path coalesce
// via singleflight.
type FileCache struct {
	mu      sync.RWMutex
	entries map[string]*fileEntry
	flight  singleflight.Group
	log     logging.Sink
	closed  bool
}

// NewFileCache creates an empty FileCache.
func NewFileCache(log logging.Sink) *FileCache {
	if log == nil {
		log = logging.Noop()
	}
	return &FileCache{entries: make(map[string]*fileEntry), log: log}
}

// Read returns path's contents, serving a cached copy when the file's
// mtime has not changed since it was last read.
func (fc *FileCache) Read(path string) ([]byte, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		return nil, errtax.Wrap(errtax.Io, "stat "+path, statErr)
	}

	fc.mu.RLock()
	entry, ok := fc.entries[path]
	fc.mu.RUnlock()
	if ok && entry.modTime.Equal(info.ModTime()) {
		fc.touch(path)
		fc.log.Debug("file cache hit", map[string]any{"path": path})
		return entry.bytes, nil
	}

	v, err, shared := fc.flight.Do(path, func() (interface{}, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fc.mu.Lock()
		fc.entries[path] = &fileEntry{bytes: data, modTime: info.ModTime(), lastAccess: time.Now()}
		fc.mu.Unlock()
		return data, nil
	})
	fc.log.Debug("file cache miss", map[string]any{"path": path, "coalesced": shared})
	if err != nil {
		return nil, errtax.Wrap(errtax.Io, "read "+path, err)
	}
	return v.([]byte), nil
}

func (fc *FileCache) touch(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if e, ok := fc.entries[path]; ok {
		e.lastAccess = time.Now()
	}
}

// Invalidate drops a single path's cached contents.
func (fc *FileCache) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.entries, path)
}

// Clear empties the cache entirely.
func (fc *FileCache) Clear() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.entries = make(map[string]*fileEntry)
}

// Shutdown releases cached entries. Safe to call more than once.
func (fc *FileCache) Shutdown() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.closed {
		return
	}
	fc.closed = true
	fc.entries = nil
}
