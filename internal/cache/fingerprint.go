// Package cache implements the content-addressed parse/render cache
// and the mtime-revalidated file cache of spec §4.7: a fingerprint
// derived from source bytes plus the active option set keys every
// cache lookup, an LRU bounds memory, and singleflight collapses
// concurrent misses for the same key into one build.
package cache

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes source content together with whatever flavor and
// option strings affect how it would be parsed/rendered, so that two
// calls differing only in, say, enabled extensions never collide.
func Fingerprint(content string, opts ...string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(content)
	for _, o := range opts {
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(o)
	}
	return h.Sum64()
}

func fingerprintKey(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}
