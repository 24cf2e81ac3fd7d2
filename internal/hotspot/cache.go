package hotspot

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
)

// DefaultCacheEntries bounds a Cache created with a non-positive size.
const DefaultCacheEntries = 32

type cacheKey struct {
	fingerprint uint64
	n           int
	k           int
	seed        int64
}

// Cache memoizes clustering runs keyed by (points fingerprint, k, seed).
// It wraps another Clusterer and is safe for concurrent use. Entries are
// evicted oldest first once the bound is reached. Errors are not cached.
type Cache struct {
	next Clusterer
	max  int

	mu      sync.Mutex
	entries map[cacheKey]*Result
	order   []cacheKey
	hits    int
	misses  int
}

// NewCache returns a Cache in front of next holding at most maxEntries results.
func NewCache(next Clusterer, maxEntries int) *Cache {
	if next == nil {
		next = KMeans{}
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &Cache{
		next:    next,
		max:     maxEntries,
		entries: make(map[cacheKey]*Result, maxEntries),
	}
}

// Cluster implements Clusterer. Returned results are private copies.
func (c *Cache) Cluster(points []accident.Point, k int, seed int64) (*Result, error) {
	key := cacheKey{fingerprint: Fingerprint(points), n: len(points), k: k, seed: seed}

	c.mu.Lock()
	if res, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return res.clone(), nil
	}
	c.misses++
	c.mu.Unlock()

	res, err := c.next.Cluster(points, k, seed)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = res.clone()
	return res, nil
}

// Stats returns hit and miss counts and the number of cached results.
func (c *Cache) Stats() (hits, misses, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// Fingerprint hashes the exact coordinate bits of points in order.
func Fingerprint(points []accident.Point) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.Lat))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Lon))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (r *Result) clone() *Result {
	out := *r
	out.Assignments = append([]int(nil), r.Assignments...)
	out.Centers = append([]accident.Center(nil), r.Centers...)
	return &out
}

var _ Clusterer = (*Cache)(nil)
