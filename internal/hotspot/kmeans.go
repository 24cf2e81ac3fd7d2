package hotspot

import (
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/monitoring"
)

// MaxIterations bounds the Lloyd loop. It is a safety cap, not a tunable.
const MaxIterations = 300

// Result is the outcome of one clustering run. It is transient: a new
// Result is produced whenever the dataset or parameters change.
type Result struct {
	K    int   `json:"k"` // requested cluster count
	Seed int64 `json:"seed"`

	// Assignments[i] is the cluster id of input point i. Every input point
	// has exactly one entry.
	Assignments []int `json:"assignments"`

	// Centers are ordered by id. len(Centers) == K unless the degenerate
	// drop-and-shrink path removed empty clusters.
	Centers []accident.Center `json:"centers"`

	// Iterations counts update rounds after the initial assignment that
	// moved at least one point. Input that is already converged reports 0.
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// Clusterer partitions points into hotspots. Implementations must be
// deterministic for identical points, k and seed.
type Clusterer interface {
	Cluster(points []accident.Point, k int, seed int64) (*Result, error)
}

// KMeans is the default Clusterer.
type KMeans struct{}

// Cluster implements Clusterer.
func (KMeans) Cluster(points []accident.Point, k int, seed int64) (*Result, error) {
	return Cluster(points, k, seed)
}

var _ Clusterer = KMeans{}

// Cluster runs k-means over (lat, lon) points treated as a flat plane.
//
// Centroids are seeded with k-means++ using a math/rand source seeded by
// seed, then refined by Lloyd iterations until no assignment changes or
// MaxIterations is reached. A point equidistant to several centroids goes
// to the lowest index. A centroid that ends a round with no members is
// dropped and the remaining ids are compacted, so the result may carry
// fewer than k centers.
func Cluster(points []accident.Point, k int, seed int64) (*Result, error) {
	return cluster(points, k, seed, MaxIterations)
}

func cluster(points []accident.Point, k int, seed int64, maxIter int) (*Result, error) {
	if k < 1 {
		return nil, &InvalidParameterError{Name: "k", Value: strconv.Itoa(k), Reason: "must be at least 1"}
	}
	if len(points) <= k {
		return nil, &InsufficientDataError{Points: len(points), K: k}
	}

	data := make([][]float64, len(points))
	for i, p := range points {
		data[i] = []float64{p.Lat, p.Lon}
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := seedPlusPlus(data, k, rng)
	if len(centroids) < k {
		monitoring.Logf("hotspot: only %d distinct locations for k=%d, shrinking", len(centroids), k)
	}

	labels := assign(data, centroids)
	iterations := 0
	converged := false
	for iter := 0; iter < maxIter; iter++ {
		centroids, labels = recompute(data, labels, len(centroids))
		next := assign(data, centroids)
		if !changed(labels, next) {
			converged = true
			break
		}
		labels = next
		iterations++
	}
	if !converged {
		monitoring.Logf("hotspot: k-means hit the %d iteration cap without converging", maxIter)
		centroids, labels = recompute(data, labels, len(centroids))
		centroids, labels = mergeCoincident(centroids, labels)
	}

	centers := make([]accident.Center, len(centroids))
	for i, c := range centroids {
		centers[i] = accident.Center{ID: i, Latitude: c[0], Longitude: c[1]}
	}

	return &Result{
		K:           k,
		Seed:        seed,
		Assignments: labels,
		Centers:     centers,
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// seedPlusPlus picks up to k initial centroids from data. The first is
// uniform; each next one is drawn with probability proportional to its
// squared distance from the closest centroid already chosen. Selection
// stops early once every point coincides with a chosen centroid.
func seedPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	first := rng.Intn(n)
	centroids := [][]float64{clone(data[first])}

	d2 := make([]float64, n)
	for i, p := range data {
		d := floats.Distance(p, centroids[0], 2)
		d2[i] = d * d
	}

	for len(centroids) < k {
		total := floats.Sum(d2)
		if total == 0 {
			break
		}
		target := rng.Float64() * total
		pick := -1
		var cum float64
		for i, w := range d2 {
			if w == 0 {
				continue
			}
			pick = i
			cum += w
			if cum > target {
				break
			}
		}

		c := clone(data[pick])
		centroids = append(centroids, c)
		for i, p := range data {
			d := floats.Distance(p, c, 2)
			if dd := d * d; dd < d2[i] {
				d2[i] = dd
			}
		}
	}
	return centroids
}

// assign labels every point with its nearest centroid. Strict comparison
// keeps ties on the lower index.
func assign(data, centroids [][]float64) []int {
	labels := make([]int, len(data))
	for i, p := range data {
		best := 0
		bestDist := floats.Distance(p, centroids[0], 2)
		for c := 1; c < len(centroids); c++ {
			if d := floats.Distance(p, centroids[c], 2); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
	return labels
}

// recompute returns the member means for each label. Labels with no
// members are dropped and the survivors renumbered in their original order.
func recompute(data [][]float64, labels []int, k int) ([][]float64, []int) {
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, 2)
	}
	for i, l := range labels {
		floats.Add(sums[l], data[i])
		counts[l]++
	}

	remap := make([]int, k)
	centroids := make([][]float64, 0, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			monitoring.Logf("hotspot: dropping empty cluster %d", c)
			remap[c] = -1
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		remap[c] = len(centroids)
		centroids = append(centroids, sums[c])
	}
	if len(centroids) == k {
		return centroids, labels
	}

	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = remap[l]
	}
	return centroids, out
}

// mergeCoincident folds centroids that share a location into the lowest id.
func mergeCoincident(centroids [][]float64, labels []int) ([][]float64, []int) {
	remap := make([]int, len(centroids))
	kept := make([][]float64, 0, len(centroids))
	for c, cen := range centroids {
		remap[c] = -1
		for j, prev := range kept {
			if floats.Equal(prev, cen) {
				remap[c] = j
				break
			}
		}
		if remap[c] < 0 {
			remap[c] = len(kept)
			kept = append(kept, cen)
		}
	}
	if len(kept) == len(centroids) {
		return centroids, labels
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = remap[l]
	}
	return kept, out
}

func changed(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
