package colour

import (
	"math"
	"math/rand"
)

// kmeansSeed fixes the RNG so repeated runs over the same image are identical.
const kmeansSeed = 0x5eed

// KMeansQuantizer clusters colours with weighted k-means and k-means++ seeding.
type KMeansQuantizer struct {
	maxIterations int
	convergence   float64
	seed          int64
}

// NewKMeansQuantizer creates a new KMeansQuantizer with default settings.
func NewKMeansQuantizer() *KMeansQuantizer {
	return &KMeansQuantizer{
		maxIterations: 20,
		convergence:   0.5,
		seed:          kmeansSeed,
	}
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distanceSq returns the squared Euclidean distance between two points.
func (p point3D) distanceSq(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return dr*dr + dg*dg + db*db
}

func toUint8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// Quantize clusters the histogram into at most k colours.
// Every unique colour, and so every visible pixel, is assigned to exactly one cluster.
func (q *KMeansQuantizer) Quantize(h histogram, k int) []Cluster {
	if h.len() == 0 || k < 1 {
		return nil
	}

	// Fewer unique colours than clusters: each colour is its own cluster.
	if h.len() <= k {
		return h.clusters()
	}

	points := make([]point3D, h.len())
	weights := make([]float64, h.len())
	for i, c := range h.colours {
		points[i] = point3D{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
		weights[i] = float64(h.counts[i])
	}

	rng := rand.New(rand.NewSource(q.seed)) // #nosec G404 - deterministic clustering, not security sensitive
	centroids := q.initializeCentroids(rng, points, weights, k)
	assignments := make([]int, len(points))
	for i := range assignments {
		assignments[i] = -1
	}

	for range q.maxIterations {
		changed := 0
		for i, p := range points {
			nearest := findNearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if changed == 0 {
			break
		}

		next := recalculateCentroids(points, weights, assignments, centroids)
		movement := 0.0
		for i := range centroids {
			movement += math.Sqrt(centroids[i].distanceSq(next[i]))
		}
		centroids = next
		if movement/float64(len(centroids)) < q.convergence {
			break
		}
	}

	// Count against the final centroids.
	for i, p := range points {
		assignments[i] = findNearestCentroid(p, centroids)
	}

	counts := make([]uint64, len(centroids))
	for i, a := range assignments {
		counts[a] += h.counts[i]
	}

	clusters := make([]Cluster, 0, len(centroids))
	for i, c := range centroids {
		if counts[i] == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Colour: RGB{R: toUint8(c.R), G: toUint8(c.G), B: toUint8(c.B)},
			Count:  counts[i],
		})
	}
	return clusters
}

// initializeCentroids picks k starting centroids with weighted k-means++.
func (q *KMeansQuantizer) initializeCentroids(rng *rand.Rand, points []point3D, weights []float64, k int) []point3D {
	centroids := make([]point3D, 0, k)

	// The most populous colour is a stable first centroid.
	first := 0
	for i, w := range weights {
		if w > weights[first] {
			first = i
		}
	}
	centroids = append(centroids, points[first])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				minDist = min(minDist, p.distanceSq(c))
			}
			distances[i] = minDist * weights[i]
			total += distances[i]
		}

		// Every point already coincides with a centroid.
		if total == 0 {
			break
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target && d > 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// findNearestCentroid finds the index of the nearest centroid to a point.
func findNearestCentroid(p point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, c := range centroids {
		if d := p.distanceSq(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the weighted mean of its points.
// Empty clusters keep their previous position.
func recalculateCentroids(points []point3D, weights []float64, assignments []int, prev []point3D) []point3D {
	sums := make([]point3D, len(prev))
	totals := make([]float64, len(prev))

	for i, p := range points {
		c := assignments[i]
		w := weights[i]
		sums[c].R += p.R * w
		sums[c].G += p.G * w
		sums[c].B += p.B * w
		totals[c] += w
	}

	centroids := make([]point3D, len(prev))
	for i := range prev {
		if totals[i] == 0 {
			centroids[i] = prev[i]
			continue
		}
		centroids[i] = point3D{
			R: sums[i].R / totals[i],
			G: sums[i].G / totals[i],
			B: sums[i].B / totals[i],
		}
	}
	return centroids
}
