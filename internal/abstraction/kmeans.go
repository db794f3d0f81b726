package abstraction

import "math/rand"

// kmeans clusters points (each a fixed-length feature vector) into k
// centroids using Lloyd's algorithm with k-means++ seeding. Deterministic
// given rng. Used offline to build the postflop centroid tables (spec.md
// §4.3 step 3).
func kmeans(points [][]float64, k int, maxIters int, rng *rand.Rand) [][]float64 {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := seedPlusPlus(points, k, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < maxIters; iter++ {
		changed := false
		for i, p := range points {
			best := nearest(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		dim := len(points[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			for d := range p {
				sums[c][d] += p[d]
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}
	return centroids
}

// seedPlusPlus picks k initial centroids via k-means++: each subsequent
// centroid is chosen with probability proportional to its squared distance
// from the nearest already-chosen centroid.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, append([]float64{}, first...))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := squaredDistance(p, centroids[len(centroids)-1])
			if len(centroids) == 1 || d < dists[i] {
				dists[i] = d
			}
			total += dists[i]
		}
		if total == 0 {
			centroids = append(centroids, append([]float64{}, points[rng.Intn(len(points))]...))
			continue
		}
		target := rng.Float64() * total
		cum := 0.0
		chosen := points[len(points)-1]
		for i, p := range points {
			cum += dists[i]
			if cum >= target {
				chosen = p
				break
			}
		}
		centroids = append(centroids, append([]float64{}, chosen...))
	}
	return centroids
}

func nearest(p []float64, centroids [][]float64) int {
	best, bestDist := 0, squaredDistance(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := squaredDistance(p, centroids[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
