package abstraction

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/equity"
)

// PostflopBucketCounts gives K per street, per spec.md §4.3 step 3.
var PostflopBucketCounts = map[cards.Street]int{
	cards.Flop:  50,
	cards.Turn:  50,
	cards.River: 10,
}

// equityHistogramBins is the number of bins used to discretize the
// distribution of rollout outcomes into a feature vector, per spec.md
// §4.3's "histogram of terminal equities obtained by Monte-Carlo roll-out".
const equityHistogramBins = 10

// FeatureVector computes the feature vector for a live (hole, board) used
// both to build centroids offline and to look one up at runtime: an
// equity-outcome histogram plus a board-wetness dimension (spec.md §4.3,
// supplemented with the teacher's board-texture signal so visually distinct
// but equity-similar boards can still separate).
func FeatureVector(hole, board []cards.Card, rolloutsPerSample int, rng *rand.Rand) []float64 {
	vec := make([]float64, equityHistogramBins+1)
	for i := 0; i < rolloutsPerSample; i++ {
		eq := equity.Estimate(hole, board, 1, rng)
		bin := int(eq * float64(equityHistogramBins))
		if bin >= equityHistogramBins {
			bin = equityHistogramBins - 1
		}
		vec[bin]++
	}
	if rolloutsPerSample > 0 {
		for i := 0; i < equityHistogramBins; i++ {
			vec[i] /= float64(rolloutsPerSample)
		}
	}
	vec[equityHistogramBins] = boardWetness(board) / 10
	return vec
}

// CentroidTable holds the persisted cluster centers for one street, plus the
// abstraction parameters under which they were built (so a mismatched
// config is detectable at load time rather than silently misbucketing).
type CentroidTable struct {
	Street    cards.Street `json:"street"`
	K         int          `json:"k"`
	Centroids [][]float64  `json:"centroids"`
}

// BuildCentroidTable runs the offline clustering procedure (spec.md §4.3):
// sample canonical (hole, board) classes, compute their feature vectors,
// and k-means cluster into the street's configured K.
func BuildCentroidTable(street cards.Street, samples [][]float64, rng *rand.Rand) CentroidTable {
	k := PostflopBucketCounts[street]
	centroids := kmeans(samples, k, 100, rng)
	return CentroidTable{Street: street, K: len(centroids), Centroids: centroids}
}

// Bucket returns the id of the centroid nearest to features under Euclidean
// distance (spec.md §4.3's "nearest centroid under... Euclidean on equity
// histogram"). The abstraction is pure: identical features and centroids
// always yield the same bucket.
func (t CentroidTable) Bucket(features []float64) int {
	if len(t.Centroids) == 0 {
		return 0
	}
	return nearest(features, t.Centroids)
}

// SaveCentroidTable writes t to path via write-to-temp-then-rename, matching
// the atomic persistence pattern used by the artifact and checkpoint
// writers (spec.md §6).
func SaveCentroidTable(path string, t CentroidTable) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("abstraction: marshal centroid table: %w", err)
	}
	tmp, err := os.CreateTemp(dirOf(path), ".centroids-*.tmp")
	if err != nil {
		return fmt.Errorf("abstraction: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("abstraction: write centroid table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("abstraction: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("abstraction: rename centroid table into place: %w", err)
	}
	return nil
}

// LoadCentroidTable reads a CentroidTable previously written by
// SaveCentroidTable.
func LoadCentroidTable(path string) (CentroidTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CentroidTable{}, fmt.Errorf("abstraction: read centroid table: %w", err)
	}
	var t CentroidTable
	if err := json.Unmarshal(data, &t); err != nil {
		return CentroidTable{}, fmt.Errorf("abstraction: decode centroid table: %w", err)
	}
	return t, nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
