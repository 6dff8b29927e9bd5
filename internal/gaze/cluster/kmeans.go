// Package cluster groups filtered samples into alignment regimes with
// seeded k-means over the four tracked signals.
package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gaze.report/internal/config"
	"github.com/banshee-data/gaze.report/internal/gaze/l2derive"
)

// Config controls k-means.
type Config struct {
	K             int
	MaxIterations int
	Seed          int64
}

// DefaultConfig returns three clusters, 300 iterations and seed 42.
func DefaultConfig() Config {
	return Config{K: 3, MaxIterations: 300, Seed: 42}
}

// ConfigFromAnalysis builds a Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{
		K:             cfg.GetClusterCount(),
		MaxIterations: cfg.GetClusterMaxIterations(),
		Seed:          cfg.GetClusterSeed(),
	}
}

// Assignment is the outcome of one k-means run. Centroids live in the
// standardised feature space.
type Assignment struct {
	Labels     []int       `json:"labels"`
	Centroids  [][]float64 `json:"centroids"`
	Iterations int         `json:"iterations"`
	Inertia    float64     `json:"inertia"`
}

// Sizes returns the number of points per label.
func (a Assignment) Sizes() []int {
	sizes := make([]int, len(a.Centroids))
	for _, l := range a.Labels {
		sizes[l]++
	}
	return sizes
}

// Features extracts the tracked signals of ds, standardised per column with
// population mean and std. Constant columns are only centred.
func Features(ds []l2derive.DerivedSample) [][]float64 {
	points := make([][]float64, len(ds))
	for i := range points {
		points[i] = make([]float64, len(l2derive.TrackedFields))
	}
	if len(ds) == 0 {
		return points
	}
	for j, f := range l2derive.TrackedFields {
		col := l2derive.Column(ds, f)
		mean, std := stat.PopMeanStdDev(col, nil)
		for i, v := range col {
			v -= mean
			if std > 0 {
				v /= std
			}
			points[i][j] = v
		}
	}
	return points
}

// Cluster standardises ds and runs KMeans on it.
func Cluster(ds []l2derive.DerivedSample, cfg Config) Assignment {
	return KMeans(Features(ds), cfg)
}

// KMeans partitions points into cfg.K clusters using k-means++ seeding and
// Lloyd iterations. The same seed always gives the same assignment. With
// fewer points than K every point becomes its own cluster.
func KMeans(points [][]float64, cfg Config) Assignment {
	n := len(points)
	if n == 0 {
		return Assignment{}
	}
	k := max(cfg.K, 1)
	if n <= k {
		a := Assignment{Labels: make([]int, n), Centroids: make([][]float64, n)}
		for i, p := range points {
			a.Labels[i] = i
			a.Centroids[i] = append([]float64(nil), p...)
		}
		return a
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)))
	centroids := seedPlusPlus(points, k, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	a := Assignment{Labels: labels, Centroids: centroids}
	for a.Iterations < max(cfg.MaxIterations, 1) {
		a.Iterations++
		if !assign(points, centroids, labels) {
			break
		}
		update(points, centroids, labels)
	}

	for i, p := range points {
		d := floats.Distance(p, centroids[labels[i]], 2)
		a.Inertia += d * d
	}
	return a
}

// seedPlusPlus picks the first centroid uniformly and each next one with
// probability proportional to its squared distance from the nearest chosen
// centroid.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), points[rng.IntN(len(points))]...))

	d2 := make([]float64, len(points))
	for len(centroids) < k {
		for i, p := range points {
			d2[i] = math.Inf(1)
			for _, c := range centroids {
				d := floats.Distance(p, c, 2)
				d2[i] = math.Min(d2[i], d*d)
			}
		}
		total := floats.Sum(d2)
		pick := rng.IntN(len(points))
		if total > 0 {
			r := rng.Float64() * total
			for i, w := range d2 {
				r -= w
				if r < 0 {
					pick = i
					break
				}
			}
		}
		centroids = append(centroids, append([]float64(nil), points[pick]...))
	}
	return centroids
}

// assign relabels every point to its nearest centroid and reports whether
// any label changed.
func assign(points, centroids [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for j, c := range centroids {
			if d := floats.Distance(p, c, 2); d < bestDist {
				best, bestDist = j, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// update moves each centroid to the mean of its members. A centroid with no
// members stays where it is.
func update(points, centroids [][]float64, labels []int) {
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for j := range sums {
		sums[j] = make([]float64, len(centroids[j]))
	}
	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}
	for j := range centroids {
		if counts[j] == 0 {
			continue
		}
		floats.ScaleTo(centroids[j], 1/float64(counts[j]), sums[j])
	}
}
