// Package forest implements the churn classifier: a bootstrap-aggregated
// ensemble of CART decision trees with randomized per-tree feature subsets.
// Training is deterministic for a fixed (seed, data, estimator count): every
// tree seeds its own source from the run seed plus its index, so the fitted
// model is identical whether trees grow sequentially or concurrently.
package forest

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"slices"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/churn-cli/internal/dataset"
)

// Defaults for forest construction.
const (
	DefaultEstimators      = 100
	DefaultMaxDepth        = 10
	DefaultMinSamplesSplit = 2
	DefaultMinRows         = 10
	DefaultSeed            = 42
)

// Config holds the forest hyperparameters.
type Config struct {
	Estimators      int   `yaml:"estimators" mapstructure:"estimators"`
	MaxDepth        int   `yaml:"max_depth" mapstructure:"max_depth"`
	MinSamplesSplit int   `yaml:"min_samples_split" mapstructure:"min_samples_split"`
	MaxFeatures     int   `yaml:"max_features" mapstructure:"max_features"` // 0 = sqrt(feature count)
	MinRows         int   `yaml:"min_rows" mapstructure:"min_rows"`
	Seed            int64 `yaml:"seed" mapstructure:"seed"`
}

// DefaultConfig returns the defaults used when the caller overrides nothing.
func DefaultConfig() Config {
	return Config{
		Estimators:      DefaultEstimators,
		MaxDepth:        DefaultMaxDepth,
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinRows:         DefaultMinRows,
		Seed:            DefaultSeed,
	}
}

// InsufficientDataError reports a training set too small or too uniform to
// train a discriminating classifier.
type InsufficientDataError struct {
	Rows    int
	Classes int
	MinRows int
}

func (e *InsufficientDataError) Error() string {
	if e.Classes < 2 {
		return fmt.Sprintf("forest: training set has %d label class(es), need both churned and retained rows", e.Classes)
	}
	return fmt.Sprintf("forest: %d training rows, need at least %d", e.Rows, e.MinRows)
}

// Fit trains the ensemble on the training matrix. Bootstrap sampling and
// feature-subset selection are seeded from cfg.Seed, never from ambient
// entropy.
func Fit(m *dataset.Matrix, labels []int, cfg Config) ([]*Tree, error) {
	n := m.Len()
	if len(labels) != n {
		return nil, eris.Errorf("forest: %d rows but %d labels", n, len(labels))
	}
	if cfg.Estimators <= 0 {
		return nil, eris.Errorf("forest: estimators must be positive (got %d)", cfg.Estimators)
	}

	minRows := cfg.MinRows
	if minRows <= 0 {
		minRows = DefaultMinRows
	}
	if n < minRows {
		return nil, &InsufficientDataError{Rows: n, Classes: classCount(labels), MinRows: minRows}
	}
	if classCount(labels) < 2 {
		return nil, &InsufficientDataError{Rows: n, Classes: classCount(labels), MinRows: minRows}
	}

	tc := treeConfig{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		maxFeatures:     cfg.MaxFeatures,
	}
	if tc.minSamplesSplit <= 0 {
		tc.minSamplesSplit = DefaultMinSamplesSplit
	}
	if tc.maxFeatures <= 0 {
		tc.maxFeatures = int(math.Ceil(math.Sqrt(float64(len(m.Features)))))
	}

	trees := make([]*Tree, cfg.Estimators)

	// Per-tree fits share only read-only access to the training matrix, so
	// they parallelize freely; results land at their tree index, keeping the
	// ensemble order stable.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		i := i
		g.Go(func() error {
			rnd := rand.New(rand.NewSource(cfg.Seed + int64(i)))

			sample := make([]int, n)
			for j := range sample {
				sample[j] = rnd.Intn(n)
			}

			trees[i] = fitTree(m.Rows, labels, sample, tc, rnd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "forest: fit")
	}
	return trees, nil
}

// PredictProba returns, per row, the fraction of trees voting churn.
func PredictProba(trees []*Tree, m *dataset.Matrix) []float64 {
	out := make([]float64, m.Len())
	for i, row := range m.Rows {
		votes := 0
		for _, t := range trees {
			if t.proba(row) >= 0.5 {
				votes++
			}
		}
		out[i] = float64(votes) / float64(len(trees))
	}
	return out
}

// Predict returns one binary label per row by majority vote.
func Predict(trees []*Tree, m *dataset.Matrix) []int {
	probs := PredictProba(trees, m)
	out := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func classCount(labels []int) int {
	seen := []int{}
	for _, y := range labels {
		if !slices.Contains(seen, y) {
			seen = append(seen, y)
		}
	}
	return len(seen)
}
