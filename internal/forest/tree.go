package forest

import (
	"math/rand"
	"sort"
)

// Node is one node of a fitted decision tree. Fields are exported for gob
// serialization of the model blob; nothing mutates a node after fitting.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node

	// Leaf data.
	N     int
	Proba float64 // fraction of churned training samples at this leaf
}

// Tree is a CART-style binary classifier over labels {0, 1}.
type Tree struct {
	Root *Node
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
}

// fitTree grows a tree on the rows selected by idx. All randomness (feature
// subsampling) draws from rnd, so a given (data, idx, rnd state) always
// grows the same tree.
func fitTree(rows [][]float64, labels []int, idx []int, cfg treeConfig, rnd *rand.Rand) *Tree {
	return &Tree{Root: growNode(rows, labels, idx, 0, cfg, rnd)}
}

func growNode(rows [][]float64, labels []int, idx []int, depth int, cfg treeConfig, rnd *rand.Rand) *Node {
	churned := 0
	for _, i := range idx {
		churned += labels[i]
	}
	n := len(idx)

	leaf := func() *Node {
		return &Node{Leaf: true, N: n, Proba: float64(churned) / float64(n)}
	}

	if churned == 0 || churned == n || n < cfg.minSamplesSplit {
		return leaf()
	}
	if cfg.maxDepth > 0 && depth >= cfg.maxDepth {
		return leaf()
	}

	best := findBestSplit(rows, labels, idx, cfg, rnd)
	if best.feature < 0 {
		return leaf()
	}

	return &Node{
		Feature:   best.feature,
		Threshold: best.threshold,
		Left:      growNode(rows, labels, best.left, depth+1, cfg, rnd),
		Right:     growNode(rows, labels, best.right, depth+1, cfg, rnd),
		N:         n,
	}
}

type split struct {
	gain      float64
	feature   int
	threshold float64
	left      []int
	right     []int
}

type valueIndex struct {
	v float64
	i int
}

// findBestSplit scans a random feature subset for the midpoint threshold
// with the highest gini gain. Features are scanned in a deterministic order
// derived from rnd and ties resolve to the first candidate seen, so the
// search is reproducible for a fixed rnd state.
func findBestSplit(rows [][]float64, labels []int, idx []int, cfg treeConfig, rnd *rand.Rand) split {
	p := len(rows[0])
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < p {
		rnd.Shuffle(p, func(a, b int) { feats[a], feats[b] = feats[b], feats[a] })
		feats = feats[:cfg.maxFeatures]
	}

	parent := giniOf(labels, idx)
	best := split{feature: -1}

	for _, f := range feats {
		vals := make([]valueIndex, len(idx))
		for k, i := range idx {
			vals[k] = valueIndex{v: rows[i][f], i: i}
		}
		sort.Slice(vals, func(a, b int) bool {
			if vals[a].v != vals[b].v {
				return vals[a].v < vals[b].v
			}
			return vals[a].i < vals[b].i
		})

		// Running counts left of the candidate threshold.
		leftN, leftChurned := 0, 0
		totalChurned := 0
		for _, vi := range vals {
			totalChurned += labels[vi.i]
		}

		for s := 1; s < len(vals); s++ {
			leftN++
			leftChurned += labels[vals[s-1].i]
			if vals[s].v == vals[s-1].v {
				continue
			}

			rightN := len(vals) - leftN
			rightChurned := totalChurned - leftChurned
			weighted := (float64(leftN)*gini(leftChurned, leftN) +
				float64(rightN)*gini(rightChurned, rightN)) / float64(len(vals))
			g := parent - weighted
			if g > best.gain {
				thr := (vals[s-1].v + vals[s].v) / 2
				left := make([]int, 0, leftN)
				right := make([]int, 0, rightN)
				for _, vi := range vals {
					if vi.v <= thr {
						left = append(left, vi.i)
					} else {
						right = append(right, vi.i)
					}
				}
				best = split{gain: g, feature: f, threshold: thr, left: left, right: right}
			}
		}
	}
	return best
}

func gini(churned, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(churned) / float64(n)
	return 2 * p * (1 - p)
}

func giniOf(labels []int, idx []int) float64 {
	churned := 0
	for _, i := range idx {
		churned += labels[i]
	}
	return gini(churned, len(idx))
}

// proba walks the tree and returns the churn fraction at the reached leaf.
func (t *Tree) proba(x []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Proba
}
