// Package tree implements CART decision trees for classification.
package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/metrics"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DecisionTreeClassifier is a CART classifier compatible with
// scikit-learn's DecisionTreeClassifier. Splits are binary threshold
// tests `x[feature] <= threshold`; leaves store class frequencies.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	criterion       string // "gini" or "entropy"
	maxDepth        int    // 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int   // features examined per split, 0 means all
	randomState     int64 // negative means unseeded

	// Fitted attributes
	root                *node
	classes_            []int
	nClasses_           int
	nFeatures_          int
	featureImportances_ []float64
	depth_              int
	nLeaves_            int
}

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node

	// class frequencies, set on leaves only
	value []float64
}

func (n *node) isLeaf() bool { return n.left == nil }

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the impurity measure ("gini" or "entropy").
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) { dt.criterion = criterion }
}

// WithMaxDepth limits the depth of the tree. 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesLeaf = n }
}

// WithMaxFeatures sets how many randomly chosen features are examined at
// each split. 0 examines all of them in column order.
func WithMaxFeatures(k int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxFeatures = k }
}

// WithRandomState seeds the feature sampling.
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeClassifier) { dt.randomState = seed }
}

// NewDecisionTreeClassifier creates a tree with scikit-learn defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       "gini",
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		randomState:     -1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// Fit builds the tree from all rows of X.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	n, _ := X.Dims()
	samples := make([]int, n)
	for i := range samples {
		samples[i] = i
	}
	return dt.FitSamples(X, y, samples)
}

// FitSamples builds the tree from the listed rows of X. Rows may repeat,
// which is how bootstrap samples are fitted. Classes are taken from all of
// y so that every tree of an ensemble shares the same class order.
func (dt *DecisionTreeClassifier) FitSamples(X, y mat.Matrix, samples []int) error {
	_, nFeatures, err := model.ValidateXY("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := dt.validateParams(); err != nil {
		return err
	}

	classes, encoded := model.ExtractClasses(y)
	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.nFeatures_ = nFeatures

	b := &builder{
		tree:        dt,
		columns:     make([][]float64, nFeatures),
		labels:      encoded,
		importances: make([]float64, nFeatures),
		nTotal:      float64(len(samples)),
	}
	for j := 0; j < nFeatures; j++ {
		b.columns[j] = mat.Col(nil, j, X)
	}
	if dt.maxFeatures > 0 && dt.maxFeatures < nFeatures {
		seed := uint64(dt.randomState)
		if dt.randomState < 0 {
			seed = rand.Uint64()
		}
		b.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	dt.depth_ = 0
	dt.nLeaves_ = 0
	dt.root = b.build(append([]int(nil), samples...), 0)

	total := 0.0
	for _, v := range b.importances {
		total += v
	}
	if total > 0 {
		for j := range b.importances {
			b.importances[j] /= total
		}
	}
	dt.featureImportances_ = b.importances

	dt.state.SetDimensions(nFeatures, len(samples))
	dt.state.SetFitted()
	return nil
}

func (dt *DecisionTreeClassifier) validateParams() error {
	if dt.criterion != "gini" && dt.criterion != "entropy" {
		return errors.NewValidationError("criterion", "must be 'gini' or 'entropy'", dt.criterion)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", dt.minSamplesLeaf)
	}
	if dt.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", dt.maxDepth)
	}
	return nil
}

// builder holds the per-fit scratch state of the recursive partitioning.
type builder struct {
	tree        *DecisionTreeClassifier
	columns     [][]float64
	labels      []int
	importances []float64
	nTotal      float64
	rng         *rand.Rand
}

func (b *builder) impurity(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	if b.tree.criterion == "entropy" {
		h := 0.0
		for _, c := range counts {
			if c > 0 {
				p := c / n
				h -= p * math.Log2(p)
			}
		}
		return h
	}
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func (b *builder) counts(samples []int) []float64 {
	counts := make([]float64, b.tree.nClasses_)
	for _, s := range samples {
		counts[b.labels[s]]++
	}
	return counts
}

func (b *builder) leaf(counts []float64, n float64) *node {
	b.tree.nLeaves_++
	value := make([]float64, len(counts))
	for k, c := range counts {
		value[k] = c / n
	}
	return &node{feature: -1, value: value}
}

func (b *builder) build(samples []int, depth int) *node {
	dt := b.tree
	if depth > dt.depth_ {
		dt.depth_ = depth
	}

	n := float64(len(samples))
	counts := b.counts(samples)
	imp := b.impurity(counts, n)

	if imp == 0 || len(samples) < dt.minSamplesSplit ||
		len(samples) < 2*dt.minSamplesLeaf ||
		(dt.maxDepth > 0 && depth >= dt.maxDepth) {
		return b.leaf(counts, n)
	}

	split, ok := b.bestSplit(samples, counts, imp)
	if !ok {
		return b.leaf(counts, n)
	}

	b.importances[split.feature] += n*imp - split.weightedChildImpurity

	col := b.columns[split.feature]
	left := make([]int, 0, split.nLeft)
	right := make([]int, 0, len(samples)-split.nLeft)
	for _, s := range samples {
		if col[s] <= split.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	return &node{
		feature:   split.feature,
		threshold: split.threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

type candidate struct {
	feature               int
	threshold             float64
	nLeft                 int
	weightedChildImpurity float64 // n_left*imp_left + n_right*imp_right
}

// bestSplit scans sorted feature values and returns the split with the
// lowest weighted child impurity that respects min_samples_leaf.
func (b *builder) bestSplit(samples []int, counts []float64, imp float64) (candidate, bool) {
	dt := b.tree
	n := len(samples)
	best := candidate{feature: -1, weightedChildImpurity: math.Inf(1)}

	order := make([]int, n)
	leftCounts := make([]float64, dt.nClasses_)
	rightCounts := make([]float64, dt.nClasses_)

	for _, f := range b.candidateFeatures() {
		col := b.columns[f]
		copy(order, samples)
		sort.Slice(order, func(i, j int) bool { return col[order[i]] < col[order[j]] })
		if col[order[0]] == col[order[n-1]] {
			continue
		}

		for k := range leftCounts {
			leftCounts[k] = 0
		}
		copy(rightCounts, counts)

		for i := 0; i < n-1; i++ {
			c := b.labels[order[i]]
			leftCounts[c]++
			rightCounts[c]--

			nLeft := i + 1
			if nLeft < dt.minSamplesLeaf || n-nLeft < dt.minSamplesLeaf {
				continue
			}
			lo, hi := col[order[i]], col[order[i+1]]
			if lo == hi {
				continue
			}

			weighted := float64(nLeft)*b.impurity(leftCounts, float64(nLeft)) +
				float64(n-nLeft)*b.impurity(rightCounts, float64(n-nLeft))
			if weighted < best.weightedChildImpurity {
				threshold := lo + (hi-lo)/2
				if threshold == hi {
					threshold = lo
				}
				best = candidate{feature: f, threshold: threshold, nLeft: nLeft, weightedChildImpurity: weighted}
			}
		}
	}

	if best.feature < 0 {
		return best, false
	}
	// Guard against rounding making a split look worse than its parent.
	if best.weightedChildImpurity > float64(n)*imp {
		best.weightedChildImpurity = float64(n) * imp
	}
	return best, true
}

func (b *builder) candidateFeatures() []int {
	nFeatures := len(b.columns)
	if b.rng == nil {
		all := make([]int, nFeatures)
		for j := range all {
			all[j] = j
		}
		return all
	}
	return b.rng.Perm(nFeatures)[:b.tree.maxFeatures]
}

func (dt *DecisionTreeClassifier) leafFor(X mat.Matrix, i int) *node {
	nd := dt.root
	for !nd.isLeaf() {
		if X.At(i, nd.feature) <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd
}

// PredictProba returns the class frequencies of the leaf each row falls in.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := dt.state.CheckFeatures("DecisionTreeClassifier.PredictProba", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, dt.nClasses_, nil)
	for i := 0; i < nSamples; i++ {
		probas.SetRow(i, dt.leafFor(X, i).value)
	}
	return probas, nil
}

// Predict returns the majority class of each row's leaf.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := probas.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		predictions.Set(i, 0, float64(dt.classes_[model.Argmax(mat.Row(nil, i, probas))]))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the class labels seen during Fit.
func (dt *DecisionTreeClassifier) Classes() []int {
	return dt.classes_
}

// FeatureImportances returns the normalized total impurity decrease
// contributed by each feature. A tree that never split returns zeros.
func (dt *DecisionTreeClassifier) FeatureImportances() []float64 {
	return dt.featureImportances_
}

// GetFeatureImportances is an alias of FeatureImportances.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	return dt.FeatureImportances()
}

// GetDepth returns the depth of the fitted tree (a single leaf has depth 0).
func (dt *DecisionTreeClassifier) GetDepth() int {
	return dt.depth_
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	return dt.nLeaves_
}

// GetParams returns the model hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         dt.criterion,
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      dt.maxFeatures,
		"random_state":      dt.randomState,
	}
}

// SetParams sets the model hyperparameters.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "criterion":
			err = model.SetParam(key, value, &dt.criterion)
		case "max_depth":
			err = model.SetParam(key, value, &dt.maxDepth)
		case "min_samples_split":
			err = model.SetParam(key, value, &dt.minSamplesSplit)
		case "min_samples_leaf":
			err = model.SetParam(key, value, &dt.minSamplesLeaf)
		case "max_features":
			err = model.SetParam(key, value, &dt.maxFeatures)
		case "random_state":
			err = model.SetParam(key, value, &dt.randomState)
		default:
			err = errors.NewValidationError(key, "unknown parameter for DecisionTreeClassifier", value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
