package pipeline

import (
	"fmt"

	"bookingrisk/internal/models"
)

// Result is the outcome of one traversal: the predicted label and the
// probability of the positive (canceled) class.
type Result struct {
	Label       int
	Probability float64
}

// Pipeline is a fitted, read-only preprocessing + decision tree classifier.
// It is safe for concurrent use.
type Pipeline struct {
	name    string
	version string
	classes []int
	// positive is the index of models.LabelCanceled in classes.
	positive int

	columns  []Column
	features []string
	// offsets[i] is where column i starts in the encoded vector.
	offsets    []int
	categories []map[string]int

	nodes []node
}

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     []float64
	leaf      bool
}

// New validates a and compiles it into a Pipeline. Numeric columns pass
// through first, in column order, followed by one-hot blocks for the
// categorical columns.
func New(a *Artifact) (*Pipeline, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		name:       a.Name,
		version:    a.Version,
		classes:    append([]int(nil), a.Classes...),
		columns:    append([]Column(nil), a.Columns...),
		offsets:    make([]int, len(a.Columns)),
		categories: make([]map[string]int, len(a.Columns)),
	}
	for i, c := range a.Classes {
		if c == models.LabelCanceled {
			p.positive = i
		}
	}

	for i, c := range a.Columns {
		if c.Kind != KindNumeric {
			continue
		}
		p.offsets[i] = len(p.features)
		p.features = append(p.features, c.Name)
	}
	for i, c := range a.Columns {
		if c.Kind != KindCategorical {
			continue
		}
		p.offsets[i] = len(p.features)
		idx := make(map[string]int, len(c.Categories))
		for j, cat := range c.Categories {
			idx[cat] = j
			p.features = append(p.features, c.Name+"_"+cat)
		}
		p.categories[i] = idx
	}

	featureIdx := make(map[string]int, len(p.features))
	for i, f := range p.features {
		featureIdx[f] = i
	}

	p.nodes = make([]node, len(a.Tree.Nodes))
	for i, n := range a.Tree.Nodes {
		compiled := node{
			threshold: n.Threshold,
			left:      n.Left,
			right:     n.Right,
			value:     append([]float64(nil), n.Value...),
			leaf:      n.IsLeaf(),
		}
		if !compiled.leaf {
			fi, ok := featureIdx[n.Feature]
			if !ok {
				return nil, fmt.Errorf("%w: node %d splits on unknown feature %q", ErrArtifact, i, n.Feature)
			}
			compiled.feature = fi
		}
		p.nodes[i] = compiled
	}

	return p, nil
}

// Load reads the artifact at path and compiles it.
func Load(path string) (*Pipeline, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	return New(a)
}

func (p *Pipeline) Name() string    { return p.name }
func (p *Pipeline) Version() string { return p.version }

// Columns returns the input column names the pipeline was fitted on.
func (p *Pipeline) Columns() []string {
	out := make([]string, len(p.columns))
	for i, c := range p.columns {
		out[i] = c.Name
	}
	return out
}

// Features returns the encoded feature names.
func (p *Pipeline) Features() []string {
	return append([]string(nil), p.features...)
}

// CheckSchema verifies that columns equals the fitted column list, in order.
func (p *Pipeline) CheckSchema(columns []string) error {
	if len(columns) != len(p.columns) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(columns), len(p.columns))
	}
	for i, c := range p.columns {
		if columns[i] != c.Name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, columns[i], c.Name)
		}
	}
	return nil
}

// Encode turns one row of values, in column order, into the feature vector.
// Categories unseen at fit time encode as all zeros.
func (p *Pipeline) Encode(values []models.Value) ([]float64, error) {
	if len(values) != len(p.columns) {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrSchemaMismatch, len(values), len(p.columns))
	}

	x := make([]float64, len(p.features))
	for i, c := range p.columns {
		v := values[i]
		switch c.Kind {
		case KindNumeric:
			if v.IsText {
				return nil, fmt.Errorf("%w: column %q expects a number, got %q", ErrSchemaMismatch, c.Name, v.Str)
			}
			x[p.offsets[i]] = v.Num
		case KindCategorical:
			if !v.IsText {
				return nil, fmt.Errorf("%w: column %q expects a category, got %v", ErrSchemaMismatch, c.Name, v.Num)
			}
			if j, ok := p.categories[i][v.Str]; ok {
				x[p.offsets[i]+j] = 1
			}
		}
	}
	return x, nil
}

// Predict runs the record through the pipeline once and returns both the
// label and the positive class probability.
func (p *Pipeline) Predict(rec models.BookingRecord) (Result, error) {
	if err := p.CheckSchema(models.RecordColumns()); err != nil {
		return Result{}, err
	}
	x, err := p.Encode(rec.Values())
	if err != nil {
		return Result{}, err
	}

	leaf := p.leaf(x)

	best, total := 0, 0.0
	for i, w := range leaf.value {
		total += w
		if w > leaf.value[best] {
			best = i
		}
	}

	return Result{
		Label:       p.classes[best],
		Probability: leaf.value[p.positive] / total,
	}, nil
}

// Classify returns the predicted label.
func (p *Pipeline) Classify(rec models.BookingRecord) (int, error) {
	r, err := p.Predict(rec)
	return r.Label, err
}

// Score returns the probability of the canceled class.
func (p *Pipeline) Score(rec models.BookingRecord) (float64, error) {
	r, err := p.Predict(rec)
	return r.Probability, err
}

func (p *Pipeline) leaf(x []float64) node {
	idx := 0
	for {
		n := p.nodes[idx]
		if n.leaf {
			return n
		}
		if x[n.feature] <= n.threshold {
			idx = n.left
		} else {
			idx = n.right
		}
	}
}
