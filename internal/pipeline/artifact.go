package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"bookingrisk/internal/models"
)

var (
	ErrArtifact       = errors.New("invalid model artifact")
	ErrSchemaMismatch = errors.New("record schema does not match pipeline")
)

const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// Artifact is the serialized form of a fitted pipeline: the input columns
// with their encoding and a decision tree over the encoded features.
type Artifact struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Classes []int    `json:"classes"`
	Columns []Column `json:"columns"`
	Tree    Tree     `json:"tree"`
}

type Column struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Categories []string `json:"categories,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is one tree node in pre-order. Leaves have Left == Right == -1.
// Value holds the per-class sample weights seen at the node.
type Node struct {
	Feature   string    `json:"feature,omitempty"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

func (n Node) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// ReadArtifact reads and decodes an artifact file.
func ReadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	return DecodeArtifact(f)
}

func DecodeArtifact(r io.Reader) (*Artifact, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrArtifact, err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if len(a.Classes) != 2 {
		return fmt.Errorf("%w: classes %v, want the two labels %d and %d", ErrArtifact, a.Classes, models.LabelHonored, models.LabelCanceled)
	}
	hasNegative, hasPositive := false, false
	for _, c := range a.Classes {
		switch c {
		case models.LabelHonored:
			hasNegative = true
		case models.LabelCanceled:
			hasPositive = true
		}
	}
	if !hasNegative || !hasPositive {
		return fmt.Errorf("%w: classes %v, want the two labels %d and %d", ErrArtifact, a.Classes, models.LabelHonored, models.LabelCanceled)
	}
	if len(a.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrArtifact)
	}

	seen := make(map[string]bool, len(a.Columns))
	for _, c := range a.Columns {
		if c.Name == "" {
			return fmt.Errorf("%w: column without name", ErrArtifact)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrArtifact, c.Name)
		}
		seen[c.Name] = true

		switch c.Kind {
		case KindNumeric:
		case KindCategorical:
			if len(c.Categories) == 0 {
				return fmt.Errorf("%w: categorical column %q has no categories", ErrArtifact, c.Name)
			}
		default:
			return fmt.Errorf("%w: column %q has unknown kind %q", ErrArtifact, c.Name, c.Kind)
		}
	}

	if len(a.Tree.Nodes) == 0 {
		return fmt.Errorf("%w: empty tree", ErrArtifact)
	}
	for i, n := range a.Tree.Nodes {
		if len(n.Value) != len(a.Classes) {
			return fmt.Errorf("%w: node %d has %d class weights, want %d", ErrArtifact, i, len(n.Value), len(a.Classes))
		}
		if n.IsLeaf() {
			total := 0.0
			for _, v := range n.Value {
				if v < 0 {
					return fmt.Errorf("%w: node %d has a negative weight", ErrArtifact, i)
				}
				total += v
			}
			if total <= 0 {
				return fmt.Errorf("%w: leaf %d has no weight", ErrArtifact, i)
			}
			continue
		}
		// Pre-order layout: children always come after their parent.
		if n.Left <= i || n.Right <= i || n.Left >= len(a.Tree.Nodes) || n.Right >= len(a.Tree.Nodes) {
			return fmt.Errorf("%w: node %d has invalid children (%d, %d)", ErrArtifact, i, n.Left, n.Right)
		}
	}
	return nil
}
