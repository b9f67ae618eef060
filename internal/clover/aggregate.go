package clover

import (
	"fmt"

	"github.com/chmouel/go-clover-coverage/internal/model"
)

// MalformedTreeError reports a node that breaks the leaf/interior contract.
type MalformedTreeError struct {
	Path   string
	Reason string
}

func (e *MalformedTreeError) Error() string {
	return fmt.Sprintf("malformed coverage tree at %q: %s", e.Path, e.Reason)
}

// Aggregation holds the per-node rollups and tree statistics of one walk.
type Aggregation struct {
	root      *model.Node
	summaries map[*model.Node]model.Summary
	stats     model.TreeStats
}

// Aggregate walks the tree once, post-order, computing every node's rollup
// and the report-wide TreeStats.
func Aggregate(root *model.Node) (*Aggregation, error) {
	if root == nil {
		return nil, &MalformedTreeError{Reason: "nil root"}
	}
	a := &Aggregation{root: root, summaries: make(map[*model.Node]model.Summary)}
	if _, err := a.walk(root); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Aggregation) walk(n *model.Node) (model.Summary, error) {
	if err := validate(n); err != nil {
		return model.Summary{}, err
	}

	var s model.Summary
	if n.IsLeaf() {
		s = n.File.Summary()
		a.stats.Files++
		a.stats.Classes++
	} else {
		for _, c := range n.Children {
			cs, err := a.walk(c)
			if err != nil {
				return model.Summary{}, err
			}
			s.Merge(cs)
		}
		if !n.Root && !s.Empty() {
			a.stats.Packages++
		}
	}
	a.summaries[n] = s
	return s, nil
}

func validate(n *model.Node) error {
	switch {
	case n == nil:
		return &MalformedTreeError{Reason: "nil node"}
	case n.Root && n.Type != model.DirNode:
		return &MalformedTreeError{Path: n.Path, Reason: "root must be a directory"}
	case n.Type == model.FileNode && n.File == nil:
		return &MalformedTreeError{Path: n.Path, Reason: "file node without coverage detail"}
	case n.Type == model.FileNode && len(n.Children) > 0:
		return &MalformedTreeError{Path: n.Path, Reason: "file node with children"}
	case n.Type == model.DirNode && n.File != nil:
		return &MalformedTreeError{Path: n.Path, Reason: "directory node with file coverage detail"}
	case n.Type != model.DirNode && n.Type != model.FileNode:
		return &MalformedTreeError{Path: n.Path, Reason: fmt.Sprintf("unknown node type %q", n.Type)}
	}
	return nil
}

// Summary returns the rollup of n. A shallow summary is always present for a
// visited node; a deep summary is absent when the subtree has no statements.
func (a *Aggregation) Summary(n *model.Node, deep bool) (model.Summary, bool) {
	s, ok := a.summaries[n]
	if !ok {
		return model.Summary{}, false
	}
	if deep && s.Empty() {
		return model.Summary{}, false
	}
	return s, true
}

// Root returns the tree the aggregation was computed from.
func (a *Aggregation) Root() *model.Node {
	return a.root
}

// Stats returns the package/file/class counts.
func (a *Aggregation) Stats() model.TreeStats {
	return a.stats
}

// ComputeTreeStats aggregates root and returns only its TreeStats.
func ComputeTreeStats(root *model.Node) (model.TreeStats, error) {
	a, err := Aggregate(root)
	if err != nil {
		return model.TreeStats{}, err
	}
	return a.Stats(), nil
}
