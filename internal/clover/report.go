// Package clover renders a coverage tree as a Clover XML document.
package clover

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chmouel/go-clover-coverage/internal/model"
	"github.com/chmouel/go-clover-coverage/internal/xmlwriter"
)

const (
	// SchemaVersion is written in the clover attribute of the root element.
	SchemaVersion = "3.2.0"
	// ProjectName labels the single project element.
	ProjectName = "All files"
	// DefaultFile is the conventional report file name.
	DefaultFile = "clover.xml"
)

// ErrWrite wraps failures of the output stream.
var ErrWrite = errors.New("writing clover report")

// Report is a Clover reporter. The zero value is usable and stamps documents
// with time.Now.
type Report struct {
	// Now supplies the generation timestamp.
	Now func() time.Time
}

// run carries the state of a single Write call.
type run struct {
	xml *xmlwriter.Writer
	agg *Aggregation
}

// Write renders root to w. The tree is fully aggregated before the first
// byte is written, so a malformed tree produces no output at all.
func (r *Report) Write(w io.Writer, root *model.Node) error {
	agg, err := Aggregate(root)
	if err != nil {
		return err
	}
	return r.WriteAggregation(w, agg)
}

// WriteAggregation renders the tree agg was computed from, reusing its
// rollups instead of walking the tree again.
func (r *Report) WriteAggregation(w io.Writer, agg *Aggregation) error {
	if agg == nil || agg.root == nil {
		return &MalformedTreeError{Reason: "missing aggregation"}
	}

	now := time.Now
	if r != nil && r.Now != nil {
		now = r.Now
	}

	root := agg.root
	rn := &run{xml: xmlwriter.New(w), agg: agg}
	rn.writeRootStats(root, now().UnixMilli())
	for _, c := range root.Children {
		rn.visit(c)
	}
	rn.xml.CloseAll()

	if err := rn.xml.Err(); err != nil {
		if errors.Is(err, xmlwriter.ErrUnbalanced) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// summary returns the shallow rollup of n. Aggregate stored one for every
// node of the tree, so it is always present.
func (rn *run) summary(n *model.Node) model.Summary {
	s, _ := rn.agg.Summary(n, false)
	return s
}

func (rn *run) writeRootStats(root *model.Node, timestamp int64) {
	rn.xml.Declaration()
	rn.xml.OpenTag("coverage",
		xmlwriter.A("generated", timestamp),
		xmlwriter.A("clover", SchemaVersion),
	)
	rn.xml.OpenTag("project",
		xmlwriter.A("timestamp", timestamp),
		xmlwriter.A("name", ProjectName),
	)

	m := rn.summary(root)
	stats := rn.agg.Stats()
	attrs := append(metricAttrs(m),
		xmlwriter.A("elements", m.Elements()),
		xmlwriter.A("coveredelements", m.CoveredElements()),
		xmlwriter.A("complexity", 0),
		// lines are derived from statements, so comments are not counted
		xmlwriter.A("ncloc", m.Lines.Total),
		xmlwriter.A("loc", m.Lines.Total),
		xmlwriter.A("packages", stats.Packages),
		xmlwriter.A("files", stats.Files),
		xmlwriter.A("classes", stats.Classes),
	)
	rn.xml.InlineTag("metrics", attrs...)
}

func (rn *run) visit(n *model.Node) {
	if n.IsLeaf() {
		rn.writeFile(n)
		return
	}

	m, ok := rn.agg.Summary(n, true)
	if !ok {
		return
	}
	rn.xml.OpenTag("package", xmlwriter.A("name", PackageName(n.Path)))
	rn.xml.InlineTag("metrics", metricAttrs(m)...)
	for _, c := range n.Children {
		rn.visit(c)
	}
	rn.xml.CloseTag("package")
}

func (rn *run) writeFile(n *model.Node) {
	fc := n.File
	m := rn.summary(n)

	rn.xml.OpenTag("file",
		xmlwriter.A("name", ClassName(n.Path)),
		xmlwriter.A("path", fc.Path),
	)
	rn.xml.InlineTag("metrics", metricAttrs(m)...)

	lines := fc.LineCoverage()
	branchByLine := fc.BranchCoverageByLine()
	for _, num := range model.SortedLines(lines) {
		attrs := []xmlwriter.Attr{
			xmlwriter.A("num", num),
			xmlwriter.A("count", lines[num]),
		}
		if bd, ok := branchByLine[num]; ok {
			attrs = append(attrs,
				xmlwriter.A("type", "cond"),
				xmlwriter.A("truecount", bd.Covered),
				xmlwriter.A("falsecount", bd.Total-bd.Covered),
			)
		} else {
			attrs = append(attrs, xmlwriter.A("type", "stmt"))
		}
		rn.xml.InlineTag("line", attrs...)
	}

	rn.xml.CloseTag("file")
}

func metricAttrs(m model.Summary) []xmlwriter.Attr {
	return []xmlwriter.Attr{
		xmlwriter.A("statements", m.Statements.Total),
		xmlwriter.A("coveredstatements", m.Statements.Covered),
		xmlwriter.A("conditionals", m.Branches.Total),
		xmlwriter.A("coveredconditionals", m.Branches.Covered),
		xmlwriter.A("methods", m.Functions.Total),
		xmlwriter.A("coveredmethods", m.Functions.Covered),
	}
}
