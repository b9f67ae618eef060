package model

import "sort"

// NodeType distinguishes directories from source files in the coverage tree.
type NodeType string

const (
	DirNode  NodeType = "dir"
	FileNode NodeType = "file"
)

// Node represents a node in the coverage tree (directory or file).
type Node struct {
	Path     string        // project-relative path, directories end with "/"
	Type     NodeType      // "dir" or "file"
	Root     bool          // true only for the tree root
	Children []*Node       // ordered, empty for files
	File     *FileCoverage // files only
}

// IsLeaf reports whether the node is a source file.
func (n *Node) IsLeaf() bool {
	return n.Type == FileNode
}

// Totals holds a total/covered pair for one metric category.
type Totals struct {
	Total   int `json:"total"`
	Covered int `json:"covered"`
}

// Pct returns the covered percentage, 100 when there is nothing to cover.
func (t Totals) Pct() float64 {
	if t.Total == 0 {
		return 100
	}
	return float64(t.Covered) / float64(t.Total) * 100
}

func (t *Totals) add(o Totals) {
	t.Total += o.Total
	t.Covered += o.Covered
}

// Summary is the rollup of the four coverage categories for a file or a subtree.
type Summary struct {
	Lines      Totals `json:"lines"`
	Statements Totals `json:"statements"`
	Branches   Totals `json:"branches"`
	Functions  Totals `json:"functions"`
}

// Merge adds o into s.
func (s *Summary) Merge(o Summary) {
	s.Lines.add(o.Lines)
	s.Statements.add(o.Statements)
	s.Branches.add(o.Branches)
	s.Functions.add(o.Functions)
}

// Empty reports whether the summary has no statements.
func (s Summary) Empty() bool {
	return s.Statements.Total == 0
}

// Elements is statements + branches + functions.
func (s Summary) Elements() int {
	return s.Statements.Total + s.Branches.Total + s.Functions.Total
}

// CoveredElements is the covered counterpart of Elements.
func (s Summary) CoveredElements() int {
	return s.Statements.Covered + s.Branches.Covered + s.Functions.Covered
}

// Block is a span of source lines holding statements that execute together.
type Block struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
	NumStmt   int `json:"numStmt"`
	Count     int `json:"count"`
}

// Branch is one conditional with a hit count per path.
type Branch struct {
	Line   int   `json:"line"`
	Counts []int `json:"counts"`
}

// Function is a declared function and how often it was entered.
type Function struct {
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Count int    `json:"count"`
}

// BranchCoverage is the per-line branch rollup.
type BranchCoverage struct {
	Covered int
	Total   int
}

// FileCoverage holds the raw coverage of a single source file.
type FileCoverage struct {
	Path      string     `json:"path"`
	Blocks    []Block    `json:"blocks"`
	Branches  []Branch   `json:"branches,omitempty"`
	Functions []Function `json:"functions,omitempty"`
}

// LineCoverage maps every instrumented line to its hit count. A line covered
// by several blocks keeps the highest count.
func (f *FileCoverage) LineCoverage() map[int]int {
	lines := make(map[int]int)
	for _, b := range f.Blocks {
		end := max(b.EndLine, b.StartLine)
		for line := b.StartLine; line <= end; line++ {
			if prev, ok := lines[line]; !ok || prev < b.Count {
				lines[line] = b.Count
			}
		}
	}
	return lines
}

// BranchCoverageByLine sums branch paths per source line.
func (f *FileCoverage) BranchCoverageByLine() map[int]BranchCoverage {
	byLine := make(map[int]BranchCoverage)
	for _, br := range f.Branches {
		bc := byLine[br.Line]
		for _, c := range br.Counts {
			bc.Total++
			if c > 0 {
				bc.Covered++
			}
		}
		byLine[br.Line] = bc
	}
	return byLine
}

// Summary computes the file-level rollup.
func (f *FileCoverage) Summary() Summary {
	var s Summary
	for _, b := range f.Blocks {
		s.Statements.Total += b.NumStmt
		if b.Count > 0 {
			s.Statements.Covered += b.NumStmt
		}
	}
	for _, hits := range f.LineCoverage() {
		s.Lines.Total++
		if hits > 0 {
			s.Lines.Covered++
		}
	}
	for _, bc := range f.BranchCoverageByLine() {
		s.Branches.Total += bc.Total
		s.Branches.Covered += bc.Covered
	}
	for _, fn := range f.Functions {
		s.Functions.Total++
		if fn.Count > 0 {
			s.Functions.Covered++
		}
	}
	return s
}

// SortedLines returns the keys of a line map in ascending order.
func SortedLines[V any](m map[int]V) []int {
	lines := make([]int, 0, len(m))
	for line := range m {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// TreeStats counts the packages, files and classes of a report.
type TreeStats struct {
	Packages int
	Files    int
	Classes  int
}
