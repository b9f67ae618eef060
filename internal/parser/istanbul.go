package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chmouel/go-clover-coverage/internal/model"
)

type istanbulPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type istanbulRange struct {
	Start istanbulPosition `json:"start"`
	End   istanbulPosition `json:"end"`
}

type istanbulFunction struct {
	Name string        `json:"name"`
	Line int           `json:"line"`
	Decl istanbulRange `json:"decl"`
	Loc  istanbulRange `json:"loc"`
}

type istanbulBranch struct {
	Line      int             `json:"line"`
	Type      string          `json:"type"`
	Loc       istanbulRange   `json:"loc"`
	Locations []istanbulRange `json:"locations"`
}

// istanbulFile is one entry of a coverage-final.json document.
type istanbulFile struct {
	Path         string                      `json:"path"`
	StatementMap map[string]istanbulRange    `json:"statementMap"`
	FnMap        map[string]istanbulFunction `json:"fnMap"`
	BranchMap    map[string]istanbulBranch   `json:"branchMap"`
	S            map[string]int              `json:"s"`
	F            map[string]int              `json:"f"`
	B            map[string][]int            `json:"b"`
}

// ParseIstanbul reads an Istanbul coverage-final.json and returns the
// coverage tree. Unlike Go profiles it carries branch coverage.
func ParseIstanbul(jsonPath string, opts Options) (*model.Node, error) {
	excludes, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(jsonPath) //nolint:gosec // path is from the command line
	if err != nil {
		return nil, fmt.Errorf("reading istanbul coverage: %w", err)
	}

	var raw map[string]istanbulFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing istanbul coverage: %w", err)
	}

	absRoot, err := filepath.Abs(opts.srcRoot())
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var entries []entry
	for _, k := range keys {
		f := raw[k]
		if f.Path == "" {
			f.Path = k
		}
		relPath := relativeTo(absRoot, f.Path)
		if excludes.match(relPath) {
			continue
		}
		entries = append(entries, entry{relPath: relPath, file: f.toFileCoverage()})
	}

	return buildTree(entries)
}

func relativeTo(absRoot, path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(absRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}

// sortedIDs orders istanbul map keys ("0", "1", ... "10") numerically.
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA != nil || errB != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})
	return ids
}

func (f istanbulFile) toFileCoverage() *model.FileCoverage {
	fc := &model.FileCoverage{Path: f.Path}

	stmtLines := make(map[int]bool)
	for _, id := range sortedIDs(f.StatementMap) {
		line := f.StatementMap[id].Start.Line
		stmtLines[line] = true
		fc.Blocks = append(fc.Blocks, model.Block{
			StartLine: line,
			EndLine:   line,
			NumStmt:   1,
			Count:     f.S[id],
		})
	}

	for _, id := range sortedIDs(f.BranchMap) {
		br := f.BranchMap[id]
		line := br.Line
		if line == 0 {
			line = br.Loc.Start.Line
		}
		counts := f.B[id]
		fc.Branches = append(fc.Branches, model.Branch{Line: line, Counts: counts})

		// a branch line is always a statement line
		if !stmtLines[line] {
			stmtLines[line] = true
			hits := 0
			for _, c := range counts {
				hits = max(hits, c)
			}
			fc.Blocks = append(fc.Blocks, model.Block{StartLine: line, EndLine: line, Count: hits})
		}
	}

	for _, id := range sortedIDs(f.FnMap) {
		fn := f.FnMap[id]
		line := fn.Line
		if line == 0 {
			line = fn.Decl.Start.Line
		}
		fc.Functions = append(fc.Functions, model.Function{Name: fn.Name, Line: line, Count: f.F[id]})
	}

	return fc
}
