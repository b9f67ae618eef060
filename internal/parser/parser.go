package parser

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/go-clover-coverage/internal/model"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/cover"
)

// Options controls how coverage inputs are turned into a tree.
type Options struct {
	SrcRoot  string   // project root, relative paths are computed against it
	Excludes []string // glob patterns matched against relative paths
}

func (o Options) srcRoot() string {
	if o.SrcRoot == "" {
		return "."
	}
	return o.SrcRoot
}

// entry is a parsed source file before it is placed in the tree.
type entry struct {
	relPath string
	file    *model.FileCoverage
}

// Parse reads a Go coverage profile and returns the coverage tree.
func Parse(profilePath string, opts Options) (*model.Node, error) {
	excludes, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return nil, fmt.Errorf("parsing coverage profile: %w", err)
	}

	srcRoot := opts.srcRoot()
	modPath, err := detectModulePath(srcRoot)
	if err != nil {
		return nil, fmt.Errorf("detecting module path: %w", err)
	}

	absRoot, err := filepath.Abs(srcRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}

	var entries []entry
	for _, p := range profiles {
		relPath := resolveRelPath(srcRoot, modPath, p.FileName)
		if excludes.match(relPath) {
			slog.Debug("excluding file", "path", relPath)
			continue
		}

		fc := &model.FileCoverage{
			Path:   filepath.Join(absRoot, filepath.FromSlash(relPath)),
			Blocks: profileBlocks(p.Blocks),
		}

		src, err := os.ReadFile(fc.Path) //nolint:gosec // path is from coverage profile
		if err != nil {
			slog.Warn("source not readable, skipping function coverage", "path", relPath, "error", err)
		} else if fc.Functions, err = functionCoverage(fc.Path, src, fc.Blocks); err != nil {
			slog.Warn("source not parseable, skipping function coverage", "path", relPath, "error", err)
		}

		entries = append(entries, entry{relPath: relPath, file: fc})
	}

	return buildTree(entries)
}

// resolveRelPath converts a profile import path into a path relative to srcRoot.
func resolveRelPath(srcRoot, modPath, fileName string) string {
	relPath := strings.TrimPrefix(fileName, modPath+"/")
	if fileExists(filepath.Join(srcRoot, relPath)) {
		return relPath
	}

	// Try stripping a host/org/repo prefix
	parts := strings.SplitN(fileName, "/", 4)
	if len(parts) >= 4 && fileExists(filepath.Join(srcRoot, parts[3])) {
		return parts[3]
	}
	return relPath
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func detectModulePath(srcRoot string) (string, error) {
	goModPath := filepath.Join(srcRoot, "go.mod")
	data, err := os.ReadFile(goModPath) //nolint:gosec // path is from srcRoot argument
	if err != nil {
		return "", err
	}
	modPath := modfile.ModulePath(data)
	if modPath == "" {
		return "", fmt.Errorf("module directive not found in go.mod")
	}
	return modPath, nil
}

func profileBlocks(blocks []cover.ProfileBlock) []model.Block {
	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, model.Block{
			StartLine: b.StartLine,
			EndLine:   b.EndLine,
			NumStmt:   b.NumStmt,
			Count:     b.Count,
		})
	}
	return out
}

// functionCoverage finds the function declarations of a Go source file and
// takes the highest hit count of the blocks starting inside each one.
func functionCoverage(path string, src []byte, blocks []model.Block) ([]model.Function, error) {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, path, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	var funcs []model.Function
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		start := fset.Position(fn.Pos()).Line
		end := fset.Position(fn.End()).Line

		count := 0
		for _, b := range blocks {
			if b.StartLine >= start && b.StartLine <= end && b.Count > count {
				count = b.Count
			}
		}
		funcs = append(funcs, model.Function{Name: funcName(fn), Line: start, Count: count})
	}
	return funcs, nil
}

func funcName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	typ := fn.Recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	switch t := typ.(type) {
	case *ast.Ident:
		return t.Name + "." + fn.Name.Name
	case *ast.IndexExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name + "." + fn.Name.Name
		}
	case *ast.IndexListExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name + "." + fn.Name.Name
		}
	}
	return fn.Name.Name
}
