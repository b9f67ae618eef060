package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chmouel/go-clover-coverage/internal/model"
	"github.com/gobwas/glob"
)

type excludeSet []glob.Glob

func compileExcludes(patterns []string) (excludeSet, error) {
	set := make(excludeSet, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		set = append(set, g)
	}
	return set, nil
}

func (s excludeSet) match(relPath string) bool {
	for _, g := range s {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// buildTree nests entries by relative path. Two entries resolving to the
// same path are an error, since only one of them could be reported.
func buildTree(entries []entry) (*model.Node, error) {
	root := &model.Node{
		Type:     model.DirNode,
		Root:     true,
		Children: []*model.Node{},
	}

	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		relPath := strings.TrimPrefix(e.relPath, "/")
		if prev, ok := seen[relPath]; ok {
			return nil, fmt.Errorf("%s and %s both resolve to %s", prev, e.file.Path, relPath)
		}
		seen[relPath] = e.file.Path

		insertPath(root, "", strings.Split(relPath, "/"), e.file)
	}

	sortTree(root)
	return root, nil
}

func insertPath(node *model.Node, prefix string, parts []string, fc *model.FileCoverage) {
	if len(parts) == 0 {
		return
	}

	name := parts[0]
	isFile := len(parts) == 1
	path := prefix + name
	if !isFile {
		path += "/"
	}

	// Find existing child
	var child *model.Node
	for _, c := range node.Children {
		if c.Path == path {
			child = c
			break
		}
	}

	if child == nil {
		child = &model.Node{Path: path}
		if isFile {
			child.Type = model.FileNode
			child.File = fc
		} else {
			child.Type = model.DirNode
			child.Children = []*model.Node{}
		}
		node.Children = append(node.Children, child)
	}

	if !isFile {
		insertPath(child, path, parts[1:], fc)
	}
}

func sortTree(node *model.Node) {
	if node.Children == nil {
		return
	}

	sort.Slice(node.Children, func(i, j int) bool {
		// Directories first, then files
		if node.Children[i].Type != node.Children[j].Type {
			return node.Children[i].Type == model.DirNode
		}
		return node.Children[i].Path < node.Children[j].Path
	})

	for _, c := range node.Children {
		sortTree(c)
	}
}
