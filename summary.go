package main

import (
	"fmt"
	"io"

	"github.com/chmouel/go-clover-coverage/internal/clover"
	"github.com/chmouel/go-clover-coverage/internal/model"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	highColor = color.New(color.FgGreen, color.Bold)
	midColor  = color.New(color.FgYellow)
	lowColor  = color.New(color.FgRed, color.Bold)
)

// pctLabel formats "85.0% (17/20)" colored by how well it is covered.
func pctLabel(t model.Totals) string {
	pct := t.Pct()
	text := fmt.Sprintf("%.1f%% (%d/%d)", pct, t.Covered, t.Total)
	switch {
	case pct >= 80:
		return highColor.Sprint(text)
	case pct >= 50:
		return midColor.Sprint(text)
	default:
		return lowColor.Sprint(text)
	}
}

func printResult(w io.Writer, outputPath string, total model.Summary, stats model.TreeStats) {
	if outputPath != "-" {
		_, _ = fmt.Fprintf(w, "Clover report written to %s\n", outputPath)
	}
	_, _ = fmt.Fprintf(w, "Packages: %d, files: %d\n", stats.Packages, stats.Files)
	_, _ = fmt.Fprintf(w, "Statements: %s\n", pctLabel(total.Statements))
	_, _ = fmt.Fprintf(w, "Branches:   %s\n", pctLabel(total.Branches))
	_, _ = fmt.Fprintf(w, "Functions:  %s\n", pctLabel(total.Functions))
	_, _ = fmt.Fprintf(w, "Lines:      %s\n", pctLabel(total.Lines))
}

type packageRow struct {
	name    string
	summary model.Summary
}

// packageRows lists the packages in report order, skipping the same
// zero-statement subtrees the report leaves out.
func packageRows(root *model.Node, agg *clover.Aggregation) []packageRow {
	var rows []packageRow
	var walk func(n *model.Node)
	walk = func(n *model.Node) {
		if n.IsLeaf() {
			return
		}
		if !n.Root {
			s, ok := agg.Summary(n, true)
			if !ok {
				return
			}
			rows = append(rows, packageRow{name: clover.PackageName(n.Path), summary: s})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return rows
}

func writePackageTable(w io.Writer, root *model.Node, agg *clover.Aggregation) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Package", "Statements", "Branches", "Functions", "Lines"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range packageRows(root, agg) {
		data = append(data, []string{
			r.name,
			pctLabel(r.summary.Statements),
			pctLabel(r.summary.Branches),
			pctLabel(r.summary.Functions),
			pctLabel(r.summary.Lines),
		})
	}
	if total, ok := agg.Summary(root, false); ok {
		data = append(data, []string{
			clover.ProjectName,
			pctLabel(total.Statements),
			pctLabel(total.Branches),
			pctLabel(total.Functions),
			pctLabel(total.Lines),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
