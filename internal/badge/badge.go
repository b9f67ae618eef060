package badge

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/chmouel/go-clover-coverage/internal/model"
	"github.com/chmouel/go-clover-coverage/internal/xmlwriter"
)

// Thresholds defines the color thresholds for badge generation.
type Thresholds struct {
	Red    float64 // Upper threshold for red (0-Red is red)
	Yellow float64 // Upper threshold for yellow (Red-Yellow is yellow, Yellow+ is green)
}

// DefaultThresholds returns the default color thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Red:    40,
		Yellow: 70,
	}
}

// Options configures a badge.
type Options struct {
	Label      string // left-hand text, defaults to "coverage"
	Thresholds Thresholds
	Stdout     io.Writer // destination for "-", defaults to os.Stdout
}

// GenerateBadge renders an SVG badge for the covered percentage of totals and
// writes it to outputPath. If outputPath is "-", the badge is written to stdout.
func GenerateBadge(totals model.Totals, outputPath string, opts Options) error {
	thresholds := opts.Thresholds
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	svg, err := generateSVG(opts.label(), totals.Pct(), thresholds)
	if err != nil {
		return fmt.Errorf("rendering badge: %w", err)
	}

	if outputPath == "-" {
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, err := stdout.Write(svg); err != nil {
			return fmt.Errorf("writing badge to stdout: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, svg, 0o644); err != nil { //nolint:gosec // G306: Badge should be readable
		return fmt.Errorf("writing badge file: %w", err)
	}
	return nil
}

func (o Options) label() string {
	if o.Label == "" {
		return "coverage"
	}
	return o.Label
}

// generateSVG builds a shields.io style badge.
func generateSVG(label string, coverage float64, thresholds Thresholds) ([]byte, error) {
	// Clamp coverage to 0-100 range
	coverage = min(max(coverage, 0), 100)

	color := getColor(coverage, thresholds)
	value := fmt.Sprintf("%.1f%%", coverage)

	// Verdana 11px averages about 7px per glyph
	leftWidth := 7*len(label) + 10
	rightWidth := 48
	height := 20
	totalWidth := leftWidth + rightWidth

	var buf bytes.Buffer
	x := xmlwriter.New(&buf)
	x.OpenTag("svg",
		xmlwriter.A("xmlns", "http://www.w3.org/2000/svg"),
		xmlwriter.A("xmlns:xlink", "http://www.w3.org/1999/xlink"),
		xmlwriter.A("width", totalWidth),
		xmlwriter.A("height", height),
		xmlwriter.A("role", "img"),
		xmlwriter.A("aria-label", label+": "+value),
	)
	x.TextTag("title", label+": "+value)

	x.OpenTag("g", xmlwriter.A("shape-rendering", "crispEdges"))
	x.InlineTag("rect", xmlwriter.A("width", leftWidth), xmlwriter.A("height", height), xmlwriter.A("fill", "#555"))
	x.InlineTag("rect", xmlwriter.A("x", leftWidth), xmlwriter.A("width", rightWidth), xmlwriter.A("height", height), xmlwriter.A("fill", color))
	x.CloseTag("g")

	x.OpenTag("g",
		xmlwriter.A("fill", "#fff"),
		xmlwriter.A("text-anchor", "middle"),
		xmlwriter.A("font-family", "Verdana,Geneva,DejaVu Sans,sans-serif"),
		xmlwriter.A("text-rendering", "geometricPrecision"),
		xmlwriter.A("font-size", 11),
	)
	for _, t := range []struct {
		text string
		x    int
	}{
		{label, leftWidth / 2},
		{value, leftWidth + rightWidth/2},
	} {
		x.TextTag("text", t.text,
			xmlwriter.A("aria-hidden", "true"), xmlwriter.A("x", t.x), xmlwriter.A("y", 15),
			xmlwriter.A("fill", "#010101"), xmlwriter.A("fill-opacity", ".3"),
		)
		x.TextTag("text", t.text, xmlwriter.A("x", t.x), xmlwriter.A("y", 14))
	}
	x.CloseAll()

	if err := x.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// getColor returns the SVG color code based on coverage percentage and thresholds.
func getColor(coverage float64, thresholds Thresholds) string {
	switch {
	case coverage >= thresholds.Yellow:
		return "#4c1" // Green
	case coverage > thresholds.Red:
		return "#dfb317" // Yellow/Amber
	default:
		return "#e05d44" // Red
	}
}
