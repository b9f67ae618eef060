package generator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chmouel/go-clover-coverage/internal/clover"
	"github.com/chmouel/go-clover-coverage/internal/model"
)

// Options configures the Clover report generation.
type Options struct {
	Now    func() time.Time // generation timestamp, defaults to time.Now
	Stdout io.Writer        // destination for "-", defaults to os.Stdout

	// Aggregation of root from clover.Aggregate, reused instead of walking
	// the tree again. Computed when nil.
	Aggregation *clover.Aggregation
}

// Generate creates a Clover XML report and writes it to the output path.
// An empty path or "-" writes to stdout.
func Generate(root *model.Node, outputPath string, opts Options) (err error) {
	report := &clover.Report{Now: opts.Now}

	agg := opts.Aggregation
	if agg == nil {
		if agg, err = clover.Aggregate(root); err != nil {
			return err
		}
	} else if agg.Root() != root {
		return errors.New("aggregation was computed for a different tree")
	}

	if outputPath == "" || outputPath == "-" {
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		if err := write(report, stdout, agg); err != nil {
			return fmt.Errorf("writing to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(outputPath) //nolint:gosec // report path is user supplied
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing output file: %w", clover.ErrWrite, cerr)
		}
	}()

	if err := write(report, f, agg); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	slog.Debug("wrote clover report", "path", outputPath)
	return nil
}

func write(report *clover.Report, w io.Writer, agg *clover.Aggregation) error {
	bw := bufio.NewWriter(w)
	if err := report.WriteAggregation(bw, agg); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", clover.ErrWrite, err)
	}
	return nil
}
