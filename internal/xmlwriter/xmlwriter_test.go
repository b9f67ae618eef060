package xmlwriter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestedOutput(t *testing.T) {
	var buf bytes.Buffer
	x := New(&buf)

	x.Declaration()
	x.OpenTag("coverage", A("clover", "3.2.0"))
	x.OpenTag("project", A("name", "All files"))
	x.InlineTag("metrics", A("statements", 2), A("coveredstatements", 1))
	x.CloseTag("project")
	x.CloseTag("coverage")
	require.NoError(t, x.Err())

	want := `<?xml version="1.0" encoding="UTF-8"?>
<coverage clover="3.2.0">
  <project name="All files">
    <metrics statements="2" coveredstatements="1"/>
  </project>
</coverage>
`
	assert.Equal(t, want, buf.String())
}

func TestCloseAll(t *testing.T) {
	var buf bytes.Buffer
	x := New(&buf)

	x.OpenTag("a")
	x.OpenTag("b")
	x.OpenTag("c")
	assert.Equal(t, 3, x.Depth())

	x.CloseAll()
	require.NoError(t, x.Err())
	assert.Equal(t, 0, x.Depth())
	assert.Equal(t, "<a>\n  <b>\n    <c>\n    </c>\n  </b>\n</a>\n", buf.String())
}

func TestAttributeEscaping(t *testing.T) {
	var buf bytes.Buffer
	x := New(&buf)

	x.InlineTag("file", A("path", `a&b<c>"d"`))
	require.NoError(t, x.Err())
	assert.Equal(t, "<file path=\"a&amp;b&lt;c&gt;&#34;d&#34;\"/>\n", buf.String())
}

func TestUnbalancedClose(t *testing.T) {
	tests := []struct {
		name string
		run  func(x *Writer)
	}{
		{
			name: "close with empty stack",
			run:  func(x *Writer) { x.CloseTag("package") },
		},
		{
			name: "close wrong tag",
			run: func(x *Writer) {
				x.OpenTag("file")
				x.CloseTag("package")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			x := New(&buf)
			tt.run(x)
			assert.ErrorIs(t, x.Err(), ErrUnbalanced)
		})
	}
}

type failingWriter struct{ after int }

var errDiskFull = errors.New("disk full")

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errDiskFull
	}
	f.after--
	return len(p), nil
}

func TestStickyWriteError(t *testing.T) {
	fw := &failingWriter{after: 1}
	x := New(fw)

	x.Declaration()
	x.OpenTag("coverage")
	x.InlineTag("metrics")
	x.CloseAll()

	assert.ErrorIs(t, x.Err(), errDiskFull)
}
