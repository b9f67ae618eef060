// Package xmlwriter writes indented XML one tag at a time while tracking the
// stack of open elements.
package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const indent = "  "

// ErrUnbalanced is returned when a close does not match the open element.
var ErrUnbalanced = errors.New("unbalanced xml tags")

// Attr is a single attribute. Attributes are written in slice order.
type Attr struct {
	Name  string
	Value string
}

// A builds an Attr from any value formatted with %v.
func A(name string, value any) Attr {
	return Attr{Name: name, Value: fmt.Sprint(value)}
}

// Writer emits XML lines to an io.Writer. The first error is sticky: once a
// write fails every later call is a no-op and Err reports it.
type Writer struct {
	w     io.Writer
	stack []string
	err   error
}

// New returns a Writer over w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Declaration writes the standard UTF-8 XML declaration.
func (x *Writer) Declaration() {
	x.println(`<?xml version="1.0" encoding="UTF-8"?>`)
}

// OpenTag writes <name attrs...> and pushes name on the stack.
func (x *Writer) OpenTag(name string, attrs ...Attr) {
	x.println(x.indent() + "<" + name + attrString(attrs) + ">")
	x.stack = append(x.stack, name)
}

// CloseTag pops name from the stack and writes </name>.
func (x *Writer) CloseTag(name string) {
	if x.err != nil {
		return
	}
	if len(x.stack) == 0 {
		x.err = fmt.Errorf("%w: close %s with no open tag", ErrUnbalanced, name)
		return
	}
	top := x.stack[len(x.stack)-1]
	if top != name {
		x.err = fmt.Errorf("%w: close %s while %s is open", ErrUnbalanced, name, top)
		return
	}
	x.stack = x.stack[:len(x.stack)-1]
	x.println(x.indent() + "</" + name + ">")
}

// InlineTag writes a self-closing <name attrs.../>.
func (x *Writer) InlineTag(name string, attrs ...Attr) {
	x.println(x.indent() + "<" + name + attrString(attrs) + "/>")
}

// TextTag writes <name attrs...>content</name> on one line.
func (x *Writer) TextTag(name, content string, attrs ...Attr) {
	x.println(x.indent() + "<" + name + attrString(attrs) + ">" + escape(content) + "</" + name + ">")
}

// CloseAll closes every open tag, innermost first.
func (x *Writer) CloseAll() {
	for len(x.stack) > 0 && x.err == nil {
		x.CloseTag(x.stack[len(x.stack)-1])
	}
}

// Depth is the number of currently open tags.
func (x *Writer) Depth() int {
	return len(x.stack)
}

// Err returns the first error encountered.
func (x *Writer) Err() error {
	return x.err
}

func (x *Writer) indent() string {
	return strings.Repeat(indent, len(x.stack))
}

func (x *Writer) println(s string) {
	if x.err != nil {
		return
	}
	if _, err := io.WriteString(x.w, s+"\n"); err != nil {
		x.err = err
	}
}

func attrString(attrs []Attr) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escape(a.Value))
		b.WriteString(`"`)
	}
	return b.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the underlying writer does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
