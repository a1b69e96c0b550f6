package mpatch

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Line is a single line of a buffer: its 0-based position and its exact text
// without the trailing newline. Lines are immutable once created.
type Line struct {
	Index int
	Text  string
}

// LineBuffer is an ordered sequence of Lines owned by the stage that produced
// it. Buffers derived from one another never share backing storage.
type LineBuffer struct {
	lines []Line
	// noEOFNewline records that the source text did not end with a newline,
	// so Render can reproduce the input byte for byte.
	noEOFNewline bool
}

// NewLineBuffer splits text on newline boundaries without trimming anything.
// It fails only on invalid UTF-8, never on content shape.
func NewLineBuffer(text string) (*LineBuffer, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrInput)
	}
	return newBufferFromText(text), nil
}

func newBufferFromText(text string) *LineBuffer {
	if text == "" {
		return &LineBuffer{}
	}
	parts := strings.Split(text, "\n")
	noEOFNewline := true
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
		noEOFNewline = false
	}
	return newBufferFromLines(parts, noEOFNewline)
}

func newBufferFromLines(texts []string, noEOFNewline bool) *LineBuffer {
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = Line{Index: i, Text: t}
	}
	return &LineBuffer{lines: lines, noEOFNewline: noEOFNewline}
}

// Len returns the number of lines in the buffer.
func (b *LineBuffer) Len() int {
	return len(b.lines)
}

// Lines returns the lines of the buffer in order.
func (b *LineBuffer) Lines() []Line {
	return b.lines
}

// Text returns the text of line i.
func (b *LineBuffer) Text(i int) string {
	return b.lines[i].Text
}

// texts returns the line contents as a plain slice.
func (b *LineBuffer) texts() []string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = l.Text
	}
	return out
}

// Render is the inverse of NewLineBuffer: Render(NewLineBuffer(t)) == t.
func (b *LineBuffer) Render() string {
	if len(b.lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, l := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Text)
	}
	if !b.noEOFNewline {
		sb.WriteByte('\n')
	}
	return sb.String()
}
