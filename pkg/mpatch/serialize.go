package mpatch

import (
	"fmt"
	"strconv"
	"strings"
)

// formatHeader opens every serialized patch; the suffix is the format
// version. Parsers reject anything else instead of guessing.
const formatHeader = "mpatch/1"

// Serialize encodes the patch as a self-describing byte sequence. The hunk
// body follows unified-diff conventions (1-based "@@ -a,b +c,d @@" headers,
// ' '/'-'/'+' line markers) under an mpatch metadata preamble, so
// ParsePatch(Serialize(p)) reconstructs p exactly.
func Serialize(p *Patch) []byte {
	var sb strings.Builder
	sb.WriteString(formatHeader)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "id: %s\n", p.ID)
	fmt.Fprintf(&sb, "source: %s\n", p.Source)
	fmt.Fprintf(&sb, "context: %d\n", p.Context)
	for _, h := range p.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OldStart+1, h.OldLen(), h.NewStart+1, h.NewLen())
		for _, l := range h.Lines {
			sb.WriteByte(l.Kind.marker())
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String())
}

// ParsePatch decodes a single serialized patch. Truncated or structurally
// inconsistent input fails with an error wrapping ErrFormat.
func ParsePatch(data []byte) (*Patch, error) {
	patches, err := ParsePatches(data)
	if err != nil {
		return nil, err
	}
	if len(patches) != 1 {
		return nil, fmt.Errorf("%w: expected a single patch, found %d", ErrFormat, len(patches))
	}
	return patches[0], nil
}

// ParsePatches decodes a stream of serialized patches. A stream carries one
// patch per source buffer, each opened by its own format header.
func ParsePatches(data []byte) ([]*Patch, error) {
	lines := strings.Split(string(data), "\n")
	// A trailing newline leaves one empty trailer element behind.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}

	var patches []*Patch
	pos := 0
	for pos < len(lines) {
		p, next, err := parseOne(lines, pos)
		if err != nil {
			return nil, err
		}
		patches = append(patches, p)
		pos = next
	}
	return patches, nil
}

func parseOne(lines []string, pos int) (*Patch, int, error) {
	if lines[pos] != formatHeader {
		return nil, 0, fmt.Errorf("%w: unsupported header %q on line %d", ErrFormat, lines[pos], pos+1)
	}
	pos++

	p := &Patch{}
	id, pos, err := headerValue(lines, pos, "id: ")
	if err != nil {
		return nil, 0, err
	}
	p.ID = id
	source, pos, err := headerValue(lines, pos, "source: ")
	if err != nil {
		return nil, 0, err
	}
	p.Source = source
	contextText, pos, err := headerValue(lines, pos, "context: ")
	if err != nil {
		return nil, 0, err
	}
	p.Context, err = strconv.Atoi(contextText)
	if err != nil || p.Context < 0 {
		return nil, 0, fmt.Errorf("%w: invalid context size %q", ErrFormat, contextText)
	}

	for pos < len(lines) && lines[pos] != formatHeader {
		h, next, err := parseHunk(lines, pos)
		if err != nil {
			return nil, 0, err
		}
		if n := len(p.Hunks); n > 0 && h.OldStart <= p.Hunks[n-1].OldStart {
			return nil, 0, fmt.Errorf("%w: hunks out of order at line %d", ErrFormat, pos+1)
		}
		p.Hunks = append(p.Hunks, h)
		pos = next
	}
	return p, pos, nil
}

func headerValue(lines []string, pos int, prefix string) (string, int, error) {
	if pos >= len(lines) || !strings.HasPrefix(lines[pos], prefix) {
		return "", 0, fmt.Errorf("%w: missing %q header on line %d", ErrFormat, strings.TrimSpace(prefix), pos+1)
	}
	return lines[pos][len(prefix):], pos + 1, nil
}

func parseHunk(lines []string, pos int) (*Hunk, int, error) {
	header := lines[pos]
	var oldStart, oldLen, newStart, newLen int
	if n, err := fmt.Sscanf(header, "@@ -%d,%d +%d,%d @@", &oldStart, &oldLen, &newStart, &newLen); n != 4 || err != nil {
		return nil, 0, fmt.Errorf("%w: invalid hunk header %q on line %d", ErrFormat, header, pos+1)
	}
	if oldStart < 1 || newStart < 1 || oldLen < 0 || newLen < 0 {
		return nil, 0, fmt.Errorf("%w: invalid hunk location in %q", ErrFormat, header)
	}
	h := &Hunk{OldStart: oldStart - 1, NewStart: newStart - 1}
	pos++

	gotOld, gotNew := 0, 0
	for pos < len(lines) && gotOld+gotNew < oldLen+newLen {
		line := lines[pos]
		if line == "" {
			return nil, 0, fmt.Errorf("%w: truncated hunk line %d", ErrFormat, pos+1)
		}
		var kind HunkLineKind
		switch line[0] {
		case ' ':
			kind = LineContext
			gotOld++
			gotNew++
		case '-':
			kind = LineRemoved
			gotOld++
		case '+':
			kind = LineAdded
			gotNew++
		default:
			return nil, 0, fmt.Errorf("%w: invalid hunk line marker %q on line %d", ErrFormat, line[0], pos+1)
		}
		h.Lines = append(h.Lines, HunkLine{Kind: kind, Text: line[1:]})
		pos++
	}
	if gotOld != oldLen || gotNew != newLen {
		return nil, 0, fmt.Errorf("%w: hunk at line %d claims %d/%d lines but carries %d/%d",
			ErrFormat, pos+1, oldLen, newLen, gotOld, gotNew)
	}
	return h, pos, nil
}
