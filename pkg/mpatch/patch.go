package mpatch

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// DefaultContext is the number of unchanged lines kept around a hunk's
// changes when no explicit window is requested.
const DefaultContext = 3

// HunkLineKind tags a hunk line as context, an addition, or a removal.
type HunkLineKind uint8

const (
	LineContext HunkLineKind = iota
	LineAdded
	LineRemoved
)

func (k HunkLineKind) marker() byte {
	switch k {
	case LineAdded:
		return '+'
	case LineRemoved:
		return '-'
	}
	return ' '
}

// HunkLine is one line of a hunk: unchanged context, an added line, or a
// removed line, with its exact text.
type HunkLine struct {
	Kind HunkLineKind
	Text string
}

// Hunk is one contiguous group of changes bounded by context lines. OldStart
// and NewStart are the 0-based positions of the hunk's first line in the old
// and new buffers, including the leading context.
type Hunk struct {
	OldStart int
	NewStart int
	Lines    []HunkLine
}

// OldLen returns the number of old-buffer lines the hunk covers.
func (h *Hunk) OldLen() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind != LineAdded {
			n++
		}
	}
	return n
}

// NewLen returns the number of new-buffer lines the hunk covers.
func (h *Hunk) NewLen() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind != LineRemoved {
			n++
		}
	}
	return n
}

// oldTexts returns the text of the lines the hunk expects to find in the
// buffer it is applied to: context plus removals, in order.
func (h *Hunk) oldTexts() []string {
	out := make([]string, 0, len(h.Lines))
	for _, l := range h.Lines {
		if l.Kind != LineAdded {
			out = append(out, l.Text)
		}
	}
	return out
}

// Fingerprint digests the hunk's context lines, so two patches can be
// compared for relocation purposes without the old buffer at hand.
func (h *Hunk) Fingerprint() uint64 {
	d := fnv.New64a()
	for _, l := range h.Lines {
		if l.Kind != LineContext {
			continue
		}
		d.Write([]byte(l.Text))
		d.Write([]byte{'\n'})
	}
	return d.Sum64()
}

// Patch is an ordered set of hunks recorded against one source buffer. Hunks
// are non-overlapping and strictly increasing in OldStart. Context records
// the window size used at creation time.
type Patch struct {
	ID      string
	Source  string
	Context int
	Hunks   []*Hunk
}

// BuildPatch groups the changed runs of an edit script into hunks, keeping up
// to context unchanged lines on each side of a change. Hunks whose context
// windows would overlap or touch are merged. A negative context falls back to
// DefaultContext.
func BuildPatch(ops []EditOp, source string, context int) *Patch {
	if context < 0 {
		context = DefaultContext
	}
	p := &Patch{
		ID:      uuid.NewString(),
		Source:  source,
		Context: context,
	}

	script, oldAt, newAt := flattenOps(ops)
	n := len(script)
	lastEnd := 0
	i := 0
	for i < n {
		if script[i].Kind == LineContext {
			i++
			continue
		}

		start := i - context
		if start < lastEnd {
			start = lastEnd
		}

		// Absorb further changes while the equal gap between them fits
		// inside the two adjoining context windows.
		end := i + 1
		j := i + 1
		eqRun := 0
		for j < n {
			if script[j].Kind == LineContext {
				eqRun++
				if eqRun > 2*context {
					break
				}
				j++
				continue
			}
			end = j + 1
			eqRun = 0
			j++
		}

		tail := end + context
		if tail > n {
			tail = n
		}

		h := &Hunk{
			OldStart: oldAt[start],
			NewStart: newAt[start],
			Lines:    append([]HunkLine(nil), script[start:tail]...),
		}
		p.Hunks = append(p.Hunks, h)
		lastEnd = tail
		i = j
	}
	return p
}

// GeneratePatch diffs two texts and builds a patch in one step.
func GeneratePatch(oldText, newText, source string, context int) (*Patch, error) {
	oldBuf, err := NewLineBuffer(oldText)
	if err != nil {
		return nil, err
	}
	newBuf, err := NewLineBuffer(newText)
	if err != nil {
		return nil, err
	}
	ops := DiffBuffers(oldBuf, newBuf)
	return BuildPatch(ops, source, context), nil
}

// flattenOps expands an edit script into per-line hunk records plus, for each
// record, the old/new buffer positions at that point in the script.
func flattenOps(ops []EditOp) (script []HunkLine, oldAt, newAt []int) {
	oldIdx, newIdx := 0, 0
	for _, op := range ops {
		for _, text := range op.Lines {
			oldAt = append(oldAt, oldIdx)
			newAt = append(newAt, newIdx)
			switch op.Kind {
			case OpEqual:
				script = append(script, HunkLine{Kind: LineContext, Text: text})
				oldIdx++
				newIdx++
			case OpDelete:
				script = append(script, HunkLine{Kind: LineRemoved, Text: text})
				oldIdx++
			case OpInsert:
				script = append(script, HunkLine{Kind: LineAdded, Text: text})
				newIdx++
			}
		}
	}
	return script, oldAt, newAt
}
