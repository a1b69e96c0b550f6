package mpatch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// OpKind tags an EditOp as an equal, insert, or delete run.
type OpKind uint8

const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// EditOp is one run of a line edit script. Equal runs cover lines present in
// both buffers, Delete runs cover old-only lines, Insert runs new-only lines.
// OldStart is the run's position in the old buffer (the insertion point for
// inserts); NewStart is its position in the new buffer (the removal point for
// deletes).
type EditOp struct {
	Kind     OpKind
	OldStart int
	NewStart int
	Lines    []string
}

// DiffBuffers computes a line edit script turning oldBuf into newBuf. The
// script covers both buffers in document order with no gaps. Runs are aligned
// with a hashed line-mode Myers diff, then boundaries between ambiguous
// minimal scripts are shifted so the leading Equal run is as long as
// possible, which keeps leading context stable across runs on the same input.
func DiffBuffers(oldBuf, newBuf *LineBuffer) []EditOp {
	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(oldBuf.Render(), newBuf.Render())
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	// Decode rune-strings back to lines using the lineArray mapping. Every
	// rune is an index into lineArray; anything else means the diff library
	// broke its encoding contract, which must not pass silently.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			idx := int(r)
			if idx < 0 || idx >= len(lineArray) {
				panic(fmt.Sprintf("diff: line index %d out of range (lineArray has %d entries)", idx, len(lineArray)))
			}
			out = append(out, strings.TrimSuffix(lineArray[idx], "\n"))
		}
		return out
	}

	var ops []EditOp
	for _, d := range diffs {
		lines := decode(d.Text)
		if len(lines) == 0 {
			continue
		}
		var kind OpKind
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = OpEqual
		case diffmatchpatch.DiffInsert:
			kind = OpInsert
		case diffmatchpatch.DiffDelete:
			kind = OpDelete
		}
		ops = append(ops, EditOp{Kind: kind, Lines: lines})
	}

	ops = mergeRuns(ops)
	ops = cancelMatchingPairs(ops)
	ops = shiftChangesRight(ops)
	return fillPositions(ops)
}

// mergeRuns joins adjacent runs of the same kind.
func mergeRuns(ops []EditOp) []EditOp {
	out := ops[:0]
	for _, op := range ops {
		if n := len(out); n > 0 && out[n-1].Kind == op.Kind {
			// Runs may share backing arrays after boundary shuffling, merge
			// into a fresh slice.
			merged := make([]string, 0, len(out[n-1].Lines)+len(op.Lines))
			merged = append(merged, out[n-1].Lines...)
			merged = append(merged, op.Lines...)
			out[n-1].Lines = merged
			continue
		}
		out = append(out, op)
	}
	return out
}

// cancelMatchingPairs turns identical lines at the edges of a paired
// delete/insert run back into Equal runs. The line-mode diff distinguishes
// "x" from "x\n" at the end of input, which otherwise surfaces as a spurious
// replace of identical text.
func cancelMatchingPairs(ops []EditOp) []EditOp {
	var out []EditOp
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		if i+1 >= len(ops) || op.Kind == OpEqual || ops[i+1].Kind == OpEqual || ops[i+1].Kind == op.Kind {
			out = append(out, op)
			continue
		}
		a, b := op, ops[i+1]
		var prefix, suffix int
		for prefix < len(a.Lines) && prefix < len(b.Lines) && a.Lines[prefix] == b.Lines[prefix] {
			prefix++
		}
		for suffix < len(a.Lines)-prefix && suffix < len(b.Lines)-prefix &&
			a.Lines[len(a.Lines)-1-suffix] == b.Lines[len(b.Lines)-1-suffix] {
			suffix++
		}
		if prefix == 0 && suffix == 0 {
			out = append(out, op)
			continue
		}
		if prefix > 0 {
			out = append(out, EditOp{Kind: OpEqual, Lines: a.Lines[:prefix]})
		}
		if len(a.Lines)-prefix-suffix > 0 {
			out = append(out, EditOp{Kind: a.Kind, Lines: a.Lines[prefix : len(a.Lines)-suffix]})
		}
		if len(b.Lines)-prefix-suffix > 0 {
			out = append(out, EditOp{Kind: b.Kind, Lines: b.Lines[prefix : len(b.Lines)-suffix]})
		}
		if suffix > 0 {
			out = append(out, EditOp{Kind: OpEqual, Lines: a.Lines[len(a.Lines)-suffix:]})
		}
		i++
	}
	return mergeRuns(out)
}

// shiftChangesRight rotates a changed run forward while its first line equals
// the first line of the following Equal run. Rotating moves the ambiguous
// boundary toward the end of the document, which maximizes the leading Equal
// run (the tie-break between equally minimal scripts).
func shiftChangesRight(ops []EditOp) []EditOp {
	for i := 0; i < len(ops); i++ {
		if ops[i].Kind == OpEqual || i+1 >= len(ops) || ops[i+1].Kind != OpEqual {
			continue
		}
		var moved []string
		for len(ops[i+1].Lines) > 0 && ops[i].Lines[0] == ops[i+1].Lines[0] {
			line := ops[i].Lines[0]
			copy(ops[i].Lines, ops[i].Lines[1:])
			ops[i].Lines[len(ops[i].Lines)-1] = line
			ops[i+1].Lines = ops[i+1].Lines[1:]
			moved = append(moved, line)
		}
		if len(moved) == 0 {
			continue
		}
		if i > 0 && ops[i-1].Kind == OpEqual {
			grown := make([]string, 0, len(ops[i-1].Lines)+len(moved))
			grown = append(grown, ops[i-1].Lines...)
			ops[i-1].Lines = append(grown, moved...)
		} else {
			ops = append(ops[:i], append([]EditOp{{Kind: OpEqual, Lines: moved}}, ops[i:]...)...)
			i++
		}
		if len(ops[i+1].Lines) == 0 {
			ops = append(ops[:i+1], ops[i+2:]...)
			i-- // re-examine the run against the next Equal
		}
	}
	return mergeRuns(ops)
}

// fillPositions assigns the old/new start indices implied by run order.
func fillPositions(ops []EditOp) []EditOp {
	oldIdx, newIdx := 0, 0
	for i := range ops {
		ops[i].OldStart = oldIdx
		ops[i].NewStart = newIdx
		switch ops[i].Kind {
		case OpEqual:
			oldIdx += len(ops[i].Lines)
			newIdx += len(ops[i].Lines)
		case OpDelete:
			oldIdx += len(ops[i].Lines)
		case OpInsert:
			newIdx += len(ops[i].Lines)
		}
	}
	return ops
}

// ApplyEditScript replays an edit script against the old buffer and returns
// the reconstructed new lines. It verifies that Equal and Delete runs match
// the old buffer they claim to cover.
func ApplyEditScript(oldBuf *LineBuffer, ops []EditOp) ([]string, error) {
	var out []string
	oldIdx := 0
	for _, op := range ops {
		switch op.Kind {
		case OpEqual, OpDelete:
			for _, line := range op.Lines {
				if oldIdx >= oldBuf.Len() || oldBuf.Text(oldIdx) != line {
					return nil, fmt.Errorf("edit script does not cover old line %d (%s run expected %q)", oldIdx, op.Kind, line)
				}
				if op.Kind == OpEqual {
					out = append(out, line)
				}
				oldIdx++
			}
		case OpInsert:
			out = append(out, op.Lines...)
		}
	}
	if oldIdx != oldBuf.Len() {
		return nil, fmt.Errorf("edit script covers %d of %d old lines", oldIdx, oldBuf.Len())
	}
	return out, nil
}
