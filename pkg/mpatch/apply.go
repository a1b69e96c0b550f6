package mpatch

import "fmt"

// HunkStatus is the per-hunk outcome of an application run. None of these
// are errors: a patch with not-found hunks still completes.
type HunkStatus string

const (
	HunkApplied             HunkStatus = "applied"
	HunkSuppressed          HunkStatus = "suppressed"
	HunkPartiallySuppressed HunkStatus = "partially-suppressed"
	HunkNotFound            HunkStatus = "not-found"
)

// HunkReport describes what happened to one hunk.
type HunkReport struct {
	Hunk     int
	Status   HunkStatus
	OldStart int
	// Anchor is the resolved target position, -1 when not found.
	Anchor int
	Drift  int
	Score  float64
	// Decisions holds one filter decision per change, in hunk order.
	Decisions []FilterDecision
	// Rejects are removals whose line no longer exists in the target. A
	// hunk with rejects reports partially-suppressed, never applied.
	Rejects []Change
}

// Report enumerates the outcome of applying one patch.
type Report struct {
	PatchID string
	Source  string
	Hunks   []HunkReport
}

// Counts tallies hunks by status.
func (r *Report) Counts() (applied, suppressed, partial, notFound int) {
	for _, h := range r.Hunks {
		switch h.Status {
		case HunkApplied:
			applied++
		case HunkSuppressed:
			suppressed++
		case HunkPartiallySuppressed:
			partial++
		case HunkNotFound:
			notFound++
		}
	}
	return applied, suppressed, partial, notFound
}

// FullyApplied reports whether every hunk applied without suppression,
// rejects, or relocation failure.
func (r *Report) FullyApplied() bool {
	for _, h := range r.Hunks {
		if h.Status != HunkApplied || len(h.Rejects) > 0 {
			return false
		}
	}
	return true
}

// ApplyOptions configures one application run. The zero value locates with
// defaults, keeps every change, and enforces no size limit.
type ApplyOptions struct {
	Locate  LocateConfig
	Filters *FilterChain
	// MaxTargetLines caps the target size; exceeding it fails with
	// ErrResourceLimit. Zero means unlimited.
	MaxTargetLines int
}

// Apply replays the patch onto targetText. Hunks are located in patch order
// with the offset drift of each successfully placed hunk folded into the
// search hint of the next; the filter chain then decides which of a hunk's
// changes survive; surviving changes are spliced into the target in one
// pass. Hunks succeed or fail independently: the result is the patched text
// plus a report, and only malformed input or a breached resource limit is an
// error.
func Apply(p *Patch, targetText string, opts ApplyOptions) (string, *Report, error) {
	target, err := NewLineBuffer(targetText)
	if err != nil {
		return "", nil, err
	}
	if opts.MaxTargetLines > 0 && target.Len() > opts.MaxTargetLines {
		return "", nil, fmt.Errorf("%w: target has %d lines, limit is %d",
			ErrResourceLimit, target.Len(), opts.MaxTargetLines)
	}

	report := &Report{
		PatchID: p.ID,
		Source:  p.Source,
		Hunks:   make([]HunkReport, 0, len(p.Hunks)),
	}
	inserts := make(map[int][]string)
	deletes := make(map[int]bool)

	// Drift is the one piece of sequential state: each placed hunk's offset
	// feeds the next hunk's search hint.
	drift := 0
	for hi, h := range p.Hunks {
		hr := HunkReport{Hunk: hi, OldStart: h.OldStart, Anchor: -1}
		res, ok := locateHunk(h, target, h.OldStart+drift, opts.Locate)
		if !ok {
			hr.Status = HunkNotFound
			report.Hunks = append(report.Hunks, hr)
			continue
		}
		hr.Anchor = res.Anchor
		hr.Drift = res.Drift
		hr.Score = res.Score
		drift = res.Drift

		changes := resolveChanges(h, res)
		ctx := &PredicateContext{Hunk: h, Changes: changes}
		suppressed := 0
		for _, c := range changes {
			decision := opts.Filters.Classify(c, ctx)
			hr.Decisions = append(hr.Decisions, decision)
			if !decision.Apply {
				suppressed++
				continue
			}
			switch c.Kind {
			case LineRemoved:
				if c.TargetIndex < 0 {
					hr.Rejects = append(hr.Rejects, c)
					continue
				}
				deletes[c.TargetIndex] = true
			case LineAdded:
				inserts[c.TargetIndex] = append(inserts[c.TargetIndex], c.Text)
			}
		}

		// Rejected removals count against full application too: a hunk is
		// "applied" only when every one of its changes landed.
		switch {
		case suppressed == 0 && len(hr.Rejects) == 0:
			hr.Status = HunkApplied
		case suppressed == len(changes):
			hr.Status = HunkSuppressed
		default:
			hr.Status = HunkPartiallySuppressed
		}
		report.Hunks = append(report.Hunks, hr)
	}

	return splice(target, inserts, deletes), report, nil
}

// resolveChanges projects a located hunk's additions and removals onto
// target positions. Removals land on the exact line they matched; additions
// land after the closest preceding matched line, falling back to the anchor.
func resolveChanges(h *Hunk, res MatchResult) []Change {
	var changes []Change
	oldSide := 0
	lastMatched := -1
	sinceMatch := 0
	for li, line := range h.Lines {
		if line.Kind == LineAdded {
			insertAt := res.Anchor
			if lastMatched >= 0 {
				insertAt = lastMatched + 1
			}
			changes = append(changes, Change{
				Kind:           LineAdded,
				Text:           line.Text,
				LineIndex:      li,
				TargetIndex:    insertAt,
				AnchorDistance: sinceMatch,
			})
			continue
		}
		matchedAt := -1
		if oldSide < len(res.lineMap) {
			matchedAt = res.lineMap[oldSide]
		}
		if line.Kind == LineRemoved {
			changes = append(changes, Change{
				Kind:        LineRemoved,
				Text:        line.Text,
				LineIndex:   li,
				TargetIndex: matchedAt,
			})
		}
		if matchedAt >= 0 {
			lastMatched = matchedAt
			sinceMatch = 0
		} else {
			sinceMatch++
		}
		oldSide++
	}
	return changes
}

// splice rebuilds the target with the surviving insertions and deletions.
// Suppressed changes leave their original lines untouched.
func splice(target *LineBuffer, inserts map[int][]string, deletes map[int]bool) string {
	out := make([]string, 0, target.Len())
	for i := 0; i <= target.Len(); i++ {
		out = append(out, inserts[i]...)
		if i < target.Len() && !deletes[i] {
			out = append(out, target.Text(i))
		}
	}
	return newBufferFromLines(out, target.noEOFNewline).Render()
}
