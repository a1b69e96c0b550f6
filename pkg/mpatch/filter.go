package mpatch

import "strings"

// Verdict is a predicate's opinion on one change: keep it, suppress it, or
// pass the question along.
type Verdict uint8

const (
	VerdictAbstain Verdict = iota
	VerdictKeep
	VerdictSuppress
)

// Change is a single line-level change inside a located hunk, enriched with
// where it lands in the target. Changes are transient: they exist for one
// application run and are never stored in the Patch.
type Change struct {
	// Kind is LineAdded or LineRemoved.
	Kind HunkLineKind
	// Text is the changed line's content.
	Text string
	// LineIndex is the change's position among the hunk's lines.
	LineIndex int
	// TargetIndex is where the change lands in the target buffer: the line
	// to remove for removals (-1 when the line no longer exists), the
	// insert-before position for additions.
	TargetIndex int
	// AnchorDistance counts the hunk lines between an addition and the
	// nearest preceding line that matched in the target. The farther away
	// the anchor, the less certain the placement.
	AnchorDistance int
}

// PredicateContext hands a predicate the surroundings of the change it is
// classifying: the owning hunk and every change in it.
type PredicateContext struct {
	Hunk    *Hunk
	Changes []Change
}

// Predicate inspects one change with its context and rules on it. Predicates
// are evaluated in configuration order; the first non-abstaining verdict
// wins.
type Predicate interface {
	Name() string
	Classify(change Change, ctx *PredicateContext) Verdict
}

// FilterDecision records the outcome for one change and which predicate
// produced it.
type FilterDecision struct {
	Apply     bool
	Predicate string
}

// defaultPredicateName labels decisions made by the chain default rather
// than any predicate.
const defaultPredicateName = "default"

// FilterChain is an ordered predicate list plus the default verdict used
// when every predicate abstains. A nil chain keeps everything.
type FilterChain struct {
	Predicates []Predicate
	// Default applies when all predicates abstain; VerdictAbstain counts
	// as keep so the zero value is a keep-all chain.
	Default Verdict
}

// Classify runs the chain over one change.
func (f *FilterChain) Classify(change Change, ctx *PredicateContext) FilterDecision {
	if f == nil {
		return FilterDecision{Apply: true, Predicate: defaultPredicateName}
	}
	for _, p := range f.Predicates {
		switch p.Classify(change, ctx) {
		case VerdictKeep:
			return FilterDecision{Apply: true, Predicate: p.Name()}
		case VerdictSuppress:
			return FilterDecision{Apply: false, Predicate: p.Name()}
		}
	}
	return FilterDecision{Apply: f.Default != VerdictSuppress, Predicate: defaultPredicateName}
}

// DefaultCommentMarkers are the prefixes treated as whole-line comments when
// a predicate is configured without its own marker set.
var DefaultCommentMarkers = []string{"//", "#", "/*", "*", "--"}

// IsCommentLine reports whether the whole line is a comment: empty lines are
// not comments, and leading whitespace is ignored.
func IsCommentLine(text string, markers []string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if len(markers) == 0 {
		markers = DefaultCommentMarkers
	}
	for _, m := range markers {
		if strings.HasPrefix(trimmed, m) {
			return true
		}
	}
	return false
}

// CommentLinePredicate rules on changes whose whole line is a comment,
// abstaining on everything else. The zero Action suppresses.
type CommentLinePredicate struct {
	Markers []string
	Action  Verdict
}

func (p CommentLinePredicate) Name() string { return "comment-lines" }

func (p CommentLinePredicate) Classify(change Change, _ *PredicateContext) Verdict {
	if !IsCommentLine(change.Text, p.Markers) {
		return VerdictAbstain
	}
	if p.Action == VerdictKeep {
		return VerdictKeep
	}
	return VerdictSuppress
}

// CommentOnlyHunkPredicate suppresses comment-line changes. In a hunk whose
// changes are all comments this suppresses the hunk in full; in a mixed hunk
// only the comment-line changes are held back, so the rest still applies.
type CommentOnlyHunkPredicate struct {
	Markers []string
}

func (p CommentOnlyHunkPredicate) Name() string { return "comment-only-hunks" }

func (p CommentOnlyHunkPredicate) Classify(change Change, _ *PredicateContext) Verdict {
	if IsCommentLine(change.Text, p.Markers) {
		return VerdictSuppress
	}
	return VerdictAbstain
}

// PatternPredicate rules on changes whose line contains the literal pattern,
// abstaining on everything else. The zero Action suppresses.
type PatternPredicate struct {
	Pattern string
	Action  Verdict
}

func (p PatternPredicate) Name() string { return "pattern" }

func (p PatternPredicate) Classify(change Change, _ *PredicateContext) Verdict {
	if p.Pattern == "" || !strings.Contains(change.Text, p.Pattern) {
		return VerdictAbstain
	}
	if p.Action == VerdictKeep {
		return VerdictKeep
	}
	return VerdictSuppress
}

// DistancePredicate suppresses added lines whose anchoring context sits more
// than MaxDistance lines away, the placements the locator is least sure of.
// Removals are anchored to the exact line they delete and always pass.
type DistancePredicate struct {
	MaxDistance int
}

func (p DistancePredicate) Name() string { return "max-distance" }

func (p DistancePredicate) Classify(change Change, _ *PredicateContext) Verdict {
	if change.Kind != LineAdded {
		return VerdictAbstain
	}
	if change.AnchorDistance > p.MaxDistance {
		return VerdictSuppress
	}
	return VerdictAbstain
}
