package mpatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPatch(t *testing.T, oldText, newText string, context int) *Patch {
	t.Helper()
	p, err := GeneratePatch(oldText, newText, "test", context)
	require.NoError(t, err)
	return p
}

func TestApplyExactTarget(t *testing.T) {
	oldText := numberedText(10)
	newText := strings.Replace(oldText, "l5\n", "five\n", 1)
	p := mustPatch(t, oldText, newText, 2)

	got, report, err := Apply(p, oldText, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, newText, got)
	require.Len(t, report.Hunks, 1)
	assert.Equal(t, HunkApplied, report.Hunks[0].Status)
	assert.Equal(t, 0, report.Hunks[0].Drift)
	assert.Equal(t, 1.0, report.Hunks[0].Score)
	assert.True(t, report.FullyApplied())
}

func TestApplyDriftedTarget(t *testing.T) {
	oldText := numberedText(10)
	newText := strings.Replace(oldText, "l5\n", "five\n", 1)
	p := mustPatch(t, oldText, newText, 2)

	// The target gained three lines at the top since the patch was made.
	target := "h1\nh2\nh3\n" + oldText
	got, report, err := Apply(p, target, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, "h1\nh2\nh3\n"+newText, got)
	require.Len(t, report.Hunks, 1)
	assert.Equal(t, HunkApplied, report.Hunks[0].Status)
	assert.Equal(t, 3, report.Hunks[0].Drift)
}

func TestApplyTargetWithUnrelatedInsertion(t *testing.T) {
	// An extra line appeared between context and change; the hunk still
	// applies and the insertion is preserved.
	p := mustPatch(t, "a\nb\nc\n", "a\nx\nc\n", 3)

	got, report, err := Apply(p, "a\nnote\nb\nc\n", ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a\nnote\nx\nc\n", got)
	assert.Equal(t, HunkApplied, report.Hunks[0].Status)
}

func TestApplyCommentFilterSuppressesWholeHunk(t *testing.T) {
	oldText := numberedText(10)
	newText := strings.Replace(oldText, "l5\n", "l5\n// added note\n", 1)
	p := mustPatch(t, oldText, newText, 2)

	filters := &FilterChain{Predicates: []Predicate{CommentOnlyHunkPredicate{}}}
	got, report, err := Apply(p, oldText, ApplyOptions{Filters: filters})
	require.NoError(t, err)
	assert.Equal(t, oldText, got, "a comment-only hunk leaves the target untouched")
	require.Len(t, report.Hunks, 1)
	assert.Equal(t, HunkSuppressed, report.Hunks[0].Status)
	require.Len(t, report.Hunks[0].Decisions, 1)
	assert.False(t, report.Hunks[0].Decisions[0].Apply)
	assert.Equal(t, "comment-only-hunks", report.Hunks[0].Decisions[0].Predicate)
	assert.False(t, report.FullyApplied())
}

func TestApplyCommentFilterPartialSuppression(t *testing.T) {
	oldText := numberedText(10)
	newText := strings.Replace(oldText, "l5\n", "l5\n// note\ncode()\n", 1)
	p := mustPatch(t, oldText, newText, 2)

	filters := &FilterChain{Predicates: []Predicate{CommentOnlyHunkPredicate{}}}
	got, report, err := Apply(p, oldText, ApplyOptions{Filters: filters})
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(oldText, "l5\n", "l5\ncode()\n", 1), got,
		"the code line lands, the comment line does not")
	assert.Equal(t, HunkPartiallySuppressed, report.Hunks[0].Status)

	applied, suppressed, partial, notFound := report.Counts()
	assert.Equal(t, [4]int{0, 0, 1, 0}, [4]int{applied, suppressed, partial, notFound})
}

func TestApplyHunkNotFound(t *testing.T) {
	p := mustPatch(t, "a\nb\nc\n", "a\nx\nc\n", 3)

	target := "entirely\nunrelated\ncontent\n"
	got, report, err := Apply(p, target, ApplyOptions{})
	require.NoError(t, err, "relocation failure is reported, not returned")
	assert.Equal(t, target, got)
	require.Len(t, report.Hunks, 1)
	assert.Equal(t, HunkNotFound, report.Hunks[0].Status)
	assert.Equal(t, -1, report.Hunks[0].Anchor)
	assert.False(t, report.FullyApplied())
}

func TestApplyRemovalLineMissingBecomesReject(t *testing.T) {
	oldText := numberedText(8)
	newText := strings.Replace(oldText, "l4\n", "", 1)
	p := mustPatch(t, oldText, newText, 2)

	// l4 was already rewritten in the target, so the removal has nothing
	// to delete. The rest of the hunk still counts as applied.
	target := strings.Replace(oldText, "l4\n", "rewritten\n", 1)
	got, report, err := Apply(p, target, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, target, got)
	require.Len(t, report.Hunks, 1)
	require.Len(t, report.Hunks[0].Rejects, 1)
	assert.Equal(t, "l4", report.Hunks[0].Rejects[0].Text)
	assert.Equal(t, HunkPartiallySuppressed, report.Hunks[0].Status,
		"a rejected removal means the hunk did not fully land")
	assert.False(t, report.FullyApplied())
}

func TestApplyMultipleHunksAccumulateDrift(t *testing.T) {
	oldText := numberedText(40)
	newText := strings.Replace(oldText, "l5\n", "l5\ninserted-a\ninserted-b\n", 1)
	newText = strings.Replace(newText, "l30\n", "thirty\n", 1)
	p := mustPatch(t, oldText, newText, 2)
	require.Len(t, p.Hunks, 2)

	got, report, err := Apply(p, oldText, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, newText, got)
	assert.Equal(t, HunkApplied, report.Hunks[0].Status)
	assert.Equal(t, HunkApplied, report.Hunks[1].Status)
	assert.True(t, report.FullyApplied())
}

func TestApplyIsIdempotentOnResult(t *testing.T) {
	oldText := numberedText(10)
	newText := strings.Replace(oldText, "l5\n", "l5\nadded\n", 1)
	p := mustPatch(t, oldText, newText, 2)

	once, _, err := Apply(p, oldText, ApplyOptions{})
	require.NoError(t, err)
	require.Equal(t, newText, once)

	// Reapplying inserts the line again; the engine does not dedupe, it
	// reports. The result still contains both copies at the anchor.
	twice, report, err := Apply(p, once, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, strings.Count(newText, "added")+1, strings.Count(twice, "added"))
	require.Len(t, report.Hunks, 1)
	assert.NotEqual(t, HunkNotFound, report.Hunks[0].Status)
}

func TestApplyPreservesMissingFinalNewline(t *testing.T) {
	p := mustPatch(t, "a\nb\nc", "a\nx\nc", 1)

	got, _, err := Apply(p, "a\nb\nc", ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a\nx\nc", got)
}

func TestApplyResourceLimit(t *testing.T) {
	p := mustPatch(t, "a\nb\n", "a\nx\n", 1)

	_, _, err := Apply(p, numberedText(100), ApplyOptions{MaxTargetLines: 50})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceLimit)

	_, _, err = Apply(p, numberedText(100), ApplyOptions{MaxTargetLines: 0})
	assert.NoError(t, err, "zero means unlimited")
}

func TestApplyRejectsInvalidTarget(t *testing.T) {
	p := mustPatch(t, "a\n", "b\n", 1)
	_, _, err := Apply(p, "\xff\xfe", ApplyOptions{})
	assert.ErrorIs(t, err, ErrInput)
}

func TestApplyEmptyPatch(t *testing.T) {
	p := mustPatch(t, "a\nb\n", "a\nb\n", 1)
	require.Empty(t, p.Hunks)

	got, report, err := Apply(p, "a\nb\n", ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", got)
	assert.Empty(t, report.Hunks)
	assert.True(t, report.FullyApplied())
}

func TestApplyAfterSerializeRoundTrip(t *testing.T) {
	oldText := numberedText(12)
	newText := strings.Replace(oldText, "l7\n", "seven\n", 1)
	p := mustPatch(t, oldText, newText, 2)

	parsed, err := ParsePatch(Serialize(p))
	require.NoError(t, err)

	got, report, err := Apply(parsed, oldText, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, newText, got)
	assert.True(t, report.FullyApplied())
}
