package mpatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPatchPlain(t *testing.T) {
	p, err := GeneratePatch("a\nb\nc\n", "a\nx\nc\n", "file.txt", 1)
	require.NoError(t, err)

	out := RenderPatch(p, false)
	assert.Contains(t, out, "source file.txt")
	assert.Contains(t, out, "@@ hunk 1: lines 1-3 @@")
	assert.Contains(t, out, "-b\n")
	assert.Contains(t, out, "+x\n")
	assert.Contains(t, out, " a\n")
	assert.NotContains(t, out, "\033[", "plain output carries no escape codes")
}

func TestRenderReportPlain(t *testing.T) {
	p, err := GeneratePatch("a\nb\nc\n", "a\nx\nc\n", "file.txt", 1)
	require.NoError(t, err)

	_, report, err := Apply(p, "a\nb\nc\n", ApplyOptions{})
	require.NoError(t, err)

	out := RenderReport(report, false)
	assert.Contains(t, out, "1 applied, 0 suppressed, 0 partial, 0 not found")
	assert.Contains(t, out, "applied at line 1")

	_, report, err = Apply(p, "nothing\nhere\n", ApplyOptions{})
	require.NoError(t, err)
	out = RenderReport(report, false)
	assert.Contains(t, out, "not found")
	assert.True(t, strings.HasPrefix(out, "patch "+report.PatchID))
}
