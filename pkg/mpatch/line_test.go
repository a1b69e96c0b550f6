package mpatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineBuffer(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLines []string
	}{
		{
			name:      "trailing newline",
			text:      "a\nb\nc\n",
			wantLines: []string{"a", "b", "c"},
		},
		{
			name:      "no trailing newline",
			text:      "a\nb\nc",
			wantLines: []string{"a", "b", "c"},
		},
		{
			name:      "empty text",
			text:      "",
			wantLines: nil,
		},
		{
			name:      "single newline",
			text:      "\n",
			wantLines: []string{""},
		},
		{
			name:      "blank lines preserved",
			text:      "a\n\n\nb\n",
			wantLines: []string{"a", "", "", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewLineBuffer(tt.text)
			require.NoError(t, err)
			assert.Equal(t, len(tt.wantLines), buf.Len())
			for i, want := range tt.wantLines {
				assert.Equal(t, want, buf.Text(i))
				assert.Equal(t, i, buf.Lines()[i].Index)
			}
		})
	}
}

func TestNewLineBufferRejectsInvalidUTF8(t *testing.T) {
	_, err := NewLineBuffer("ok\n\xff\xfe\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
}

func TestRenderRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"\n",
		"a",
		"a\n",
		"a\nb\nc\n",
		"a\nb\nc",
		"a\n\n\nz",
		"héllo\nwörld\n",
	}
	for _, text := range texts {
		buf, err := NewLineBuffer(text)
		require.NoError(t, err)
		assert.Equal(t, text, buf.Render(), "round trip for %q", text)
	}
}
