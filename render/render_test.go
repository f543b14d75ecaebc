package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/merge"
)

func TestOutline(t *testing.T) {
	blocks := []*block.Block{
		{Identity: "a1", Body: "Top ((id))"},
		{Body: "Child\nsecond line", Level: 1},
		{Body: "Grandchild", Level: 2},
	}
	want := "- Top a1\n" +
		"  - Child\n" +
		"    second line\n" +
		"    - Grandchild\n"
	assert.Equal(t, want, OutlineString(blocks, nil, DefaultOptions))

	opts := Options{IndentMarker: "\t", BulletMarker: "* ", IdentityPlaceholder: "((id))"}
	got := OutlineString(blocks[:1], []string{"zz"}, opts)
	assert.Equal(t, "* Top zz\n", got)

	// Without a placeholder the body is written as is.
	got = OutlineString(blocks[:1], []string{"zz"}, Options{BulletMarker: "- "})
	assert.Equal(t, "- Top ((id))\n", got)
}

func TestFormatInterleaved(t *testing.T) {
	base := []*block.Block{{Identity: "1", Body: "A"}, {Body: "B"}, {Body: "C"}}
	result, err := merge.MergeBlocks(base, [][]*block.Block{
		{{Identity: "1", Body: "A1"}, {Body: "C"}},
		{{Identity: "1", Body: "A2"}, {Body: "B"}, {Body: "C"}, {Body: "D", Level: 1}},
	})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, FormatInterleaved(&sb, result, DefaultOptions))
	want := "@@ -1 +1 @@\n" +
		"-\tA\n" +
		"+\tA1\n" +
		"@@ +1 @@\n" +
		"+\tA2\n" +
		"#\tconflicting edit from branch 1 (branch 0's edit kept above)\n" +
		"@@ -2 @@\n" +
		"-\tB\n" +
		"=\tC\n" +
		"@@ +3 @@\n" +
		"+\t  D\n" +
		"\n1 notes:\n"
	got := sb.String()
	assert.True(t, strings.HasPrefix(got, want), "got:\n%s", got)
	assert.Contains(t, got, "anchor 1: fork:")
	assert.NotContains(t, got, "\x1b[")
}

func TestFormatInterleavedLineNumbersAndColor(t *testing.T) {
	base := []*block.Block{{Body: "A"}}
	result, err := merge.MergeBlocks(base, [][]*block.Block{{{Body: "A"}, {Body: "B"}}})
	require.NoError(t, err)

	var sb strings.Builder
	opts := DefaultOptions
	opts.LineNumbers = true
	require.NoError(t, FormatInterleaved(&sb, result, opts))
	assert.Equal(t, "1 =\tA\n@@ +1 @@\n1 +\tB\n", sb.String())

	sb.Reset()
	opts.Color = true
	require.NoError(t, FormatInterleaved(&sb, result, opts))
	assert.Contains(t, sb.String(), "\x1b[32m")
}

func TestFormatAnchors(t *testing.T) {
	base := []*block.Block{{Body: "A"}, {Body: "B"}}
	anchors, err := block.DiffBlocks(base, []*block.Block{{Body: "new"}, {Body: "A"}})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, FormatAnchors(&sb, anchors, DefaultOptions))
	assert.Equal(t, "@@ +0 @@\n+\tnew\n=\tA\n@@ -2 @@\n-\tB\n", sb.String())
}

func TestUnifiedDiff(t *testing.T) {
	text, err := UnifiedDiff("base", "merged", "- A\n- B\n- C\n", "- A\n- B2\n- C\n", 1)
	require.NoError(t, err)
	assert.Equal(t, "--- base\n+++ merged\n@@ -1,3 +1,3 @@\n - A\n--- B\n+- B2\n - C\n", text)

	text, err = UnifiedDiff("base", "merged", "- A\n", "- A\n", 3)
	require.NoError(t, err)
	assert.Empty(t, text)
}
