package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamessynge/outlinemerge/block"
)

func writeDoc(t *testing.T, dir, name string, blocks ...*block.Block) string {
	t.Helper()
	fileName := filepath.Join(dir, name)
	f, err := os.Create(fileName)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, block.WriteDocument(f, blocks))
	return fileName
}

func run(t *testing.T, args ...string) (string, CmdStatus, error) {
	t.Helper()
	a := &app{}
	root := newRootCommand(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return out.String(), a.status, err
}

type fixture struct {
	dir, base, ours, theirs string
}

func newFixture(t *testing.T) fixture {
	dir := t.TempDir()
	return fixture{
		dir: dir,
		base: writeDoc(t, dir, "base.yaml",
			&block.Block{Identity: "t", Body: "Todo ((id))"},
			&block.Block{Body: "milk", Level: 1},
			&block.Block{Body: "eggs", Level: 1}),
		ours: writeDoc(t, dir, "ours.yaml",
			&block.Block{Identity: "t", Body: "Todo ((id))"},
			&block.Block{Body: "milk", Level: 1},
			&block.Block{Body: "eggs", Level: 1},
			&block.Block{Body: "bread", Level: 1}),
		theirs: writeDoc(t, dir, "theirs.yaml",
			&block.Block{Identity: "t", Body: "Shopping ((id))"},
			&block.Block{Body: "eggs", Level: 1}),
	}
}

func TestDiffCommand(t *testing.T) {
	fx := newFixture(t)
	out, status, err := run(t, "diff", fx.base, fx.theirs)
	require.NoError(t, err)
	assert.Equal(t, FoundDifferences, status)
	assert.Contains(t, out, "-\tTodo ((id))\n+\tShopping ((id))\n")
	assert.Contains(t, out, "-\t  milk\n")

	out, _, err = run(t, "diff", "--side-by-side", "--line-numbers", "--width=41", fx.base, fx.theirs)
	require.NoError(t, err)
	// 41 columns: 1 digit each side, so 17 per text column.
	assert.Contains(t, out, fmt.Sprintf("1 %-17s ! %-17s 1\n", "Todo ((id))", "Shopping ((id))"))
	assert.Contains(t, out, fmt.Sprintf("2 %-17s < %-17s  \n", "  milk", ""))

	out, status, err = run(t, "diff", "--brief", fx.base, fx.base)
	require.NoError(t, err)
	assert.Equal(t, NoDifferences, status)
	assert.Empty(t, out)
}

func TestMergeCommandYAML(t *testing.T) {
	fx := newFixture(t)
	out, status, err := run(t, "merge", fx.base, fx.ours, fx.theirs)
	require.NoError(t, err)
	assert.Equal(t, NoDifferences, status)

	merged, err := block.ReadDocument(strings.NewReader(out), block.OriginUnknown)
	require.NoError(t, err)
	var bodies []string
	for _, b := range merged {
		bodies = append(bodies, b.Body)
	}
	assert.Equal(t, []string{"Shopping ((id))", "eggs", "bread"}, bodies)
	assert.Equal(t, "t", merged[0].Identity)
}

func TestMergeCommandOutline(t *testing.T) {
	fx := newFixture(t)
	out, _, err := run(t, "merge", "--format=outline", "--bullet=* ", fx.base, fx.ours, fx.theirs)
	require.NoError(t, err)
	assert.Equal(t, "* Shopping t\n  * eggs\n  * bread\n", out)

	out, _, err = run(t, "merge", "--format=unified", fx.base, fx.ours, fx.theirs)
	require.NoError(t, err)
	assert.Contains(t, out, "+++ merged\n")
	for _, line := range []string{"-- Todo t\n", "-  - milk\n", "+- Shopping t\n", "+  - bread\n"} {
		assert.Contains(t, out, line)
	}
}

func TestMergeCommandConflicts(t *testing.T) {
	fx := newFixture(t)
	other := writeDoc(t, fx.dir, "other.yaml",
		&block.Block{Identity: "t", Body: "Errands ((id))"},
		&block.Block{Body: "milk", Level: 1},
		&block.Block{Body: "eggs", Level: 1})

	out, status, err := run(t, "merge", "--format=interleaved", fx.base, fx.theirs, other)
	require.NoError(t, err)
	assert.Equal(t, FoundDifferences, status)
	assert.Contains(t, out, "+\tErrands ((id))\n")
	assert.Contains(t, out, ": fork: ")

	configFile := filepath.Join(fx.dir, "merge.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
conflict-policy = "first-wins"

[differencer]
timeout = "0s"
`), 0o644))
	out, _, err = run(t, "merge", "--config", configFile, "--format=interleaved", fx.base, fx.theirs, other)
	require.NoError(t, err)
	assert.NotContains(t, out, "+\tErrands ((id))\n")
	assert.Contains(t, out, ": discarded: ")

	// The command line beats the config file.
	out, _, err = run(t, "merge", "--conflict-policy=last-wins", "--config", configFile,
		"--format=outline", fx.base, fx.theirs, other)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "- Errands t\n"), out)
}

func TestIdentitiesCommand(t *testing.T) {
	fx := newFixture(t)
	out, _, err := run(t, "identities", fx.base, fx.ours, fx.theirs)
	require.NoError(t, err)
	ids := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, ids, 3)
	assert.Equal(t, "t", ids[0])
	assert.NotEqual(t, ids[1], ids[2])
}

func TestCommandErrors(t *testing.T) {
	fx := newFixture(t)

	_, _, err := run(t, "merge", fx.base)
	assert.True(t, isUsageError(err), "err = %v", err)

	_, _, err = run(t, "diff", fx.base, fx.ours, fx.theirs)
	assert.True(t, isUsageError(err), "err = %v", err)

	_, _, err = run(t, "merge", "--format=pdf", fx.base, fx.ours)
	assert.True(t, isUsageError(err), "err = %v", err)

	_, _, err = run(t, "merge", fx.base, filepath.Join(fx.dir, "missing.yaml"))
	assert.Error(t, err)
	assert.False(t, isUsageError(err))

	bad := filepath.Join(fx.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("blocks:\n  - bogus: 1\n"), 0o644))
	_, _, err = run(t, "merge", fx.base, bad)
	assert.Error(t, err)

	configFile := filepath.Join(fx.dir, "bad.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("colour = true\n"), 0o644))
	_, _, err = run(t, "merge", "--config", configFile, fx.base, fx.ours)
	assert.Error(t, err)
}
