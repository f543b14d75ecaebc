package merge

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/dm"
)

func blk(id, body string) *block.Block {
	return &block.Block{Identity: id, Body: body}
}

func bodies(blocks []*block.Block) []string {
	result := make([]string, len(blocks))
	for i, b := range blocks {
		result[i] = b.Body
	}
	return result
}

func mustMerge(t *testing.T, config Config, base []*block.Block, branches ...[]*block.Block) *Result {
	t.Helper()
	result, err := NewMerger(config).Merge(base, branches)
	require.NoError(t, err)
	require.Len(t, result.Groups, len(base)+1)
	return result
}

func TestMergeIdempotent(t *testing.T) {
	base := []*block.Block{blk("1", "A"), blk("", "B"), {Identity: "3", Body: "C", Level: 1}}
	result, err := MergeBlocks(base, [][]*block.Block{base})
	require.NoError(t, err)

	merged := result.Blocks()
	require.Len(t, merged, len(base))
	for i := range base {
		assert.True(t, base[i].Identical(merged[i]), "block %d: %v != %v", i, base[i], merged[i])
	}
	assert.False(t, result.HasForks())
	assert.Empty(t, result.Notes)
	assert.Equal(t, map[block.OpType]int{block.OpEqual: 3}, result.Counts())
}

func TestMergeSingleEditor(t *testing.T) {
	base := []*block.Block{blk("1", "A"), blk("2", "X"), blk("3", "C")}
	edited := []*block.Block{blk("1", "A"), blk("2", "X edited"), blk("3", "C")}
	result := mustMerge(t, DefaultConfig(), base, edited, base)

	assert.Equal(t, []string{"A", "X edited", "C"}, bodies(result.Blocks()))
	assert.Empty(t, result.Notes)
	assert.Equal(t, block.OriginBranch, result.Blocks()[1].Origin)
}

func TestMergeFork(t *testing.T) {
	base := []*block.Block{blk("1", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("1", "B")},
		[]*block.Block{blk("1", "C")})

	ops := result.Groups[1].Ops
	require.Len(t, ops, 2)
	assert.Equal(t, block.OpEqual, ops[0].Type)
	assert.Equal(t, "B", ops[0].Block.Body)
	assert.Equal(t, "1", ops[0].Block.Identity)
	assert.Equal(t, block.OpInsert, ops[1].Type)
	assert.Equal(t, "C", ops[1].Block.Body)
	assert.False(t, ops[1].Block.HasIdentity())
	assert.NotEmpty(t, ops[1].Note)

	assert.True(t, result.HasForks())
	require.Len(t, result.Notes, 1)
	assert.Equal(t, NoteFork, result.Notes[0].Kind)
	assert.Equal(t, 1, result.Notes[0].Anchor)
}

func TestMergeForkDedup(t *testing.T) {
	base := []*block.Block{blk("1", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("1", "B")},
		[]*block.Block{blk("1", "C")},
		[]*block.Block{blk("1", "C")},
		[]*block.Block{blk("1", "B")})
	assert.Equal(t, []string{"B", "C"}, bodies(result.Blocks()))
}

func TestMergeConflictPolicies(t *testing.T) {
	base := []*block.Block{blk("1", "A")}
	branches := [][]*block.Block{{blk("1", "B")}, {blk("1", "C")}, {blk("1", "D")}}

	config := DefaultConfig()
	config.Conflicts = FirstWins
	result, err := NewMerger(config).Merge(base, branches)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, bodies(result.Blocks()))
	assert.False(t, result.HasForks())
	assert.Len(t, result.Notes, 2)

	config.Conflicts = LastWins
	result, err = NewMerger(config).Merge(base, branches)
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, bodies(result.Blocks()))
	for _, n := range result.Notes {
		assert.Equal(t, NoteDiscarded, n.Kind)
	}
}

func TestMergeDeletionLosesToEdit(t *testing.T) {
	base := []*block.Block{blk("1", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{},
		[]*block.Block{blk("1", "B")})
	assert.Equal(t, []string{"B"}, bodies(result.Blocks()))

	// An unchanged copy doesn't save the block from deletion.
	result = mustMerge(t, DefaultConfig(), base, []*block.Block{}, base)
	assert.Empty(t, result.Blocks())
	ops := result.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, block.Delete(base[0]), ops[0])

	config := DefaultConfig()
	config.Deletes = DeletesWin
	result = mustMerge(t, config, base, []*block.Block{}, []*block.Block{blk("1", "B")})
	assert.Empty(t, result.Blocks())
	require.Len(t, result.Notes, 1)
	assert.Equal(t, NoteDiscarded, result.Notes[0].Kind)
}

func TestMergeFieldsFromDifferentBranches(t *testing.T) {
	base := []*block.Block{blk("", "A"), blk("", "B")}
	moved := []*block.Block{blk("", "A"), {Body: "B", Level: 2}}
	named := []*block.Block{blk("", "A"), blk("7", "B")}
	result := mustMerge(t, DefaultConfig(), base, moved, named)

	merged := result.Blocks()
	require.Len(t, merged, 2)
	assert.Equal(t, "B", merged[1].Body)
	assert.Equal(t, 2, merged[1].Level)
	assert.Equal(t, "7", merged[1].Identity)
	assert.Empty(t, result.Notes)

	// Conflicting level changes keep the first and leave a note.
	other := []*block.Block{blk("", "A"), {Body: "B", Level: 1}}
	result = mustMerge(t, DefaultConfig(), base, moved, other)
	assert.Equal(t, 2, result.Blocks()[1].Level)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, NoteLevelConflict, result.Notes[0].Kind)
}

func TestMergeDuplicateInsertDedup(t *testing.T) {
	base := []*block.Block{blk("", "A"), blk("", "B")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("", "A"), blk("", "new"), blk("", "B")},
		[]*block.Block{blk("", "A"), blk("", "new"), blk("", "B")})
	assert.Equal(t, []string{"A", "new", "B"}, bodies(result.Blocks()))

	// Different inserts at one anchor are all kept, in branch order.
	result = mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("", "first"), blk("", "A"), blk("", "B")},
		[]*block.Block{blk("", "second"), blk("", "A"), blk("", "B")})
	assert.Equal(t, []string{"first", "second", "A", "B"}, bodies(result.Blocks()))
}

func TestMergeDuplicateIdentityFold(t *testing.T) {
	base := []*block.Block{blk("", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("", "A"), blk("X", "X")},
		[]*block.Block{blk("", "A"), blk("X", "Y")})

	merged := result.Blocks()
	require.Len(t, merged, 2)
	assert.Equal(t, "X", merged[1].Identity)
	assert.Equal(t, "X\nY", merged[1].Body)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, NoteIdentityFold, result.Notes[0].Kind)
}

func TestMergeIdentityFromFirstBranch(t *testing.T) {
	result := mustMerge(t, DefaultConfig(), []*block.Block{blk("", "A")},
		[]*block.Block{blk("X", "A")},
		[]*block.Block{blk("Y", "A")})
	merged := result.Blocks()
	require.Len(t, merged, 1)
	assert.Equal(t, "X", merged[0].Identity)
	assert.Empty(t, result.Notes)

	result = mustMerge(t, DefaultConfig(), []*block.Block{blk("", "A"), blk("", "A")},
		[]*block.Block{blk("X", "A"), blk("", "A")},
		[]*block.Block{blk("Y", "A"), blk("Z", "A")})
	merged = result.Blocks()
	require.Len(t, merged, 2)
	assert.Equal(t, "X", merged[0].Identity)
	assert.Equal(t, "Z", merged[1].Identity)
}

func TestMergeSingleSymbolBlocks(t *testing.T) {
	perRune := func(s string) []*block.Block {
		var result []*block.Block
		for _, r := range s {
			result = append(result, blk("", string(r)))
		}
		return result
	}
	// Repeated inserts at one anchor are deduplicated, so only check that
	// the merge completes with blocks drawn from the branch.
	branch := perRune("é😀éaa😀baa")
	result := mustMerge(t, DefaultConfig(), perRune("😀é😀éaéb😀"), branch)
	require.NotEmpty(t, result.Blocks())
	for _, body := range bodies(result.Blocks()) {
		assert.Contains(t, bodies(branch), body)
	}
}

func TestMergeDuplicateIdentityLevels(t *testing.T) {
	base := []*block.Block{blk("", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("", "A"), blk("X", "x")},
		[]*block.Block{blk("", "A"), {Identity: "X", Body: "x", Level: 1}})

	merged := result.Blocks()
	require.Len(t, merged, 2)
	assert.Equal(t, 0, merged[1].Level)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, NoteLevelConflict, result.Notes[0].Kind)
	assert.Equal(t, 1, result.Notes[0].Anchor)
}

func TestMergeInsertsBeforeFirstBlock(t *testing.T) {
	base := []*block.Block{blk("", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("", "top"), blk("", "A")},
		base)
	assert.Equal(t, []string{"top", "A"}, bodies(result.Blocks()))
	require.Len(t, result.Groups[0].Ops, 1)
	assert.Nil(t, result.Groups[0].Base)
}

func TestMergeRoundTripSingleBranch(t *testing.T) {
	base := []*block.Block{blk("", "A"), blk("", "B"), blk("", "C"), blk("", "D")}
	branch := []*block.Block{blk("", "A"), blk("", "C2"), blk("", "C"), blk("", "E"), blk("", "A")}
	result := mustMerge(t, DefaultConfig(), base, branch)
	if d := cmp.Diff(bodies(branch), bodies(result.Blocks())); d != "" {
		t.Errorf("merged blocks mismatch (-want +got):\n%s", d)
	}
}

func TestMergeInvalidInput(t *testing.T) {
	_, err := MergeBlocks(nil, nil)
	assert.True(t, errors.Is(err, dm.ErrInvalidInput), "err = %v", err)

	_, err = MergeBlocks([]*block.Block{nil}, [][]*block.Block{{}})
	assert.True(t, errors.Is(err, dm.ErrInvalidInput), "err = %v", err)

	_, err = MergeBlocks(nil, [][]*block.Block{{blk("", "a"), nil}})
	assert.True(t, errors.Is(err, dm.ErrInvalidInput), "err = %v", err)

	// A nil base is an empty document.
	result, err := MergeBlocks(nil, [][]*block.Block{{blk("", "a")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, bodies(result.Blocks()))
}

func TestMergeUnsupportedScale(t *testing.T) {
	base := make([]*block.Block, dm.MaxSymbols/2+1)
	branch := make([]*block.Block, dm.MaxSymbols/2+1)
	for i := range base {
		base[i] = blk("", fmt.Sprintf("base %d", i))
		branch[i] = blk("", fmt.Sprintf("branch %d", i))
	}
	_, err := MergeBlocks(base, [][]*block.Block{branch})
	assert.True(t, errors.Is(err, block.ErrUnsupportedScale), "err = %v", err)
}

func TestResolveNoOutcome(t *testing.T) {
	r := resolver{config: DefaultConfig()}
	res := r.resolve(3, blk("", "A"), nil)
	assert.Nil(t, res.outcome)
	require.Len(t, res.notes, 1)
	assert.Equal(t, NoteNoOutcome, res.notes[0].Kind)
	assert.Equal(t, 3, res.notes[0].Anchor)
}

func TestResultString(t *testing.T) {
	base := []*block.Block{blk("1", "A")}
	result := mustMerge(t, DefaultConfig(), base,
		[]*block.Block{blk("1", "B")},
		[]*block.Block{blk("1", "C")})
	s := result.String()
	assert.Contains(t, s, "Equal")
	assert.Contains(t, s, "Insert")
	assert.Contains(t, s, "note anchor 1: fork")
	assert.NotEmpty(t, result.SDumpToDepth(3))
}
