package block

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/jamessynge/outlinemerge/dm"
)

// ErrScriptMismatch reports an edit script from the diff engine that does
// not turn the base sequence into the other one.
var ErrScriptMismatch = errors.New("edit script does not match inputs")

// DiffBlocks diffs two block sequences with a fresh Encoder and the default
// engine.
func DiffBlocks(base, other []*Block) (Anchors, error) {
	return NewEncoder().DiffBlocks(base, other)
}

// DiffBlocks diffs other against base a block at a time, and groups the
// result by base position (see Anchors).
func (e *Encoder) DiffBlocks(base, other []*Block) (Anchors, error) {
	if err := Validate(base); err != nil {
		return nil, errors.Wrap(err, "base blocks")
	}
	if err := Validate(other); err != nil {
		return nil, errors.Wrap(err, "other blocks")
	}
	baseRunes, err := e.Encode(base)
	if err != nil {
		return nil, err
	}
	otherRunes, err := e.Encode(other)
	if err != nil {
		return nil, err
	}

	// The edit script over symbols is already coalesced by the engine.
	// Semantic cleanup is deliberately not applied: at this granularity it
	// would turn unchanged blocks between edits into delete and reinsert.
	diffs := e.engine.DiffMainRunes(baseRunes, otherRunes, false)
	anchors, err := decode(diffs, base, other, baseRunes, otherRunes)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("DiffBlocks: %d base blocks, %d other blocks, %d diffs",
		len(base), len(other), len(diffs))
	if glog.V(2) {
		glog.Infof("DiffBlocks anchors:\n%s", anchors)
	}
	return anchors, nil
}

// decode walks the edit script with a cursor into each input, turning
// each symbol back into the block at that cursor. An edit script that does
// not reproduce both inputs is reported as ErrScriptMismatch.
func decode(diffs []dm.Diff, base, other []*Block, baseRunes, otherRunes []rune) (Anchors, error) {
	anchors := make(Anchors, len(base)+1)
	bi, oi := 0, 0
	for _, d := range diffs {
		for _, r := range d.Text {
			switch d.Type {
			case dm.DiffEqual:
				if bi >= len(base) || oi >= len(other) || baseRunes[bi] != r || otherRunes[oi] != r {
					return nil, errors.Wrapf(ErrScriptMismatch,
						"Equal symbol %U out of step at base %d, other %d", r, bi, oi)
				}
				op := Equal(base[bi], other[oi])
				bi++
				oi++
				anchors[bi].Outcome = &op
			case dm.DiffDelete:
				if bi >= len(base) || baseRunes[bi] != r {
					return nil, errors.Wrapf(ErrScriptMismatch,
						"Delete symbol %U out of step at base %d", r, bi)
				}
				op := Delete(base[bi])
				bi++
				anchors[bi].Outcome = &op
			case dm.DiffInsert:
				if oi >= len(other) || otherRunes[oi] != r {
					return nil, errors.Wrapf(ErrScriptMismatch,
						"Insert symbol %U out of step at other %d", r, oi)
				}
				anchors[bi].Inserts = append(anchors[bi].Inserts, Insert(other[oi]))
				oi++
			}
		}
	}
	if bi != len(base) || oi != len(other) {
		return nil, errors.Wrapf(ErrScriptMismatch, "consumed %d of %d base and %d of %d other blocks",
			bi, len(base), oi, len(other))
	}
	return anchors, nil
}

// InsertOnlyOps returns the operations of b that add something beyond a:
// blocks with no counterpart in a, and blocks whose counterpart in a is a
// different version (same logical block, different body or level). Both
// lists are typically the inserts two branches made at one anchor.
func (e *Encoder) InsertOnlyOps(a, b []Op) ([]Op, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(a) == 0 {
		return append([]Op(nil), b...), nil
	}
	anchors, err := e.DiffBlocks(opBlocks(a), opBlocks(b))
	if err != nil {
		return nil, errors.Wrap(err, "InsertOnlyOps")
	}

	// Map back to b's ops, keeping their notes.
	byBlock := make(map[*Block]Op, len(b))
	for _, op := range b {
		if _, ok := byBlock[op.Block]; !ok {
			byBlock[op.Block] = op
		}
	}
	var result []Op
	for _, anchor := range anchors {
		if o := anchor.Outcome; o != nil && o.Changed() {
			result = append(result, byBlock[o.Block])
		}
		for _, op := range anchor.Inserts {
			result = append(result, byBlock[op.Block])
		}
	}
	return result, nil
}

func opBlocks(ops []Op) []*Block {
	blocks := make([]*Block, len(ops))
	for i, op := range ops {
		blocks[i] = op.Block
	}
	return blocks
}
