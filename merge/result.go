package merge

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"

	"github.com/jamessynge/outlinemerge/block"
)

// NoteKind classifies a merge diagnostic.
type NoteKind int

const (
	// NoteFork: conflicting bodies were kept as separate blocks.
	NoteFork NoteKind = iota
	// NoteDiscarded: a conflicting body or edit was dropped by policy.
	NoteDiscarded
	// NoteLevelConflict: branches moved a block to different levels.
	NoteLevelConflict
	// NoteIdentityFold: inserted copies of one identity had different
	// bodies, which were merged.
	NoteIdentityFold
	// NoteNoOutcome: no branch reported what happened to a base block.
	NoteNoOutcome
)

func (k NoteKind) String() string {
	switch k {
	case NoteFork:
		return "fork"
	case NoteDiscarded:
		return "discarded"
	case NoteLevelConflict:
		return "level-conflict"
	case NoteIdentityFold:
		return "identity-fold"
	case NoteNoOutcome:
		return "no-outcome"
	}
	return fmt.Sprintf("NoteKind(%d)", int(k))
}

// Note is a non-fatal diagnostic about one anchor of a merge.
type Note struct {
	Anchor  int
	Kind    NoteKind
	Message string
}

func (n Note) String() string {
	return fmt.Sprintf("anchor %d: %s: %s", n.Anchor, n.Kind, n.Message)
}

// Group holds the merged operations for one anchor. Group 0 holds blocks
// inserted before the first base block; group k (k > 0) starts with the
// outcome of base block k-1.
type Group struct {
	Anchor int
	Base   *block.Block
	Ops    []block.Op
}

// Result is the outcome of a merge: one Group per anchor, in base order,
// plus the diagnostics raised along the way.
type Result struct {
	Groups []Group
	Notes  []Note
}

// Ops concatenates the operations of all groups.
func (r *Result) Ops() []block.Op {
	var ops []block.Op
	for _, g := range r.Groups {
		ops = append(ops, g.Ops...)
	}
	return ops
}

// Blocks returns the merged document: every block not deleted, in order.
func (r *Result) Blocks() []*block.Block {
	return lo.FilterMap(r.Ops(), func(op block.Op, _ int) (*block.Block, bool) {
		return op.Block, op.Type != block.OpDelete
	})
}

// HasForks reports whether any conflicting edit was kept as a separate
// block.
func (r *Result) HasForks() bool {
	return lo.ContainsBy(r.Notes, func(n Note) bool { return n.Kind == NoteFork })
}

// Counts returns the number of operations of each type.
func (r *Result) Counts() map[block.OpType]int {
	return lo.CountValuesBy(r.Ops(), func(op block.Op) block.OpType { return op.Type })
}

func (r *Result) String() string {
	var sb strings.Builder
	for _, g := range r.Groups {
		for _, op := range g.Ops {
			fmt.Fprintf(&sb, "%d: %v\n", g.Anchor, op)
		}
	}
	for _, n := range r.Notes {
		fmt.Fprintf(&sb, "note %v\n", n)
	}
	return sb.String()
}

func (r *Result) SDumpToDepth(depth int) string {
	var cs spew.ConfigState = spew.Config
	cs.MaxDepth = depth
	return cs.Sdump(r)
}
