package block

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// OpType is the kind of a block operation.
type OpType int8

const (
	OpEqual OpType = iota
	OpDelete
	OpInsert
)

func (t OpType) String() string {
	switch t {
	case OpEqual:
		return "Equal"
	case OpDelete:
		return "Delete"
	case OpInsert:
		return "Insert"
	}
	return fmt.Sprintf("OpType(%d)", int8(t))
}

// Op is one block level edit.
//
//   Equal:  Base is the base block, Block the other side's version of it
//           (same logical block, possibly with a different body or level).
//   Delete: Base and Block are both the removed base block.
//   Insert: Block is the new block; Base is nil.
//
// Note carries a human readable diagnostic, set on inserts produced by
// conflict handling.
type Op struct {
	Type  OpType
	Block *Block
	Base  *Block
	Note  string
}

func Equal(base, other *Block) Op {
	return Op{Type: OpEqual, Block: other, Base: base}
}

func Delete(base *Block) Op {
	return Op{Type: OpDelete, Block: base, Base: base}
}

func Insert(b *Block) Op {
	return Op{Type: OpInsert, Block: b}
}

// WithNote returns a copy of o carrying note.
func (o Op) WithNote(note string) Op {
	o.Note = note
	return o
}

// Changed reports whether an Equal op's block differs from its base.
func (o Op) Changed() bool {
	return o.Type == OpEqual && !o.Block.Identical(o.Base)
}

func (o Op) String() string {
	s := fmt.Sprintf("%s %v", o.Type, o.Block)
	if o.Changed() {
		s += fmt.Sprintf(" (was %v)", o.Base)
	}
	if o.Note != "" {
		s += " // " + o.Note
	}
	return s
}

// Anchor groups the operations attached to one position of the base
// sequence: the outcome of the base block at that position (Equal or
// Delete), and the blocks inserted right after it.
type Anchor struct {
	Outcome *Op
	Inserts []Op
}

// Anchors has one Anchor per base block plus a leading one; Anchors[0]
// holds the inserts before the first base block and has no Outcome, and
// Anchors[k] belongs to base block k-1.
type Anchors []Anchor

// Ops concatenates the operations of all anchors in order.
func (a Anchors) Ops() []Op {
	var ops []Op
	for _, anchor := range a {
		if anchor.Outcome != nil {
			ops = append(ops, *anchor.Outcome)
		}
		ops = append(ops, anchor.Inserts...)
	}
	return ops
}

// HasChanges reports whether any anchor records an insert, a delete or a
// changed block.
func (a Anchors) HasChanges() bool {
	for _, op := range a.Ops() {
		if op.Type != OpEqual || op.Changed() {
			return true
		}
	}
	return false
}

func (a Anchors) String() string {
	var sb strings.Builder
	for k, anchor := range a {
		if anchor.Outcome == nil && len(anchor.Inserts) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "anchor %d:\n", k)
		if anchor.Outcome != nil {
			fmt.Fprintf(&sb, "  %v\n", *anchor.Outcome)
		}
		for _, op := range anchor.Inserts {
			fmt.Fprintf(&sb, "  %v\n", op)
		}
	}
	return sb.String()
}

func (a Anchors) SDumpToDepth(depth int) string {
	var cs spew.ConfigState = spew.Config
	cs.MaxDepth = depth
	return cs.Sdump(a)
}
