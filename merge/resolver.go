package merge

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/jamessynge/outlinemerge/block"
)

// branchOutcome is what one branch did with a base block: an Equal
// (kept, possibly edited) or a Delete.
type branchOutcome struct {
	branch int
	op     block.Op
}

// resolution is the merged outcome for one base block: the op to emit (nil
// if there is none), fork inserts to place right after it, and notes.
type resolution struct {
	outcome *block.Op
	forks   []block.Op
	notes   []Note
}

type resolver struct {
	config Config
}

// resolve combines the outcomes every branch reported for the base block at
// anchor. Fields are merged independently, so branches that changed
// different fields (one the body, another the level) are both honored.
func (r *resolver) resolve(anchor int, base *block.Block, outcomes []branchOutcome) resolution {
	var res resolution
	note := func(kind NoteKind, format string, args ...interface{}) {
		res.notes = append(res.notes, Note{Anchor: anchor, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	if len(outcomes) == 0 {
		glog.Warningf("resolve: no branch reported an outcome for anchor %d (%v)", anchor, base)
		note(NoteNoOutcome, "no branch reported an outcome for %v", base)
		return res
	}

	var equals, deletes []branchOutcome
	for _, o := range outcomes {
		if o.op.Type == block.OpDelete {
			deletes = append(deletes, o)
		} else {
			equals = append(equals, o)
		}
	}

	if len(deletes) > 0 {
		var edits []branchOutcome
		for _, o := range equals {
			if o.op.Changed() {
				edits = append(edits, o)
			}
		}
		if r.config.Deletes == DeletesWin || len(edits) == 0 {
			for _, o := range edits {
				note(NoteDiscarded, "branch %d edited %v, which branch %d deleted",
					o.branch, base, deletes[0].branch)
			}
			op := block.Delete(base)
			res.outcome = &op
			return res
		}
		glog.V(1).Infof("resolve: anchor %d: edits in %d branches beat deletes in %d",
			anchor, len(edits), len(deletes))
		equals = edits
	}

	if r.config.Conflicts == LastWins {
		for i, j := 0, len(equals)-1; i < j; i, j = i+1, j-1 {
			equals[i], equals[j] = equals[j], equals[i]
		}
	}

	merged := base.Clone()
	bodyFrom, levelFrom := -1, -1
	changed := false
	for _, o := range equals {
		b := o.op.Block
		if b.Body != base.Body {
			switch {
			case bodyFrom == -1:
				merged.Body = b.Body
				bodyFrom = o.branch
				changed = true
			case b.Body == merged.Body:
				// Same edit made twice.
			case r.config.Conflicts == Fork:
				res.addFork(b, o.branch, bodyFrom)
				note(NoteFork, "branch %d changed %v to %q, which conflicts with branch %d",
					o.branch, base, b.Body, bodyFrom)
			default:
				note(NoteDiscarded, "branch %d changed %v to %q; kept branch %d's edit (%s)",
					o.branch, base, b.Body, bodyFrom, r.config.Conflicts)
			}
		}
		if b.Level != base.Level {
			switch {
			case levelFrom == -1:
				merged.Level = b.Level
				levelFrom = o.branch
				changed = true
			case b.Level != merged.Level:
				note(NoteLevelConflict, "branch %d moved %v to level %d; kept level %d from branch %d",
					o.branch, base, b.Level, merged.Level, levelFrom)
			}
		}
		if !merged.HasIdentity() && b.HasIdentity() {
			merged.Identity = b.Identity
			changed = true
		}
	}
	if changed {
		merged.Origin = block.OriginBranch
	}
	op := block.Equal(base, merged)
	res.outcome = &op
	return res
}

// addFork records b as a separate block after the resolved one, unless the
// same body has already been forked.
func (res *resolution) addFork(b *block.Block, branch, winner int) {
	for _, f := range res.forks {
		if f.Block.Body == b.Body {
			return
		}
	}
	fork := b.Clone()
	// One identity must not label two blocks; the fork gets a new one later.
	fork.Identity = ""
	fork.Origin = block.OriginBranch
	res.forks = append(res.forks, block.Insert(fork).WithNote(
		fmt.Sprintf("conflicting edit from branch %d (branch %d's edit kept above)", branch, winner)))
}
