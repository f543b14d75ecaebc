// Package merge combines any number of edited versions (branches) of an
// outline with the version they all started from (the base), a block at a
// time.
//
// Each branch is diffed against the base with the block package, and the
// per-branch results are lined up by base position (anchor). At each anchor
// the outcomes of the base block are resolved into one, and the blocks the
// branches inserted after it are combined and deduplicated. Conflicting
// edits never fail a merge: they are kept, or dropped by an explicit
// policy, and reported as Notes.
package merge

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/dm"
)

// Merger runs merges according to a Config. It holds no per-merge state,
// so one Merger may run any number of merges, concurrently if need be.
type Merger struct {
	config   Config
	engine   *dm.Engine
	resolver resolver
}

func NewMerger(config Config) *Merger {
	var options []dm.EngineOption
	if config.Clock != nil {
		options = append(options, dm.WithClock(config.Clock))
	}
	return &Merger{
		config:   config,
		engine:   dm.NewEngine(config.Differencer, options...),
		resolver: resolver{config: config},
	}
}

// MergeBlocks merges branches into base with the default Config.
func MergeBlocks(base []*block.Block, branches [][]*block.Block) (*Result, error) {
	return NewMerger(DefaultConfig()).Merge(base, branches)
}

func (m *Merger) Engine() *dm.Engine {
	return m.engine
}

// Merge merges every branch into base. It fails only on bad input; merge
// conflicts are reported in the Result's Notes.
func (m *Merger) Merge(base []*block.Block, branches [][]*block.Block) (*Result, error) {
	if len(branches) == 0 {
		return nil, errors.Wrap(dm.ErrInvalidInput, "no branches to merge")
	}
	if err := block.Validate(base); err != nil {
		return nil, errors.Wrap(err, "base")
	}
	for i, branch := range branches {
		if err := block.Validate(branch); err != nil {
			return nil, errors.Wrapf(err, "branch %d", i)
		}
	}
	glog.Infof("Merge: %d base blocks, %d branches", len(base), len(branches))

	// One encoder for the whole merge, so that all branches share symbols.
	enc := block.NewEncoder(block.WithEngine(m.engine))
	perBranch := make([]block.Anchors, len(branches))
	for i, branch := range branches {
		anchors, err := enc.DiffBlocks(base, branch)
		if err != nil {
			return nil, errors.Wrapf(err, "diffing branch %d", i)
		}
		perBranch[i] = anchors
	}

	result := &Result{Groups: make([]Group, 0, len(base)+1)}
	for k := 0; k <= len(base); k++ {
		var outcomes []branchOutcome
		var inserts []block.Op
		for i := range branches {
			anchor := perBranch[i][k]
			if anchor.Outcome != nil {
				outcomes = append(outcomes, branchOutcome{branch: i, op: *anchor.Outcome})
			}
			more, err := enc.InsertOnlyOps(inserts, anchor.Inserts)
			if err != nil {
				return nil, errors.Wrapf(err, "combining inserts of branch %d at anchor %d", i, k)
			}
			inserts = append(inserts, more...)
		}

		group := Group{Anchor: k}
		if k > 0 {
			group.Base = base[k-1]
			res := m.resolver.resolve(k, base[k-1], outcomes)
			if res.outcome != nil {
				group.Ops = append(group.Ops, *res.outcome)
			}
			result.Notes = append(result.Notes, res.notes...)
			// Forks go right after the block they were forked from.
			inserts = append(res.forks, inserts...)
		}
		consolidated, notes := Consolidate(m.engine, k, inserts)
		group.Ops = append(group.Ops, consolidated...)
		result.Notes = append(result.Notes, notes...)
		if glog.V(1) && len(group.Ops) > 0 {
			glog.Infof("Merge: anchor %d: %d ops", k, len(group.Ops))
		}
		result.Groups = append(result.Groups, group)
	}

	if glog.V(2) {
		glog.Infof("Merge result:\n%s", result.SDumpToDepth(4))
	}
	glog.Infof("Merge: %d ops, %d notes", len(result.Ops()), len(result.Notes))
	return result, nil
}
