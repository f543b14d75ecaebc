package merge

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/samber/lo"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/dm"
)

// Consolidate removes duplicates from the blocks inserted at one anchor,
// keeping first-occurrence order:
//
//   - a block without identity whose body was already inserted is dropped;
//   - a block whose identity was already inserted is not emitted again; if
//     its body differs, the bodies of all such copies are merged line by
//     line into the first copy, and if its level differs the first copy's
//     level is kept and a NoteLevelConflict recorded.
func Consolidate(engine *dm.Engine, anchor int, inserts []block.Op) ([]block.Op, []Note) {
	var result []block.Op
	var notes []Note
	bodyIndex := make(map[string]int)
	identityIndex := make(map[string]int)
	// Distinct bodies seen for the identity of result[i], first one first.
	variants := make(map[int][]string)

	for _, op := range inserts {
		b := op.Block
		if !b.HasIdentity() {
			if _, ok := bodyIndex[b.Body]; ok {
				glog.V(1).Infof("Consolidate: anchor %d: dropping duplicate insert %v", anchor, b)
				continue
			}
			bodyIndex[b.Body] = len(result)
			result = append(result, op)
			continue
		}
		if i, ok := identityIndex[b.Identity]; ok {
			if first := result[i].Block; b.Level != first.Level {
				msg := fmt.Sprintf("inserted %v at level %d; kept level %d", b, b.Level, first.Level)
				notes = append(notes, Note{Anchor: anchor, Kind: NoteLevelConflict, Message: msg})
				glog.V(1).Infof("Consolidate: anchor %d: %s", anchor, msg)
			}
			if !lo.Contains(variants[i], b.Body) {
				variants[i] = append(variants[i], b.Body)
			}
			continue
		}
		i := len(result)
		identityIndex[b.Identity] = i
		variants[i] = []string{b.Body}
		if _, ok := bodyIndex[b.Body]; !ok {
			bodyIndex[b.Body] = i
		}
		result = append(result, op)
	}

	for i := range result {
		bodies := variants[i]
		if len(bodies) < 2 {
			continue
		}
		folded := bodies[0]
		for _, body := range bodies[1:] {
			folded = foldBodies(engine, folded, body)
		}
		merged := result[i].Block.Clone()
		merged.Body = folded
		merged.Origin = block.OriginBranch
		msg := fmt.Sprintf("merged %d versions of block %s", len(bodies), merged.Identity)
		result[i] = block.Insert(merged).WithNote(msg)
		notes = append(notes, Note{Anchor: anchor, Kind: NoteIdentityFold, Message: msg})
		glog.V(1).Infof("Consolidate: anchor %d: %s", anchor, msg)
	}
	return result, notes
}

// foldBodies merges two versions of a block's text a line at a time,
// keeping every line from both: common lines once, lines only in a before
// lines only in b where they were changed in the same place.
func foldBodies(engine *dm.Engine, a, b string) string {
	trailing := strings.HasSuffix(a, "\n")
	if !trailing {
		a += "\n"
	}
	if !strings.HasSuffix(b, "\n") {
		b += "\n"
	}
	runes1, runes2, lines := dm.DiffLinesToRunes(a, b)
	diffs := dm.DiffRunesToLines(engine.DiffMainRunes(runes1, runes2, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		sb.WriteString(d.Text)
	}
	folded := sb.String()
	if !trailing {
		folded = strings.TrimSuffix(folded, "\n")
	}
	return folded
}
