package merge

import (
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jamessynge/outlinemerge/block"
)

// AttachIdentities assigns an identity to every block of the merged
// document (Result.Blocks), as needed before writing it back to storage.
// A block keeps its own identity. Otherwise it takes the identity at the
// same position in the first of perBranch that has one not already in use,
// and failing that a new one from fallback (uuid.NewString if nil).
func AttachIdentities(result *Result, perBranch [][]string, fallback func() string) []string {
	if fallback == nil {
		fallback = uuid.NewString
	}
	blocks := result.Blocks()
	used := lo.SliceToMap(
		lo.Filter(blocks, func(b *block.Block, _ int) bool { return b.HasIdentity() }),
		func(b *block.Block) (string, bool) { return b.Identity, true })

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		if b.HasIdentity() {
			ids[i] = b.Identity
			continue
		}
		for _, seq := range perBranch {
			if i < len(seq) && seq[i] != "" && !used[seq[i]] {
				ids[i] = seq[i]
				break
			}
		}
		if ids[i] == "" {
			ids[i] = fallback()
			glog.V(1).Infof("AttachIdentities: new identity %s for block %d", ids[i], i)
		}
		used[ids[i]] = true
	}
	return ids
}
