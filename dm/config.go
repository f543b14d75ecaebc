package dm

import (
	"time"

	"github.com/spf13/pflag"
)

// Guides the process of producing a diff, or making and applying patches.
// An Engine copies its config when created; changing the struct afterwards
// has no effect on that Engine.
type DifferencerConfig struct {
	// How long may a single diff search for a minimal result before
	// settling for a coarse one? Zero means no limit. Bounds each call
	// separately, so a caller making many calls may take a multiple of this.
	Timeout time.Duration `toml:"timeout"`

	// Cost of an empty edit operation in terms of edit characters; used by
	// the efficiency cleanup to decide when a short equality between edits
	// should be folded into them.
	EditCost int `toml:"edit-cost"`

	// At what point is no match declared when fuzzily locating a patch
	// (0.0 = perfection, 1.0 = very loose).
	MatchThreshold float64 `toml:"match-threshold"`

	// How far to search for a match (0 = exact location, 1000+ = broad
	// match). A match this many characters away from the expected location
	// adds 1.0 to the score (0.0 is a perfect match).
	MatchDistance int `toml:"match-distance"`

	// When deleting a large block of text (over ~64 characters), how close
	// do the contents have to be to match the expected contents (0.0 =
	// perfection, 1.0 = very loose). MatchThreshold controls how closely the
	// end points of a delete need to match.
	PatchDeleteThreshold float64 `toml:"patch-delete-threshold"`

	// Chunk size for context length around a patch.
	PatchMargin int `toml:"patch-margin"`

	// The number of bits in the bitmask used by the fuzzy matcher, which
	// limits the length of a pattern it can locate.
	MatchMaxBits int `toml:"match-max-bits"`
}

func DefaultDifferencerConfig() DifferencerConfig {
	return DifferencerConfig{
		Timeout:              time.Second,
		EditCost:             4,
		MatchThreshold:       0.5,
		MatchDistance:        1000,
		PatchDeleteThreshold: 0.5,
		PatchMargin:          4,
		MatchMaxBits:         32,
	}
}

func (p *DifferencerConfig) CreateFlags(f *pflag.FlagSet) {
	d := DefaultDifferencerConfig()

	f.DurationVar(
		&p.Timeout, "diff-timeout", d.Timeout, `
		How long may a single diff search for a minimal result before settling
		for a coarse one? Zero means no limit.
		`)

	f.IntVar(
		&p.EditCost, "diff-edit-cost", d.EditCost, `
		Cost of an empty edit operation in terms of edit characters.
		`)

	f.Float64Var(
		&p.MatchThreshold, "match-threshold", d.MatchThreshold, `
		At what point is no match declared when locating a patch
		(0.0 = perfection, 1.0 = very loose).
		`)

	f.IntVar(
		&p.MatchDistance, "match-distance", d.MatchDistance, `
		How far to search for a match (0 = exact location, 1000+ = broad match).
		`)

	f.Float64Var(
		&p.PatchDeleteThreshold, "patch-delete-threshold", d.PatchDeleteThreshold, `
		When deleting a large block of text, how close do the contents have to
		be to match the expected contents (0.0 = perfection, 1.0 = very loose).
		`)

	f.IntVar(
		&p.PatchMargin, "patch-margin", d.PatchMargin, `
		Chunk size for context length around a patch.
		`)

	f.IntVar(
		&p.MatchMaxBits, "match-max-bits", d.MatchMaxBits, `
		Longest pattern, in runes, that is located in one piece; longer patch
		hunks are split.
		`)
}
