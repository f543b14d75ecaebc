package merge

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/jamessynge/outlinemerge/dm"
)

// DeletePolicy decides an anchor where some branches deleted the base block
// and others kept it.
type DeletePolicy int

const (
	// EditsWin keeps the block if any branch edited it; the delete only
	// stands if every other branch left the block unchanged.
	EditsWin DeletePolicy = iota
	// DeletesWin removes the block if any branch deleted it.
	DeletesWin
)

var deletePolicyNames = map[DeletePolicy]string{
	EditsWin:   "edits-win",
	DeletesWin: "deletes-win",
}

func (p DeletePolicy) String() string {
	if s, ok := deletePolicyNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p *DeletePolicy) Set(s string) error {
	for k, v := range deletePolicyNames {
		if v == strings.ToLower(s) {
			*p = k
			return nil
		}
	}
	return errors.Errorf("unknown delete policy %q (want edits-win or deletes-win)", s)
}

func (p *DeletePolicy) Type() string { return "delete-policy" }

func (p *DeletePolicy) UnmarshalText(text []byte) error { return p.Set(string(text)) }

// ConflictPolicy decides an anchor where branches changed the body of the
// base block to different values.
type ConflictPolicy int

const (
	// Fork keeps the first branch's body and inserts each other version as
	// a separate block right after it.
	Fork ConflictPolicy = iota
	// FirstWins keeps the first branch's body and drops the others, with a
	// note.
	FirstWins
	// LastWins keeps the last branch's body and drops the others, with a
	// note.
	LastWins
)

var conflictPolicyNames = map[ConflictPolicy]string{
	Fork:      "fork",
	FirstWins: "first-wins",
	LastWins:  "last-wins",
}

func (p ConflictPolicy) String() string {
	if s, ok := conflictPolicyNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p *ConflictPolicy) Set(s string) error {
	for k, v := range conflictPolicyNames {
		if v == strings.ToLower(s) {
			*p = k
			return nil
		}
	}
	return errors.Errorf("unknown conflict policy %q (want fork, first-wins or last-wins)", s)
}

func (p *ConflictPolicy) Type() string { return "conflict-policy" }

func (p *ConflictPolicy) UnmarshalText(text []byte) error { return p.Set(string(text)) }

// Config guides a merge. A Merger copies its Config when created.
type Config struct {
	Differencer dm.DifferencerConfig `toml:"differencer"`
	Deletes     DeletePolicy         `toml:"delete-policy"`
	Conflicts   ConflictPolicy       `toml:"conflict-policy"`

	// Time source for diff deadlines; nil means the system clock.
	Clock dm.Clock `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Differencer: dm.DefaultDifferencerConfig(),
		Deletes:     EditsWin,
		Conflicts:   Fork,
	}
}

func (c *Config) CreateFlags(f *pflag.FlagSet) {
	c.Differencer.CreateFlags(f)

	f.Var(&c.Deletes, "delete-policy", `
		What to do with a block that one branch deleted and another kept:
		edits-win keeps it if any branch edited it; deletes-win removes it.
		`)

	f.Var(&c.Conflicts, "conflict-policy", `
		What to do when branches changed a block's text in different ways:
		fork keeps every version as a separate block; first-wins and last-wins
		keep one version and note the others.
		`)
}
