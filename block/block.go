// Package block holds the unit of an outline merge, a Block, and diffs
// sequences of blocks by encoding each block as one symbol of the dm engine.
package block

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Origin records where a block came from. Used for display only; merge
// decisions never look at it.
type Origin int8

const (
	OriginUnknown Origin = iota
	OriginBase
	OriginBranch
)

func (o Origin) String() string {
	switch o {
	case OriginUnknown:
		return "unknown"
	case OriginBase:
		return "base"
	case OriginBranch:
		return "branch"
	}
	return fmt.Sprintf("Origin(%d)", int8(o))
}

func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(s) {
	case "", "unknown":
		return OriginUnknown, nil
	case "base":
		return OriginBase, nil
	case "branch":
		return OriginBranch, nil
	}
	return OriginUnknown, errors.Errorf("unknown origin %q", s)
}

func (o Origin) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

func (o *Origin) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseOrigin(node.Value)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Block is a bullet of an outline: its own text, which may span several
// lines, its nesting depth, and an optional stable identity assigned once
// the block has been synced.
type Block struct {
	Identity string `yaml:"id,omitempty"`
	Body     string `yaml:"body"`
	Level    int    `yaml:"level,omitempty"`
	Origin   Origin `yaml:"origin,omitempty"`
}

func (b *Block) HasIdentity() bool {
	return b.Identity != ""
}

func (b *Block) Clone() *Block {
	c := *b
	return &c
}

// SameLogicalBlock reports whether b and o are versions of one block: their
// identities match if both have one, else their bodies are equal.
func (b *Block) SameLogicalBlock(o *Block) bool {
	if b.HasIdentity() && o.HasIdentity() {
		return b.Identity == o.Identity
	}
	return b.Body == o.Body
}

// Identical reports whether b and o agree on everything that a merge
// preserves (identity, body and level).
func (b *Block) Identical(o *Block) bool {
	return b.Identity == o.Identity && b.Body == o.Body && b.Level == o.Level
}

func (b *Block) String() string {
	id := b.Identity
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("[%s L%d %s] %q", id, b.Level, b.Origin, b.Body)
}

// NewIdentity returns a fresh random identity.
func NewIdentity() string {
	return uuid.NewString()
}

// SetOrigin marks every block in blocks with origin.
func SetOrigin(blocks []*Block, origin Origin) {
	for _, b := range blocks {
		if b != nil {
			b.Origin = origin
		}
	}
}
