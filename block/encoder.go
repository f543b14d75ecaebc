package block

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/jamessynge/outlinemerge/dm"
)

// ErrUnsupportedScale reports that a merge involves more distinct blocks
// than there are symbols to encode them with.
var ErrUnsupportedScale = errors.New("unsupported scale")

// Encoder assigns each distinct block a symbol, so that sequences of blocks
// can be diffed as strings of runes. Blocks are keyed by identity if they
// have one, else by body; all versions of an identity share a symbol, so an
// edit that keeps the identity diffs as Equal. A new identity whose body
// matches a symbol first assigned to an unidentified block takes that
// symbol, so every branch that identifies a base block still lines up with
// it; the merge decides which identity the block keeps.
//
// The tables only grow, and symbols depend on the order blocks are seen in,
// so an Encoder must serve one merge and then be dropped.
type Encoder struct {
	engine *dm.Engine
	limit  int

	byIdentity map[string]int
	byBody     map[string]int
	// Per symbol index: the first block assigned it, and whether that
	// block was unidentified.
	blocks    []*Block
	bodyKeyed []bool
}

type EncoderOption func(*Encoder)

// WithSymbolLimit lowers the number of distinct blocks an Encoder accepts.
// Values above dm.MaxSymbols are ignored.
func WithSymbolLimit(n int) EncoderOption {
	return func(e *Encoder) {
		if n > 0 && n < dm.MaxSymbols {
			e.limit = n
		}
	}
}

// WithEngine sets the diff engine used by DiffBlocks.
func WithEngine(engine *dm.Engine) EncoderOption {
	return func(e *Encoder) {
		e.engine = engine
	}
}

func NewEncoder(options ...EncoderOption) *Encoder {
	e := &Encoder{
		limit:      dm.MaxSymbols,
		byIdentity: make(map[string]int),
		byBody:     make(map[string]int),
	}
	for _, option := range options {
		option(e)
	}
	if e.engine == nil {
		e.engine = dm.NewDefaultEngine()
	}
	return e
}

// SymbolCount is the number of symbols assigned so far.
func (e *Encoder) SymbolCount() int {
	return len(e.blocks)
}

// Encode maps each block to its symbol, assigning new symbols as needed.
func (e *Encoder) Encode(blocks []*Block) ([]rune, error) {
	runes := make([]rune, len(blocks))
	for i, b := range blocks {
		if b == nil {
			return nil, errors.Wrapf(dm.ErrInvalidInput, "block %d is nil", i)
		}
		r, err := e.symbolFor(b)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding block %d", i)
		}
		runes[i] = r
	}
	return runes, nil
}

func (e *Encoder) symbolFor(b *Block) (rune, error) {
	if b.HasIdentity() {
		if i, ok := e.byIdentity[b.Identity]; ok {
			return dm.IndexToSymbol(i), nil
		}
		// A block that has just been given an identity still matches its
		// unidentified self.
		if i, ok := e.byBody[b.Body]; ok && e.bodyKeyed[i] {
			e.byIdentity[b.Identity] = i
			return dm.IndexToSymbol(i), nil
		}
	} else if i, ok := e.byBody[b.Body]; ok {
		return dm.IndexToSymbol(i), nil
	}

	if len(e.blocks) >= e.limit {
		return 0, errors.Wrapf(ErrUnsupportedScale,
			"more than %d distinct blocks in one merge", e.limit)
	}
	i := len(e.blocks)
	e.blocks = append(e.blocks, b)
	e.bodyKeyed = append(e.bodyKeyed, !b.HasIdentity())
	if b.HasIdentity() {
		e.byIdentity[b.Identity] = i
	}
	if _, ok := e.byBody[b.Body]; !ok {
		e.byBody[b.Body] = i
	}
	glog.V(3).Infof("Encoder: symbol %d for %v", i, b)
	return dm.IndexToSymbol(i), nil
}

// Block returns the first block that was assigned symbol.
func (e *Encoder) Block(symbol rune) *Block {
	i := dm.SymbolToIndex(symbol)
	if i < 0 || i >= len(e.blocks) {
		return nil
	}
	return e.blocks[i]
}
