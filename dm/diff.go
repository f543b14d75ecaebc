package dm

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"
)

// Inputs longer than this (in runes, on both sides) are first diffed a line
// at a time when the caller asks for line checking.
const lineModeThreshold = 100

// Engine computes diffs and patches according to an immutable
// DifferencerConfig. An Engine holds no per-call state and may be shared.
type Engine struct {
	config DifferencerConfig
	clock  Clock
}

type EngineOption func(*Engine)

// WithClock replaces the clock used to compute and check diff deadlines.
func WithClock(clock Clock) EngineOption {
	return func(p *Engine) {
		p.clock = clock
	}
}

func NewEngine(config DifferencerConfig, options ...EngineOption) *Engine {
	p := &Engine{
		config: config,
		clock:  RealClock{},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// NewDefaultEngine returns an Engine configured by DefaultDifferencerConfig.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultDifferencerConfig())
}

func (p *Engine) Config() DifferencerConfig {
	return p.config
}

func (p *Engine) SDumpToDepth(depth int) string {
	var cs spew.ConfigState = spew.Config
	cs.MaxDepth = depth
	return cs.Sdump(p)
}

// DiffMain finds the differences between two texts. If checklines is true,
// long texts are first aligned line by line, which is faster but may be
// less than minimal.
func (p *Engine) DiffMain(text1, text2 string, checklines bool) []Diff {
	return p.DiffMainRunes([]rune(text1), []rune(text2), checklines)
}

// DiffMainRunes finds the differences between two symbol sequences.
func (p *Engine) DiffMainRunes(text1, text2 []rune, checklines bool) []Diff {
	dl := newDeadline(p.clock, p.config.Timeout)
	glog.V(2).Infof("DiffMainRunes: %d and %d symbols, checklines=%v",
		len(text1), len(text2), checklines)
	diffs := p.diffMainRunes(text1, text2, checklines, dl)
	if glog.V(3) {
		glog.Infof("DiffMainRunes produced:\n%s", spew.Sdump(diffs))
	}
	return diffs
}

func (p *Engine) diffMainRunes(text1, text2 []rune, checklines bool, dl deadline) []Diff {
	if runesEqual(text1, text2) {
		if len(text1) == 0 {
			return nil
		}
		return []Diff{{DiffEqual, string(text1)}}
	}

	// Trim off the common prefix and suffix; they can only be Equal.
	n := commonPrefixLength(text1, text2)
	prefix := text1[:n]
	text1, text2 = text1[n:], text2[n:]

	n = commonSuffixLength(text1, text2)
	suffix := text1[len(text1)-n:]
	text1, text2 = text1[:len(text1)-n], text2[:len(text2)-n]

	diffs := p.diffCompute(text1, text2, checklines, dl)

	if len(prefix) > 0 {
		diffs = append([]Diff{{DiffEqual, string(prefix)}}, diffs...)
	}
	if len(suffix) > 0 {
		diffs = append(diffs, Diff{DiffEqual, string(suffix)})
	}
	return DiffCleanupMerge(diffs)
}

// diffCompute diffs two inputs that share no common prefix or suffix.
func (p *Engine) diffCompute(text1, text2 []rune, checklines bool, dl deadline) []Diff {
	if len(text1) == 0 {
		return []Diff{{DiffInsert, string(text2)}}
	}
	if len(text2) == 0 {
		return []Diff{{DiffDelete, string(text1)}}
	}

	longtext, shorttext, op := text1, text2, DiffDelete
	if len(text1) < len(text2) {
		longtext, shorttext, op = text2, text1, DiffInsert
	}
	if i := runesIndexOf(longtext, shorttext, 0); i != -1 {
		// The shorter input is inside the longer one.
		return appendNonEmpty(nil,
			Diff{op, string(longtext[:i])},
			Diff{DiffEqual, string(shorttext)},
			Diff{op, string(longtext[i+len(shorttext):])})
	}
	if len(shorttext) == 1 {
		// A single symbol that isn't contained can't be part of any match.
		return []Diff{{DiffDelete, string(text1)}, {DiffInsert, string(text2)}}
	}

	if hm := p.halfMatch(text1, text2, dl); hm != nil {
		glog.V(2).Infof("diffCompute: half-match of %d symbols", len(hm.common))
		diffs := p.diffMainRunes(hm.text1A, hm.text2A, checklines, dl)
		diffs = append(diffs, Diff{DiffEqual, string(hm.common)})
		return append(diffs, p.diffMainRunes(hm.text1B, hm.text2B, checklines, dl)...)
	}

	if checklines && len(text1) > lineModeThreshold && len(text2) > lineModeThreshold {
		return p.diffLineMode(text1, text2, dl)
	}

	return p.diffBisect(text1, text2, dl)
}

func appendNonEmpty(diffs []Diff, more ...Diff) []Diff {
	for _, d := range more {
		if d.Text != "" {
			diffs = append(diffs, d)
		}
	}
	return diffs
}
