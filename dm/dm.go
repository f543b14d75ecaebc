// Package dm computes differences between sequences of atomic symbols, and
// builds and applies patches from those differences.
//
// The unit of comparison is a rune. Plain text is diffed character by
// character, but a caller may instead map larger units (lines of a file,
// blocks of an outline) to synthetic runes and diff those, so that the same
// algorithms work at coarse or fine granularity. See IndexToSymbol.
//
// The core is Myers' O(ND) algorithm, searching from both ends of the edit
// graph at once and splitting the problem where the searches meet. Before
// resorting to that it trims common ends, looks for containment of one input
// in the other, and tries a half-match (a common substring at least half
// the length of the longer input) so that the problem can be cut in two.
// Every search is bounded by a deadline; when it passes, the engine stops
// looking for a minimal answer and returns a coarse one.
package dm

import (
	"fmt"
	"strings"
)

// Operation is the kind of an edit.
type Operation int8

const (
	// DiffDelete marks text present only in the first input.
	DiffDelete Operation = -1
	// DiffInsert marks text present only in the second input.
	DiffInsert Operation = 1
	// DiffEqual marks text common to both inputs.
	DiffEqual Operation = 0
)

func (op Operation) String() string {
	switch op {
	case DiffDelete:
		return "Delete"
	case DiffInsert:
		return "Insert"
	case DiffEqual:
		return "Equal"
	}
	return fmt.Sprintf("Operation(%d)", int8(op))
}

// Diff is one span of an edit script.
type Diff struct {
	Type Operation
	Text string
}

func (d Diff) String() string {
	return fmt.Sprintf("%s %q", d.Type, d.Text)
}

// MaxSymbols is the number of distinct synthetic symbols available to
// callers that encode larger units as runes.
const MaxSymbols = 1 << 16

// Start and size of the UTF-16 surrogate range, which can't be represented
// in a Go string and so must be skipped when assigning symbols.
const (
	surrogateMin  = 0xD800
	surrogateSize = 0x800
)

// IndexToSymbol maps a dense index in [0, MaxSymbols) to a rune that
// survives conversion to and from string.
func IndexToSymbol(index int) rune {
	if index >= surrogateMin {
		index += surrogateSize
	}
	return rune(index)
}

// SymbolToIndex is the inverse of IndexToSymbol.
func SymbolToIndex(symbol rune) int {
	index := int(symbol)
	if index >= surrogateMin+surrogateSize {
		index -= surrogateSize
	}
	return index
}

// DiffText1 reconstructs the first input of an edit script.
func DiffText1(diffs []Diff) string {
	var sb strings.Builder
	for _, d := range diffs {
		if d.Type != DiffInsert {
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// DiffText2 reconstructs the second input of an edit script.
func DiffText2(diffs []Diff) string {
	var sb strings.Builder
	for _, d := range diffs {
		if d.Type != DiffDelete {
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// DiffLevenshtein returns the number of inserted, deleted or substituted
// runes.
func DiffLevenshtein(diffs []Diff) int {
	levenshtein, insertions, deletions := 0, 0, 0
	for _, d := range diffs {
		switch d.Type {
		case DiffInsert:
			insertions += runeCount(d.Text)
		case DiffDelete:
			deletions += runeCount(d.Text)
		case DiffEqual:
			// A deletion and an insertion is one substitution.
			levenshtein += MaxInt(insertions, deletions)
			insertions, deletions = 0, 0
		}
	}
	return levenshtein + MaxInt(insertions, deletions)
}

// DiffXIndex translates a rune offset in the first input to the equivalent
// offset in the second input.
func DiffXIndex(diffs []Diff, loc int) int {
	chars1, chars2 := 0, 0
	lastChars1, lastChars2 := 0, 0
	var last *Diff
	for i := range diffs {
		d := &diffs[i]
		n := runeCount(d.Text)
		if d.Type != DiffInsert {
			chars1 += n
		}
		if d.Type != DiffDelete {
			chars2 += n
		}
		if chars1 > loc {
			last = d
			break
		}
		lastChars1, lastChars2 = chars1, chars2
	}
	if last != nil && last.Type == DiffDelete {
		// The location was deleted.
		return lastChars2
	}
	return lastChars2 + (loc - lastChars1)
}

// DiffPrettyText renders an edit script with {-deleted-} and {+inserted+}
// markers, for logs and test failure messages.
func DiffPrettyText(diffs []Diff) string {
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case DiffInsert:
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		case DiffDelete:
			sb.WriteString("{-")
			sb.WriteString(d.Text)
			sb.WriteString("-}")
		case DiffEqual:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
