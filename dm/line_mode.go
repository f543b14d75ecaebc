package dm

import (
	"strings"

	"github.com/golang/glog"
)

// Limits on the number of distinct lines assigned symbols. The first text
// gets fewer so that the second always has room for lines of its own; once
// a limit is reached, the rest of that text is treated as one line.
const (
	maxLinesText1 = 40000
	maxLinesText2 = MaxSymbols - 1
)

// DiffLinesToRunes encodes each distinct line of the two texts as a single
// symbol, so that they can be diffed a line at a time. Lines keep their
// trailing newline. lines maps SymbolToIndex(symbol) back to the line.
func DiffLinesToRunes(text1, text2 string) (runes1, runes2 []rune, lines []string) {
	index := make(map[string]int)
	runes1 = linesToRunes(text1, &lines, index, maxLinesText1)
	runes2 = linesToRunes(text2, &lines, index, maxLinesText2)
	return runes1, runes2, lines
}

func linesToRunes(text string, lines *[]string, index map[string]int, maxLines int) []rune {
	var result []rune
	for start := 0; start < len(text); {
		end := strings.IndexByte(text[start:], '\n')
		if end == -1 {
			end = len(text)
		} else {
			end += start + 1
		}
		line := text[start:end]
		n, ok := index[line]
		if !ok {
			if len(*lines) == maxLines {
				// Out of symbols; the remainder becomes one last line.
				line = text[start:]
				end = len(text)
			}
			n = len(*lines)
			*lines = append(*lines, line)
			index[line] = n
		}
		result = append(result, IndexToSymbol(n))
		start = end
	}
	return result
}

// DiffRunesToLines expands an edit script over line symbols back into the
// text of those lines.
func DiffRunesToLines(diffs []Diff, lines []string) []Diff {
	result := make([]Diff, 0, len(diffs))
	for _, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(lines[SymbolToIndex(r)])
		}
		result = append(result, Diff{d.Type, sb.String()})
	}
	return result
}

// diffLineMode does a quick line-level diff, then re-diffs the changed
// regions at full resolution to pick up changes within lines.
func (p *Engine) diffLineMode(text1, text2 []rune, dl deadline) []Diff {
	runes1, runes2, lines := DiffLinesToRunes(string(text1), string(text2))
	glog.V(2).Infof("diffLineMode: %d and %d lines, %d distinct",
		len(runes1), len(runes2), len(lines))

	diffs := p.diffMainRunes(runes1, runes2, false, dl)
	diffs = DiffRunesToLines(diffs, lines)
	// Remove coincidental equalities (e.g. blank lines) between edits.
	diffs = DiffCleanupSemantic(diffs)

	result := make([]Diff, 0, len(diffs))
	var textDelete, textInsert strings.Builder
	flush := func() {
		del, ins := textDelete.String(), textInsert.String()
		if del != "" && ins != "" {
			// A replaced run of lines; diff it a symbol at a time.
			result = append(result, p.diffMainRunes([]rune(del), []rune(ins), false, dl)...)
		} else {
			result = appendNonEmpty(result, Diff{DiffDelete, del}, Diff{DiffInsert, ins})
		}
		textDelete.Reset()
		textInsert.Reset()
	}
	for _, d := range diffs {
		switch d.Type {
		case DiffInsert:
			textInsert.WriteString(d.Text)
		case DiffDelete:
			textDelete.WriteString(d.Text)
		case DiffEqual:
			flush()
			result = append(result, d)
		}
	}
	flush()
	return result
}
