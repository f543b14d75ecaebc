package dm

import (
	"strings"
	"unicode"

	"github.com/golang/glog"
)

// All of the cleanup passes take an edit script and return a new one; the
// input slice is left untouched.

// DiffCleanupMerge coalesces adjacent spans of the same type, factors text
// common to a neighbouring deletion and insertion out into equalities, and
// slides single edits sideways to eliminate equalities where it can.
func DiffCleanupMerge(diffs []Diff) []Diff {
	merged := coalesceEdits(diffs)

	// Second pass: look for single edits surrounded on both sides by
	// equalities which can be shifted sideways to eliminate an equality,
	// e.g: A<ins>BA</ins>C -> <ins>AB</ins>AC
	l := newDiffList(merged)
	changes := false
	for n := l.head; n != nil; n = n.next {
		prev, next := n.prev, n.next
		if prev == nil || next == nil || n.Type == DiffEqual {
			continue
		}
		if prev.Type != DiffEqual || next.Type != DiffEqual {
			continue
		}
		if strings.HasSuffix(n.Text, prev.Text) {
			// Shift the edit over the previous equality.
			n.Text = prev.Text + n.Text[:len(n.Text)-len(prev.Text)]
			next.Text = prev.Text + next.Text
			l.remove(prev)
			changes = true
		} else if strings.HasPrefix(n.Text, next.Text) {
			// Shift the edit over the next equality.
			prev.Text += next.Text
			n.Text = n.Text[len(next.Text):] + next.Text
			l.remove(next)
			changes = true
		}
	}
	if changes {
		// Shifts may have exposed more merges.
		return DiffCleanupMerge(l.slice())
	}
	return l.slice()
}

// coalesceEdits builds a script in which each run of edits between two
// equalities is at most one deletion followed by one insertion, with any
// text common to the start or end of both moved into the equalities.
func coalesceEdits(diffs []Diff) []Diff {
	var result []Diff
	var textDelete, textInsert strings.Builder

	appendEqual := func(text string) {
		if text == "" {
			return
		}
		if n := len(result); n > 0 && result[n-1].Type == DiffEqual {
			result[n-1].Text += text
		} else {
			result = append(result, Diff{DiffEqual, text})
		}
	}

	// flush emits the pending edits and returns text that belongs at the
	// start of the following equality.
	flush := func() (suffix string) {
		del, ins := textDelete.String(), textInsert.String()
		textDelete.Reset()
		textInsert.Reset()
		if del != "" && ins != "" {
			delRunes, insRunes := []rune(del), []rune(ins)
			if n := commonPrefixLength(insRunes, delRunes); n > 0 {
				appendEqual(string(insRunes[:n]))
				insRunes, delRunes = insRunes[n:], delRunes[n:]
			}
			if n := commonSuffixLength(insRunes, delRunes); n > 0 {
				suffix = string(insRunes[len(insRunes)-n:])
				insRunes = insRunes[:len(insRunes)-n]
				delRunes = delRunes[:len(delRunes)-n]
			}
			del, ins = string(delRunes), string(insRunes)
		}
		result = appendNonEmpty(result, Diff{DiffDelete, del}, Diff{DiffInsert, ins})
		return suffix
	}

	for _, d := range diffs {
		switch d.Type {
		case DiffInsert:
			textInsert.WriteString(d.Text)
		case DiffDelete:
			textDelete.WriteString(d.Text)
		case DiffEqual:
			appendEqual(flush() + d.Text)
		}
	}
	appendEqual(flush())
	return result
}

// DiffCleanupSemantic removes equalities that are too short relative to the
// edits around them to be meaningful (coincidental matches of a letter or
// two inside a rewritten phrase), making the script easier for a person to
// read at the cost of some minimality.
func DiffCleanupSemantic(diffs []Diff) []Diff {
	l := newDiffList(diffs)
	changes := false
	// Equalities seen since the last restart, most recent last.
	var equalities []*diffNode
	lastEquality := ""
	// Lengths of the insertions and deletions before and after lastEquality.
	insertions1, deletions1 := 0, 0
	insertions2, deletions2 := 0, 0

	for n := l.head; n != nil; {
		if n.Type == DiffEqual {
			equalities = append(equalities, n)
			insertions1, deletions1 = insertions2, deletions2
			insertions2, deletions2 = 0, 0
			lastEquality = n.Text
			n = n.next
			continue
		}
		if n.Type == DiffInsert {
			insertions2 += runeCount(n.Text)
		} else {
			deletions2 += runeCount(n.Text)
		}
		size := runeCount(lastEquality)
		if lastEquality != "" &&
			size <= MaxInt(insertions1, deletions1) &&
			size <= MaxInt(insertions2, deletions2) {
			// The equality is no bigger than the edits on either side; turn
			// it into a deletion and an insertion.
			eq := equalities[len(equalities)-1]
			l.insertBefore(eq, Diff{DiffDelete, lastEquality})
			eq.Type = DiffInsert
			equalities = equalities[:len(equalities)-1]
			// The previous equality needs to be re-evaluated too.
			if len(equalities) > 0 {
				equalities = equalities[:len(equalities)-1]
			}
			insertions1, deletions1, insertions2, deletions2 = 0, 0, 0, 0
			lastEquality = ""
			changes = true
			if len(equalities) > 0 {
				n = equalities[len(equalities)-1].next
			} else {
				n = l.head
			}
			continue
		}
		n = n.next
	}

	result := l.slice()
	if changes {
		result = DiffCleanupMerge(result)
	}
	result = DiffCleanupSemanticLossless(result)
	return extractOverlaps(result)
}

// extractOverlaps finds deletions followed by insertions where the end of
// one overlaps the start of the other, and pulls the overlap out as an
// equality when it is at least half the size of either edit.
//
// e.g: <del>abcxxx</del><ins>xxxdef</ins> -> <del>abc</del>xxx<ins>def</ins>
//      <del>xxxabc</del><ins>defxxx</ins> -> <ins>def</ins>xxx<del>abc</del>
func extractOverlaps(diffs []Diff) []Diff {
	l := newDiffList(diffs)
	for n := l.head; n != nil && n.next != nil; n = n.next {
		if n.Type != DiffDelete || n.next.Type != DiffInsert {
			continue
		}
		delNode, insNode := n, n.next
		deletion, insertion := []rune(delNode.Text), []rune(insNode.Text)
		overlap1 := commonOverlapLength(deletion, insertion)
		overlap2 := commonOverlapLength(insertion, deletion)
		if overlap1 >= overlap2 {
			if 2*overlap1 >= len(deletion) || 2*overlap1 >= len(insertion) {
				l.insertAfter(delNode, Diff{DiffEqual, string(insertion[:overlap1])})
				delNode.Text = string(deletion[:len(deletion)-overlap1])
				insNode.Text = string(insertion[overlap1:])
			}
		} else if 2*overlap2 >= len(deletion) || 2*overlap2 >= len(insertion) {
			// Reverse overlap; the edits swap order around the equality.
			l.insertAfter(delNode, Diff{DiffEqual, string(deletion[:overlap2])})
			delNode.Type = DiffInsert
			delNode.Text = string(insertion[:len(insertion)-overlap2])
			insNode.Type = DiffDelete
			insNode.Text = string(deletion[overlap2:])
		}
		n = insNode
	}
	return l.slice()
}

// DiffCleanupSemanticLossless slides single edits surrounded by equalities
// sideways so that their boundaries fall on logical breaks (blank lines,
// line ends, whitespace, punctuation), without changing what the script
// produces.
//
// e.g: The c<ins>at c</ins>ame. -> The <ins>cat </ins>came.
func DiffCleanupSemanticLossless(diffs []Diff) []Diff {
	l := newDiffList(diffs)
	for n := l.head; n != nil; n = n.next {
		prev, next := n.prev, n.next
		if prev == nil || next == nil || n.Type == DiffEqual {
			continue
		}
		if prev.Type != DiffEqual || next.Type != DiffEqual {
			continue
		}
		equality1 := []rune(prev.Text)
		edit := []rune(n.Text)
		equality2 := []rune(next.Text)

		// First, shift the edit as far left as possible.
		if k := commonSuffixLength(equality1, edit); k > 0 {
			common := edit[len(edit)-k:]
			equality1 = equality1[:len(equality1)-k]
			edit = concatRunes(common, edit[:len(edit)-k])
			equality2 = concatRunes(common, equality2)
		}

		// Second, step right one symbol at a time, keeping the best fit.
		bestEquality1, bestEdit, bestEquality2 := equality1, edit, equality2
		bestScore := semanticScore(equality1, edit) + semanticScore(edit, equality2)
		for len(edit) > 0 && len(equality2) > 0 && edit[0] == equality2[0] {
			equality1 = concatRunes(equality1, edit[:1])
			edit = concatRunes(edit[1:], equality2[:1])
			equality2 = equality2[1:]
			score := semanticScore(equality1, edit) + semanticScore(edit, equality2)
			// The >= encourages trailing rather than leading whitespace on
			// edits.
			if score >= bestScore {
				bestScore = score
				bestEquality1, bestEdit, bestEquality2 = equality1, edit, equality2
			}
		}

		if string(bestEquality1) == prev.Text {
			continue
		}
		n.Text = string(bestEdit)
		if len(bestEquality1) > 0 {
			prev.Text = string(bestEquality1)
		} else {
			l.remove(prev)
		}
		if len(bestEquality2) > 0 {
			next.Text = string(bestEquality2)
		} else {
			l.remove(next)
		}
	}
	return l.slice()
}

// semanticScore rates how well the boundary between one and two falls on a
// logical break, from 6 (an edge of the text) down to 0 (the middle of a
// word).
func semanticScore(one, two []rune) int {
	if len(one) == 0 || len(two) == 0 {
		return 6
	}
	char1, char2 := one[len(one)-1], two[0]
	nonAlphaNumeric1 := !unicode.IsLetter(char1) && !unicode.IsDigit(char1)
	nonAlphaNumeric2 := !unicode.IsLetter(char2) && !unicode.IsDigit(char2)
	whitespace1 := nonAlphaNumeric1 && unicode.IsSpace(char1)
	whitespace2 := nonAlphaNumeric2 && unicode.IsSpace(char2)
	lineBreak1 := whitespace1 && (char1 == '\r' || char1 == '\n')
	lineBreak2 := whitespace2 && (char2 == '\r' || char2 == '\n')
	blankLine1 := lineBreak1 && endsWithBlankLine(string(one))
	blankLine2 := lineBreak2 && startsWithBlankLine(string(two))

	switch {
	case blankLine1 || blankLine2:
		return 5
	case lineBreak1 || lineBreak2:
		return 4
	case nonAlphaNumeric1 && !whitespace1 && whitespace2:
		// End of a sentence.
		return 3
	case whitespace1 || whitespace2:
		return 2
	case nonAlphaNumeric1 || nonAlphaNumeric2:
		return 1
	}
	return 0
}

func endsWithBlankLine(s string) bool {
	return strings.HasSuffix(s, "\n\n") || strings.HasSuffix(s, "\n\r\n")
}

func startsWithBlankLine(s string) bool {
	s = strings.TrimPrefix(s, "\r")
	if !strings.HasPrefix(s, "\n") {
		return false
	}
	s = strings.TrimPrefix(s[1:], "\r")
	return strings.HasPrefix(s, "\n")
}

// DiffCleanupEfficiency removes equalities that cost more to keep (as
// separate operations in a patch) than they save, according to EditCost.
func (p *Engine) DiffCleanupEfficiency(diffs []Diff) []Diff {
	editCost := p.config.EditCost
	l := newDiffList(diffs)
	changes := false
	var equalities []*diffNode
	lastEquality := ""
	// Is there an insertion or deletion before or after lastEquality?
	preIns, preDel, postIns, postDel := false, false, false, false

	for n := l.head; n != nil; {
		if n.Type == DiffEqual {
			if runeCount(n.Text) < editCost && (postIns || postDel) {
				// Candidate found.
				equalities = append(equalities, n)
				preIns, preDel = postIns, postDel
				lastEquality = n.Text
			} else {
				// Not a candidate, and can never become one.
				equalities = nil
				lastEquality = ""
			}
			postIns, postDel = false, false
			n = n.next
			continue
		}

		if n.Type == DiffDelete {
			postDel = true
		} else {
			postIns = true
		}

		// Five types to be split:
		// <ins>A</ins><del>B</del>XY<ins>C</ins><del>D</del>
		// <ins>A</ins>X<ins>C</ins><del>D</del>
		// <ins>A</ins><del>B</del>X<ins>C</ins>
		// <ins>A</del>X<ins>C</ins><del>D</del>
		// <ins>A</ins><del>B</del>X<del>C</del>
		if lastEquality != "" &&
			((preIns && preDel && postIns && postDel) ||
				(2*runeCount(lastEquality) < editCost &&
					countTrue(preIns, preDel, postIns, postDel) == 3)) {
			eq := equalities[len(equalities)-1]
			l.insertBefore(eq, Diff{DiffDelete, lastEquality})
			eq.Type = DiffInsert
			equalities = equalities[:len(equalities)-1]
			lastEquality = ""
			changes = true
			if preIns && preDel {
				// Nothing changed that could affect a previous entry.
				postIns, postDel = true, true
				equalities = nil
			} else {
				if len(equalities) > 0 {
					equalities = equalities[:len(equalities)-1]
				}
				postIns, postDel = false, false
				if len(equalities) > 0 {
					n = equalities[len(equalities)-1].next
				} else {
					n = l.head
				}
				continue
			}
		}
		n = n.next
	}

	result := l.slice()
	if changes {
		glog.V(2).Info("DiffCleanupEfficiency: folded short equalities into edits")
		result = DiffCleanupMerge(result)
	}
	return result
}

func countTrue(values ...bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
