package dm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Patch is one hunk of a patch: an edit script with surrounding context,
// and the rune offsets and lengths of the region it covers in each text.
type Patch struct {
	Diffs   []Diff
	Start1  int
	Start2  int
	Length1 int
	Length2 int
}

// String renders the patch in the GNU diff like format read by
// PatchFromText. Header offsets are 1-based.
func (patch Patch) String() string {
	var sb strings.Builder
	sb.WriteString("@@ -")
	sb.WriteString(patchCoords(patch.Start1, patch.Length1))
	sb.WriteString(" +")
	sb.WriteString(patchCoords(patch.Start2, patch.Length2))
	sb.WriteString(" @@\n")
	for _, d := range patch.Diffs {
		switch d.Type {
		case DiffInsert:
			sb.WriteByte('+')
		case DiffDelete:
			sb.WriteByte('-')
		case DiffEqual:
			sb.WriteByte(' ')
		}
		sb.WriteString(escapeText(d.Text))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func patchCoords(start, length int) string {
	switch length {
	case 0:
		return strconv.Itoa(start) + ",0"
	case 1:
		return strconv.Itoa(start + 1)
	}
	return strconv.Itoa(start+1) + "," + strconv.Itoa(length)
}

// PatchMake computes the patches that turn text1 into text2.
func (p *Engine) PatchMake(text1, text2 string) []Patch {
	diffs := p.DiffMain(text1, text2, true)
	if len(diffs) > 2 {
		diffs = DiffCleanupSemantic(diffs)
		diffs = p.DiffCleanupEfficiency(diffs)
	}
	return p.PatchMakeFromDiffs(text1, diffs)
}

// PatchMakeFromDiffs computes patches from an edit script whose first input
// is text1.
func (p *Engine) PatchMakeFromDiffs(text1 string, diffs []Diff) []Patch {
	if len(diffs) == 0 {
		return nil
	}
	margin := p.config.PatchMargin
	var patches []Patch
	var patch Patch
	charCount1, charCount2 := 0, 0
	// Patches have a rolling context: each one is located relative to the
	// text as modified by the patches before it.
	prepatch := []rune(text1)
	postpatch := prepatch
	for i, d := range diffs {
		text := []rune(d.Text)
		if len(patch.Diffs) == 0 && d.Type != DiffEqual {
			// A new patch starts here.
			patch.Start1 = charCount1
			patch.Start2 = charCount2
		}
		switch d.Type {
		case DiffInsert:
			patch.Diffs = append(patch.Diffs, d)
			patch.Length2 += len(text)
			postpatch = concatRunes(postpatch[:charCount2], text, postpatch[charCount2:])
		case DiffDelete:
			patch.Length1 += len(text)
			patch.Diffs = append(patch.Diffs, d)
			postpatch = concatRunes(postpatch[:charCount2], postpatch[charCount2+len(text):])
		case DiffEqual:
			if len(text) <= 2*margin && len(patch.Diffs) != 0 && i != len(diffs)-1 {
				// Small equality inside a patch.
				patch.Diffs = append(patch.Diffs, d)
				patch.Length1 += len(text)
				patch.Length2 += len(text)
			}
			if len(text) >= 2*margin && len(patch.Diffs) != 0 {
				// Time for a new patch.
				p.patchAddContext(&patch, prepatch)
				patches = append(patches, patch)
				patch = Patch{}
				prepatch = postpatch
				charCount1 = charCount2
			}
		}
		if d.Type != DiffInsert {
			charCount1 += len(text)
		}
		if d.Type != DiffDelete {
			charCount2 += len(text)
		}
	}
	// Pick up the leftover patch if not empty.
	if len(patch.Diffs) != 0 {
		p.patchAddContext(&patch, prepatch)
		patches = append(patches, patch)
	}
	glog.V(2).Infof("PatchMakeFromDiffs: %d diffs became %d patches", len(diffs), len(patches))
	return patches
}

// patchAddContext grows the context around a patch until the text it
// covers is unique within text, or until it would no longer fit in the
// matcher's bit mask.
func (p *Engine) patchAddContext(patch *Patch, text []rune) {
	if len(text) == 0 {
		return
	}
	margin := p.config.PatchMargin
	pattern := runesSlice(text, patch.Start2, patch.Start2+patch.Length1)
	padding := 0
	for runesIndexOf(text, pattern, 0) != runesLastIndexOf(text, pattern, len(text)) &&
		len(pattern) < p.config.MatchMaxBits-2*margin {
		padding += margin
		pattern = runesSlice(text, patch.Start2-padding, patch.Start2+patch.Length1+padding)
	}
	// Add one chunk for good luck.
	padding += margin

	prefix := runesSlice(text, patch.Start2-padding, patch.Start2)
	if len(prefix) != 0 {
		patch.Diffs = append([]Diff{{DiffEqual, string(prefix)}}, patch.Diffs...)
	}
	suffix := runesSlice(text, patch.Start2+patch.Length1, patch.Start2+patch.Length1+padding)
	if len(suffix) != 0 {
		patch.Diffs = append(patch.Diffs, Diff{DiffEqual, string(suffix)})
	}

	patch.Start1 -= len(prefix)
	patch.Start2 -= len(prefix)
	patch.Length1 += len(prefix) + len(suffix)
	patch.Length2 += len(prefix) + len(suffix)
}

// PatchDeepCopy returns a copy of patches that shares no edit scripts with
// the original.
func PatchDeepCopy(patches []Patch) []Patch {
	result := make([]Patch, 0, len(patches))
	for _, patch := range patches {
		c := patch
		c.Diffs = append([]Diff(nil), patch.Diffs...)
		result = append(result, c)
	}
	return result
}

// PatchApply applies patches to text, locating each one fuzzily if the text
// has drifted from the one the patches were made against. It returns the
// patched text and whether each patch applied.
func (p *Engine) PatchApply(patches []Patch, text string) (string, []bool) {
	if len(patches) == 0 {
		return text, nil
	}
	maxBits := p.config.MatchMaxBits

	// Work on a copy; padding and splitting modify the patches.
	patches = PatchDeepCopy(patches)
	nullPadding := p.PatchAddPadding(patches)
	patches = p.PatchSplitMax(patches)
	textRunes := []rune(nullPadding + text + nullPadding)

	// delta keeps track of the offset between the expected and actual
	// location of the previous patch.
	delta := 0
	results := make([]bool, len(patches))
	for x, patch := range patches {
		expectedLoc := patch.Start2 + delta
		text1 := []rune(DiffText1(patch.Diffs))
		startLoc, endLoc := -1, -1
		if len(text1) > maxBits {
			// PatchSplitMax only leaves an oversized pattern for a
			// monster delete; match its two ends separately.
			startLoc = p.matchMainRunes(textRunes, text1[:maxBits], expectedLoc)
			if startLoc != -1 {
				endLoc = p.matchMainRunes(textRunes, text1[len(text1)-maxBits:],
					expectedLoc+len(text1)-maxBits)
				if endLoc == -1 || startLoc >= endLoc {
					// Can't find valid trailing context; drop this patch.
					startLoc = -1
				}
			}
		} else {
			startLoc = p.matchMainRunes(textRunes, text1, expectedLoc)
		}

		if startLoc == -1 {
			glog.V(1).Infof("PatchApply: no match for patch %d near %d", x, expectedLoc)
			// Subtract the delta for this failed patch from later patches.
			delta -= patch.Length2 - patch.Length1
			continue
		}
		results[x] = true
		delta = startLoc - expectedLoc
		var text2 []rune
		if endLoc == -1 {
			text2 = runesSlice(textRunes, startLoc, startLoc+len(text1))
		} else {
			text2 = runesSlice(textRunes, startLoc, endLoc+maxBits)
		}
		if runesEqual(text1, text2) {
			// Perfect match, just shove the replacement text in.
			textRunes = concatRunes(textRunes[:startLoc],
				[]rune(DiffText2(patch.Diffs)), textRunes[startLoc+len(text1):])
			continue
		}

		// Imperfect match. Run a diff to get a framework of equivalent
		// indices.
		diffs := p.DiffMainRunes(text1, text2, false)
		if len(text1) > maxBits &&
			float64(DiffLevenshtein(diffs))/float64(len(text1)) > p.config.PatchDeleteThreshold {
			// The end points match, but the content is unacceptably bad.
			results[x] = false
			continue
		}
		diffs = DiffCleanupSemanticLossless(diffs)
		index1 := 0
		for _, d := range patch.Diffs {
			var index2 int
			if d.Type != DiffEqual {
				index2 = DiffXIndex(diffs, index1)
			}
			switch d.Type {
			case DiffInsert:
				at := startLoc + index2
				textRunes = concatRunes(textRunes[:at], []rune(d.Text), textRunes[at:])
			case DiffDelete:
				from := startLoc + index2
				to := startLoc + DiffXIndex(diffs, index1+runeCount(d.Text))
				textRunes = concatRunes(textRunes[:from], textRunes[MinInt(to, len(textRunes)):])
			}
			if d.Type != DiffDelete {
				index1 += runeCount(d.Text)
			}
		}
	}
	// Strip the padding off.
	n := runeCount(nullPadding)
	return string(textRunes[n : len(textRunes)-n]), results
}

// PatchAddPadding adds context made of otherwise unlikely runes to the
// start of the first patch and the end of the last, so that edits at the
// edges of the text can be located. It modifies patches in place and
// returns the padding, which the caller must add to both ends of the text.
func (p *Engine) PatchAddPadding(patches []Patch) string {
	paddingLength := p.config.PatchMargin
	paddingRunes := make([]rune, paddingLength)
	for x := range paddingRunes {
		paddingRunes[x] = rune(x + 1)
	}
	nullPadding := string(paddingRunes)
	if len(patches) == 0 {
		return nullPadding
	}

	// Bump all the patches forward.
	for i := range patches {
		patches[i].Start1 += paddingLength
		patches[i].Start2 += paddingLength
	}

	// Add some padding on start of first diff.
	first := &patches[0]
	if len(first.Diffs) == 0 || first.Diffs[0].Type != DiffEqual {
		first.Diffs = append([]Diff{{DiffEqual, nullPadding}}, first.Diffs...)
		first.Start1 -= paddingLength
		first.Start2 -= paddingLength
		first.Length1 += paddingLength
		first.Length2 += paddingLength
	} else if n := runeCount(first.Diffs[0].Text); paddingLength > n {
		// Grow first equality.
		extra := paddingLength - n
		first.Diffs[0].Text = string(paddingRunes[n:]) + first.Diffs[0].Text
		first.Start1 -= extra
		first.Start2 -= extra
		first.Length1 += extra
		first.Length2 += extra
	}

	// Add some padding on end of last diff.
	last := &patches[len(patches)-1]
	if len(last.Diffs) == 0 || last.Diffs[len(last.Diffs)-1].Type != DiffEqual {
		last.Diffs = append(last.Diffs, Diff{DiffEqual, nullPadding})
		last.Length1 += paddingLength
		last.Length2 += paddingLength
	} else if lastDiff := &last.Diffs[len(last.Diffs)-1]; paddingLength > runeCount(lastDiff.Text) {
		// Grow last equality.
		extra := paddingLength - runeCount(lastDiff.Text)
		lastDiff.Text += string(paddingRunes[:extra])
		last.Length1 += extra
		last.Length2 += extra
	}
	return nullPadding
}

// PatchSplitMax breaks up any patch longer than the matcher can locate
// into a run of smaller patches, each with its own context.
func (p *Engine) PatchSplitMax(patches []Patch) []Patch {
	patchSize := p.config.MatchMaxBits
	margin := p.config.PatchMargin
	var result []Patch
	for _, big := range patches {
		if big.Length1 <= patchSize {
			result = append(result, big)
			continue
		}
		start1, start2 := big.Start1, big.Start2
		var precontext []rune
		bigDiffs := append([]Diff(nil), big.Diffs...)
		for len(bigDiffs) != 0 {
			// Create one of several smaller patches.
			patch := Patch{
				Start1: start1 - len(precontext),
				Start2: start2 - len(precontext),
			}
			empty := true
			if len(precontext) != 0 {
				patch.Length1 = len(precontext)
				patch.Length2 = len(precontext)
				patch.Diffs = append(patch.Diffs, Diff{DiffEqual, string(precontext)})
			}
			for len(bigDiffs) != 0 && patch.Length1 < patchSize-margin {
				diffType := bigDiffs[0].Type
				diffText := []rune(bigDiffs[0].Text)
				switch {
				case diffType == DiffInsert:
					// Insertions are harmless.
					patch.Length2 += len(diffText)
					start2 += len(diffText)
					patch.Diffs = append(patch.Diffs, bigDiffs[0])
					bigDiffs = bigDiffs[1:]
					empty = false
				case diffType == DiffDelete && len(patch.Diffs) == 1 &&
					patch.Diffs[0].Type == DiffEqual && len(diffText) > 2*patchSize:
					// A large deletion; let it pass in one chunk.
					patch.Length1 += len(diffText)
					start1 += len(diffText)
					empty = false
					patch.Diffs = append(patch.Diffs, bigDiffs[0])
					bigDiffs = bigDiffs[1:]
				default:
					// Deletion or equality; only take as much as fits.
					take := MaxInt(1, MinInt(len(diffText), patchSize-patch.Length1-margin))
					taken := diffText[:MinInt(take, len(diffText))]
					patch.Length1 += len(taken)
					start1 += len(taken)
					if diffType == DiffEqual {
						patch.Length2 += len(taken)
						start2 += len(taken)
					} else {
						empty = false
					}
					patch.Diffs = append(patch.Diffs, Diff{diffType, string(taken)})
					if len(taken) == len(diffText) {
						bigDiffs = bigDiffs[1:]
					} else {
						bigDiffs[0].Text = string(diffText[len(taken):])
					}
				}
			}
			// Compute the head context for the next patch.
			precontext = []rune(DiffText2(patch.Diffs))
			precontext = precontext[MaxInt(0, len(precontext)-margin):]

			// Append the end context for this patch.
			postcontext := []rune(DiffText1(bigDiffs))
			if len(postcontext) > margin {
				postcontext = postcontext[:margin]
			}
			if len(postcontext) != 0 {
				patch.Length1 += len(postcontext)
				patch.Length2 += len(postcontext)
				if n := len(patch.Diffs); n != 0 && patch.Diffs[n-1].Type == DiffEqual {
					patch.Diffs[n-1].Text += string(postcontext)
				} else {
					patch.Diffs = append(patch.Diffs, Diff{DiffEqual, string(postcontext)})
				}
			}
			if !empty {
				result = append(result, patch)
			}
		}
	}
	return result
}

// PatchToText renders patches in the textual form read by PatchFromText.
func PatchToText(patches []Patch) string {
	var sb strings.Builder
	for _, patch := range patches {
		sb.WriteString(patch.String())
	}
	return sb.String()
}

var patchHeader = regexp.MustCompile(`^@@ -(\d+),?(\d*) \+(\d+),?(\d*) @@$`)

// PatchFromText parses the textual form produced by PatchToText.
func PatchFromText(text string) ([]Patch, error) {
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	var patches []Patch
	for pointer := 0; pointer < len(lines); {
		if lines[pointer] == "" {
			pointer++
			continue
		}
		m := patchHeader.FindStringSubmatch(lines[pointer])
		if m == nil {
			return nil, errors.Wrapf(ErrMalformedPatch, "invalid patch header %q", lines[pointer])
		}
		var patch Patch
		patch.Start1, patch.Length1 = parseCoords(m[1], m[2])
		patch.Start2, patch.Length2 = parseCoords(m[3], m[4])
		pointer++

		for ; pointer < len(lines); pointer++ {
			line := lines[pointer]
			if line == "" {
				continue
			}
			sign := line[0]
			if sign == '@' {
				// Start of next patch.
				break
			}
			body, err := unescapeText(line[1:])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedPatch, "bad escape in patch line %q: %v", line, err)
			}
			switch sign {
			case '-':
				patch.Diffs = append(patch.Diffs, Diff{DiffDelete, body})
			case '+':
				patch.Diffs = append(patch.Diffs, Diff{DiffInsert, body})
			case ' ':
				patch.Diffs = append(patch.Diffs, Diff{DiffEqual, body})
			default:
				return nil, errors.Wrapf(ErrMalformedPatch, "invalid patch mode %q in %q", sign, line)
			}
		}
		patches = append(patches, patch)
	}
	return patches, nil
}

// parseCoords converts a 1-based header range back to a 0-based start and
// a length. The header regexp guarantees both are digits.
func parseCoords(start, length string) (int, int) {
	s, _ := strconv.Atoi(start)
	switch length {
	case "":
		return s - 1, 1
	case "0":
		return s, 0
	}
	n, _ := strconv.Atoi(length)
	return s - 1, n
}

// PatchesString is a debugging aid listing the patches one per line.
func PatchesString(patches []Patch) string {
	var sb strings.Builder
	for i, patch := range patches {
		fmt.Fprintf(&sb, "%d: -%d,%d +%d,%d %s\n", i, patch.Start1, patch.Length1,
			patch.Start2, patch.Length2, DiffPrettyText(patch.Diffs))
	}
	return sb.String()
}
