package dm

// halfMatch is a long common substring of two inputs, together with the
// parts of each input before and after it.
type halfMatch struct {
	text1A, text1B []rune
	text2A, text2B []rune
	common         []rune
}

// halfMatch looks for a substring shared by the two inputs that is at least
// half the length of the longer one. If there is one, the rest of the diff
// can be computed separately on either side of it, which is much faster,
// though the result may not be minimal. Since that trade only makes sense
// when there is a deadline to meet, an unbounded diff never uses it.
func (p *Engine) halfMatch(text1, text2 []rune, dl deadline) *halfMatch {
	if dl.isUnbounded() {
		return nil
	}
	longtext, shorttext := text1, text2
	if len(text1) < len(text2) {
		longtext, shorttext = text2, text1
	}
	if len(longtext) < 4 || len(shorttext)*2 < len(longtext) {
		return nil
	}

	// Check if the second quarter is the seed for a half-match, then the
	// third quarter.
	hm1 := halfMatchAt(longtext, shorttext, (len(longtext)+3)/4)
	hm2 := halfMatchAt(longtext, shorttext, (len(longtext)+1)/2)
	var hm *halfMatch
	switch {
	case hm1 == nil && hm2 == nil:
		return nil
	case hm2 == nil:
		hm = hm1
	case hm1 == nil:
		hm = hm2
	case len(hm1.common) > len(hm2.common):
		hm = hm1
	default:
		hm = hm2
	}

	// halfMatchAt reports in terms of long and short; put it back in terms
	// of text1 and text2.
	if len(text1) >= len(text2) {
		return hm
	}
	return &halfMatch{
		text1A: hm.text2A,
		text1B: hm.text2B,
		text2A: hm.text1A,
		text2B: hm.text1B,
		common: hm.common,
	}
}

// halfMatchAt checks whether a substring of shorttext matches the quarter
// of longtext starting at index i, and extends it as far as possible in
// both directions. The result uses text1 for longtext and text2 for
// shorttext.
func halfMatchAt(longtext, shorttext []rune, i int) *halfMatch {
	seed := longtext[i : i+len(longtext)/4]
	var best halfMatch
	for j := runesIndexOf(shorttext, seed, 0); j != -1; j = runesIndexOf(shorttext, seed, j+1) {
		prefixLength := commonPrefixLength(longtext[i:], shorttext[j:])
		suffixLength := commonSuffixLength(longtext[:i], shorttext[:j])
		if len(best.common) < suffixLength+prefixLength {
			best = halfMatch{
				common: concatRunes(shorttext[j-suffixLength:j], shorttext[j:j+prefixLength]),
				text1A: longtext[:i-suffixLength],
				text1B: longtext[i+prefixLength:],
				text2A: shorttext[:j-suffixLength],
				text2B: shorttext[j+prefixLength:],
			}
		}
	}
	if len(best.common)*2 >= len(longtext) {
		return &best
	}
	return nil
}
