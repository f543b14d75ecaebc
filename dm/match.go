package dm

import (
	"math"

	"github.com/golang/glog"
)

// MatchMain locates the best instance of pattern in text near loc (a rune
// offset), allowing for errors in the match. Returns -1 if there is no match
// within MatchThreshold.
func (p *Engine) MatchMain(text, pattern string, loc int) int {
	return p.matchMainRunes([]rune(text), []rune(pattern), loc)
}

func (p *Engine) matchMainRunes(text, pattern []rune, loc int) int {
	loc = MaxInt(0, MinInt(loc, len(text)))
	switch {
	case runesEqual(text, pattern):
		// Shortcut (potentially not guaranteed by the algorithm).
		return 0
	case len(text) == 0:
		return -1
	case loc+len(pattern) <= len(text) && runesEqual(text[loc:loc+len(pattern)], pattern):
		// Perfect match at the perfect spot.
		return loc
	}
	return p.matchBitap(text, pattern, loc)
}

// matchBitap locates the best instance of pattern in text near loc using
// the Bitap algorithm, scoring each candidate by its errors and its distance
// from loc.
func (p *Engine) matchBitap(text, pattern []rune, loc int) int {
	if len(pattern) > p.config.MatchMaxBits {
		// The bit mask can't hold the pattern; settle for an exact match.
		glog.V(2).Infof("matchBitap: pattern of %d runes exceeds %d bits, searching exactly",
			len(pattern), p.config.MatchMaxBits)
		if i := runesIndexOf(text, pattern, loc); i != -1 {
			return i
		}
		return runesLastIndexOf(text, pattern, loc)
	}

	s := matchAlphabet(pattern)

	score := func(errs, x int) float64 {
		accuracy := float64(errs) / float64(len(pattern))
		proximity := loc - x
		if proximity < 0 {
			proximity = -proximity
		}
		if p.config.MatchDistance == 0 {
			// Dodge divide by zero.
			if proximity == 0 {
				return accuracy
			}
			return 1.0
		}
		return accuracy + float64(proximity)/float64(p.config.MatchDistance)
	}

	// Highest score beyond which we give up.
	threshold := p.config.MatchThreshold
	// Is there a nearby exact match? (speedup)
	if best := runesIndexOf(text, pattern, loc); best != -1 {
		threshold = math.Min(score(0, best), threshold)
		// What about in the other direction? (speedup)
		if best = runesLastIndexOf(text, pattern, loc+len(pattern)); best != -1 {
			threshold = math.Min(score(0, best), threshold)
		}
	}

	matchmask := 1 << uint(len(pattern)-1)
	bestLoc := -1
	binMax := len(pattern) + len(text)
	var lastRd []int
	at := func(rd []int, i int) int {
		if i < len(rd) {
			return rd[i]
		}
		return 0
	}
	for d := 0; d < len(pattern); d++ {
		// Scan for the best match; each iteration allows for one more error.
		// Run a binary search to determine how far from loc we can stray at
		// this error level.
		binMin, binMid := 0, binMax
		for binMin < binMid {
			if score(d, loc+binMid) <= threshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		// Use the result from this iteration as the maximum for the next.
		binMax = binMid
		start := MaxInt(1, loc-binMid+1)
		finish := MinInt(loc+binMid, len(text)) + len(pattern)

		rd := make([]int, finish+2)
		rd[finish+1] = (1 << uint(d)) - 1
		for j := finish; j >= start; j-- {
			charMatch := 0
			if j-1 < len(text) {
				charMatch = s[text[j-1]]
			}
			if d == 0 {
				// First pass: exact match.
				rd[j] = ((rd[j+1] << 1) | 1) & charMatch
			} else {
				// Subsequent passes: fuzzy match.
				rd[j] = (((rd[j+1] << 1) | 1) & charMatch) |
					(((at(lastRd, j+1) | at(lastRd, j)) << 1) | 1) |
					at(lastRd, j+1)
			}
			if rd[j]&matchmask != 0 {
				// This match will almost certainly be better than any
				// existing match, but check anyway.
				if sc := score(d, j-1); sc <= threshold {
					threshold = sc
					bestLoc = j - 1
					if bestLoc > loc {
						// When passing loc, don't exceed our current
						// distance from loc.
						start = MaxInt(1, 2*loc-bestLoc)
					} else {
						// Already passed loc, downhill from here on in.
						break
					}
				}
			}
		}
		if score(d+1, loc) > threshold {
			// No hope for a (better) match at greater error levels.
			break
		}
		lastRd = rd
	}
	return bestLoc
}

// matchAlphabet maps each rune of pattern to a bit mask of the positions at
// which it occurs.
func matchAlphabet(pattern []rune) map[rune]int {
	s := make(map[rune]int)
	for i, c := range pattern {
		s[c] |= 1 << uint(len(pattern)-i-1)
	}
	return s
}
