package dm

// Finding the symbols at the start and end that are the same (the common
// prefix and suffix) of two inputs lets the diff shrink the region that
// needs real searching.

// commonPrefixLength returns the number of symbols common to the start of
// both inputs. Binary search over the match length: comparing whole spans
// is cheap relative to stepping one symbol at a time when the prefix is
// long.
func commonPrefixLength(text1, text2 []rune) int {
	if len(text1) == 0 || len(text2) == 0 || text1[0] != text2[0] {
		return 0
	}
	lo, hi := 0, MinInt(len(text1), len(text2))
	mid, start := hi, 0
	for lo < mid {
		if runesEqual(text1[start:mid], text2[start:mid]) {
			lo = mid
			start = lo
		} else {
			hi = mid
		}
		mid = (hi-lo)/2 + lo
	}
	return mid
}

// commonSuffixLength returns the number of symbols common to the end of
// both inputs.
func commonSuffixLength(text1, text2 []rune) int {
	len1, len2 := len(text1), len(text2)
	if len1 == 0 || len2 == 0 || text1[len1-1] != text2[len2-1] {
		return 0
	}
	lo, hi := 0, MinInt(len1, len2)
	mid, end := hi, 0
	for lo < mid {
		if runesEqual(text1[len1-mid:len1-end], text2[len2-mid:len2-end]) {
			lo = mid
			end = lo
		} else {
			hi = mid
		}
		mid = (hi-lo)/2 + lo
	}
	return mid
}

// commonOverlapLength returns the length of the longest suffix of text1
// that is also a prefix of text2.
func commonOverlapLength(text1, text2 []rune) int {
	len1, len2 := len(text1), len(text2)
	if len1 == 0 || len2 == 0 {
		return 0
	}
	// Only the last len2 symbols of text1 (or first len1 of text2) can
	// take part.
	if len1 > len2 {
		text1 = text1[len1-len2:]
	} else if len1 < len2 {
		text2 = text2[:len1]
	}
	length := MinInt(len1, len2)
	if runesEqual(text1, text2) {
		return length
	}

	// Start by looking for a single symbol match, and increase length
	// until no match is found.
	best, n := 0, 1
	for {
		pattern := text1[length-n:]
		found := runesIndexOf(text2, pattern, 0)
		if found == -1 {
			return best
		}
		n += found
		if found == 0 || runesEqual(text1[length-n:], text2[:n]) {
			best = n
			n++
		}
	}
}

// DiffCommonPrefix returns the number of runes common to the start of both
// strings.
func DiffCommonPrefix(text1, text2 string) int {
	return commonPrefixLength([]rune(text1), []rune(text2))
}

// DiffCommonSuffix returns the number of runes common to the end of both
// strings.
func DiffCommonSuffix(text1, text2 string) int {
	return commonSuffixLength([]rune(text1), []rune(text2))
}

// DiffCommonOverlap returns the number of runes at the end of text1 that
// are also at the start of text2.
func DiffCommonOverlap(text1, text2 string) int {
	return commonOverlapLength([]rune(text1), []rune(text2))
}
