package dm

import (
	"fmt"
	"math"
	"unicode/utf8"
)

func MinInt(i, j int) int {
	if i < j {
		return i
	} else {
		return j
	}
}

func MaxInt(i, j int) int {
	if i < j {
		return j
	} else {
		return i
	}
}

func DigitCount(i int) int {
	c := 0
	if i < 0 {
		c++
		i = -i
	} else if i == 0 {
		return 1
	}
	return c + int(math.Floor(math.Log10(float64(i)))) + 1
}

func FormatLineNum(i, maxDigits int) string {
	return fmt.Sprintf("%*d", maxDigits, i)
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// runesIndexOf returns the index of the first instance of pattern in target
// at or after from, or -1.
func runesIndexOf(target, pattern []rune, from int) int {
	if from < 0 {
		from = 0
	}
	last := len(target) - len(pattern)
	for i := from; i <= last; i++ {
		if runesEqual(target[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

// runesLastIndexOf returns the index of the last instance of pattern in
// target starting at or before from, or -1.
func runesLastIndexOf(target, pattern []rune, from int) int {
	i := MinInt(from, len(target)-len(pattern))
	for ; i >= 0; i-- {
		if runesEqual(target[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

// runesSlice returns target[start:end] with both bounds clamped to the
// valid range, mirroring how substring operations on text behave.
func runesSlice(target []rune, start, end int) []rune {
	start = MaxInt(0, MinInt(start, len(target)))
	end = MaxInt(start, MinInt(end, len(target)))
	return target[start:end]
}

func concatRunes(parts ...[]rune) []rune {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]rune, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
