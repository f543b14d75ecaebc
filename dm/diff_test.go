package dm

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by step every time it is read, so a deadline passes
// after a known number of checks without any real waiting.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func unboundedEngine() *Engine {
	config := DefaultDifferencerConfig()
	config.Timeout = 0
	return NewEngine(config)
}

func TestSymbolMapping(t *testing.T) {
	for _, i := range []int{0, 1, 'a', surrogateMin - 1, surrogateMin, surrogateMin + 1, MaxSymbols - 1} {
		r := IndexToSymbol(i)
		assert.False(t, r >= surrogateMin && r < surrogateMin+surrogateSize, "index %d mapped into surrogates", i)
		assert.Equal(t, i, SymbolToIndex(r), "index %d", i)
		// Must survive a trip through a string.
		assert.Equal(t, []rune{r}, []rune(string([]rune{r})), "index %d", i)
	}
}

func TestCommonEnds(t *testing.T) {
	assert.Equal(t, 0, DiffCommonPrefix("abc", "xyz"))
	assert.Equal(t, 4, DiffCommonPrefix("1234abcdef", "1234xyz"))
	assert.Equal(t, 4, DiffCommonPrefix("1234", "1234xyz"))

	assert.Equal(t, 0, DiffCommonSuffix("abc", "xyz"))
	assert.Equal(t, 4, DiffCommonSuffix("abcdef1234", "xyz1234"))
	assert.Equal(t, 4, DiffCommonSuffix("1234", "xyz1234"))

	assert.Equal(t, 0, DiffCommonOverlap("", "abcd"))
	assert.Equal(t, 3, DiffCommonOverlap("abc", "abcd"))
	assert.Equal(t, 0, DiffCommonOverlap("123456", "abcd"))
	assert.Equal(t, 3, DiffCommonOverlap("123456xxx", "xxxabcd"))
	// Different runes that look alike don't overlap.
	assert.Equal(t, 0, DiffCommonOverlap("fi", "ﬁi"))
}

func TestHalfMatch(t *testing.T) {
	engine := NewDefaultEngine()
	// A clock that never moves: the deadline is set but never passes.
	dl := newDeadline(&stepClock{}, time.Second)
	for _, tc := range []struct {
		text1, text2 string
		want         []string // text1A, text1B, text2A, text2B, common
	}{
		{"1234567890", "abcdef", nil},
		{"12345", "23", nil},
		{"1234567890", "a345678z", []string{"12", "90", "a", "z", "345678"}},
		{"a345678z", "1234567890", []string{"a", "z", "12", "90", "345678"}},
		{"abc56789z", "1234567890", []string{"abc", "z", "1234", "0", "56789"}},
		{"a23456xyz", "1234567890", []string{"a", "xyz", "1", "7890", "23456"}},
		{"121231234123451234123121", "a1234123451234z", []string{"12123", "123121", "a", "z", "1234123451234"}},
		{"x-=-=-=-=-=-=-=-=-=-=-=-=", "xx-=-=-=-=-=-=-=", []string{"", "-=-=-=-=-=", "x", "", "x-=-=-=-=-=-=-="}},
		{"-=-=-=-=-=-=-=-=-=-=-=-=y", "-=-=-=-=-=-=-=yy", []string{"-=-=-=-=-=", "", "", "y", "-=-=-=-=-=-=-=y"}},
		{"qHilloHelloHew", "xHelloHeHulloy", []string{"qHillo", "w", "x", "Hulloy", "HelloHe"}},
		// Equal lengths: the halves stay with their own inputs.
		{"xx123456", "123456yy", []string{"xx", "", "", "yy", "123456"}},
	} {
		hm := engine.halfMatch([]rune(tc.text1), []rune(tc.text2), dl)
		if tc.want == nil {
			assert.Nil(t, hm, "%q, %q", tc.text1, tc.text2)
			continue
		}
		require.NotNil(t, hm, "%q, %q", tc.text1, tc.text2)
		got := []string{string(hm.text1A), string(hm.text1B), string(hm.text2A), string(hm.text2B), string(hm.common)}
		assert.Equal(t, tc.want, got, "%q, %q", tc.text1, tc.text2)
	}

	// Without a deadline the minimal diff is always computed.
	assert.Nil(t, engine.halfMatch([]rune("qHilloHelloHew"), []rune("xHelloHeHulloy"), deadline{}))
}

func TestDiffMainSimple(t *testing.T) {
	p := unboundedEngine()
	tests := []struct {
		text1, text2 string
		want         []Diff
	}{
		{"", "", nil},
		{"abc", "abc", []Diff{{DiffEqual, "abc"}}},
		{"abc", "ab123c", []Diff{{DiffEqual, "ab"}, {DiffInsert, "123"}, {DiffEqual, "c"}}},
		{"a123bc", "abc", []Diff{{DiffEqual, "a"}, {DiffDelete, "123"}, {DiffEqual, "bc"}}},
		{"abc", "a123b456c", []Diff{
			{DiffEqual, "a"}, {DiffInsert, "123"}, {DiffEqual, "b"}, {DiffInsert, "456"}, {DiffEqual, "c"}}},
		{"a", "b", []Diff{{DiffDelete, "a"}, {DiffInsert, "b"}}},
		{"", "xyz", []Diff{{DiffInsert, "xyz"}}},
		{"xyz", "", []Diff{{DiffDelete, "xyz"}}},
	}
	for _, tc := range tests {
		got := p.DiffMain(tc.text1, tc.text2, false)
		if d := cmp.Diff(tc.want, got); d != "" {
			t.Errorf("DiffMain(%q, %q) mismatch (-want +got):\n%s", tc.text1, tc.text2, d)
		}
	}
}

func TestDiffMainRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"Apples are a fruit.", "Bananas are also fruit."},
		{"ax\t", "ڀx\u0000"},
		{"1ayb2", "abxab"},
		{"abcy", "xaxcxabc"},
		{"ABCDa=bcd=efghijklmnopqrsEFGHIJKLMNOefg", "a-bcd-efghijklmnopqrs"},
		{"a [[Pennsylvania]] and [[New", " and [[Pennsylvania]]"},
		{"The quick brown fox jumps over the lazy dog.", "That quick brown fox jumped over a lazy dog."},
		{"日本語のテキスト", "日本のテキストです"},
		{"xx123456", "123456yy"},
		{"😀é😀éaéb😀", "é😀éaa😀baa"},
	}
	engines := map[string]*Engine{
		"unbounded": unboundedEngine(),
		"default":   NewDefaultEngine(),
	}
	for name, p := range engines {
		for _, pair := range pairs {
			diffs := p.DiffMain(pair[0], pair[1], false)
			assert.Equal(t, pair[0], DiffText1(diffs), "%s: %q", name, pair)
			assert.Equal(t, pair[1], DiffText2(diffs), "%s: %q", name, pair)
		}
	}

	assert.Equal(t, []Diff{{DiffDelete, "xx"}, {DiffEqual, "123456"}, {DiffInsert, "yy"}},
		NewDefaultEngine().DiffMain("xx123456", "123456yy", false))
}

func TestDiffMainLineMode(t *testing.T) {
	p := unboundedEngine()
	var text1, text2 string
	for i := 0; i < 20; i++ {
		text1 += "1234567890\n"
		text2 += "abcdefghij\n"
	}
	// Line mode and character mode agree when nothing is in common.
	assert.Equal(t, p.DiffMain(text1, text2, false), p.DiffMain(text1, text2, true))

	text1 = "1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n" +
		"1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n"
	text2 = "abcdefghij\n1234567890\n1234567890\n1234567890\nabcdefghij\n" +
		"1234567890\n1234567890\n1234567890\nabcdefghij\n1234567890\n1234567890\n"
	diffs := p.DiffMain(text1, text2, true)
	assert.Equal(t, text1, DiffText1(diffs))
	assert.Equal(t, text2, DiffText2(diffs))
}

func TestDiffLinesToRunes(t *testing.T) {
	runes1, runes2, lines := DiffLinesToRunes("alpha\nbeta\nalpha\n", "beta\nalpha\nbeta\n")
	assert.Equal(t, []string{"alpha\n", "beta\n"}, lines)
	assert.Equal(t, []rune{IndexToSymbol(0), IndexToSymbol(1), IndexToSymbol(0)}, runes1)
	assert.Equal(t, []rune{IndexToSymbol(1), IndexToSymbol(0), IndexToSymbol(1)}, runes2)

	diffs := DiffRunesToLines([]Diff{
		{DiffEqual, string(runes1[:1])},
		{DiffInsert, string(runes2[1:])},
	}, lines)
	assert.Equal(t, []Diff{{DiffEqual, "alpha\n"}, {DiffInsert, "alpha\nbeta\n"}}, diffs)

	// No trailing newline on the last line.
	_, runes2, lines = DiffLinesToRunes("a", "b")
	assert.Equal(t, []string{"a", "b"}, lines)
	assert.Len(t, runes2, 1)
}

func TestDiffMainDeadline(t *testing.T) {
	config := DefaultDifferencerConfig()
	config.Timeout = time.Second
	clock := &stepClock{now: time.Unix(1000, 0), step: 2 * time.Second}
	p := NewEngine(config, WithClock(clock))

	// No common substring long enough for a half-match, so only bisection
	// could find the interleaved matches; it runs out of time first.
	text1, text2 := "a1b2c3d4e5f6", "1a2b3c4d5e6f"
	got := p.DiffMain(text1, text2, false)
	assert.Equal(t, []Diff{{DiffDelete, text1}, {DiffInsert, text2}}, got)

	// With no deadline the interleaved matches are found.
	got = unboundedEngine().DiffMain(text1, text2, false)
	assert.Greater(t, len(got), 2)
	assert.Equal(t, text1, DiffText1(got))
	assert.Equal(t, text2, DiffText2(got))
}

func TestDiffLevenshtein(t *testing.T) {
	assert.Equal(t, 4, DiffLevenshtein([]Diff{{DiffDelete, "abc"}, {DiffInsert, "1234"}, {DiffEqual, "xyz"}}))
	assert.Equal(t, 4, DiffLevenshtein([]Diff{{DiffEqual, "xyz"}, {DiffDelete, "abc"}, {DiffInsert, "1234"}}))
	assert.Equal(t, 7, DiffLevenshtein([]Diff{{DiffDelete, "abc"}, {DiffEqual, "xyz"}, {DiffInsert, "1234"}}))
}

func TestDiffXIndex(t *testing.T) {
	assert.Equal(t, 5, DiffXIndex([]Diff{{DiffDelete, "a"}, {DiffInsert, "1234"}, {DiffEqual, "xyz"}}, 2))
	assert.Equal(t, 1, DiffXIndex([]Diff{{DiffEqual, "a"}, {DiffDelete, "1234"}, {DiffEqual, "xyz"}}, 3))
}

func TestDiffPrettyText(t *testing.T) {
	diffs := []Diff{{DiffEqual, "a"}, {DiffDelete, "b"}, {DiffInsert, "c"}}
	assert.Equal(t, "a{-b-}{+c+}", DiffPrettyText(diffs))
}

func TestEngineSDump(t *testing.T) {
	s := NewDefaultEngine().SDumpToDepth(3)
	require.NotEmpty(t, s)
	assert.Contains(t, s, "EditCost")
}
