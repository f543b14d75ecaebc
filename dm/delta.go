package dm

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Literal text in deltas and patches is percent-encoded, except for the
// characters a URI may carry unescaped, so that the result is one line of
// mostly readable ASCII.
var unescaper = strings.NewReplacer(
	"%21", "!", "%7E", "~", "%27", "'",
	"%28", "(", "%29", ")", "%3B", ";",
	"%2F", "/", "%3F", "?", "%3A", ":",
	"%40", "@", "%26", "&", "%3D", "=",
	"%2B", "+", "%24", "$", "%2C", ",",
	"%23", "#", "%2A", "*")

func escapeText(text string) string {
	// QueryEscape writes a space as '+' and a '+' as %2B.
	return unescaper.Replace(strings.ReplaceAll(url.QueryEscape(text), "+", " "))
}

func unescapeText(text string) (string, error) {
	// A '+' here is literal, not an encoded space.
	return url.QueryUnescape(strings.ReplaceAll(text, "+", "%2B"))
}

// DiffToDelta encodes an edit script as a compact, tab separated delta:
// "=3\t-2\t+ing" keeps 3 runes, deletes 2 runes and inserts "ing". Combined
// with the first input the delta reproduces the edit script.
func DiffToDelta(diffs []Diff) string {
	parts := make([]string, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case DiffInsert:
			parts = append(parts, "+"+escapeText(d.Text))
		case DiffDelete:
			parts = append(parts, "-"+strconv.Itoa(runeCount(d.Text)))
		case DiffEqual:
			parts = append(parts, "="+strconv.Itoa(runeCount(d.Text)))
		}
	}
	return strings.Join(parts, "\t")
}

// DiffFromDelta decodes a delta produced by DiffToDelta, given the first
// input it was made from.
func DiffFromDelta(text1, delta string) ([]Diff, error) {
	runes := []rune(text1)
	var diffs []Diff
	pointer := 0
	for _, token := range strings.Split(delta, "\t") {
		if token == "" {
			// Blank tokens are ok (from a trailing \t).
			continue
		}
		param := token[1:]
		switch op := token[0]; op {
		case '+':
			text, err := unescapeText(param)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedPatch, "bad escape in delta token %q: %v", token, err)
			}
			diffs = append(diffs, Diff{DiffInsert, text})
		case '-', '=':
			n, err := strconv.Atoi(param)
			if err != nil || n < 0 {
				return nil, errors.Wrapf(ErrMalformedPatch, "invalid length in delta token %q", token)
			}
			if pointer+n > len(runes) {
				return nil, errors.Wrapf(ErrMalformedPatch,
					"delta token %q runs past the end of the %d rune source text", token, len(runes))
			}
			text := string(runes[pointer : pointer+n])
			pointer += n
			if op == '=' {
				diffs = append(diffs, Diff{DiffEqual, text})
			} else {
				diffs = append(diffs, Diff{DiffDelete, text})
			}
		default:
			return nil, errors.Wrapf(ErrMalformedPatch, "invalid operation %q in delta", op)
		}
	}
	if pointer != len(runes) {
		return nil, errors.Wrapf(ErrMalformedPatch,
			"delta covers %d runes of a %d rune source text", pointer, len(runes))
	}
	return diffs, nil
}
