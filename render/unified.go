package render

import (
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff returns a unified diff of two texts, typically the outline of
// the base and of the merged document. Identical texts yield "".
func UnifiedDiff(aName, bName, a, b string, context int) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", errors.Wrap(err, "UnifiedDiff")
	}
	return text, nil
}
