package dm

import (
	"github.com/golang/glog"
)

// Myers' O(ND) search, run forward from the start of both inputs and
// backward from their ends at the same time, one edit distance d at a time.
// The paths reached by each search are kept per diagonal k (x - y) in v1
// (furthest x going forward) and v2 (furthest x going backward, measured
// from the end). When the two searches overlap on a diagonal, the point of
// overlap lies on an optimal path, so the problem is split there and each
// half diffed separately.
//
// See "An O(ND) Difference Algorithm and Its Variations", Eugene Myers, 1986.
func (p *Engine) diffBisect(text1, text2 []rune, dl deadline) []Diff {
	len1, len2 := len(text1), len(text2)
	maxD := (len1 + len2 + 1) / 2
	vOffset := maxD
	// Two spare slots keep v[vOffset+1] in range for the smallest inputs.
	vLength := 2*maxD + 2

	v1 := make([]int, vLength)
	v2 := make([]int, vLength)
	for i := range v1 {
		v1[i] = -1
		v2[i] = -1
	}
	v1[vOffset+1] = 0
	v2[vOffset+1] = 0

	delta := len1 - len2
	// If the total number of symbols is odd, then the front path will
	// collide with the reverse path.
	front := delta%2 != 0

	// Offsets for the start and end of the k loops, which prevent mapping
	// of space beyond the grid.
	k1start, k1end := 0, 0
	k2start, k2end := 0, 0

	for d := 0; d < maxD; d++ {
		if dl.expired() {
			glog.V(1).Infof("diffBisect: deadline passed at d=%d of %d; giving up on a minimal diff", d, maxD)
			break
		}

		// Walk the front path one step.
		for k1 := -d + k1start; k1 <= d-k1end; k1 += 2 {
			k1Offset := vOffset + k1
			var x1 int
			if k1 == -d || (k1 != d && v1[k1Offset-1] < v1[k1Offset+1]) {
				x1 = v1[k1Offset+1]
			} else {
				x1 = v1[k1Offset-1] + 1
			}
			y1 := x1 - k1
			for x1 < len1 && y1 < len2 && text1[x1] == text2[y1] {
				x1++
				y1++
			}
			v1[k1Offset] = x1
			if x1 > len1 {
				// Ran off the right of the graph.
				k1end += 2
			} else if y1 > len2 {
				// Ran off the bottom of the graph.
				k1start += 2
			} else if front {
				k2Offset := vOffset + delta - k1
				if k2Offset >= 0 && k2Offset < vLength && v2[k2Offset] != -1 {
					// Mirror x2 onto the top-left coordinate system.
					x2 := len1 - v2[k2Offset]
					if x1 >= x2 {
						return p.diffBisectSplit(text1, text2, x1, y1, dl)
					}
				}
			}
		}

		// Walk the reverse path one step.
		for k2 := -d + k2start; k2 <= d-k2end; k2 += 2 {
			k2Offset := vOffset + k2
			var x2 int
			if k2 == -d || (k2 != d && v2[k2Offset-1] < v2[k2Offset+1]) {
				x2 = v2[k2Offset+1]
			} else {
				x2 = v2[k2Offset-1] + 1
			}
			y2 := x2 - k2
			for x2 < len1 && y2 < len2 && text1[len1-x2-1] == text2[len2-y2-1] {
				x2++
				y2++
			}
			v2[k2Offset] = x2
			if x2 > len1 {
				// Ran off the left of the graph.
				k2end += 2
			} else if y2 > len2 {
				// Ran off the top of the graph.
				k2start += 2
			} else if !front {
				k1Offset := vOffset + delta - k2
				if k1Offset >= 0 && k1Offset < vLength && v1[k1Offset] != -1 {
					x1 := v1[k1Offset]
					y1 := vOffset + x1 - k1Offset
					// Mirror x2 onto the top-left coordinate system.
					x2 = len1 - x2
					if x1 >= x2 {
						return p.diffBisectSplit(text1, text2, x1, y1, dl)
					}
				}
			}
		}
	}

	// Out of time, or the inputs have nothing in common.
	return []Diff{{DiffDelete, string(text1)}, {DiffInsert, string(text2)}}
}

// diffBisectSplit diffs the two halves of the inputs on either side of the
// point (x, y), and joins the results.
func (p *Engine) diffBisectSplit(text1, text2 []rune, x, y int, dl deadline) []Diff {
	diffs := p.diffMainRunes(text1[:x], text2[:y], false, dl)
	return append(diffs, p.diffMainRunes(text1[x:], text2[y:], false, dl)...)
}
