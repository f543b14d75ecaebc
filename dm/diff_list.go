package dm

// The cleanup passes repeatedly split, merge and drop spans while walking
// an edit script, sometimes stepping back to re-examine an earlier
// equality. Holding the script as a doubly linked list lets them keep
// references to nodes across those edits; nothing is addressed by index.

type diffNode struct {
	Diff
	prev, next *diffNode
}

type diffList struct {
	head, tail *diffNode
}

func newDiffList(diffs []Diff) *diffList {
	l := &diffList{}
	for _, d := range diffs {
		l.insertBefore(nil, d)
	}
	return l
}

// insertBefore adds d before mark, or at the end of the list if mark is nil.
func (l *diffList) insertBefore(mark *diffNode, d Diff) *diffNode {
	n := &diffNode{Diff: d}
	if mark == nil {
		n.prev = l.tail
		if l.tail != nil {
			l.tail.next = n
		} else {
			l.head = n
		}
		l.tail = n
		return n
	}
	n.next = mark
	n.prev = mark.prev
	if mark.prev != nil {
		mark.prev.next = n
	} else {
		l.head = n
	}
	mark.prev = n
	return n
}

func (l *diffList) insertAfter(mark *diffNode, d Diff) *diffNode {
	return l.insertBefore(mark.next, d)
}

func (l *diffList) remove(n *diffNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// slice returns the spans in order, dropping any left empty by the passes.
func (l *diffList) slice() []Diff {
	var diffs []Diff
	for n := l.head; n != nil; n = n.next {
		if n.Text != "" {
			diffs = append(diffs, n.Diff)
		}
	}
	return diffs
}
