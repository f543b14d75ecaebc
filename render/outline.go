// Package render turns blocks and merge results into text: the outline a
// parser would have read them from, an interleaved listing of operations for
// review, and a unified diff.
package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/jamessynge/outlinemerge/block"
)

// Options controls how blocks are written out.
type Options struct {
	// Repeated once per level in front of a block.
	IndentMarker string
	// Written before the first line of a block; continuation lines are
	// indented by its width instead.
	BulletMarker string
	// Token in a block's body that stands for the block's identity.
	IdentityPlaceholder string

	// Colorize the interleaved listing.
	Color bool
	// Prefix interleaved lines with the anchor (base position) they belong to.
	LineNumbers bool
}

var DefaultOptions = Options{
	IndentMarker:        "  ",
	BulletMarker:        "- ",
	IdentityPlaceholder: "((id))",
}

// Outline writes blocks as an indented outline. ids, if not nil, gives the
// identity to substitute for the placeholder in each block's body (see
// merge.AttachIdentities); otherwise the block's own identity is used.
func Outline(w io.Writer, blocks []*block.Block, ids []string, opts Options) error {
	bw := bufio.NewWriter(w)
	continuation := strings.Repeat(" ", len(opts.BulletMarker))
	for i, b := range blocks {
		id := b.Identity
		if i < len(ids) {
			id = ids[i]
		}
		body := b.Body
		if opts.IdentityPlaceholder != "" {
			body = strings.ReplaceAll(body, opts.IdentityPlaceholder, id)
		}
		indent := strings.Repeat(opts.IndentMarker, b.Level)
		for n, line := range strings.Split(body, "\n") {
			bw.WriteString(indent)
			if n == 0 {
				bw.WriteString(opts.BulletMarker)
			} else {
				bw.WriteString(continuation)
			}
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// OutlineString is Outline into a string.
func OutlineString(blocks []*block.Block, ids []string, opts Options) string {
	var sb strings.Builder
	Outline(&sb, blocks, ids, opts)
	return sb.String()
}
