package render

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/golang/glog"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/dm"
	"github.com/jamessynge/outlinemerge/merge"
)

// interleaved writes one line per body line of each op, prefixed by '='
// (unchanged), '-' (removed) or '+' (added). A changed block is written as
// its base version removed and its new version added, under an @@ header.
type interleaved struct {
	w         io.Writer
	opts      Options
	maxDigits int
	err       error

	equal, del, ins, header, note *color.Color
}

func newInterleaved(w io.Writer, opts Options, anchors int) *interleaved {
	p := &interleaved{
		w:         w,
		opts:      opts,
		maxDigits: dm.DigitCount(dm.MaxInt(anchors-1, 1)),
		equal:     color.New(color.Reset),
		del:       color.New(color.FgRed),
		ins:       color.New(color.FgGreen),
		header:    color.New(color.FgCyan),
		note:      color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.equal, p.del, p.ins, p.header, p.note} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *interleaved) printf(c *color.Color, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = c.Fprintf(p.w, format, args...)
}

func (p *interleaved) printLines(c *color.Color, anchor int, b *block.Block, prefix rune) {
	indent := strings.Repeat(p.opts.IndentMarker, b.Level)
	for _, line := range strings.Split(b.Body, "\n") {
		if p.opts.LineNumbers {
			p.printf(p.equal, "%s ", dm.FormatLineNum(anchor, p.maxDigits))
		}
		p.printf(c, "%c\t%s%s\n", prefix, indent, line)
	}
}

func (p *interleaved) printOp(anchor int, op block.Op) {
	glog.V(3).Infof("interleaved: anchor %d: %v", anchor, op)
	switch {
	case op.Type == block.OpDelete:
		p.printf(p.header, "@@ -%d @@\n", anchor)
		p.printLines(p.del, anchor, op.Base, '-')
	case op.Type == block.OpInsert:
		p.printf(p.header, "@@ +%d @@\n", anchor)
		p.printLines(p.ins, anchor, op.Block, '+')
	case op.Changed():
		p.printf(p.header, "@@ -%d +%d @@\n", anchor, anchor)
		p.printLines(p.del, anchor, op.Base, '-')
		p.printLines(p.ins, anchor, op.Block, '+')
	default:
		p.printLines(p.equal, anchor, op.Block, '=')
	}
	if op.Note != "" {
		p.printf(p.note, "#\t%s\n", op.Note)
	}
}

// FormatInterleaved lists the operations of a merge result in order,
// followed by its notes.
func FormatInterleaved(w io.Writer, result *merge.Result, opts Options) error {
	p := newInterleaved(w, opts, len(result.Groups))
	for _, g := range result.Groups {
		for _, op := range g.Ops {
			p.printOp(g.Anchor, op)
		}
	}
	if len(result.Notes) > 0 {
		p.printf(p.note, "\n%d notes:\n", len(result.Notes))
		for _, n := range result.Notes {
			p.printf(p.note, "  %v\n", n)
		}
	}
	return p.err
}

// FormatAnchors lists the result of diffing two block sequences.
func FormatAnchors(w io.Writer, anchors block.Anchors, opts Options) error {
	p := newInterleaved(w, opts, len(anchors))
	for k, anchor := range anchors {
		if anchor.Outcome != nil {
			p.printOp(k, *anchor.Outcome)
		}
		for _, op := range anchor.Inserts {
			p.printOp(k, op)
		}
	}
	return p.err
}
