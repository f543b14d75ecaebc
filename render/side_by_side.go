package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/dm"
)

// Format for side-by-side display of a block diff, base on the left and the
// other sequence on the right; both appear in order.
//
// Intended format:
//
// AAA aaaaaaaaa C bbbbbbbbb BBB
//
// Where AAA and BBB are the positions of the blocks in their sequences, aaaa
// and bbbb are the lines of the blocks (indented by level). If a block spans
// several lines, or a line wraps, the position is shown as the double quote
// character, meaning ditto.
// The C character (code) in the middle represents the kind of change:
//   = means the block is the same
//   ! means the block was edited (same logical block, new body or level)
//   < means the block was deleted from base
//   > means the block was inserted

// Inputs to display process, unrelated to the actual blocks.
type SideBySideConfig struct {
	// How many columns (mono-spaced characters) does the output 'device' have?
	DisplayColumns int

	DisplayLineNumbers bool
	WrapLongLines      bool // Wrap (vs. truncate) long lines.

	SpacesPerTab int

	// Number of unchanged blocks to output adjacent to changes. If 0, then
	// all unchanged blocks are output.
	ContextBlocks int

	IndentMarker string
}

var DefaultSideBySideConfig = SideBySideConfig{
	DisplayColumns:     80,
	DisplayLineNumbers: true,
	WrapLongLines:      true,
	SpacesPerTab:       8,
	ContextBlocks:      3,
	IndentMarker:       "  ",
}

// sideRow pairs the base block (if any) with its counterpart (if any).
type sideRow struct {
	a, b           *block.Block
	aIndex, bIndex int
	code           byte
}

type sideBySideState struct {
	cfg  SideBySideConfig
	rows []sideRow
	w    io.Writer
	err  error

	aDigitColumns, aOutputColumns int
	bDigitColumns, bOutputColumns int

	lineFormat string
}

func (state *sideBySideState) initialize(aCount, bCount int) {
	// Subtract space for the code character and a space on either side.
	availableOutputColumns := state.cfg.DisplayColumns - 3

	if state.cfg.DisplayLineNumbers {
		state.aDigitColumns = dm.DigitCount(dm.MaxInt(2, aCount))
		state.bDigitColumns = dm.DigitCount(dm.MaxInt(2, bCount))
		availableOutputColumns -= (state.aDigitColumns + state.bDigitColumns + 2)
		state.lineFormat = fmt.Sprintf("%%%ds %%s %%c %%s %%-%ds\n", state.aDigitColumns, state.bDigitColumns)
	} else {
		state.lineFormat = "%s %c %s\n"
	}

	state.aOutputColumns = dm.MaxInt(availableOutputColumns/2, 10)
	state.bOutputColumns = state.aOutputColumns

	if glog.V(2) {
		glog.Info(spew.Sdump(state.cfg))
	}
}

func (p *SideBySideConfig) lineToOutputBufs(line string, numColumns int) (bufs []string) {
	var curBuf []rune
	stop := false
	doOutput := func(r rune) {
		if len(curBuf) >= numColumns {
			bufs = append(bufs, string(curBuf))
			stop = !p.WrapLongLines
			curBuf = make([]rune, 0, numColumns)
		}
		curBuf = append(curBuf, r)
	}
	for _, r := range line {
		if r == '\t' {
			bo := len(curBuf) + 1
			nextTabStop := bo + (p.SpacesPerTab - bo%p.SpacesPerTab)
			for len(curBuf) < nextTabStop && len(curBuf) < numColumns {
				doOutput(' ')
			}
		} else if r == '\r' {
			// Suppress
		} else if unicode.IsPrint(r) {
			doOutput(r)
		} else {
			doOutput('·')
		}
		if stop {
			return bufs[0:1]
		}
	}
	if len(curBuf) > 0 || len(bufs) == 0 {
		bufs = append(bufs, string(curBuf))
	}
	return bufs
}

func (state *sideBySideState) blockToOutputBufs(b *block.Block, numColumns int) (bufs []string) {
	if b == nil {
		return nil
	}
	indent := strings.Repeat(state.cfg.IndentMarker, b.Level)
	for _, line := range strings.Split(b.Body, "\n") {
		bufs = append(bufs, state.cfg.lineToOutputBufs(indent+line, numColumns)...)
	}
	return bufs
}

func selectOutputBuf(bufs []string, n, cols int) string {
	var buf string
	if n < len(bufs) {
		buf = bufs[n]
	}
	// Pad short bufs
	if pad := cols - len([]rune(buf)); pad > 0 {
		buf += strings.Repeat(" ", pad)
	}
	return buf
}

func (state *sideBySideState) printf(format string, args ...interface{}) {
	if state.err == nil {
		_, state.err = fmt.Fprintf(state.w, format, args...)
	}
}

func (state *sideBySideState) outputRow(row sideRow) {
	aBufs := state.blockToOutputBufs(row.a, state.aOutputColumns)
	bBufs := state.blockToOutputBufs(row.b, state.bOutputColumns)

	limit := dm.MaxInt(1, dm.MaxInt(len(aBufs), len(bBufs))) // If both are blank, want at least 1.

	glog.V(2).Infof("outputRow: %d, %d, %c;  #aBufs %d; #bBufs %d; limit %d",
		row.aIndex, row.bIndex, row.code, len(aBufs), len(bBufs), limit)

	for n := 0; n < limit; n++ {
		aBuf := selectOutputBuf(aBufs, n, state.aOutputColumns)
		bBuf := selectOutputBuf(bBufs, n, state.bOutputColumns)
		if !state.cfg.DisplayLineNumbers {
			state.printf(state.lineFormat, aBuf, row.code, bBuf)
			continue
		}
		var aLineNo, bLineNo string
		if row.a != nil {
			aLineNo = "\""
			if n == 0 {
				aLineNo = fmt.Sprintf("%d", row.aIndex+1)
			}
		}
		if row.b != nil {
			bLineNo = "\""
			if n == 0 {
				bLineNo = fmt.Sprintf("%d", row.bIndex+1)
			}
		}
		state.printf(state.lineFormat, aLineNo, aBuf, row.code, bBuf, bLineNo)
	}
}

func (state *sideBySideState) outputRows() {
	context := state.cfg.ContextBlocks
	for i := 0; i < len(state.rows); {
		if state.rows[i].code != '=' {
			state.outputRow(state.rows[i])
			i++
			continue
		}
		// A run of unchanged blocks.
		end := i
		for end < len(state.rows) && state.rows[end].code == '=' {
			end++
		}
		if context > 0 && end-i > 2*context {
			for _, row := range state.rows[i : i+context] {
				state.outputRow(row)
			}
			state.printf("...\n")
			for _, row := range state.rows[end-context : end] {
				state.outputRow(row)
			}
		} else {
			for _, row := range state.rows[i:end] {
				state.outputRow(row)
			}
		}
		i = end
	}
}

// anchorsToRows lines up the blocks of both sequences in order.
func anchorsToRows(anchors block.Anchors) (rows []sideRow, aCount, bCount int) {
	for k, anchor := range anchors {
		if op := anchor.Outcome; op != nil {
			row := sideRow{a: op.Base, aIndex: k - 1, bIndex: -1, code: '<'}
			if op.Type == block.OpEqual {
				row.b, row.bIndex, row.code = op.Block, bCount, '='
				if op.Changed() {
					row.code = '!'
				}
				bCount++
			}
			rows = append(rows, row)
			aCount++
		}
		for _, op := range anchor.Inserts {
			rows = append(rows, sideRow{b: op.Block, aIndex: -1, bIndex: bCount, code: '>'})
			bCount++
		}
	}
	return rows, aCount, bCount
}

// FormatSideBySide writes a block diff as two columns.
func FormatSideBySide(w io.Writer, anchors block.Anchors, config SideBySideConfig) error {
	rows, aCount, bCount := anchorsToRows(anchors)
	state := &sideBySideState{
		cfg:  config,
		rows: rows,
		w:    w,
	}
	if state.cfg.SpacesPerTab <= 0 {
		state.cfg.SpacesPerTab = DefaultSideBySideConfig.SpacesPerTab
	}
	state.initialize(aCount, bCount)
	state.outputRows()
	return state.err
}
