// Command textpatch makes and applies fuzzy character patches between plain
// text files, using the dm engine.
//
//	textpatch make OLD NEW      prints a patch turning OLD into NEW
//	textpatch apply PATCH TEXT  prints TEXT with PATCH applied
//	textpatch delta OLD NEW     prints the compact delta from OLD to NEW
//
// apply exits with status 1 if any hunk could not be placed.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/jamessynge/outlinemerge/dm"
)

type CmdStatus int

const (
	Success CmdStatus = iota
	SomeHunksFailed
	AnError
)

type usageError struct {
	error
}

type cmdInputs struct {
	diffConfig dm.DifferencerConfig
	semantic   bool
	engine     *dm.Engine
}

func (ci *cmdInputs) readFiles(names ...string) ([]string, error) {
	var texts []string
	for _, name := range names {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		glog.V(1).Infof("Loaded %d bytes from %s", len(b), name)
		texts = append(texts, string(b))
	}
	return texts, nil
}

func (ci *cmdInputs) diff(text1, text2 string) []dm.Diff {
	diffs := ci.engine.DiffMain(text1, text2, true)
	if ci.semantic {
		diffs = dm.DiffCleanupSemantic(diffs)
	} else {
		diffs = ci.engine.DiffCleanupEfficiency(diffs)
	}
	glog.V(1).Infof("%d diffs, Levenshtein distance %d", len(diffs), dm.DiffLevenshtein(diffs))
	return diffs
}

func (ci *cmdInputs) run(args []string, w io.Writer) (CmdStatus, error) {
	if len(args) != 3 {
		return AnError, usageError{errors.New("want a command and two files")}
	}
	texts, err := ci.readFiles(args[1:]...)
	if err != nil {
		return AnError, err
	}
	ci.engine = dm.NewEngine(ci.diffConfig)

	switch args[0] {
	case "make":
		patches := ci.engine.PatchMakeFromDiffs(texts[0], ci.diff(texts[0], texts[1]))
		_, err = io.WriteString(w, dm.PatchToText(patches))
		return Success, err

	case "delta":
		_, err = fmt.Fprintln(w, dm.DiffToDelta(ci.diff(texts[0], texts[1])))
		return Success, err

	case "apply":
		patches, err := dm.PatchFromText(texts[0])
		if err != nil {
			return AnError, errors.Wrapf(err, "parsing %s", args[1])
		}
		text, applied := ci.engine.PatchApply(patches, texts[1])
		status := Success
		// Long hunks are split before they are applied, so applied may
		// have more entries than patches.
		for i, ok := range applied {
			if !ok {
				glog.Warningf("hunk %d of %d did not apply", i+1, len(applied))
				status = SomeHunksFailed
			}
		}
		if _, err := io.WriteString(w, text); err != nil {
			return AnError, err
		}
		return status, nil
	}
	return AnError, usageError{errors.Errorf("unknown command %q", args[0])}
}

func FailWithMessage(showUsage bool, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	glog.Error(msg)
	fmt.Fprintln(os.Stderr, msg)
	if showUsage {
		pflag.Usage()
	}
	glog.Flush()
	os.Exit(int(AnError) & 0xff)
}

func main() {
	var ci cmdInputs
	ci.diffConfig.CreateFlags(pflag.CommandLine)
	pflag.BoolVar(&ci.semantic, "semantic", false,
		"Align edits on word and line boundaries, for a human reader.")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	status, err := ci.run(pflag.Args(), os.Stdout)
	if err != nil {
		_, isUsage := err.(usageError)
		FailWithMessage(isUsage, "%s", err)
	}
	glog.Flush()
	os.Exit(int(status) & 0xff)
}
