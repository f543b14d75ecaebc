// Command outlinemerge diffs and merges outlines stored as YAML block
// documents (see block.Document).
//
// Usage:
//
//	outlinemerge diff BASE OTHER
//	outlinemerge merge [--format=yaml|outline|interleaved|unified] BASE BRANCH...
//	outlinemerge identities BASE BRANCH...
//
// Unlike diff3, a merge of any number of branches always produces a result:
// conflicting edits are kept side by side, or dropped by policy, and listed
// as notes. Exit status is 0 if there were no differences (diff) or no
// notes (merge), 1 if there were, and 2 on error.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jamessynge/outlinemerge/merge"
	"github.com/jamessynge/outlinemerge/render"
)

type CmdStatus int

const (
	NoDifferences CmdStatus = iota
	FoundDifferences
	AnError
)

// app holds the settings shared by all subcommands, and the status of the
// one that ran.
type app struct {
	config     merge.Config
	configFile string
	opts       render.Options

	// Report only the exit status.
	brief bool

	status CmdStatus
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "outlinemerge",
		Short:         "Block-aware diff and N-way merge of outlines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			glog.V(1).Infof("outlinemerge %s %q", cmd.Name(), args)
			if a.configFile == "" {
				return nil
			}
			return loadConfigFile(a.configFile, &a.config, cmd.Flags())
		},
	}

	a.config = merge.DefaultConfig()
	a.opts = render.DefaultOptions
	f := root.PersistentFlags()
	a.config.CreateFlags(f)
	f.StringVar(&a.configFile, "config", "", `
		TOML file with merge settings (delete-policy, conflict-policy and a
		[differencer] table). Flags given on the command line win.
		`)
	f.BoolVar(&a.brief, "brief", false, `
		Report (via exit code) whether there were differences (for diff) or
		notes (for merge), without printing the result.
		`)
	f.BoolVar(&a.opts.Color, "color", false, "Colorize interleaved output.")
	f.BoolVar(&a.opts.LineNumbers, "line-numbers", false,
		"Prefix interleaved output with base positions.")
	f.StringVar(&a.opts.IndentMarker, "indent", a.opts.IndentMarker,
		"Indent written once per level in outline output.")
	f.StringVar(&a.opts.BulletMarker, "bullet", a.opts.BulletMarker,
		"Marker written before each block in outline output.")
	f.StringVar(&a.opts.IdentityPlaceholder, "id-placeholder", a.opts.IdentityPlaceholder,
		"Token in block bodies replaced by the block's identity in outline output.")

	root.AddCommand(newDiffCommand(a), newMergeCommand(a), newIdentitiesCommand(a))
	return root
}

// FailWithMessage logs and prints msg, then exits with status AnError.
func FailWithMessage(cmd *cobra.Command, showUsage bool, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	glog.Error(msg)
	fmt.Fprintln(os.Stderr, msg)
	if showUsage {
		cmd.Usage()
	}
	glog.Flush()
	os.Exit(int(AnError) & 0xff)
}

func main() {
	// Exposes glog's -v, -logtostderr and friends as --v etc.
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	// Values arrive through pflag; this only marks the go flags as parsed.
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	a := &app{}
	root := newRootCommand(a)
	root.PersistentFlags().AddFlagSet(pflag.CommandLine)
	if cmd, err := root.ExecuteC(); err != nil {
		FailWithMessage(cmd, isUsageError(err), "%s", err)
	}
	glog.Flush()
	os.Exit(int(a.status) & 0xff)
}
