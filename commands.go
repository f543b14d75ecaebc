package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jamessynge/outlinemerge/block"
	"github.com/jamessynge/outlinemerge/merge"
	"github.com/jamessynge/outlinemerge/render"
)

type usageError struct {
	error
}

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

func atLeastArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{errors.Errorf("%s: want at least %d files, got %d", cmd.Name(), n, len(args))}
		}
		return nil
	}
}

func readBlocks(fileName string, origin block.Origin) ([]*block.Block, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	blocks, err := block.ReadDocument(bufio.NewReader(f), origin)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", fileName)
	}
	glog.Infof("Loaded %d blocks from %s", len(blocks), fileName)
	return blocks, nil
}

// readInputs reads the base document and each branch.
func readInputs(args []string) (base []*block.Block, branches [][]*block.Block, err error) {
	if base, err = readBlocks(args[0], block.OriginBase); err != nil {
		return nil, nil, err
	}
	for _, fileName := range args[1:] {
		branch, err := readBlocks(fileName, block.OriginBranch)
		if err != nil {
			return nil, nil, err
		}
		branches = append(branches, branch)
	}
	return base, branches, nil
}

func newDiffCommand(a *app) *cobra.Command {
	var sideBySide bool
	sbs := render.DefaultSideBySideConfig
	cmd := &cobra.Command{
		Use:   "diff BASE OTHER",
		Short: "List the block operations that turn BASE into OTHER",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return usageError{errors.Errorf("diff: want 2 files, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			base, others, err := readInputs(args)
			if err != nil {
				return err
			}
			engine := merge.NewMerger(a.config).Engine()
			anchors, err := block.NewEncoder(block.WithEngine(engine)).DiffBlocks(base, others[0])
			if err != nil {
				return err
			}
			if anchors.HasChanges() {
				a.status = FoundDifferences
			}
			if a.brief {
				return nil
			}
			if sideBySide {
				sbs.DisplayLineNumbers = a.opts.LineNumbers
				sbs.IndentMarker = a.opts.IndentMarker
				return render.FormatSideBySide(cmd.OutOrStdout(), anchors, sbs)
			}
			return render.FormatAnchors(cmd.OutOrStdout(), anchors, a.opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&sideBySide, "side-by-side", false, "Display the diff side-by-side.")
	f.IntVar(&sbs.DisplayColumns, "width", sbs.DisplayColumns,
		"Output width for --side-by-side.")
	f.IntVar(&sbs.ContextBlocks, "context", sbs.ContextBlocks, `
		Number of unchanged blocks to show adjacent to a change with
		--side-by-side; 0 shows all.
		`)
	f.BoolVar(&sbs.WrapLongLines, "wrap", sbs.WrapLongLines,
		"Wrap (vs. truncate) long lines with --side-by-side.")
	return cmd
}

func (a *app) merge(args []string) (*merge.Result, [][]*block.Block, error) {
	base, branches, err := readInputs(args)
	if err != nil {
		return nil, nil, err
	}
	result, err := merge.NewMerger(a.config).Merge(base, branches)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Notes) > 0 {
		a.status = FoundDifferences
	}
	return result, branches, nil
}

// branchIdentities lists, per branch, the identity of the block at each
// position.
func branchIdentities(branches [][]*block.Block) [][]string {
	return lo.Map(branches, func(branch []*block.Block, _ int) []string {
		return lo.Map(branch, func(b *block.Block, _ int) string { return b.Identity })
	})
}

func newMergeCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "merge BASE BRANCH...",
		Short: "Merge any number of edited copies of BASE",
		Args:  atLeastArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, branches, err := a.merge(args)
			if err != nil {
				return err
			}
			if a.brief {
				return nil
			}
			w := cmd.OutOrStdout()
			switch format {
			case "yaml":
				return block.WriteDocument(w, result.Blocks())
			case "outline":
				ids := merge.AttachIdentities(result, branchIdentities(branches), nil)
				return render.Outline(w, result.Blocks(), ids, a.opts)
			case "interleaved":
				return render.FormatInterleaved(w, result, a.opts)
			case "unified":
				baseBlocks := lo.FilterMap(result.Groups, func(g merge.Group, _ int) (*block.Block, bool) {
					return g.Base, g.Base != nil
				})
				text, err := render.UnifiedDiff(args[0], "merged",
					render.OutlineString(baseBlocks, nil, a.opts),
					render.OutlineString(result.Blocks(), nil, a.opts), 3)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(w, text)
				return err
			}
			return usageError{errors.Errorf("unknown format %q", format)}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", `
		Output format: yaml (block document), outline (indented text),
		interleaved (operations and notes) or unified (diff of base and merged
		outlines).
		`)
	return cmd
}

func newIdentitiesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "identities BASE BRANCH...",
		Short: "Print the identity of each block of the merged outline, one per line",
		Args:  atLeastArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, branches, err := a.merge(args)
			if err != nil {
				return err
			}
			ids := merge.AttachIdentities(result, branchIdentities(branches), nil)
			if a.brief || len(ids) == 0 {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ids, "\n"))
			return err
		},
	}
}
