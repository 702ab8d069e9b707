package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/bmharper/pdfrotate"
	"github.com/bmharper/pdfrotate/directive"
	"github.com/spf13/cobra"
)

type rotateFlags struct {
	fileOut string
	page    []int
	pages   []int
	even    int
	odd     int
	all     int
	plan    string
	dryRun  bool
}

func newRotateCmd(envFile *string) *cobra.Command {
	var f rotateFlags

	cmd := &cobra.Command{
		Use:   "pdfrotate FILE",
		Short: "Rotate PDF pages",
		Long: `Rotate the pages of a PDF and write the result to a new file.

Positive degrees (DEG) rotate clockwise, negative degrees counter-clockwise.
A degree of 0 is valid and means no rotation. Degrees must be a multiple of 90.
Pages are counted from 1. At least one of --even, --odd, --all or --page must
be given. If --all is non-zero, --even and --odd are ignored. All pages are
rotated unless --pagerange limits them. The page given with --page is rotated
by its own DEG, which overrides anything the range assigned to it.`,
		Example: `  pdfrotate scan.pdf --all 90
  pdfrotate scan.pdf --even 180 --pagerange 3,7 --page 5,-90 -f fixed.pdf
  pdfrotate scan.pdf --plan rotate.yaml --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRotate(cmd, *envFile, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.fileOut, "fileout", "f", "", "Output filename (default: <input>_rotated.pdf)")
	cmd.Flags().IntSliceVarP(&f.page, "page", "p", nil, "Single page to rotate, as PAGE,DEG")
	cmd.Flags().IntSliceVarP(&f.pages, "pagerange", "r", nil, "Range of pages to rotate, as FIRST,LAST")
	cmd.Flags().IntVarP(&f.even, "even", "e", 0, "Rotate even pages by DEG")
	cmd.Flags().IntVarP(&f.odd, "odd", "o", 0, "Rotate odd pages by DEG")
	cmd.Flags().IntVarP(&f.all, "all", "a", 0, "Rotate all pages by DEG")
	cmd.Flags().StringVar(&f.plan, "plan", "", "YAML file holding the rotation switches or a batch command")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print the resolved rotations instead of writing a file")

	return cmd
}

// request builds a directive request from the switches the user actually set.
func (f rotateFlags) request(cmd *cobra.Command) (directive.Request, error) {
	var r directive.Request
	if cmd.Flags().Changed("page") {
		if len(f.page) != 2 {
			return r, fmt.Errorf("%w: --page takes PAGE,DEG", directive.ErrMalformedDirective)
		}
		r.Page = &directive.PageAngle{Page: f.page[0], Angle: f.page[1]}
	}
	if cmd.Flags().Changed("pagerange") {
		if len(f.pages) != 2 {
			return r, fmt.Errorf("%w: --pagerange takes FIRST,LAST", directive.ErrMalformedDirective)
		}
		r.Range = &directive.RawRange{First: f.pages[0], Last: f.pages[1]}
	}
	if cmd.Flags().Changed("even") {
		r.Even = &f.even
	}
	if cmd.Flags().Changed("odd") {
		r.Odd = &f.odd
	}
	if cmd.Flags().Changed("all") {
		r.All = &f.all
	}
	return r, nil
}

func (f rotateFlags) hasSwitches(cmd *cobra.Command) bool {
	for _, name := range []string{"page", "pagerange", "even", "odd", "all"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func runRotate(cmd *cobra.Command, envFile, filename string, f rotateFlags) error {
	cfg, logger, err := setup(cmd, envFile)
	if err != nil {
		return err
	}

	var plan *directive.Plan
	if f.plan != "" {
		if f.hasSwitches(cmd) {
			return fmt.Errorf("%w: --plan cannot be combined with rotation switches", directive.ErrMalformedDirective)
		}
		if plan, err = directive.LoadPlan(f.plan); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				return fmt.Errorf("%w: %v", pdfrotate.ErrFileNotFound, err)
			}
			return fmt.Errorf("load plan: %w", err)
		}
	}

	var req directive.Request
	var batch directive.Batch
	switch {
	case plan != nil && plan.IsBatch():
		if batch, err = parseBatch(plan.Batch, logger); err != nil {
			return err
		}
	case plan != nil:
		req = plan.Request()
	default:
		if req, err = f.request(cmd); err != nil {
			return err
		}
	}

	doc, err := openDocument(filename, cfg, logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	var rot directive.Rotations
	if plan != nil && plan.IsBatch() {
		rot = batch.Resolve(doc.NumPages)
	} else {
		set, err := directive.Normalize(req, doc.NumPages)
		if err != nil {
			return err
		}
		rot = directive.Resolve(doc.NumPages, set)
	}

	out := directive.OutputName(filename, f.fileOut, cfg.OutputSuffix)
	return finish(cmd.OutOrStdout(), logger, doc, rot, out, f.dryRun)
}

// finish writes the rotated document, or prints the table for a dry run.
func finish(w io.Writer, logger *slog.Logger, doc *pdfrotate.Document, rot directive.Rotations, out string, dryRun bool) error {
	if dryRun {
		printRotations(w, rot)
		return nil
	}

	data, err := doc.Apply(rot)
	if err != nil {
		return err
	}
	if err := pdfrotate.WriteFile(out, data); err != nil {
		return err
	}
	logger.Info("wrote rotated document", "output", out, "pages", doc.NumPages, "rotated", rot.Rotated())
	return nil
}

func printRotations(w io.Writer, rot directive.Rotations) {
	fmt.Fprintf(w, "%-6s %s\n", "PAGE", "ANGLE")
	for i, a := range rot {
		fmt.Fprintf(w, "%-6d %s\n", i+1, a)
	}
}
