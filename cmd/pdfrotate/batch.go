package main

import (
	"log/slog"

	"github.com/bmharper/pdfrotate/directive"
	"github.com/spf13/cobra"
)

func batchCmd(envFile *string) *cobra.Command {
	var fileOut string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "batch FILE COMMAND",
		Short: "Rotate pages with a batch command",
		Long: `Rotate pages with a sequence of even/odd clauses.

COMMAND is a list of clauses separated by ';'. Each clause gives the angle for
even pages and for odd pages, for example "(e 90, o -90); (e 0, o 180)".
Clauses run in order over the whole document and each one overwrites the
previous, so the last clause decides every page. A clause may name a page
range such as "(2-5) e 90, o 0", but ranges are not supported yet and the
clause still covers all pages. Angles that are not a multiple of 90 are
replaced by 0 with a warning.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, *envFile)
			if err != nil {
				return err
			}
			batch, err := parseBatch(args[1], logger)
			if err != nil {
				return err
			}

			doc, err := openDocument(args[0], cfg, logger)
			if err != nil {
				return err
			}
			defer doc.Close()

			rot := batch.Resolve(doc.NumPages)
			out := directive.OutputName(args[0], fileOut, cfg.OutputSuffix)
			return finish(cmd.OutOrStdout(), logger, doc, rot, out, dryRun)
		},
	}

	cmd.Flags().StringVarP(&fileOut, "fileout", "f", "", "Output filename (default: <input>_rotated.pdf)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resolved rotations instead of writing a file")

	return cmd
}

// parseBatch parses a batch command and logs its warnings.
func parseBatch(command string, logger *slog.Logger) (directive.Batch, error) {
	batch, err := directive.ParseBatch(command)
	if err != nil {
		return directive.Batch{}, err
	}
	for _, w := range batch.Warnings {
		logger.Warn(w)
	}
	return batch, nil
}
