package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmharper/pdfrotate/internal/config"
	"github.com/bmharper/textorient"
	"github.com/spf13/cobra"
)

// detectCmd scans files (or directories, recursively) of scanned PDFs and
// prints the --page switches that would turn sideways pages upright.
func detectCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "detect PATH...",
		Short: "Suggest rotations for sideways pages in scanned PDFs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, *envFile)
			if err != nil {
				return err
			}

			var pdfFiles []string
			for _, arg := range args {
				files, err := findPDFFiles(arg)
				if err != nil {
					return err
				}
				pdfFiles = append(pdfFiles, files...)
			}

			orient, err := textorient.NewOrient()
			if err != nil {
				return fmt.Errorf("load orientation model: %w", err)
			}
			defer orient.Close()

			for _, pdfFile := range pdfFiles {
				logger.Debug("processing", "file", pdfFile)
				if err := detectFile(cmd.OutOrStdout(), pdfFile, orient, cfg, logger); err != nil {
					return fmt.Errorf("%v: %w", pdfFile, err)
				}
			}
			return nil
		},
	}
}

func detectFile(w io.Writer, pdfFile string, orient *textorient.Orient, cfg config.Config, logger *slog.Logger) error {
	doc, err := openDocument(pdfFile, cfg, logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	base := filepath.Base(pdfFile)
	scanned, err := doc.IsScanned()
	if err != nil {
		return err
	}
	if !scanned {
		fmt.Fprintf(w, "Skipping %v (not scanned)\n", base)
		return nil
	}

	rot, err := doc.SuggestRotations(orient, cfg.DetectMaxSkew)
	if err != nil {
		return err
	}
	if rot.Rotated() == 0 {
		fmt.Fprintf(w, "%v: all %v pages upright\n", base, doc.NumPages)
		return nil
	}

	var switches []string
	for i, a := range rot {
		if a != 0 {
			switches = append(switches, fmt.Sprintf("-p %d,%d", i+1, int(a)))
		}
	}
	fmt.Fprintf(w, "%v: %v of %v pages sideways: %s\n", base, rot.Rotated(), doc.NumPages, strings.Join(switches, " "))
	return nil
}

// findPDFFiles returns path itself if it is a file, or every PDF below it if
// it is a directory.
func findPDFFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var pdfFiles []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.ToLower(filepath.Ext(p)) == ".pdf" {
			pdfFiles = append(pdfFiles, p)
		}
		return nil
	})
	return pdfFiles, err
}
