// Package pdfrotate rotates the pages of PDF documents.
package pdfrotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bmharper/pdfrotate/directive"
	"github.com/gen2brain/go-fitz"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrFileNotFound is returned when the input cannot be read or the output cannot be written.
var ErrFileNotFound = errors.New("file not found")

// Document represents a PDF document
type Document struct {
	data     []byte
	conf     *model.Configuration
	fz       *fitz.Document
	NumPages int
	Logger   *slog.Logger // Debug output goes here. May be nil.
}

// Option configures a Document.
type Option func(*Document)

// WithStrictValidation validates the input against the PDF specification
// instead of pdfcpu's relaxed mode.
func WithStrictValidation() Option {
	return func(d *Document) {
		d.conf.ValidationMode = model.ValidationStrict
	}
}

// WithLogger sets the logger for per-page debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		d.Logger = l
	}
}

// Load a PDF from a file
func NewDocumentFromFile(filename string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	return NewDocumentFromMemory(data, opts...)
}

// Load a PDF from bytes
func NewDocumentFromMemory(data []byte, opts ...Option) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	doc := &Document{
		data: data,
		conf: conf,
	}
	for _, opt := range opts {
		opt(doc)
	}

	ctx, err := doc.readContext()
	if err != nil {
		return nil, err
	}
	doc.NumPages = ctx.PageCount
	return doc, nil
}

func (d *Document) Close() {
	if d.fz != nil {
		d.fz.Close()
		d.fz = nil
	}
}

func (d *Document) reader() io.ReadSeeker {
	return bytes.NewReader(d.data)
}

// readContext parses a fresh copy of the document, so every Apply starts
// from the original page rotations.
func (d *Document) readContext() (*model.Context, error) {
	ctx, err := pdfapi.ReadValidateAndOptimize(d.reader(), d.conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

// Apply rotates every page by its resolved angle and returns the new PDF.
// Angles are relative to each page's current rotation.
func (d *Document) Apply(rot directive.Rotations) ([]byte, error) {
	if len(rot) != d.NumPages {
		return nil, fmt.Errorf("have %v rotations for %v pages", len(rot), d.NumPages)
	}
	ctx, err := d.readContext()
	if err != nil {
		return nil, err
	}

	// pdfcpu rotates a page set by one angle, so group pages by their
	// effective /Rotate delta.
	groups := map[int]types.IntSet{}
	for i, a := range rot {
		deg := pageRotation(a)
		if deg == 0 {
			continue
		}
		if groups[deg] == nil {
			groups[deg] = types.IntSet{}
		}
		groups[deg][i+1] = true
		d.verbose("rotating page", "page", i+1, "angle", a.String())
	}
	for _, deg := range []int{90, 180, 270} {
		pages, ok := groups[deg]
		if !ok {
			continue
		}
		if err := pdfcpu.RotatePages(ctx, pages, deg); err != nil {
			return nil, err
		}
	}

	output := &bytes.Buffer{}
	if err := pdfapi.WriteContext(ctx, output); err != nil {
		return nil, fmt.Errorf("pdfcpu write: %w", err)
	}
	return output.Bytes(), nil
}

// pageRotation reduces a signed angle to the clockwise /Rotate delta in [0, 360).
func pageRotation(a directive.Angle) int {
	return ((int(a) % 360) + 360) % 360
}

// WriteFile writes a finished PDF to filename.
func WriteFile(filename string, data []byte) error {
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	return nil
}

func (d *Document) verbose(msg string, args ...any) {
	if d.Logger != nil {
		d.Logger.Debug(msg, args...)
	}
}
