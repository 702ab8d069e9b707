package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmharper/pdfrotate"
	"github.com/bmharper/pdfrotate/directive"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pdfapi.DisableConfigDir()
	os.Exit(m.Run())
}

// writePDF writes a PDF with n empty pages into dir and returns its path.
func writePDF(t *testing.T, dir string, n int) string {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	var kids []string
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	path := filepath.Join(dir, "in.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PDFROTATE_LOG_LEVEL", "ERROR")
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestRotate_DefaultOutputName(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 4)

	_, err := run(t, in, "--all", "90")
	require.NoError(t, err)

	doc, err := pdfrotate.NewDocumentFromFile(filepath.Join(dir, "in_rotated.pdf"))
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, 4, doc.NumPages)
}

func TestRotate_FileOutGetsExtension(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 2)

	_, err := run(t, in, "-o", "90", "-f", filepath.Join(dir, "turned"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "turned.pdf"))
}

func TestRotate_DryRun(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 6)

	out, err := run(t, in, "-e", "180", "-r", "2,5", "-p", "4,-90", "--dry-run")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, []string{"1 0", "2 180 cw", "3 0", "4 90 ccw", "5 0", "6 0"}, squash(lines[1:]))
	assert.NoFileExists(t, filepath.Join(dir, "in_rotated.pdf"))
}

func TestRotate_Plan(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 3)
	plan := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(plan, []byte("all: -90\npage: {number: 2, angle: 0}\n"), 0644))

	out, err := run(t, in, "--plan", plan, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, []string{"1 90 ccw", "2 0", "3 90 ccw"}, squash(strings.Split(strings.TrimSpace(out), "\n")[1:]))
}

func TestRotate_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 3)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no switch", []string{in}, directive.ErrNoDirective},
		{"bad angle", []string{in, "-a", "45"}, directive.ErrInvalidAngle},
		{"bad range", []string{in, "-a", "90", "-r", "2,4"}, directive.ErrInvalidPage},
		{"bad page", []string{in, "-p", "4,90"}, directive.ErrInvalidPage},
		{"page needs two values", []string{in, "-p", "2"}, directive.ErrMalformedDirective},
		{"missing input", []string{filepath.Join(dir, "nope.pdf"), "-a", "90"}, pdfrotate.ErrFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.NoFileExists(t, filepath.Join(dir, "in_rotated.pdf"))
}

func TestRotate_MissingPlan(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 2)

	_, err := run(t, in, "--plan", filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, pdfrotate.ErrFileNotFound)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sideways: 90\n"), 0644))
	_, err = run(t, in, "--plan", bad)
	require.Error(t, err)
	assert.NotErrorIs(t, err, pdfrotate.ErrFileNotFound)
}

func TestDetect_File(t *testing.T) {
	in := writePDF(t, t.TempDir(), 3)

	out, err := run(t, "detect", in)
	require.NoError(t, err)
	assert.Equal(t, "in.pdf: all 3 pages upright\n", out)
}

func TestDetect_Directory(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, 2)
	sub := filepath.Join(dir, "archive")
	require.NoError(t, os.Mkdir(sub, 0755))
	writePDF(t, sub, 4)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("not a pdf"), 0644))

	out, err := run(t, "detect", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.ElementsMatch(t, []string{"in.pdf: all 2 pages upright", "in.pdf: all 4 pages upright"}, lines)
}

func TestDetect_MissingPath(t *testing.T) {
	_, err := run(t, "detect", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBatch_DryRun(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 4)

	out, err := run(t, "batch", in, "(e 90, o -90); (e 0, o 180)", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, []string{"1 180 cw", "2 0", "3 180 cw", "4 0"}, squash(strings.Split(strings.TrimSpace(out), "\n")[1:]))
}

func TestBatch_Malformed(t *testing.T) {
	dir := t.TempDir()
	in := writePDF(t, dir, 2)

	_, err := run(t, "batch", in, "(e 90)")
	assert.ErrorIs(t, err, directive.ErrMalformedDirective)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pdfrotate version dev")
}

// squash collapses the column padding of the dry-run table.
func squash(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.Join(strings.Fields(l), " ")
	}
	return out
}
