package directive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to the input stem when no output name is given.
const DefaultSuffix = "_rotated"

// PageAngle is a raw single-page request: a 1-based page number and its angle.
type PageAngle struct {
	Page  int
	Angle int
}

// RawRange is a raw 1-based inclusive page range.
type RawRange struct {
	First int
	Last  int
}

// Request holds rotation switches exactly as the user supplied them.
// A nil field means the switch was not given.
type Request struct {
	Page  *PageAngle
	Range *RawRange
	Even  *int
	Odd   *int
	All   *int
}

// Normalize validates r against a document of pageCount pages and converts it
// to a 0-based Set. Any failure aborts the whole request.
func Normalize(r Request, pageCount int) (Set, error) {
	if r.Page == nil && r.Even == nil && r.Odd == nil && r.All == nil {
		return Set{}, fmt.Errorf("%w: at least one of even, odd, all or page must be given", ErrNoDirective)
	}

	even, err := optionalAngle("even", r.Even)
	if err != nil {
		return Set{}, err
	}
	odd, err := optionalAngle("odd", r.Odd)
	if err != nil {
		return Set{}, err
	}
	all, err := optionalAngle("all", r.All)
	if err != nil {
		return Set{}, err
	}

	set := Set{
		Range: PageRange{First: 0, Last: pageCount - 1},
		Even:  EvenPages{Angle: even},
		Odd:   OddPages{Angle: odd},
		All:   AllPages{Angle: all},
	}

	if r.Range != nil {
		if r.Range.First < 1 {
			return Set{}, fmt.Errorf("%w: pages start at 1, got %d", ErrInvalidPage, r.Range.First)
		}
		if r.Range.Last < r.Range.First || r.Range.Last > pageCount {
			return Set{}, fmt.Errorf("%w: range %d-%d outside document of %d pages", ErrInvalidPage, r.Range.First, r.Range.Last, pageCount)
		}
		set.Range = PageRange{First: r.Range.First - 1, Last: r.Range.Last - 1}
	}

	if r.Page != nil {
		if r.Page.Page < 1 || r.Page.Page > pageCount {
			return Set{}, fmt.Errorf("%w: page %d outside document of %d pages", ErrInvalidPage, r.Page.Page, pageCount)
		}
		a := Angle(r.Page.Angle)
		if !a.Valid() {
			return Set{}, fmt.Errorf("%w: page angle %d is not a multiple of 90", ErrInvalidAngle, r.Page.Angle)
		}
		set.Single = &SinglePage{Index: r.Page.Page - 1, Angle: a}
	}

	return set, nil
}

func optionalAngle(name string, v *int) (Angle, error) {
	if v == nil {
		return 0, nil
	}
	a := Angle(*v)
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %s angle %d is not a multiple of 90", ErrInvalidAngle, name, *v)
	}
	return a, nil
}

// OutputName derives the output filename. An empty output becomes
// <input-stem><suffix>.pdf; an output without a .pdf extension gets one.
func OutputName(input, output, suffix string) string {
	if output == "" {
		if suffix == "" {
			suffix = DefaultSuffix
		}
		return strings.TrimSuffix(input, filepath.Ext(input)) + suffix + ".pdf"
	}
	if !strings.EqualFold(filepath.Ext(output), ".pdf") {
		return output + ".pdf"
	}
	return output
}
