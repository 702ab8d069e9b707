// Package directive turns user rotation requests into a per-page angle table.
//
// Pages are 1-based on input and 0-based everywhere else. Positive angles
// rotate clockwise, negative angles counter-clockwise.
package directive

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPage is returned for a page or range outside [1, pageCount].
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidAngle is returned for an angle that is not a multiple of 90.
	ErrInvalidAngle = errors.New("invalid angle")
	// ErrNoDirective is returned when no rotation switch was supplied.
	ErrNoDirective = errors.New("no rotation directive")
	// ErrMalformedDirective is returned when a batch command or plan cannot be parsed.
	ErrMalformedDirective = errors.New("malformed directive")
)

// Angle is a rotation in degrees. It is always a multiple of 90 once normalized.
type Angle int

// Valid reports whether a is a multiple of 90.
func (a Angle) Valid() bool {
	return a%90 == 0
}

func (a Angle) String() string {
	switch {
	case a > 0:
		return fmt.Sprintf("%d cw", int(a))
	case a < 0:
		return fmt.Sprintf("%d ccw", -int(a))
	}
	return "0"
}

// SinglePage rotates one page, and wins over every other directive for that page.
type SinglePage struct {
	Index int
	Angle Angle
}

// PageRange selects pages First..Last inclusive.
type PageRange struct {
	First int
	Last  int
}

// Contains reports whether page index i lies in the range.
func (r PageRange) Contains(i int) bool {
	return i >= r.First && i <= r.Last
}

// EvenPages rotates pages at even 1-based positions.
type EvenPages struct {
	Angle Angle
}

// OddPages rotates pages at odd 1-based positions.
type OddPages struct {
	Angle Angle
}

// AllPages rotates every page, and suppresses EvenPages and OddPages.
type AllPages struct {
	Angle Angle
}

// BatchClause is one (even, odd) rule of a batch command.
// Range is recorded when the clause names one, but it is not applied.
type BatchClause struct {
	Range *PageRange
	Even  Angle
	Odd   Angle
}

// Set is the normalized directive set of a single invocation.
type Set struct {
	Single *SinglePage
	Range  PageRange
	Even   EvenPages
	Odd    OddPages
	All    AllPages
}

// Rotations holds the resolved angle of every page, indexed by page.
type Rotations []Angle

// Rotated returns the number of pages with a non-zero angle.
func (r Rotations) Rotated() int {
	n := 0
	for _, a := range r {
		if a != 0 {
			n++
		}
	}
	return n
}

// isEvenPosition classifies page index i by its 1-based position.
func isEvenPosition(i int) bool {
	return (i+1)%2 == 0
}
