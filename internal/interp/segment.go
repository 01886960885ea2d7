// Package interp estimates house number coordinates along road segments
// using address range interpolation.
package interp

import (
	"strings"

	"github.com/paulmach/orb"
)

// Side is the side of a road segment an address range covers.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// SideFor maps a house number to a road side by parity. Even numbers
// are addressed on the left side, odd numbers on the right.
func SideFor(number int) Side {
	if number%2 == 0 {
		return SideLeft
	}
	return SideRight
}

// Range is an inclusive house number range on one side of a segment.
// A zero Min or Max marks the range as absent.
type Range struct {
	Min int
	Max int
}

// Valid reports whether the range carries any numbers.
func (r Range) Valid() bool {
	return r.Min > 0 && r.Max > 0 && r.Min <= r.Max
}

// Contains reports whether n falls inside the range.
func (r Range) Contains(n int) bool {
	return r.Valid() && n >= r.Min && n <= r.Max
}

// Segment is one road centerline with address ranges for both sides.
type Segment struct {
	ID        int64
	Street    string
	AltStreet string
	Left      Range
	Right     Range
	Line      orb.LineString
}

// Range returns the address range for the given side.
func (s Segment) Range(side Side) Range {
	if side == SideLeft {
		return s.Left
	}
	return s.Right
}

// MatchesStreet reports whether the segment belongs to the named
// street, comparing case-insensitively against both the primary and
// the alternate name.
func (s Segment) MatchesStreet(street string) bool {
	return strings.EqualFold(s.Street, street) ||
		(s.AltStreet != "" && strings.EqualFold(s.AltStreet, street))
}
