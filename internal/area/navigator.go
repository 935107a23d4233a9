package area

import (
	"errors"
	"fmt"
)

// ErrOutOfRange reports a two-level position outside the document.
var ErrOutOfRange = errors.New("position out of range")

// Position locates one visual line: Major is the paragraph index, Minor is
// the line index within that paragraph.
type Position struct {
	Major int
	Minor int
}

// Navigator converts between flat and two-level line indices. It holds no
// state of its own; paragraph and line counts are supplied as functions and
// queried on demand.
//
// cellLength is invoked once per navigation step, so it must be cheap or
// memoized by the caller.
type Navigator struct {
	cellCount  func() int
	cellLength func(i int) int
}

func NewNavigator(cellCount func() int, cellLength func(int) int) *Navigator {
	return &Navigator{cellCount: cellCount, cellLength: cellLength}
}

// Position validates (major, minor) and returns it as a Position. Out of
// range indices fail with ErrOutOfRange; there is no clamping.
func (n *Navigator) Position(major, minor int) (Position, error) {
	count := n.cellCount()
	if major < 0 || major >= count {
		return Position{}, fmt.Errorf("major %d outside [0, %d): %w", major, count, ErrOutOfRange)
	}
	length := n.cellLength(major)
	if minor < 0 || minor >= length {
		return Position{}, fmt.Errorf("minor %d outside [0, %d) in paragraph %d: %w", minor, length, major, ErrOutOfRange)
	}
	return Position{Major: major, Minor: minor}, nil
}

// Forward advances p by one visual line, wrapping into the next paragraph
// past the last line. Paragraphs reporting zero lines are skipped. At the
// last line of the document the position is returned unchanged.
func (n *Navigator) Forward(p Position) Position {
	if p.Minor+1 < n.cellLength(p.Major) {
		return Position{Major: p.Major, Minor: p.Minor + 1}
	}
	count := n.cellCount()
	for major := p.Major + 1; major < count; major++ {
		if n.cellLength(major) > 0 {
			return Position{Major: major}
		}
	}
	return p
}

// Backward is the inverse of Forward, clamping at (0, 0).
func (n *Navigator) Backward(p Position) Position {
	if p.Minor > 0 {
		return Position{Major: p.Major, Minor: p.Minor - 1}
	}
	for major := p.Major - 1; major >= 0; major-- {
		if length := n.cellLength(major); length > 0 {
			return Position{Major: major, Minor: length - 1}
		}
	}
	return p
}
