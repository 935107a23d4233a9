// Package area implements a virtualized view over a paragraph document: a
// pool of recyclable paragraph cells, a two-level line navigator and a skin
// that keeps the document's caret state and the view's selection in sync.
package area

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/DaoCalendar/RichTextFX/internal/config"
	"github.com/DaoCalendar/RichTextFX/internal/document"
	"github.com/DaoCalendar/RichTextFX/internal/logger"
	"github.com/DaoCalendar/RichTextFX/internal/theme"
)

// ErrNotMaterialized reports a query against a paragraph that currently has
// no cell. This is an expected transient state during scrolling; callers
// must bring the paragraph into view first.
var ErrNotMaterialized = errors.New("paragraph cell not materialized")

// Document is the surface the view consumes from the content model.
type Document interface {
	ParagraphCount() int
	Paragraph(i int) document.Paragraph
	CaretRow() int
	CaretCol() int
	Focused() bool
	Disabled() bool
	Editable() bool
	WrapText() bool
	OnCaretRow(fn func(row int)) (remove func())
	OnCaretCol(fn func(col int)) (remove func())
	OnFocused(fn func(bool)) (remove func())
	OnDisabled(fn func(bool)) (remove func())
	OnEditable(fn func(bool)) (remove func())
	OnWrapText(fn func(bool)) (remove func())
	SetStructureHandler(fn func(document.StructureChange))
}

// Behavior is the input layer. The skin resolves pointer events to document
// positions and forwards them; it never interprets them itself.
type Behavior interface {
	MousePressed(p Position, hit HitInfo)
	MouseDragged(p Position, hit HitInfo)
	MouseReleased(p Position, hit HitInfo)
}

// Skin wires document-level caret state to the virtualized list view and
// mediates caret blinking and visibility.
type Skin struct {
	doc      Document
	view     *ListView
	nav      *Navigator
	pulse    *Pulse
	behavior Behavior
	notify   func()

	selectedCell *Cell
	removers     []func()
	closed       bool
	dragging     bool

	// scroll-to-top policy: follow the caret by pinning its paragraph to
	// the first visible row instead of scrolling minimally
	showFirstOnly bool
}

// NewSkin builds the view for doc. notify is invoked (possibly from a timer
// goroutine) when the skin wants a redraw scheduled; the event loop answers
// by calling BlinkTick and drawing.
func NewSkin(doc Document, th *theme.Theme, opts config.EditorOptions, behavior Behavior, notify func()) *Skin {
	s := &Skin{doc: doc, behavior: behavior, notify: notify, showFirstOnly: opts.ShowFirstOnly}

	base := th.Base()
	highlight := th.Highlight()
	factory := func(p document.Paragraph) *Cell {
		c := newCell(th, base, highlight, opts.TabWidth)
		c.bind(p)
		return c
	}
	s.view = NewListView(doc, factory, opts.OverscanRows)
	s.nav = NewNavigator(doc.ParagraphCount, s.cellLength)
	s.pulse = NewPulse(time.Duration(opts.CaretBlinkMs)*time.Millisecond, notify)

	// tracks the cell with the caret
	s.view.SetOnSelect(func(c *Cell) {
		s.selectedCell = c
		if c != nil {
			c.setCaret(doc.CaretCol())
		}
	})

	// After a structural change the paragraph previously at the caret row
	// may have shifted, so the caret row has to be reselected against the
	// post-change sequence. The hook runs only after the list view's own
	// bookkeeping, which makes that ordering explicit.
	s.view.SetOnStructureSettled(func(document.StructureChange) {
		s.view.Select(doc.CaretRow())
	})

	s.removers = append(s.removers,
		doc.OnCaretRow(func(row int) {
			// selection first, scrolling second: scrolling affects
			// visibility, never the selected cell
			s.view.Select(row)
			if s.showFirstOnly {
				s.view.ShowAsFirst(row)
			} else {
				s.view.Show(row)
			}
		}),
		doc.OnCaretCol(func(col int) {
			if s.selectedCell != nil {
				s.selectedCell.setCaret(col)
			}
			s.redraw()
		}),
		doc.OnFocused(func(focused bool) {
			if focused {
				s.pulse.Start(true)
			} else {
				s.pulse.Stop(false)
			}
			s.redraw()
		}),
		doc.OnDisabled(func(bool) { s.redraw() }),
		doc.OnEditable(func(bool) { s.redraw() }),
		doc.OnWrapText(func(bool) { s.updateWrapWidth() }),
	)
	if doc.Focused() {
		s.pulse.Start(true)
	}
	s.view.Select(doc.CaretRow())
	return s
}

func (s *Skin) redraw() {
	if s.notify != nil {
		s.notify()
	}
}

// cellLength feeds the navigator. An unmaterialized paragraph is not yet
// measurable and reports a single line, the minimum every paragraph has.
func (s *Skin) cellLength(i int) int {
	if c := s.view.Cell(i); c != nil {
		return c.LineCount()
	}
	return 1
}

// SetViewport resizes the view. While wrapping is enabled the wrap width is
// bound to the viewport width, so a resize re-lays-out every visible cell.
func (s *Skin) SetViewport(width, height int) {
	s.view.SetViewport(width, height)
	s.updateWrapWidth()
}

func (s *Skin) updateWrapWidth() {
	if s.doc.WrapText() {
		w := s.view.Width()
		if w < 1 {
			w = 1
		}
		s.view.SetWrapWidth(w)
	} else {
		s.view.SetWrapWidth(NoWrap)
	}
}

func (s *Skin) ShowAsFirst(i int) { s.view.ShowAsFirst(i) }
func (s *Skin) ShowAsLast(i int)  { s.view.ShowAsLast(i) }

func (s *Skin) FirstVisibleIndex() int { return s.view.FirstVisibleIndex() }
func (s *Skin) LastVisibleIndex() int  { return s.view.LastVisibleIndex() }

// Cell exposes the materialized cell for a paragraph, nil when it is not in
// the window. Callers must re-resolve after every scroll.
func (s *Skin) Cell(i int) *Cell { return s.view.Cell(i) }

// CaretOffsetX reports the caret's column within the selected cell, 0 when
// no cell currently holds the caret.
func (s *Skin) CaretOffsetX() int {
	if s.selectedCell == nil {
		return 0
	}
	return s.selectedCell.CaretOffsetX()
}

// CurrentLine returns the caret location as a two-level position: the caret
// row combined with the selected cell's current visual line.
func (s *Skin) CurrentLine() (Position, error) {
	row := s.doc.CaretRow()
	c := s.view.Cell(row)
	if c == nil {
		return Position{}, fmt.Errorf("caret row %d: %w", row, ErrNotMaterialized)
	}
	return s.nav.Position(row, c.CurrentLineIndex())
}

// Hit resolves the cell for p.Major and delegates the horizontal hit test.
// The paragraph must be materialized; the skin does not scroll on demand.
func (s *Skin) Hit(p Position, x int) (HitInfo, error) {
	c := s.view.Cell(p.Major)
	if c == nil {
		return HitInfo{}, fmt.Errorf("paragraph %d: %w", p.Major, ErrNotMaterialized)
	}
	return c.Hit(p.Minor, x)
}

// Position validates a (paragraph, line) pair.
func (s *Skin) Position(major, minor int) (Position, error) {
	return s.nav.Position(major, minor)
}

// Forward and Backward step a position by one visual line.
func (s *Skin) Forward(p Position) Position  { return s.nav.Forward(p) }
func (s *Skin) Backward(p Position) Position { return s.nav.Backward(p) }

// CaretVisible derives the caret visibility: blink phase on, focused, not
// disabled, editable. There is no stored copy of this value.
func (s *Skin) CaretVisible() bool {
	return s.pulse.On() && s.doc.Focused() && !s.doc.Disabled() && s.doc.Editable()
}

// BlinkTick advances the blink phase. Called by the event loop in response
// to the notify callback.
func (s *Skin) BlinkTick() {
	if s.pulse.Running() {
		s.pulse.Toggle()
	}
}

// Pulse exposes the blink pulse, chiefly for the event loop and tests.
func (s *Skin) Pulse() *Pulse { return s.pulse }

// HandleMouse resolves a pointer event to a document position and forwards
// it to the behavior layer.
func (s *Skin) HandleMouse(ev *tcell.EventMouse) {
	if s.behavior == nil {
		return
	}
	x, y := ev.Position()
	p, ok := s.view.lineAt(y)
	if !ok {
		if s.dragging && ev.Buttons()&tcell.Button1 == 0 {
			s.dragging = false
		}
		return
	}
	hit, err := s.Hit(p, x)
	if err != nil {
		return
	}
	if ev.Buttons()&tcell.Button1 != 0 {
		if s.dragging {
			s.behavior.MouseDragged(p, hit)
		} else {
			s.dragging = true
			s.behavior.MousePressed(p, hit)
		}
	} else if s.dragging {
		s.dragging = false
		s.behavior.MouseReleased(p, hit)
	}
}

// Draw renders the view and places the hardware cursor on the caret when it
// is visible.
func (s *Skin) Draw(scr tcell.Screen) {
	s.view.Draw(scr)
	if s.CaretVisible() && s.selectedCell != nil {
		p := Position{Major: s.doc.CaretRow(), Minor: s.selectedCell.CurrentLineIndex()}
		if row, ok := s.view.rowOf(p); ok {
			scr.ShowCursor(s.CaretOffsetX(), row)
			return
		}
	}
	scr.HideCursor()
}

// Close unregisters every listener registered by NewSkin and stops the blink
// pulse. Listeners are removed exactly once; later calls are no-ops.
func (s *Skin) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	for _, remove := range s.removers {
		remove()
	}
	s.removers = nil
	s.view.detach()
	s.pulse.Stop(false)
	logger.Debug("skin closed")
	return nil
}
