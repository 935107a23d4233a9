package area

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/DaoCalendar/RichTextFX/internal/document"
	"github.com/DaoCalendar/RichTextFX/internal/theme"
)

// NoWrap is the wrap width used when wrapping is disabled. No terminal is
// this wide, so every paragraph stays on a single visual line.
const NoWrap = 1 << 30

// HitInfo is the result of mapping a horizontal offset to a character.
// Char is a byte offset into the paragraph text. Boundary reports whether
// the x coordinate landed exactly on a grapheme cluster boundary; it is
// false when the hit was clamped to line start/end or rounded to the nearest
// edge of a wide cluster.
type HitInfo struct {
	Char     int
	Boundary bool
}

// visualLine is one wrapped line of a paragraph: the byte range [start, end)
// of the paragraph text and its width in columns.
type visualLine struct {
	start int
	end   int
	width int
}

// Cell renders one paragraph at a time. Cells are pooled by the list view:
// the reuse protocol is unbind, reset, bind, which re-runs layout. Line
// counts and offsets returned before a re-layout must not be cached across
// layout-affecting events.
type Cell struct {
	paragraph document.Paragraph

	resolver  theme.StyleResolver
	base      tcell.Style
	highlight tcell.Style
	tabWidth  int

	wrapWidth int
	lines     []visualLine
	selected  bool
	caret     int
}

func newCell(resolver theme.StyleResolver, base, highlight tcell.Style, tabWidth int) *Cell {
	if tabWidth < 1 {
		tabWidth = 1
	}
	return &Cell{
		resolver:  resolver,
		base:      base,
		highlight: highlight,
		tabWidth:  tabWidth,
		wrapWidth: NoWrap,
	}
}

func (c *Cell) bind(p document.Paragraph) {
	c.paragraph = p
}

func (c *Cell) unbind() {
	c.paragraph = document.Paragraph{}
	c.lines = c.lines[:0]
}

// reset clears per-cell transient state before the cell is rebound.
func (c *Cell) reset() {
	c.selected = false
	c.caret = 0
	c.lines = c.lines[:0]
}

// layout wraps the paragraph text at the given width. Wrapping is at
// grapheme cluster granularity; every paragraph produces at least one
// visual line, even when empty.
func (c *Cell) layout(wrapWidth int) {
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	c.wrapWidth = wrapWidth
	c.lines = c.lines[:0]
	text := c.paragraph.Text()
	if text == "" {
		c.lines = append(c.lines, visualLine{})
		return
	}
	start, col, pos := 0, 0, 0
	state := -1
	remaining := text
	for len(remaining) > 0 {
		var cluster string
		cluster, remaining, _, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		w := c.clusterWidth(cluster, col)
		if col > 0 && col+w > wrapWidth {
			c.lines = append(c.lines, visualLine{start: start, end: pos, width: col})
			start, col = pos, 0
			w = c.clusterWidth(cluster, 0)
		}
		col += w
		pos += len(cluster)
	}
	c.lines = append(c.lines, visualLine{start: start, end: pos, width: col})
}

func (c *Cell) clusterWidth(cluster string, col int) int {
	if cluster == "\t" {
		return c.tabWidth - col%c.tabWidth
	}
	return runewidth.StringWidth(cluster)
}

// LineCount reports the number of visual lines after layout.
func (c *Cell) LineCount() int {
	return len(c.lines)
}

// Hit maps a horizontal column offset on one of this cell's visual lines to
// the nearest character offset. The line index must be within the cell's
// current line range.
func (c *Cell) Hit(line, x int) (HitInfo, error) {
	if line < 0 || line >= len(c.lines) {
		return HitInfo{}, fmt.Errorf("line %d outside [0, %d): %w", line, len(c.lines), ErrOutOfRange)
	}
	ln := c.lines[line]
	if x < 0 {
		return HitInfo{Char: ln.start}, nil
	}
	text := c.paragraph.Text()
	col := 0
	pos := ln.start
	state := -1
	remaining := text[ln.start:ln.end]
	for len(remaining) > 0 {
		var cluster string
		cluster, remaining, _, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		w := c.clusterWidth(cluster, col)
		if x < col+w {
			if x == col {
				return HitInfo{Char: pos, Boundary: true}, nil
			}
			// inside a wide cluster: round to the nearest edge
			if (x-col)*2 >= w {
				return HitInfo{Char: pos + len(cluster)}, nil
			}
			return HitInfo{Char: pos}, nil
		}
		col += w
		pos += len(cluster)
	}
	if x == col {
		return HitInfo{Char: ln.end, Boundary: true}, nil
	}
	// past line end
	return HitInfo{Char: ln.end}, nil
}

// setCaret positions the caret at a byte offset within the paragraph,
// clamped to the text bounds.
func (c *Cell) setCaret(offset int) {
	if offset < 0 {
		offset = 0
	}
	if max := len(c.paragraph.Text()); offset > max {
		offset = max
	}
	c.caret = offset
}

// CurrentLineIndex reports which visual line contains the caret. A caret
// sitting exactly on a wrap boundary belongs to the following line.
func (c *Cell) CurrentLineIndex() int {
	for i, ln := range c.lines {
		if c.caret < ln.end {
			return i
		}
	}
	if len(c.lines) == 0 {
		return 0
	}
	return len(c.lines) - 1
}

// CaretOffsetX reports the column offset of the caret within its visual
// line. Valid only for the selected cell; 0 when layout has not happened.
func (c *Cell) CaretOffsetX() int {
	if len(c.lines) == 0 {
		return 0
	}
	ln := c.lines[c.CurrentLineIndex()]
	text := c.paragraph.Text()
	col := 0
	pos := ln.start
	state := -1
	remaining := text[ln.start:ln.end]
	for len(remaining) > 0 && pos < c.caret {
		var cluster string
		cluster, remaining, _, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		col += c.clusterWidth(cluster, col)
		pos += len(cluster)
	}
	return col
}

// setSelected reports whether the flag actually changed.
func (c *Cell) setSelected(sel bool) bool {
	if c.selected == sel {
		return false
	}
	c.selected = sel
	return true
}

func (c *Cell) Selected() bool { return c.selected }

// styleAt resolves the style for the character at a byte offset.
func (c *Cell) styleAt(pos int) tcell.Style {
	for _, span := range c.paragraph.Spans() {
		if pos >= span.Start && pos < span.End {
			return c.resolver.Style(span.Class)
		}
	}
	return c.base
}

// drawLine renders one visual line at screen row y. The caret line of the
// selected cell is painted with the highlight styles.
func (c *Cell) drawLine(s tcell.Screen, line, y, width int) {
	if line < 0 || line >= len(c.lines) {
		return
	}
	highlighted := c.selected && line == c.CurrentLineIndex()
	ln := c.lines[line]
	text := c.paragraph.Text()
	col := 0
	pos := ln.start
	state := -1
	remaining := text[ln.start:ln.end]
	for len(remaining) > 0 && col < width {
		var cluster string
		cluster, remaining, _, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		w := c.clusterWidth(cluster, col)
		style := c.styleAt(pos)
		if highlighted {
			style = c.highlight
		}
		if cluster == "\t" {
			for i := 0; i < w && col+i < width; i++ {
				s.SetContent(col+i, y, ' ', nil, style)
			}
		} else {
			// the screen fills continuation cells of wide runes itself
			runes := []rune(cluster)
			s.SetContent(col, y, runes[0], runes[1:], style)
		}
		col += w
		pos += len(cluster)
	}
	fill := c.base
	if highlighted {
		fill = c.highlight
	}
	for ; col < width; col++ {
		s.SetContent(col, y, ' ', nil, fill)
	}
}
