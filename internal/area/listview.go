package area

import (
	"github.com/gdamore/tcell/v2"

	"github.com/DaoCalendar/RichTextFX/internal/document"
)

// CellFactory creates a cell bound to a paragraph. The list view injects it
// at construction and also reuses pooled cells, so a factory must not assume
// it is called once per paragraph.
type CellFactory func(document.Paragraph) *Cell

// ListView shows the document's paragraph sequence through a virtualized
// window: only paragraphs inside the visible range plus a small overscan
// buffer are materialized as cells. Cells leaving the window are recycled
// through a pool, so callers must always re-resolve Cell(i) instead of
// caching cell references across scroll events.
type ListView struct {
	doc      Document
	newCell  CellFactory
	overscan int

	cells map[int]*Cell
	pool  []*Cell

	width     int
	height    int
	wrapWidth int

	// scroll position: paragraph top is shown with its first topLine
	// visual lines scrolled off the viewport
	top     int
	topLine int
	first   int
	last    int

	selected  int
	notified  *Cell
	onSelect  func(*Cell)
	onSettled func(document.StructureChange)
}

func NewListView(doc Document, factory CellFactory, overscan int) *ListView {
	if overscan < 0 {
		overscan = 0
	}
	v := &ListView{
		doc:       doc,
		newCell:   factory,
		overscan:  overscan,
		cells:     make(map[int]*Cell),
		wrapWidth: NoWrap,
		first:     -1,
		last:      -1,
		selected:  -1,
	}
	doc.SetStructureHandler(v.structureChanged)
	return v
}

// SetOnSelect installs the selection-change notification. It fires with the
// newly selected cell whenever the materialized cell holding the selection
// changes, and with nil when the selected paragraph leaves the window.
func (v *ListView) SetOnSelect(fn func(*Cell)) {
	v.onSelect = fn
}

// SetOnStructureSettled installs the hook invoked after the view has
// finished its own bookkeeping for a structural change.
func (v *ListView) SetOnStructureSettled(fn func(document.StructureChange)) {
	v.onSettled = fn
}

// detach disconnects the view from the document's structural events.
func (v *ListView) detach() {
	v.doc.SetStructureHandler(nil)
}

func (v *ListView) structureChanged(ch document.StructureChange) {
	shift := ch.Inserted - ch.Removed
	next := make(map[int]*Cell, len(v.cells))
	for idx, c := range v.cells {
		switch {
		case idx < ch.Index:
			next[idx] = c
		case idx < ch.Index+ch.Removed:
			c.unbind()
			v.pool = append(v.pool, c)
		default:
			next[idx+shift] = c
		}
	}
	v.cells = next
	if v.selected >= ch.Index+ch.Removed {
		v.selected += shift
	}
	if v.top >= ch.Index+ch.Removed {
		v.top += shift
	} else if v.top >= ch.Index {
		v.top, v.topLine = ch.Index, 0
	}
	v.refresh()
	if v.onSettled != nil {
		v.onSettled(ch)
	}
}

// SetViewport updates the viewport size in columns and rows.
func (v *ListView) SetViewport(width, height int) {
	v.width, v.height = width, height
	v.refresh()
}

func (v *ListView) Width() int  { return v.width }
func (v *ListView) Height() int { return v.height }

// SetWrapWidth updates the shared wrap width and invalidates the layout of
// every materialized cell.
func (v *ListView) SetWrapWidth(w int) {
	if w < 1 {
		w = 1
	}
	if w == v.wrapWidth {
		return
	}
	v.wrapWidth = w
	for _, c := range v.cells {
		c.layout(w)
	}
	v.refresh()
}

func (v *ListView) WrapWidth() int { return v.wrapWidth }

// Cell returns the materialized cell currently bound to paragraph i, or nil
// when that paragraph is outside the materialized window.
func (v *ListView) Cell(i int) *Cell {
	return v.cells[i]
}

// Select marks paragraph i as the single selected item, materializing it
// first when it is not in the window. Out-of-range indices are ignored.
func (v *ListView) Select(i int) {
	if i < 0 || i >= v.doc.ParagraphCount() {
		return
	}
	v.selected = i
	if v.cells[i] == nil {
		v.Show(i)
	}
	v.applySelection()
}

func (v *ListView) SelectedIndex() int { return v.selected }

// Show scrolls the minimum amount needed to bring paragraph i into view.
func (v *ListView) Show(i int) {
	if v.first < 0 || i < v.first {
		v.ShowAsFirst(i)
	} else if i > v.last {
		v.ShowAsLast(i)
	}
}

// ShowAsFirst scrolls so paragraph i becomes the first visible row. The
// index is clamped silently.
func (v *ListView) ShowAsFirst(i int) {
	i = v.clampIndex(i)
	if i < 0 {
		return
	}
	v.top, v.topLine = i, 0
	v.refresh()
}

// ShowAsLast scrolls so paragraph i's last visual line becomes the bottom
// visible row. The index is clamped silently.
func (v *ListView) ShowAsLast(i int) {
	i = v.clampIndex(i)
	if i < 0 {
		return
	}
	if v.height <= 0 {
		v.top, v.topLine = i, 0
		v.refresh()
		return
	}
	rows := v.height
	top, topLine := i, 0
	for j := i; j >= 0; j-- {
		rows -= v.materialize(j).LineCount()
		top = j
		if rows <= 0 {
			topLine = -rows
			break
		}
	}
	v.top, v.topLine = top, topLine
	v.refresh()
}

// FirstVisibleIndex reports the first paragraph with any visible line, or
// -1 when nothing is laid out (zero-size viewport or empty document).
func (v *ListView) FirstVisibleIndex() int { return v.first }

// LastVisibleIndex is the counterpart of FirstVisibleIndex.
func (v *ListView) LastVisibleIndex() int { return v.last }

func (v *ListView) clampIndex(i int) int {
	count := v.doc.ParagraphCount()
	if count == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}

func (v *ListView) materialize(i int) *Cell {
	if c, ok := v.cells[i]; ok {
		return c
	}
	var c *Cell
	if n := len(v.pool); n > 0 {
		c = v.pool[n-1]
		v.pool = v.pool[:n-1]
		c.reset()
		c.bind(v.doc.Paragraph(i))
	} else {
		c = v.newCell(v.doc.Paragraph(i))
	}
	c.layout(v.wrapWidth)
	v.cells[i] = c
	return c
}

func (v *ListView) recycleOutside(lo, hi int) {
	for idx, c := range v.cells {
		if idx < lo || idx > hi {
			c.unbind()
			v.pool = append(v.pool, c)
			delete(v.cells, idx)
		}
	}
}

// refresh recomputes the visible range, materializes the cells it needs and
// recycles the ones that fell out of the window.
func (v *ListView) refresh() {
	count := v.doc.ParagraphCount()
	if v.height <= 0 || v.width <= 0 || count == 0 {
		v.first, v.last = -1, -1
		v.recycleOutside(0, -1)
		v.notifySelection()
		return
	}
	if v.top > count-1 {
		v.top, v.topLine = count-1, 0
	}
	if v.top < 0 {
		v.top = 0
	}
	topCell := v.materialize(v.top)
	if v.topLine >= topCell.LineCount() {
		v.topLine = topCell.LineCount() - 1
	}
	if v.topLine < 0 {
		v.topLine = 0
	}
	rows := -v.topLine
	last := v.top
	for i := v.top; i < count; i++ {
		rows += v.materialize(i).LineCount()
		last = i
		if rows >= v.height {
			break
		}
	}
	v.first, v.last = v.top, last
	lo, hi := v.top-v.overscan, last+v.overscan
	for i := v.top - 1; i >= 0 && i >= lo; i-- {
		v.materialize(i)
	}
	for i := last + 1; i < count && i <= hi; i++ {
		v.materialize(i)
	}
	v.recycleOutside(lo, hi)
	v.applySelection()
}

func (v *ListView) applySelection() {
	for idx, c := range v.cells {
		c.setSelected(idx == v.selected)
	}
	v.notifySelection()
}

func (v *ListView) notifySelection() {
	var cur *Cell
	if v.selected >= 0 {
		cur = v.cells[v.selected]
	}
	if cur != v.notified {
		v.notified = cur
		if v.onSelect != nil {
			v.onSelect(cur)
		}
	}
}

// lineAt maps a viewport row to the visual line shown there.
func (v *ListView) lineAt(y int) (Position, bool) {
	if v.first < 0 || y < 0 || y >= v.height {
		return Position{}, false
	}
	rows := -v.topLine
	count := v.doc.ParagraphCount()
	for i := v.top; i < count; i++ {
		c := v.cells[i]
		if c == nil {
			break
		}
		if y < rows+c.LineCount() {
			return Position{Major: i, Minor: y - rows}, true
		}
		rows += c.LineCount()
	}
	return Position{}, false
}

// rowOf is the inverse of lineAt; ok is false when the line is off screen.
func (v *ListView) rowOf(p Position) (int, bool) {
	if v.first < 0 {
		return 0, false
	}
	rows := -v.topLine
	for i := v.top; i <= v.last; i++ {
		c := v.cells[i]
		if c == nil {
			return 0, false
		}
		if i == p.Major {
			row := rows + p.Minor
			if row < 0 || row >= v.height {
				return 0, false
			}
			return row, true
		}
		rows += c.LineCount()
	}
	return 0, false
}

// Draw renders the visible window starting at the viewport origin. Rows past
// the last paragraph are left to the screen's background fill.
func (v *ListView) Draw(s tcell.Screen) {
	if v.first < 0 {
		return
	}
	y := 0
	count := v.doc.ParagraphCount()
	for i := v.top; i < count && y < v.height; i++ {
		c := v.cells[i]
		if c == nil {
			break
		}
		start := 0
		if i == v.top {
			start = v.topLine
		}
		for ln := start; ln < c.LineCount() && y < v.height; ln++ {
			c.drawLine(s, ln, y, v.width)
			y++
		}
	}
}
