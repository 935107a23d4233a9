// Package behavior turns key and pointer events into caret movement on the
// document. It deliberately contains no editing commands; the area only
// browses text.
package behavior

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/DaoCalendar/RichTextFX/internal/area"
	"github.com/DaoCalendar/RichTextFX/internal/document"
)

// Nav moves the caret by characters, visual lines and pages.
type Nav struct {
	doc  *document.Buffer
	skin *area.Skin
}

func New(doc *document.Buffer) *Nav {
	return &Nav{doc: doc}
}

// Bind attaches the skin. The skin is constructed with the behavior, so the
// back-reference is supplied after construction.
func (n *Nav) Bind(skin *area.Skin) {
	n.skin = skin
}

// HandleKey processes one key event; the return value reports a quit
// request.
func (n *Nav) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		n.moveLine(-1)
	case tcell.KeyDown:
		n.moveLine(1)
	case tcell.KeyLeft:
		n.moveChar(-1)
	case tcell.KeyRight:
		n.moveChar(1)
	case tcell.KeyHome:
		n.doc.SetCaretCol(0)
	case tcell.KeyEnd:
		n.doc.SetCaretCol(len(n.doc.Paragraph(n.doc.CaretRow()).Text()))
	case tcell.KeyPgUp:
		n.page(-1)
	case tcell.KeyPgDn:
		n.page(1)
	case tcell.KeyCtrlW:
		n.doc.SetWrapText(!n.doc.WrapText())
	}
	return false
}

// moveLine moves the caret one visual line up or down, keeping the
// horizontal offset where possible.
func (n *Nav) moveLine(dir int) {
	if n.skin == nil {
		return
	}
	x := n.skin.CaretOffsetX()
	cur, err := n.skin.CurrentLine()
	if err != nil {
		cur = area.Position{Major: n.doc.CaretRow()}
	}
	var next area.Position
	if dir < 0 {
		next = n.skin.Backward(cur)
	} else {
		next = n.skin.Forward(cur)
	}
	if next == cur {
		return
	}
	// select/scroll first so the target cell is materialized for the hit
	n.doc.SetCaretRow(next.Major)
	if hit, err := n.skin.Hit(next, x); err == nil {
		n.doc.SetCaretCol(hit.Char)
	} else {
		n.doc.SetCaretCol(0)
	}
}

// moveChar moves the caret one grapheme cluster left or right, crossing
// paragraph boundaries at the ends.
func (n *Nav) moveChar(dir int) {
	row := n.doc.CaretRow()
	col := n.doc.CaretCol()
	text := n.doc.Paragraph(row).Text()
	if dir > 0 {
		if col < len(text) {
			cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text[col:], -1)
			n.doc.SetCaretCol(col + len(cluster))
		} else if row+1 < n.doc.ParagraphCount() {
			n.doc.SetCaretRow(row + 1)
			n.doc.SetCaretCol(0)
		}
		return
	}
	if col > 0 {
		n.doc.SetCaretCol(prevBoundary(text, col))
	} else if row > 0 {
		n.doc.SetCaretRow(row - 1)
		n.doc.SetCaretCol(len(n.doc.Paragraph(row - 1).Text()))
	}
}

// page moves the caret a viewport page at a time: the caret jumps to the
// edge of the visible window, which is then scrolled to the opposite edge.
func (n *Nav) page(dir int) {
	if n.skin == nil {
		return
	}
	if dir < 0 {
		first := n.skin.FirstVisibleIndex()
		if first < 0 {
			return
		}
		n.doc.SetCaretRow(first)
		n.skin.ShowAsLast(first)
	} else {
		last := n.skin.LastVisibleIndex()
		if last < 0 {
			return
		}
		n.doc.SetCaretRow(last)
		n.skin.ShowAsFirst(last)
	}
	n.doc.SetCaretCol(0)
}

// MousePressed implements area.Behavior.
func (n *Nav) MousePressed(p area.Position, hit area.HitInfo) {
	n.doc.SetCaretRow(p.Major)
	n.doc.SetCaretCol(hit.Char)
}

// MouseDragged tracks the caret under the pointer. Range selection is the
// surrounding editor's concern.
func (n *Nav) MouseDragged(p area.Position, hit area.HitInfo) {
	n.doc.SetCaretRow(p.Major)
	n.doc.SetCaretCol(hit.Char)
}

// MouseReleased implements area.Behavior.
func (n *Nav) MouseReleased(area.Position, area.HitInfo) {}

// prevBoundary returns the byte offset of the grapheme cluster boundary
// preceding col.
func prevBoundary(text string, col int) int {
	prev, pos := 0, 0
	state := -1
	remaining := text
	for len(remaining) > 0 && pos < col {
		var cluster string
		cluster, remaining, _, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		prev = pos
		pos += len(cluster)
	}
	return prev
}
