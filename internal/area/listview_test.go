package area

import (
	"strings"
	"testing"

	"github.com/DaoCalendar/RichTextFX/internal/config"
	"github.com/DaoCalendar/RichTextFX/internal/document"
	"github.com/DaoCalendar/RichTextFX/internal/theme"
)

// countingFactory tracks how many cells were actually allocated, to assert
// that scrolling reuses pooled cells.
type countingFactory struct {
	allocs int
}

func (f *countingFactory) make(p document.Paragraph) *Cell {
	f.allocs++
	th := theme.New(config.Default().Theme)
	c := newCell(th, th.Base(), th.Highlight(), 4)
	c.bind(p)
	return c
}

func newTestView(text string, overscan int) (*document.Buffer, *ListView, *countingFactory) {
	doc := document.New(text)
	f := &countingFactory{}
	v := NewListView(doc, f.make, overscan)
	return doc, v, f
}

func lines(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strings.Repeat("x", 3)
	}
	return strings.Join(parts, "\n")
}

func TestVisibleRangeUnwrapped(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 3)
	if v.FirstVisibleIndex() != 0 || v.LastVisibleIndex() != 2 {
		t.Fatalf("visible = [%d, %d], want [0, 2]", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
	if v.Cell(2) == nil {
		t.Fatalf("paragraph 2 not materialized")
	}
	if v.Cell(5) != nil {
		t.Fatalf("paragraph 5 materialized outside the window")
	}
}

func TestVisibleRangeEmptyViewport(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	if v.FirstVisibleIndex() != -1 || v.LastVisibleIndex() != -1 {
		t.Fatalf("visible = [%d, %d], want [-1, -1] before layout", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
	v.SetViewport(0, 0)
	if v.FirstVisibleIndex() != -1 || v.LastVisibleIndex() != -1 {
		t.Fatalf("visible = [%d, %d], want [-1, -1] with zero viewport", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
}

func TestVisibleRangeCountsWrappedLines(t *testing.T) {
	doc := document.New("aaaaaa\nbb\ncc\ndd")
	f := &countingFactory{}
	v := NewListView(doc, f.make, 0)
	v.SetViewport(3, 3)
	v.SetWrapWidth(3)
	// paragraph 0 wraps to 2 lines, so only paragraphs 0 and 1 fit
	if v.FirstVisibleIndex() != 0 || v.LastVisibleIndex() != 1 {
		t.Fatalf("visible = [%d, %d], want [0, 1]", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
}

func TestShowAsFirst(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 3)
	v.ShowAsFirst(5)
	if v.FirstVisibleIndex() != 5 || v.LastVisibleIndex() != 7 {
		t.Fatalf("visible = [%d, %d], want [5, 7]", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
}

func TestShowAsLast(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 3)
	v.ShowAsLast(5)
	if v.FirstVisibleIndex() != 3 || v.LastVisibleIndex() != 5 {
		t.Fatalf("visible = [%d, %d], want [3, 5]", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
}

func TestShowClampsIndex(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 3)
	v.ShowAsFirst(99)
	if v.FirstVisibleIndex() != 9 {
		t.Fatalf("first = %d, want clamped to 9", v.FirstVisibleIndex())
	}
	v.ShowAsFirst(-5)
	if v.FirstVisibleIndex() != 0 {
		t.Fatalf("first = %d, want clamped to 0", v.FirstVisibleIndex())
	}
}

func TestRecyclingReusesCells(t *testing.T) {
	_, v, f := newTestView(lines(10), 0)
	v.SetViewport(10, 2)
	v.ShowAsFirst(8) // allocates for 8, 9; recycles 0, 1
	v.ShowAsFirst(0) // must reuse the pooled cells
	if f.allocs != 4 {
		t.Fatalf("allocs = %d, want 4", f.allocs)
	}
	if v.Cell(0) == nil || v.Cell(8) != nil {
		t.Fatalf("window not rebound after scroll back")
	}
}

func TestSelectMaterializes(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 3)
	var notified *Cell
	v.SetOnSelect(func(c *Cell) { notified = c })
	v.Select(7)
	c := v.Cell(7)
	if c == nil {
		t.Fatalf("selected paragraph not materialized")
	}
	if !c.Selected() {
		t.Fatalf("selected flag not set")
	}
	if notified != c {
		t.Fatalf("selection notification did not carry the selected cell")
	}
	if v.FirstVisibleIndex() > 7 || v.LastVisibleIndex() < 7 {
		t.Fatalf("selected paragraph not scrolled into view: [%d, %d]", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
}

func TestSelectMovesSingleSelection(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 5)
	v.Select(1)
	v.Select(3)
	if v.Cell(1).Selected() {
		t.Fatalf("old selection not cleared")
	}
	if !v.Cell(3).Selected() {
		t.Fatalf("new selection not set")
	}
}

func TestSelectIgnoresOutOfRange(t *testing.T) {
	_, v, _ := newTestView(lines(3), 0)
	v.SetViewport(10, 3)
	v.Select(1)
	v.Select(-1)
	v.Select(50)
	if v.SelectedIndex() != 1 {
		t.Fatalf("selected = %d, want 1", v.SelectedIndex())
	}
}

func TestSelectedLeavingWindowNotifiesNil(t *testing.T) {
	_, v, _ := newTestView(lines(10), 0)
	v.SetViewport(10, 2)
	var notified *Cell
	v.SetOnSelect(func(c *Cell) { notified = c })
	v.Select(0)
	if notified == nil {
		t.Fatalf("no notification for selection")
	}
	v.ShowAsFirst(8)
	if notified != nil {
		t.Fatalf("expected nil notification when selected paragraph scrolls out")
	}
}

func TestStructuralInsertShiftsCells(t *testing.T) {
	doc, v, _ := newTestView("a\nb\nc", 0)
	v.SetViewport(10, 3)
	v.Select(1)
	doc.Insert(1, document.NewParagraph("new"))
	if got := v.Cell(1).paragraph.Text(); got != "new" {
		t.Fatalf("paragraph 1 = %q, want %q", got, "new")
	}
	if got := v.Cell(2).paragraph.Text(); got != "b" {
		t.Fatalf("paragraph 2 = %q, want %q", got, "b")
	}
	// internal bookkeeping keeps the selection on the same paragraph
	if v.SelectedIndex() != 2 {
		t.Fatalf("selected = %d, want shifted to 2", v.SelectedIndex())
	}
}

func TestStructuralRemove(t *testing.T) {
	doc, v, _ := newTestView("a\nb\nc", 0)
	v.SetViewport(10, 3)
	doc.Remove(1)
	if got := v.Cell(1).paragraph.Text(); got != "c" {
		t.Fatalf("paragraph 1 = %q, want %q", got, "c")
	}
	if v.LastVisibleIndex() != 1 {
		t.Fatalf("last = %d, want 1", v.LastVisibleIndex())
	}
}

func TestStructureSettledRunsAfterBookkeeping(t *testing.T) {
	doc, v, _ := newTestView("a\nb\nc", 0)
	v.SetViewport(10, 3)
	var textAtHook string
	v.SetOnStructureSettled(func(document.StructureChange) {
		// the view must already expose post-change indices here
		textAtHook = v.Cell(1).paragraph.Text()
	})
	doc.Insert(1, document.NewParagraph("new"))
	if textAtHook != "new" {
		t.Fatalf("hook saw %q, want post-insert paragraph", textAtHook)
	}
}

func TestEmptyDocument(t *testing.T) {
	doc, v, _ := newTestView("a", 0)
	v.SetViewport(10, 3)
	doc.SetParagraphs(nil)
	if v.FirstVisibleIndex() != -1 || v.LastVisibleIndex() != -1 {
		t.Fatalf("visible = [%d, %d], want [-1, -1]", v.FirstVisibleIndex(), v.LastVisibleIndex())
	}
}

func TestWrapWidthChangeInvalidatesLayout(t *testing.T) {
	_, v, _ := newTestView("aaaaaaaaaa", 0)
	v.SetViewport(5, 5)
	v.SetWrapWidth(5)
	if got := v.Cell(0).LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
	v.SetWrapWidth(NoWrap)
	if got := v.Cell(0).LineCount(); got != 1 {
		t.Fatalf("LineCount after unwrap = %d, want 1", got)
	}
}
