package area

import (
	"errors"
	"testing"

	"github.com/DaoCalendar/RichTextFX/internal/config"
	"github.com/DaoCalendar/RichTextFX/internal/document"
	"github.com/DaoCalendar/RichTextFX/internal/theme"
)

func newTestCell(text string, wrapWidth int) *Cell {
	th := theme.New(config.Default().Theme)
	c := newCell(th, th.Base(), th.Highlight(), 4)
	c.bind(document.NewParagraph(text))
	c.layout(wrapWidth)
	return c
}

func TestLayoutEmptyParagraphHasOneLine(t *testing.T) {
	c := newTestCell("", 10)
	if got := c.LineCount(); got != 1 {
		t.Fatalf("LineCount = %d, want 1", got)
	}
}

func TestLayoutWrapsAtWidth(t *testing.T) {
	c := newTestCell("hello world", 5)
	if got := c.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
	want := []string{"hello", " worl", "d"}
	for i, w := range want {
		ln := c.lines[i]
		if got := c.paragraph.Text()[ln.start:ln.end]; got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
	}
}

func TestLayoutNoWrap(t *testing.T) {
	c := newTestCell("hello world", NoWrap)
	if got := c.LineCount(); got != 1 {
		t.Fatalf("LineCount = %d, want 1", got)
	}
}

func TestLayoutWideRunes(t *testing.T) {
	// each rune is two columns wide, so only one fits per 3-column line
	c := newTestCell("你好", 3)
	if got := c.LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
}

func TestLayoutTabExpansion(t *testing.T) {
	c := newTestCell("a\tb", NoWrap)
	if got := c.lines[0].width; got != 5 {
		t.Fatalf("line width = %d, want 5 (tab expands to column 4)", got)
	}
}

func TestRelayoutChangesLineCount(t *testing.T) {
	c := newTestCell("hello world", NoWrap)
	if got := c.LineCount(); got != 1 {
		t.Fatalf("LineCount = %d, want 1", got)
	}
	c.layout(5)
	if got := c.LineCount(); got != 3 {
		t.Fatalf("LineCount after relayout = %d, want 3", got)
	}
}

func TestHitOnBoundary(t *testing.T) {
	c := newTestCell("abc", NoWrap)
	for x := 0; x <= 3; x++ {
		hit, err := c.Hit(0, x)
		if err != nil {
			t.Fatalf("Hit(0, %d) error: %v", x, err)
		}
		if hit.Char != x || !hit.Boundary {
			t.Fatalf("Hit(0, %d) = %+v, want char %d on boundary", x, hit, x)
		}
	}
}

func TestHitClampsPastLineEnd(t *testing.T) {
	c := newTestCell("abc", NoWrap)
	hit, err := c.Hit(0, 40)
	if err != nil {
		t.Fatalf("Hit error: %v", err)
	}
	if hit.Char != 3 || hit.Boundary {
		t.Fatalf("Hit past end = %+v, want char 3 clamped", hit)
	}
}

func TestHitClampsBeforeLineStart(t *testing.T) {
	c := newTestCell("abc", NoWrap)
	hit, err := c.Hit(0, -2)
	if err != nil {
		t.Fatalf("Hit error: %v", err)
	}
	if hit.Char != 0 || hit.Boundary {
		t.Fatalf("Hit before start = %+v, want char 0 clamped", hit)
	}
}

func TestHitRoundsInsideWideCluster(t *testing.T) {
	c := newTestCell("你b", NoWrap)
	// column 1 is the middle of the two-column rune; rounds to its end
	hit, err := c.Hit(0, 1)
	if err != nil {
		t.Fatalf("Hit error: %v", err)
	}
	if hit.Char != len("你") || hit.Boundary {
		t.Fatalf("Hit inside wide cluster = %+v, want char %d off boundary", hit, len("你"))
	}
}

func TestHitOnWrappedLine(t *testing.T) {
	c := newTestCell("hello world", 5)
	// line 1 is " worl"; column 2 sits before 'o', byte offset 7
	hit, err := c.Hit(1, 2)
	if err != nil {
		t.Fatalf("Hit error: %v", err)
	}
	if hit.Char != 7 || !hit.Boundary {
		t.Fatalf("Hit(1, 2) = %+v, want char 7 on boundary", hit)
	}
}

func TestHitLineOutOfRange(t *testing.T) {
	c := newTestCell("abc", NoWrap)
	if _, err := c.Hit(1, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Hit(1, 0) error = %v, want ErrOutOfRange", err)
	}
	if _, err := c.Hit(-1, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Hit(-1, 0) error = %v, want ErrOutOfRange", err)
	}
}

func TestCurrentLineIndex(t *testing.T) {
	c := newTestCell("hello world", 5)
	cases := []struct{ caret, line int }{
		{0, 0},
		{4, 0},
		{5, 1}, // wrap boundary belongs to the following line
		{9, 1},
		{10, 2},
		{11, 2},
	}
	for _, tc := range cases {
		c.setCaret(tc.caret)
		if got := c.CurrentLineIndex(); got != tc.line {
			t.Fatalf("caret %d: CurrentLineIndex = %d, want %d", tc.caret, got, tc.line)
		}
	}
}

func TestCaretOffsetX(t *testing.T) {
	c := newTestCell("hello world", 5)
	c.setCaret(7)
	if got := c.CaretOffsetX(); got != 2 {
		t.Fatalf("CaretOffsetX = %d, want 2", got)
	}
	c.setCaret(0)
	if got := c.CaretOffsetX(); got != 0 {
		t.Fatalf("CaretOffsetX at start = %d, want 0", got)
	}
}

func TestCaretOffsetXWithTab(t *testing.T) {
	c := newTestCell("a\tb", NoWrap)
	c.setCaret(2)
	if got := c.CaretOffsetX(); got != 4 {
		t.Fatalf("CaretOffsetX after tab = %d, want 4", got)
	}
}

func TestResetClearsTransientState(t *testing.T) {
	c := newTestCell("abc", NoWrap)
	c.setSelected(true)
	c.setCaret(2)
	c.reset()
	if c.Selected() {
		t.Fatalf("selected flag survived reset")
	}
	if c.caret != 0 {
		t.Fatalf("caret survived reset: %d", c.caret)
	}
	if c.LineCount() != 0 {
		t.Fatalf("cached layout survived reset")
	}
}
