// Package document holds the paragraph sequence shown by the area and the
// scalar view properties attached to it (caret row, focus, wrap, ...).
//
// Structural changes to the paragraph sequence flow through a single primary
// handler (the list view), which updates its bookkeeping synchronously and
// then fires its own structure-settled hook. Re-selection logic therefore
// always sees settled indices, with no dependence on registration order.
package document

import "strings"

// StyleSpan attaches an opaque style class to a rune range of a paragraph.
// The class is resolved to visual attributes by the theming layer.
type StyleSpan struct {
	Start int
	End   int
	Class string
}

// Paragraph is one logical unit of document text. It is immutable; edits
// replace the paragraph as a whole.
type Paragraph struct {
	text  string
	spans []StyleSpan
}

func NewParagraph(text string, spans ...StyleSpan) Paragraph {
	return Paragraph{text: text, spans: spans}
}

func (p Paragraph) Text() string       { return p.text }
func (p Paragraph) Spans() []StyleSpan { return p.spans }

// StructureChange describes one insert/remove/replace of paragraphs.
// Removed paragraphs occupied [Index, Index+Removed); Inserted paragraphs
// now occupy [Index, Index+Inserted).
type StructureChange struct {
	Index    int
	Removed  int
	Inserted int
}

// Buffer is the concrete document implementation.
type Buffer struct {
	paragraphs []Paragraph

	caretRow int
	caretCol int
	focused  bool
	disabled bool
	editable bool
	wrapText bool

	nextID           int
	caretRowHandlers map[int]func(row int)
	caretColHandlers map[int]func(col int)
	boolHandlers     map[string]map[int]func(bool)
	structureHandler func(StructureChange)
}

// New builds a buffer from text, one paragraph per line. An empty text still
// yields one empty paragraph: the document is never paragraph-free.
func New(text string) *Buffer {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	paragraphs := make([]Paragraph, len(lines))
	for i, line := range lines {
		paragraphs[i] = NewParagraph(line)
	}
	return &Buffer{
		paragraphs:       paragraphs,
		editable:         true,
		wrapText:         true,
		caretRowHandlers: make(map[int]func(int)),
		caretColHandlers: make(map[int]func(int)),
		boolHandlers:     make(map[string]map[int]func(bool)),
	}
}

func (b *Buffer) ParagraphCount() int { return len(b.paragraphs) }

func (b *Buffer) Paragraph(i int) Paragraph { return b.paragraphs[i] }

// SetParagraphs replaces the whole sequence, reported as a single change.
func (b *Buffer) SetParagraphs(paragraphs []Paragraph) {
	removed := len(b.paragraphs)
	b.paragraphs = append([]Paragraph(nil), paragraphs...)
	b.fireStructure(StructureChange{Index: 0, Removed: removed, Inserted: len(paragraphs)})
}

// Insert adds a paragraph at index i.
func (b *Buffer) Insert(i int, p Paragraph) {
	b.paragraphs = append(b.paragraphs, Paragraph{})
	copy(b.paragraphs[i+1:], b.paragraphs[i:])
	b.paragraphs[i] = p
	b.fireStructure(StructureChange{Index: i, Inserted: 1})
}

// Remove deletes the paragraph at index i.
func (b *Buffer) Remove(i int) {
	b.paragraphs = append(b.paragraphs[:i], b.paragraphs[i+1:]...)
	b.fireStructure(StructureChange{Index: i, Removed: 1})
}

// Replace swaps the paragraph at index i, reported as remove+insert so the
// bound cell is rebound and laid out again.
func (b *Buffer) Replace(i int, p Paragraph) {
	b.paragraphs[i] = p
	b.fireStructure(StructureChange{Index: i, Removed: 1, Inserted: 1})
}

func (b *Buffer) fireStructure(ch StructureChange) {
	if b.structureHandler != nil {
		b.structureHandler(ch)
	}
}

// SetStructureHandler installs the single primary structural handler. The
// list view owns this slot; it exposes its own structure-settled hook for
// logic that must run after cell bookkeeping.
func (b *Buffer) SetStructureHandler(fn func(StructureChange)) {
	b.structureHandler = fn
}

func (b *Buffer) CaretRow() int { return b.caretRow }

func (b *Buffer) CaretCol() int { return b.caretCol }

func (b *Buffer) SetCaretCol(col int) {
	if col == b.caretCol {
		return
	}
	b.caretCol = col
	for _, fn := range b.caretColHandlers {
		fn(col)
	}
}

func (b *Buffer) OnCaretCol(fn func(col int)) func() {
	id := b.nextID
	b.nextID++
	b.caretColHandlers[id] = fn
	return func() { delete(b.caretColHandlers, id) }
}

func (b *Buffer) SetCaretRow(row int) {
	if row == b.caretRow {
		return
	}
	b.caretRow = row
	for _, fn := range b.caretRowHandlers {
		fn(row)
	}
}

func (b *Buffer) OnCaretRow(fn func(row int)) func() {
	id := b.nextID
	b.nextID++
	b.caretRowHandlers[id] = fn
	return func() { delete(b.caretRowHandlers, id) }
}

func (b *Buffer) Focused() bool  { return b.focused }
func (b *Buffer) Disabled() bool { return b.disabled }
func (b *Buffer) Editable() bool { return b.editable }
func (b *Buffer) WrapText() bool { return b.wrapText }

func (b *Buffer) SetFocused(v bool)  { b.setBool("focused", &b.focused, v) }
func (b *Buffer) SetDisabled(v bool) { b.setBool("disabled", &b.disabled, v) }
func (b *Buffer) SetEditable(v bool) { b.setBool("editable", &b.editable, v) }
func (b *Buffer) SetWrapText(v bool) { b.setBool("wrapText", &b.wrapText, v) }

func (b *Buffer) OnFocused(fn func(bool)) func()  { return b.onBool("focused", fn) }
func (b *Buffer) OnDisabled(fn func(bool)) func() { return b.onBool("disabled", fn) }
func (b *Buffer) OnEditable(fn func(bool)) func() { return b.onBool("editable", fn) }
func (b *Buffer) OnWrapText(fn func(bool)) func() { return b.onBool("wrapText", fn) }

func (b *Buffer) setBool(name string, field *bool, v bool) {
	if *field == v {
		return
	}
	*field = v
	for _, fn := range b.boolHandlers[name] {
		fn(v)
	}
}

func (b *Buffer) onBool(name string, fn func(bool)) func() {
	if b.boolHandlers[name] == nil {
		b.boolHandlers[name] = make(map[int]func(bool))
	}
	id := b.nextID
	b.nextID++
	b.boolHandlers[name][id] = fn
	return func() { delete(b.boolHandlers[name], id) }
}
