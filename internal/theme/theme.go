// Package theme resolves style names to terminal attributes.
//
// Customizable attributes form a plain table: each entry has a name, a
// default value and an applicability predicate. The stylesheet (config)
// supplies values by name; values set programmatically via Set win over
// stylesheet values.
package theme

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/DaoCalendar/RichTextFX/internal/config"
)

// Attribute names understood by Resolve.
const (
	AttrForeground        = "foreground"
	AttrBackground        = "background"
	AttrHighlightFill     = "highlight-fill"
	AttrHighlightTextFill = "highlight-text-fill"
)

// Attribute describes one customizable visual attribute.
type Attribute struct {
	Name       string
	Default    string
	Applicable func(*Theme) bool
}

// Attributes is the full table of customizable attributes. An attribute is
// not applicable once it has been bound programmatically.
var Attributes = []Attribute{
	{AttrForeground, "#B3B1AD", notBound(AttrForeground)},
	{AttrBackground, "#0A0E14", notBound(AttrBackground)},
	{AttrHighlightFill, "#1E90FF", notBound(AttrHighlightFill)},
	{AttrHighlightTextFill, "#FFFFFF", notBound(AttrHighlightTextFill)},
}

func notBound(name string) func(*Theme) bool {
	return func(t *Theme) bool {
		_, bound := t.overrides[name]
		return !bound
	}
}

// StyleResolver maps an opaque style class carried by document spans to a
// concrete terminal style.
type StyleResolver interface {
	Style(class string) tcell.Style
}

// Theme holds the resolved attribute values for one view.
type Theme struct {
	values    map[string]string
	overrides map[string]string
	classes   map[string]tcell.Style
}

// New builds a theme from the loaded stylesheet values.
func New(cfg config.Theme) *Theme {
	t := &Theme{
		values:    make(map[string]string, len(Attributes)),
		overrides: make(map[string]string),
		classes:   make(map[string]tcell.Style),
	}
	for _, a := range Attributes {
		t.values[a.Name] = a.Default
	}
	setIf(t.values, AttrForeground, cfg.Foreground)
	setIf(t.values, AttrBackground, cfg.Background)
	setIf(t.values, AttrHighlightFill, cfg.HighlightFill)
	setIf(t.values, AttrHighlightTextFill, cfg.HighlightTextFill)
	return t
}

func setIf(m map[string]string, name, value string) {
	if strings.TrimSpace(value) != "" {
		m[name] = value
	}
}

// Set binds an attribute programmatically. The stylesheet no longer applies
// to it afterwards.
func (t *Theme) Set(name, value string) {
	t.overrides[name] = value
}

// Lookup returns the effective raw value of an attribute.
func (t *Theme) Lookup(name string) string {
	if v, ok := t.overrides[name]; ok {
		return v
	}
	if v, ok := t.values[name]; ok {
		return v
	}
	for _, a := range Attributes {
		if a.Name == name {
			return a.Default
		}
	}
	return ""
}

// Color resolves an attribute to a terminal color.
func (t *Theme) Color(name string, fallback tcell.Color) tcell.Color {
	return ParseColor(t.Lookup(name), fallback)
}

// Base returns the default text style.
func (t *Theme) Base() tcell.Style {
	fg := t.Color(AttrForeground, tcell.ColorWhite)
	bg := t.Color(AttrBackground, tcell.ColorBlack)
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

// Highlight returns the style for highlighted (selected-line) text.
func (t *Theme) Highlight() tcell.Style {
	fg := t.Color(AttrHighlightTextFill, tcell.ColorWhite)
	bg := t.Color(AttrHighlightFill, tcell.ColorBlue)
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

// DefineClass registers the style for a document style class.
func (t *Theme) DefineClass(class string, style tcell.Style) {
	t.classes[class] = style
}

// Style implements StyleResolver. Unknown classes render with the base style.
func (t *Theme) Style(class string) tcell.Style {
	if s, ok := t.classes[class]; ok {
		return s
	}
	return t.Base()
}

// ParseColor parses "#RRGGBB" or a named color, falling back when the value
// cannot be parsed.
func ParseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	if c, ok := tcell.ColorNames[name]; ok {
		return c
	}
	return fallback
}
