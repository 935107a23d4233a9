package app

import (
	"os"
	"runtime"

	"github.com/gdamore/tcell/v2"

	"github.com/DaoCalendar/RichTextFX/internal/area"
	"github.com/DaoCalendar/RichTextFX/internal/behavior"
	"github.com/DaoCalendar/RichTextFX/internal/config"
	"github.com/DaoCalendar/RichTextFX/internal/document"
	"github.com/DaoCalendar/RichTextFX/internal/logger"
	"github.com/DaoCalendar/RichTextFX/internal/theme"
)

// App is the top-level runtime for the richtext viewer.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(os.Getenv("RICHTEXT_DEBUG") != ""); err != nil {
		return err
	}
	defer logger.Close()

	var text string
	if len(a.args) > 0 {
		data, err := os.ReadFile(a.args[0])
		if err != nil {
			return err
		}
		text = string(data)
	}
	doc := document.New(text)
	doc.SetWrapText(cfg.Editor.WrapText)

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	th := theme.New(cfg.Theme)
	nav := behavior.New(doc)
	// blink ticks arrive from a timer goroutine; posting an interrupt event
	// hands them to the event loop, which owns all state mutation
	notify := func() {
		_ = s.PostEvent(tcell.NewEventInterrupt(nil))
	}
	skin := area.NewSkin(doc, th, cfg.Editor, nav, notify)
	defer func() { _ = skin.Close() }()
	nav.Bind(skin)

	w, h := s.Size()
	skin.SetViewport(w, h)
	doc.SetFocused(true)
	logger.Info("viewer started", "paragraphs", doc.ParagraphCount(), "wrap", doc.WrapText())

	base := th.Base()
	for {
		s.SetStyle(base)
		s.Clear()
		skin.Draw(s)
		s.Show()

		ev := s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if nav.HandleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			skin.HandleMouse(ev)
		case *tcell.EventResize:
			w, h := ev.Size()
			skin.SetViewport(w, h)
			s.Sync()
		case *tcell.EventInterrupt:
			skin.BlinkTick()
		}
	}
}
