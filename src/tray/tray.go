package tray

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/getlantern/systray"

	"zoom-follow/src/engine"
	"zoom-follow/src/mode"
	"zoom-follow/src/notification"
)

// Item is one clickable menu entry.
type Item struct {
	Title   string
	Tooltip string
	OnClick func()
}

type Config struct {
	Title   string
	Tooltip string
	Items   []Item
	About   func() string
	OnExit  func()
}

type Tray struct {
	cfg Config
}

var ready atomic.Bool

func New(cfg Config) *Tray {
	return &Tray{cfg: cfg}
}

// Run blocks until Quit is called. It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit tears down the tray icon, which makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)
	ready.Store(true)

	for _, item := range t.cfg.Items {
		m := systray.AddMenuItem(item.Title, item.Tooltip)
		onClick := item.OnClick
		go func() {
			for range m.ClickedCh {
				if onClick != nil {
					onClick()
				}
			}
		}()
	}

	systray.AddSeparator()
	mAbout := systray.AddMenuItem("About", "Show hotkeys and resident port")
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mAbout.ClickedCh:
				if t.cfg.About != nil {
					notification.ShowInfo(t.cfg.Title, t.cfg.About())
				}
			case <-mQuit.ClickedCh:
				log.Printf("tray: quit requested")
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	ready.Store(false)
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// UpdateTooltip is safe to call before the tray is ready; it is then a no-op.
func UpdateTooltip(text string) {
	if !ready.Load() {
		return
	}
	systray.SetTooltip(text)
}

// CommandItems builds one menu entry per mode command.
func CommandItems(post func(mode.Command) bool) []Item {
	items := make([]Item, 0, len(mode.Commands))
	for _, cmd := range mode.Commands {
		items = append(items, Item{
			Title:   cmd.Description(),
			Tooltip: fmt.Sprintf("Same as `zoomctl %s`", cmd),
			OnClick: func() { post(cmd) },
		})
	}
	return items
}

// StatusTooltip summarizes the engine state for the tray tooltip.
func StatusTooltip(title string, s engine.Status) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(" - ")
	switch {
	case s.Mode == mode.RectCapture && s.Pending != nil:
		fmt.Fprintf(&b, "click second corner (first at %s)", *s.Pending)
	case s.Mode == mode.Idle && s.Current.IsZero():
		b.WriteString("full frame")
	default:
		fmt.Fprintf(&b, "%s, crop %s", s.Mode, s.Current)
	}
	return b.String()
}
