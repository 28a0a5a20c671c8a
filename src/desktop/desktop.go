// Package desktop reads live desktop state: displays, mouse position and
// the focused window.
package desktop

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"zoom-follow/src/geometry"
)

var ErrNoFocusedWindow = errors.New("no focused window")

// Displays enumerates active displays.
type Displays interface {
	NumActiveDisplays() int
	DisplayBounds(i int) image.Rectangle
}

// Pointer reads the mouse and the focused window.
type Pointer interface {
	Location() (x, y int)
	FocusedWindowBounds() (x, y, w, h int, ok bool)
}

// Host implements the engine's view of the desktop on top of a display
// list and a pointer source.
type Host struct {
	displays     Displays
	pointer      Pointer
	displayIndex int
	source       geometry.SourceSize
}

type Options struct {
	DisplayIndex int
	// Source overrides the capture source size. Zero means the source is
	// the whole active display.
	Source geometry.SourceSize
}

// New returns a Host backed by the real desktop.
func New(opts Options) *Host {
	return NewWith(systemDisplays{}, systemPointer{}, opts)
}

func NewWith(d Displays, p Pointer, opts Options) *Host {
	return &Host{displays: d, pointer: p, displayIndex: opts.DisplayIndex, source: opts.Source}
}

func (h *Host) MousePosition() (geometry.Point, error) {
	x, y := h.pointer.Location()
	return geometry.Point{X: x, Y: y}, nil
}

// ActiveScreen returns the configured display's geometry.
func (h *Host) ActiveScreen() (geometry.ScreenInfo, error) {
	n := h.displays.NumActiveDisplays()
	if n == 0 {
		return geometry.ScreenInfo{}, &geometry.ConfigurationError{Op: "active screen", Msg: "no active displays found"}
	}
	if h.displayIndex < 0 || h.displayIndex >= n {
		return geometry.ScreenInfo{}, &geometry.ConfigurationError{
			Op:  "active screen",
			Msg: fmt.Sprintf("display %d not found (%d active)", h.displayIndex, n),
		}
	}
	return screenInfo(h.displays.DisplayBounds(h.displayIndex)), nil
}

func (h *Host) FocusedWindow() (geometry.Rect, error) {
	x, y, w, hgt, ok := h.pointer.FocusedWindowBounds()
	if !ok || w <= 0 || hgt <= 0 {
		return geometry.Rect{}, ErrNoFocusedWindow
	}
	return geometry.Rect{X0: x, Y0: y, X1: x + w, Y1: y + hgt}, nil
}

// SourceSize returns the configured source size, or the active display's
// size when none is configured. A half-configured source is an error.
func (h *Host) SourceSize() (geometry.SourceSize, error) {
	if h.source != (geometry.SourceSize{}) {
		if err := h.source.Validate(); err != nil {
			return geometry.SourceSize{}, err
		}
		return h.source, nil
	}
	screen, err := h.ActiveScreen()
	if err != nil {
		return geometry.SourceSize{}, err
	}
	return geometry.SourceSize{Width: int(screen.Width), Height: int(screen.Height)}, nil
}

// DisplayBounds returns the bounds of every active display, for logging.
func (h *Host) DisplayBounds() []image.Rectangle {
	n := h.displays.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, h.displays.DisplayBounds(i))
	}
	return out
}

func screenInfo(b image.Rectangle) geometry.ScreenInfo {
	return geometry.ScreenInfo{
		Origin: geometry.Point{X: b.Min.X, Y: b.Min.Y},
		Width:  uint32(max(b.Dx(), 0)),
		Height: uint32(max(b.Dy(), 0)),
	}
}

type systemDisplays struct{}

func (systemDisplays) NumActiveDisplays() int { return screenshot.NumActiveDisplays() }

func (systemDisplays) DisplayBounds(i int) image.Rectangle { return screenshot.GetDisplayBounds(i) }

type systemPointer struct{}

func (systemPointer) Location() (int, int) { return robotgo.Location() }

func (systemPointer) FocusedWindowBounds() (int, int, int, int, bool) {
	pid := robotgo.GetPid()
	if pid <= 0 {
		return 0, 0, 0, 0, false
	}
	x, y, w, h := robotgo.GetBounds(pid)
	return x, y, w, h, true
}
