package desktop

import (
	"errors"
	"image"
	"testing"

	"zoom-follow/src/geometry"
)

type fakeDisplays []image.Rectangle

func (d fakeDisplays) NumActiveDisplays() int              { return len(d) }
func (d fakeDisplays) DisplayBounds(i int) image.Rectangle { return d[i] }

type fakePointer struct {
	x, y    int
	win     image.Rectangle
	focused bool
}

func (p fakePointer) Location() (int, int) { return p.x, p.y }

func (p fakePointer) FocusedWindowBounds() (int, int, int, int, bool) {
	return p.win.Min.X, p.win.Min.Y, p.win.Dx(), p.win.Dy(), p.focused
}

var twoDisplays = fakeDisplays{
	image.Rect(0, 0, 1920, 1080),
	image.Rect(1920, -200, 1920+2560, -200+1440),
}

func TestActiveScreenSelectsDisplay(t *testing.T) {
	h := NewWith(twoDisplays, fakePointer{}, Options{DisplayIndex: 1})

	screen, err := h.ActiveScreen()
	if err != nil {
		t.Fatalf("ActiveScreen failed: %v", err)
	}
	want := geometry.ScreenInfo{Origin: geometry.Point{X: 1920, Y: -200}, Width: 2560, Height: 1440}
	if screen != want {
		t.Fatalf("Expected %+v, got %+v", want, screen)
	}
}

func TestActiveScreenMissingDisplay(t *testing.T) {
	for _, tt := range []struct {
		name     string
		displays fakeDisplays
		index    int
	}{
		{"no displays", nil, 0},
		{"index too high", twoDisplays, 2},
		{"negative index", twoDisplays, -1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWith(tt.displays, fakePointer{}, Options{DisplayIndex: tt.index})
			if _, err := h.ActiveScreen(); !geometry.IsConfigurationError(err) {
				t.Fatalf("Expected ConfigurationError, got %v", err)
			}
			if _, err := h.SourceSize(); !geometry.IsConfigurationError(err) {
				t.Fatalf("Expected SourceSize to surface the lookup failure, got %v", err)
			}
		})
	}
}

func TestSourceSizeDefaultsToDisplay(t *testing.T) {
	h := NewWith(twoDisplays, fakePointer{}, Options{DisplayIndex: 0})
	src, err := h.SourceSize()
	if err != nil {
		t.Fatalf("SourceSize failed: %v", err)
	}
	if src != (geometry.SourceSize{Width: 1920, Height: 1080}) {
		t.Fatalf("Unexpected source %+v", src)
	}

	h = NewWith(twoDisplays, fakePointer{}, Options{Source: geometry.SourceSize{Width: 3840, Height: 2160}})
	if src, _ := h.SourceSize(); src.Width != 3840 {
		t.Fatalf("Expected configured source size, got %+v", src)
	}

	h = NewWith(twoDisplays, fakePointer{}, Options{Source: geometry.SourceSize{Width: 1280}})
	if _, err := h.SourceSize(); !geometry.IsConfigurationError(err) {
		t.Fatalf("Expected configuration error for half-configured source, got %v", err)
	}
}

func TestFocusedWindow(t *testing.T) {
	h := NewWith(twoDisplays, fakePointer{win: image.Rect(100, 50, 900, 650), focused: true}, Options{})
	box, err := h.FocusedWindow()
	if err != nil {
		t.Fatalf("FocusedWindow failed: %v", err)
	}
	if box != (geometry.Rect{X0: 100, Y0: 50, X1: 900, Y1: 650}) {
		t.Fatalf("Unexpected window box %+v", box)
	}

	h = NewWith(twoDisplays, fakePointer{}, Options{})
	if _, err := h.FocusedWindow(); !errors.Is(err, ErrNoFocusedWindow) {
		t.Fatalf("Expected ErrNoFocusedWindow, got %v", err)
	}
}

func TestMousePosition(t *testing.T) {
	h := NewWith(twoDisplays, fakePointer{x: -50, y: 500}, Options{})
	p, err := h.MousePosition()
	if err != nil || p != (geometry.Point{X: -50, Y: 500}) {
		t.Fatalf("Unexpected position %v, %v", p, err)
	}
}
