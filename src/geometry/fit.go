package geometry

import (
	"fmt"
	"math"
)

// span is one axis of the rectangle being fitted, in screen-local pixels.
type span struct{ lo, hi float64 }

func (s span) size() float64   { return s.hi - s.lo }
func (s span) center() float64 { return (s.lo + s.hi) / 2 }

// grow resizes the span to size, symmetrically about its center.
func (s span) grow(size float64) span {
	c := s.center()
	return span{lo: c - size/2, hi: c + size/2}
}

// shiftInto moves the span flush inside [0, limit] without changing its size.
// The caller guarantees size() <= limit.
func (s span) shiftInto(limit float64) span {
	if s.lo < 0 {
		s.hi -= s.lo
		s.lo = 0
	}
	if s.hi > limit {
		s.lo -= s.hi - limit
		s.hi = limit
	}
	return s
}

// Fit turns an arbitrary two-corner selection on the active screen into a
// crop of the source. The selection is grown along its under-relative axis
// until its share of the screen is equal on both axes, which makes its
// aspect ratio match the source once mapped into source pixels. The result
// is then moved inside the screen and converted to edge insets.
func Fit(raw Rect, screen ScreenInfo, src SourceSize) (Crop, error) {
	if screen.Width == 0 || screen.Height == 0 {
		return Crop{}, &GeometryError{Op: "fit", Msg: fmt.Sprintf("zero-sized screen %dx%d", screen.Width, screen.Height)}
	}
	if err := src.Validate(); err != nil {
		return Crop{}, err
	}

	n := raw.Normalize()
	if n.X0 == n.X1 && n.Y0 == n.Y1 {
		return Crop{}, &GeometryError{Op: "fit", Msg: fmt.Sprintf("empty selection at %v", Point{n.X0, n.Y0})}
	}

	sw, sh := float64(screen.Width), float64(screen.Height)
	xs := span{lo: float64(n.X0 - screen.Origin.X), hi: float64(n.X1 - screen.Origin.X)}
	ys := span{lo: float64(n.Y0 - screen.Origin.Y), hi: float64(n.Y1 - screen.Origin.Y)}

	wp, hp := xs.size()/sw, ys.size()/sh
	share := math.Max(wp, hp)
	if share >= 1 {
		// A selection at least as large as the screen can only show all of it.
		return FullFrame, nil
	}
	if wp > hp {
		ys = ys.grow(share * sh)
	} else if hp > wp {
		xs = xs.grow(share * sw)
	}

	xs = xs.shiftInto(sw)
	ys = ys.shiftInto(sh)

	sx := float64(src.Width) / sw
	sy := float64(src.Height) / sh
	crop := Crop{
		Left:   int(math.Round(xs.lo * sx)),
		Top:    int(math.Round(ys.lo * sy)),
		Right:  src.Width - int(math.Round(xs.hi*sx)),
		Bottom: src.Height - int(math.Round(ys.hi*sy)),
	}
	return crop.NonNegative(), nil
}

// ScreenRect maps a crop back to the global screen rectangle it shows.
func ScreenRect(c Crop, screen ScreenInfo, src SourceSize) (Rect, error) {
	if screen.Width == 0 || screen.Height == 0 {
		return Rect{}, &GeometryError{Op: "screen rect", Msg: fmt.Sprintf("zero-sized screen %dx%d", screen.Width, screen.Height)}
	}
	if err := src.Validate(); err != nil {
		return Rect{}, err
	}
	v := c.Visible(src)
	sx := float64(screen.Width) / float64(src.Width)
	sy := float64(screen.Height) / float64(src.Height)
	return Rect{
		X0: screen.Origin.X + int(math.Round(float64(v.X0)*sx)),
		Y0: screen.Origin.Y + int(math.Round(float64(v.Y0)*sy)),
		X1: screen.Origin.X + int(math.Round(float64(v.X1)*sx)),
		Y1: screen.Origin.Y + int(math.Round(float64(v.Y1)*sy)),
	}, nil
}
