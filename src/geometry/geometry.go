package geometry

import "fmt"

// Point is a position in global screen coordinates.
type Point struct {
	X int
	Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rect is a two-corner rectangle in global screen coordinates.
// Corners may arrive in any order; call Normalize before measuring.
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// RectFromPoints builds a rectangle from two arbitrary corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y}
}

// Normalize swaps corner components per axis so that X0<=X1 and Y0<=Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

func (r Rect) Width() int {
	n := r.Normalize()
	return n.X1 - n.X0
}

func (r Rect) Height() int {
	n := r.Normalize()
	return n.Y1 - n.Y0
}

// Pad grows the normalized rectangle by margin on every side.
func (r Rect) Pad(margin int) Rect {
	n := r.Normalize()
	return Rect{X0: n.X0 - margin, Y0: n.Y0 - margin, X1: n.X1 + margin, Y1: n.Y1 + margin}
}

// SquareAround returns the square of half-extent half centered on p.
func SquareAround(p Point, half int) Rect {
	return Rect{X0: p.X - half, Y0: p.Y - half, X1: p.X + half, Y1: p.Y + half}
}

// Crop holds edge insets in source pixel space.
type Crop struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// FullFrame is the zero crop: the whole source is visible.
var FullFrame = Crop{}

func (c Crop) IsZero() bool { return c == Crop{} }

// NonNegative returns c with every negative inset raised to zero.
func (c Crop) NonNegative() Crop {
	return Crop{
		Left:   max(c.Left, 0),
		Top:    max(c.Top, 0),
		Right:  max(c.Right, 0),
		Bottom: max(c.Bottom, 0),
	}
}

// Visible returns the rectangle of the source left visible by the crop.
func (c Crop) Visible(src SourceSize) Rect {
	return Rect{X0: c.Left, Y0: c.Top, X1: src.Width - c.Right, Y1: src.Height - c.Bottom}
}

func (c Crop) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", c.Left, c.Top, c.Right, c.Bottom)
}

// ScreenInfo describes the display hosting the capture source.
type ScreenInfo struct {
	Origin Point
	Width  uint32
	Height uint32
}

// Contains reports whether p lies on the screen. The right and bottom
// edges are exclusive.
func (s ScreenInfo) Contains(p Point) bool {
	return p.X >= s.Origin.X && p.Y >= s.Origin.Y &&
		p.X < s.Origin.X+int(s.Width) && p.Y < s.Origin.Y+int(s.Height)
}

// Bounds returns the screen as a rectangle in desktop coordinates.
func (s ScreenInfo) Bounds() Rect {
	return Rect{X0: s.Origin.X, Y0: s.Origin.Y, X1: s.Origin.X + int(s.Width), Y1: s.Origin.Y + int(s.Height)}
}

// Overlaps reports whether r shares any area with the screen. A rectangle
// that only touches an edge does not overlap.
func (s ScreenInfo) Overlaps(r Rect) bool {
	n, b := r.Normalize(), s.Bounds()
	return n.X0 < b.X1 && b.X0 < n.X1 && n.Y0 < b.Y1 && b.Y0 < n.Y1
}

// SourceSize is the pixel size of the captured source.
type SourceSize struct {
	Width  int
	Height int
}

// Validate rejects sources without a usable aspect ratio.
func (s SourceSize) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return &ConfigurationError{Op: "source size", Msg: fmt.Sprintf("invalid dimensions %dx%d", s.Width, s.Height)}
	}
	return nil
}
