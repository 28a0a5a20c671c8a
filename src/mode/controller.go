package mode

import (
	"errors"
	"fmt"
	"log"

	"zoom-follow/src/geometry"
)

var (
	// ErrOutsideScreen is returned when a capture click or the focused window
	// lies off the active screen. Any pending corner is kept for a retry.
	ErrOutsideScreen  = errors.New("outside active screen")
	ErrUnknownCommand = errors.New("unknown command")
)

// Mode selects what the crop tracks.
type Mode int

const (
	Idle Mode = iota
	Follow
	Window
	RectCapture
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case Follow:
		return "Follow"
	case Window:
		return "Window"
	case RectCapture:
		return "RectCapture"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Host exposes the desktop the controller reads from. Every call may fail.
type Host interface {
	MousePosition() (geometry.Point, error)
	ActiveScreen() (geometry.ScreenInfo, error)
	FocusedWindow() (geometry.Rect, error)
	SourceSize() (geometry.SourceSize, error)
}

// Targeter receives the crops the controller decides on.
type Targeter interface {
	SetTarget(c geometry.Crop)
	ClearTarget()
}

// Sampler starts the fast-sample timer used while following the mouse.
// The returned function stops it.
type Sampler interface {
	Subscribe() (cancel func())
}

type Options struct {
	// FollowHalfSize is the half-extent of the square tracked around the
	// mouse in Follow mode.
	FollowHalfSize int
	// WindowMargin pads the focused window's box in Window mode.
	WindowMargin int
}

func DefaultOptions() Options {
	return Options{FollowHalfSize: 100, WindowMargin: 20}
}

// Controller is the mode state machine. It is driven from a single
// goroutine and does no locking of its own.
type Controller struct {
	host    Host
	targets Targeter
	sampler Sampler
	opts    Options

	mode         Mode
	pending      *geometry.Point
	stopSampling func()
}

func New(host Host, targets Targeter, sampler Sampler, opts Options) *Controller {
	def := DefaultOptions()
	if opts.FollowHalfSize <= 0 {
		opts.FollowHalfSize = def.FollowHalfSize
	}
	if opts.WindowMargin < 0 {
		opts.WindowMargin = def.WindowMargin
	}
	return &Controller{host: host, targets: targets, sampler: sampler, opts: opts}
}

func (c *Controller) Mode() Mode { return c.mode }

// Pending returns the first corner of an unfinished rectangle capture.
func (c *Controller) Pending() (geometry.Point, bool) {
	if c.pending == nil {
		return geometry.Point{}, false
	}
	return *c.pending, true
}

// Following reports whether the fast-sample timer is registered.
func (c *Controller) Following() bool { return c.stopSampling != nil }

// Handle applies one command. A failed command leaves mode, pending corner
// and target as they were.
func (c *Controller) Handle(cmd Command) error {
	switch cmd {
	case FollowToggle:
		return c.toggleFollow()
	case SetRect:
		return c.captureCorner()
	case SetWindow:
		return c.zoomToWindow()
	case Reset:
		c.reset()
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnknownCommand, cmd)
	}
}

// Sample retargets on the live mouse position. It is inert outside Follow,
// and positions off the active screen are ignored.
func (c *Controller) Sample() error {
	if c.mode != Follow {
		return nil
	}
	screen, src, err := c.layout()
	if err != nil {
		return err
	}
	p, err := c.host.MousePosition()
	if err != nil {
		return fmt.Errorf("mouse position: %w", err)
	}
	if !screen.Contains(p) {
		return nil
	}
	crop, err := geometry.Fit(geometry.SquareAround(p, c.opts.FollowHalfSize), screen, src)
	if err != nil {
		return err
	}
	c.targets.SetTarget(crop)
	return nil
}

func (c *Controller) toggleFollow() error {
	if c.mode == Follow {
		c.enter(Idle)
		return nil
	}
	if _, _, err := c.layout(); err != nil {
		return err
	}
	c.enter(Follow)
	c.stopSampling = c.sampler.Subscribe()
	return nil
}

func (c *Controller) captureCorner() error {
	screen, src, err := c.layout()
	if err != nil {
		return err
	}
	p, err := c.host.MousePosition()
	if err != nil {
		return fmt.Errorf("mouse position: %w", err)
	}
	if !screen.Contains(p) {
		log.Printf("mode: capture click %v outside screen, ignored", p)
		return fmt.Errorf("%w: %v", ErrOutsideScreen, p)
	}

	if c.mode != RectCapture || c.pending == nil {
		c.enter(RectCapture)
		c.pending = &p
		log.Printf("mode: first corner %v", p)
		return nil
	}

	crop, err := geometry.Fit(geometry.RectFromPoints(*c.pending, p), screen, src)
	if err != nil {
		return err
	}
	log.Printf("mode: second corner %v, rectangle %v..%v -> crop %v", p, *c.pending, p, crop)
	c.pending = nil
	c.targets.SetTarget(crop)
	return nil
}

func (c *Controller) zoomToWindow() error {
	screen, src, err := c.layout()
	if err != nil {
		return err
	}
	box, err := c.host.FocusedWindow()
	if err != nil {
		return fmt.Errorf("focused window: %w", err)
	}
	if !screen.Overlaps(box) {
		return fmt.Errorf("%w: window %v..%v", ErrOutsideScreen,
			geometry.Point{X: box.X0, Y: box.Y0}, geometry.Point{X: box.X1, Y: box.Y1})
	}
	crop, err := geometry.Fit(box.Pad(c.opts.WindowMargin), screen, src)
	if err != nil {
		return err
	}
	c.enter(Window)
	c.targets.SetTarget(crop)
	return nil
}

func (c *Controller) reset() {
	c.enter(Idle)
	c.targets.SetTarget(geometry.FullFrame)
}

// enter switches mode, dropping the fast-sample registration, any pending
// corner and the current target.
func (c *Controller) enter(m Mode) {
	if c.stopSampling != nil {
		c.stopSampling()
		c.stopSampling = nil
	}
	c.pending = nil
	c.targets.ClearTarget()
	if c.mode != m {
		log.Printf("mode: %v -> %v", c.mode, m)
	}
	c.mode = m
}

func (c *Controller) layout() (geometry.ScreenInfo, geometry.SourceSize, error) {
	screen, err := c.host.ActiveScreen()
	if err != nil {
		if !geometry.IsConfigurationError(err) {
			err = &geometry.ConfigurationError{Op: "active screen", Msg: "lookup failed", Err: err}
		}
		return geometry.ScreenInfo{}, geometry.SourceSize{}, err
	}
	src, err := c.host.SourceSize()
	if err != nil {
		return geometry.ScreenInfo{}, geometry.SourceSize{}, fmt.Errorf("source size: %w", err)
	}
	return screen, src, nil
}
