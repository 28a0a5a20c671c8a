package engine

import (
	"fmt"
	"log"
	"strings"

	"zoom-follow/src/animator"
	"zoom-follow/src/geometry"
	"zoom-follow/src/mode"
)

// Engine wires the mode controller to the crop animator. One Engine is
// owned by the host loop, which must serialize every call into it.
type Engine struct {
	controller *mode.Controller
	animator   *animator.Animator
}

// Status is a snapshot of the engine for display and delegation replies.
type Status struct {
	Mode      mode.Mode
	Pending   *geometry.Point
	Current   geometry.Crop
	Target    *geometry.Crop
	Following bool
}

// New creates an engine at rest on the full frame.
func New(host mode.Host, sink animator.Sink, sampler mode.Sampler, opts mode.Options) *Engine {
	a := animator.New(sink, geometry.FullFrame)
	return &Engine{
		controller: mode.New(host, a, sampler, opts),
		animator:   a,
	}
}

// OnTick advances the animation by one step. It is a no-op at rest.
func (e *Engine) OnTick() {
	e.animator.Step()
}

// OnCommand routes a command into the mode controller. Errors are local:
// the engine stays serviceable after any failed command.
func (e *Engine) OnCommand(cmd mode.Command) error {
	if err := e.controller.Handle(cmd); err != nil {
		log.Printf("engine: %v failed in %v: %v", cmd, e.controller.Mode(), err)
		return err
	}
	return nil
}

// OnFastSample retargets on the mouse while following; inert otherwise.
func (e *Engine) OnFastSample() error {
	if e.controller.Mode() != mode.Follow {
		return nil
	}
	return e.controller.Sample()
}

func (e *Engine) Mode() mode.Mode { return e.controller.Mode() }

func (e *Engine) Current() geometry.Crop { return e.animator.Current() }

func (e *Engine) Status() Status {
	s := Status{
		Mode:      e.controller.Mode(),
		Current:   e.animator.Current(),
		Following: e.controller.Following(),
	}
	if p, ok := e.controller.Pending(); ok {
		s.Pending = &p
	}
	if t, ok := e.animator.Target(); ok {
		s.Target = &t
	}
	return s
}

// String renders the status as space-separated key=value pairs.
func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s current=%s", s.Mode, s.Current)
	if s.Target != nil {
		fmt.Fprintf(&b, " target=%s", *s.Target)
	}
	if s.Pending != nil {
		fmt.Fprintf(&b, " pending=%s", *s.Pending)
	}
	if s.Following {
		b.WriteString(" following=true")
	}
	return b.String()
}
