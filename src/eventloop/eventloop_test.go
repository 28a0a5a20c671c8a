package eventloop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"zoom-follow/src/engine"
	"zoom-follow/src/geometry"
	"zoom-follow/src/mode"
	"zoom-follow/src/singleinstance"
)

var (
	testScreen = geometry.ScreenInfo{Width: 1920, Height: 1080}
	testSource = geometry.SourceSize{Width: 1920, Height: 1080}
)

type fakeHost struct {
	mu     sync.Mutex
	mouse  geometry.Point
	window geometry.Rect
}

func (h *fakeHost) MousePosition() (geometry.Point, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mouse, nil
}

func (h *fakeHost) setMouse(p geometry.Point) {
	h.mu.Lock()
	h.mouse = p
	h.mu.Unlock()
}

func (h *fakeHost) ActiveScreen() (geometry.ScreenInfo, error) { return testScreen, nil }
func (h *fakeHost) FocusedWindow() (geometry.Rect, error)      { return h.window, nil }
func (h *fakeHost) SourceSize() (geometry.SourceSize, error)   { return testSource, nil }

type recordingSink struct {
	mu    sync.Mutex
	crops []geometry.Crop
}

func (s *recordingSink) ApplyCrop(c geometry.Crop) error {
	s.mu.Lock()
	s.crops = append(s.crops, c)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) last() (geometry.Crop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.crops) == 0 {
		return geometry.Crop{}, false
	}
	return s.crops[len(s.crops)-1], true
}

type fakeServer struct {
	conns chan singleinstance.Conn
}

func (s *fakeServer) Start(ctx context.Context) error { return nil }
func (s *fakeServer) Port() int                       { return 0 }
func (s *fakeServer) Close() error                    { return nil }

func (s *fakeServer) Next(ctx context.Context) (singleinstance.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c := <-s.conns:
		return c, nil
	}
}

type reply struct {
	ok   bool
	text string
}

type fakeConn struct {
	cmd     string
	replies chan reply
}

func newFakeConn(cmd string) *fakeConn {
	return &fakeConn{cmd: cmd, replies: make(chan reply, 1)}
}

func (c *fakeConn) Request() singleinstance.Request { return singleinstance.Request{Command: c.cmd} }
func (c *fakeConn) Close() error                     { return nil }

func (c *fakeConn) RespondOK(s string) error {
	c.replies <- reply{true, s}
	return nil
}

func (c *fakeConn) RespondError(m string) error {
	c.replies <- reply{false, m}
	return nil
}

func (c *fakeConn) wait(t *testing.T) reply {
	t.Helper()
	select {
	case r := <-c.replies:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("no reply for %q", c.cmd)
		return reply{}
	}
}

type harness struct {
	loop   *Loop
	host   *fakeHost
	sink   *recordingSink
	srv    *fakeServer
	mu     sync.Mutex
	status engine.Status
	seen   bool
	copied chan geometry.Crop
	cancel context.CancelFunc
	done   chan error
}

func startLoop(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		host:   &fakeHost{window: geometry.Rect{X0: 100, Y0: 100, X1: 300, Y1: 500}},
		sink:   &recordingSink{},
		srv:    &fakeServer{conns: make(chan singleinstance.Conn, 4)},
		copied: make(chan geometry.Crop, 1),
		done:   make(chan error, 1),
	}
	h.loop = New(Options{
		Host:           h.host,
		Sink:           h.sink,
		Mode:           mode.Options{FollowHalfSize: 100, WindowMargin: 0},
		TickInterval:   time.Millisecond,
		SampleInterval: 2 * time.Millisecond,
		Server:         h.srv,
		OnStatus: func(s engine.Status) {
			h.mu.Lock()
			h.status, h.seen = s, true
			h.mu.Unlock()
		},
		Copy: func(c geometry.Crop) error {
			h.copied <- c
			return nil
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

// waitFor polls until the sink's latest crop equals want.
func (h *harness) waitFor(t *testing.T, want geometry.Crop) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, ok := h.sink.last(); ok && c == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	got, _ := h.sink.last()
	t.Fatalf("Expected crop to settle on %v, last applied %v", want, got)
}

// waitMode polls the last published status until it reports want.
func (h *harness) waitMode(t *testing.T, want mode.Mode) engine.Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		s, seen := h.status, h.seen
		h.mu.Unlock()
		if seen && s.Mode == want {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Expected mode %v", want)
	return engine.Status{}
}

func TestWindowCommandAnimatesToFit(t *testing.T) {
	h := startLoop(t)
	h.waitMode(t, mode.Idle)

	want, err := geometry.Fit(h.host.window, testScreen, testSource)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !h.loop.Post(mode.SetWindow) {
		t.Fatal("Expected command to be queued")
	}
	h.waitMode(t, mode.Window)
	h.waitFor(t, want)

	h.loop.Post(mode.Reset)
	h.waitMode(t, mode.Idle)
	h.waitFor(t, geometry.FullFrame)
}

func TestFollowTracksMouse(t *testing.T) {
	h := startLoop(t)
	h.host.setMouse(geometry.Point{X: 960, Y: 540})
	h.loop.Post(mode.FollowToggle)
	s := h.waitMode(t, mode.Follow)
	if !s.Following {
		t.Fatal("Expected sampling to be active in Follow")
	}

	want, _ := geometry.Fit(geometry.SquareAround(geometry.Point{X: 960, Y: 540}, 100), testScreen, testSource)
	h.waitFor(t, want)

	h.host.setMouse(geometry.Point{X: 200, Y: 200})
	want, _ = geometry.Fit(geometry.SquareAround(geometry.Point{X: 200, Y: 200}, 100), testScreen, testSource)
	h.waitFor(t, want)

	h.loop.Post(mode.FollowToggle)
	if s := h.waitMode(t, mode.Idle); s.Following {
		t.Fatal("Expected sampling to stop when Follow is toggled off")
	}
}

func TestDelegatedCommands(t *testing.T) {
	h := startLoop(t)

	status := newFakeConn("status")
	h.srv.conns <- status
	if r := status.wait(t); !r.ok || !strings.HasPrefix(r.text, "mode=Idle") {
		t.Fatalf("Expected idle status, got %+v", r)
	}

	window := newFakeConn("window")
	h.srv.conns <- window
	if r := window.wait(t); !r.ok || !strings.Contains(r.text, "mode=Window") {
		t.Fatalf("Expected window status, got %+v", r)
	}

	bogus := newFakeConn("zoom-in")
	h.srv.conns <- bogus
	if r := bogus.wait(t); r.ok || !strings.Contains(r.text, "zoom-in") {
		t.Fatalf("Expected error for unknown command, got %+v", r)
	}

	h.host.setMouse(geometry.Point{X: -10, Y: 5})
	rect := newFakeConn("rect")
	h.srv.conns <- rect
	if r := rect.wait(t); r.ok || !strings.Contains(r.text, mode.ErrOutsideScreen.Error()) {
		t.Fatalf("Expected outside-screen error, got %+v", r)
	}
}

func TestCopyCurrentCrop(t *testing.T) {
	h := startLoop(t)
	h.loop.RequestCopy()
	select {
	case c := <-h.copied:
		if c != geometry.FullFrame {
			t.Errorf("Expected full frame copy at rest, got %v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected copy callback")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New(Options{Host: &fakeHost{}, Sink: &recordingSink{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestSamplerSubscribeCancel(t *testing.T) {
	s := newTickerSampler(time.Millisecond)
	cancel := s.Subscribe()
	select {
	case <-s.C():
	case <-time.After(time.Second):
		t.Fatal("Expected a sample while subscribed")
	}
	if !s.active() {
		t.Fatal("Expected sampler to be active")
	}

	cancel()
	cancel()
	if s.active() {
		t.Fatal("Expected sampler to stop after cancel")
	}

	// A stale cancel must not stop a newer subscription.
	next := s.Subscribe()
	cancel()
	if !s.active() {
		t.Fatal("Expected new subscription to survive stale cancel")
	}
	next()
}
