package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"zoom-follow/src/animator"
	"zoom-follow/src/engine"
	"zoom-follow/src/geometry"
	"zoom-follow/src/mode"
	"zoom-follow/src/singleinstance"
)

var errBusy = errors.New("busy, please retry")

// Options configures a Loop. Server, OnStatus and Copy are optional.
type Options struct {
	Host           mode.Host
	Sink           animator.Sink
	Mode           mode.Options
	TickInterval   time.Duration
	SampleInterval time.Duration
	Server         singleinstance.Server
	OnStatus       func(engine.Status)
	Copy           func(geometry.Crop) error
}

// Loop is the single-threaded coordinator: every call into the engine
// happens on the goroutine running Run.
type Loop struct {
	engine   *engine.Engine
	sampler  *tickerSampler
	srv      singleinstance.Server
	tick     time.Duration
	cmdCh    chan mode.Command
	copyCh   chan struct{}
	onStatus func(engine.Status)
	copy     func(geometry.Crop) error
	last     engine.Status
	fresh    bool
}

// New creates a loop and the engine it drives.
func New(opts Options) *Loop {
	tick := opts.TickInterval
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}
	sampler := newTickerSampler(opts.SampleInterval)
	return &Loop{
		engine:   engine.New(opts.Host, opts.Sink, sampler, opts.Mode),
		sampler:  sampler,
		srv:      opts.Server,
		tick:     tick,
		cmdCh:    make(chan mode.Command, 8),
		copyCh:   make(chan struct{}, 1),
		onStatus: opts.OnStatus,
		copy:     opts.Copy,
	}
}

// Post queues a command from any goroutine. Returns false if the queue is full.
func (l *Loop) Post(cmd mode.Command) bool {
	select {
	case l.cmdCh <- cmd:
		return true
	default:
		log.Printf("eventloop: command queue full, dropping %v", cmd)
		return false
	}
}

// RequestCopy asks the loop to copy the current crop to the clipboard.
func (l *Loop) RequestCopy() {
	select {
	case l.copyCh <- struct{}{}:
	default:
	}
}

// Run processes ticks, samples, commands and delegated requests until ctx
// is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	reqCh := make(chan singleinstance.Conn, 4)
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return err
		}
		if p := l.srv.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		go func() {
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					close(reqCh)
					return
				}
				select {
				case reqCh <- conn:
				default:
					_ = conn.RespondError(errBusy.Error())
					_ = conn.Close()
				}
			}
		}()
	}
	defer l.sampler.stop()

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	l.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.engine.OnTick()
		case <-l.sampler.C():
			if err := l.engine.OnFastSample(); err != nil {
				log.Printf("eventloop: sample failed: %v", err)
			}
		case cmd := <-l.cmdCh:
			_ = l.engine.OnCommand(cmd)
		case <-l.copyCh:
			l.handleCopy()
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(conn)
		}
		l.publish()
	}
}

func (l *Loop) publish() {
	if l.onStatus == nil {
		return
	}
	s := l.engine.Status()
	if l.fresh && s.Mode == l.last.Mode && s.Following == l.last.Following && s.Current == l.last.Current &&
		(s.Pending == nil) == (l.last.Pending == nil) {
		return
	}
	l.last, l.fresh = s, true
	l.onStatus(s)
}

func (l *Loop) handleCopy() {
	if l.copy == nil {
		return
	}
	crop := l.engine.Current()
	if err := l.copy(crop); err != nil {
		log.Printf("eventloop: copy crop failed: %v", err)
		return
	}
	log.Printf("eventloop: copied crop %s", crop)
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	reply, err := l.dispatch(conn.Request().Command)
	if err != nil {
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondOK(reply)
}

// dispatch runs one delegated command and returns the resulting status line.
func (l *Loop) dispatch(name string) (string, error) {
	if name == singleinstance.StatusCommand {
		return l.engine.Status().String(), nil
	}
	cmd, err := mode.ParseCommand(name)
	if err != nil {
		return "", err
	}
	if err := l.engine.OnCommand(cmd); err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return l.engine.Status().String(), nil
}
