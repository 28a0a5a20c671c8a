package sink

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"zoom-follow/src/geometry"
	"zoom-follow/src/screenshot"
	"zoom-follow/src/worker"
)

// Preview captures the visible part of the screen for every applied crop and
// writes it as a PNG. Captures run on a single worker; frames arriving while
// one is in flight are dropped, so the animation never waits on disk.
type Preview struct {
	layout  Layout
	capture screenshot.Capturer
	path    string
	pool    *worker.Pool
	ctx     context.Context
	cancel  context.CancelFunc

	written atomic.Uint64
	dropped atomic.Uint64
}

func NewPreview(layout Layout, capture screenshot.Capturer, path string) *Preview {
	ctx, cancel := context.WithCancel(context.Background())
	return &Preview{
		layout:  layout,
		capture: capture,
		path:    path,
		pool:    worker.New(1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Preview) ApplyCrop(c geometry.Crop) error {
	screen, err := p.layout.ActiveScreen()
	if err != nil {
		return err
	}
	src, err := p.layout.SourceSize()
	if err != nil {
		return err
	}
	region, err := geometry.ScreenRect(c, screen, src)
	if err != nil {
		return err
	}

	ok := p.pool.Submit(p.ctx, "preview "+c.String(), func(ctx context.Context) error {
		data, err := screenshot.CaptureRegion(p.capture, region)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := screenshot.WriteFileAtomic(p.path, data); err != nil {
			return fmt.Errorf("write preview %s: %w", p.path, err)
		}
		return nil
	}, func(err error) {
		if err == nil {
			p.written.Add(1)
		}
	})
	if !ok {
		p.dropped.Add(1)
	}
	return nil
}

// Stats reports how many previews were written and how many frames were skipped.
func (p *Preview) Stats() (written, dropped uint64) {
	return p.written.Load(), p.dropped.Load()
}

// Close cancels pending captures and waits for the worker to exit.
func (p *Preview) Close() error {
	p.cancel()
	p.pool.Close()
	w, d := p.Stats()
	log.Printf("Preview sink closed: %d written, %d dropped", w, d)
	return nil
}
