package runtimeinit

import (
	"fmt"
	"log"

	"zoom-follow/src/clipboard"
	"zoom-follow/src/config"
	"zoom-follow/src/desktop"
	"zoom-follow/src/geometry"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(enableFileLogging bool)
	// InitClipboard enables the "Copy crop" action. A clipboard failure is
	// logged and leaves ClipboardReady false.
	InitClipboard bool
	// NewHost builds the desktop view; defaults to desktop.New.
	NewHost func(desktop.Options) *desktop.Host
}

// Runtime is everything the resident needs after startup checks passed.
type Runtime struct {
	Config *config.Config
	Host   *desktop.Host
	// Layout is nil when the display or capture source could not be
	// resolved. The resident still runs; LayoutErr says why.
	Layout         *Layout
	LayoutErr      error
	ClipboardReady bool
}

// Layout is the display and capture source resolved at startup.
type Layout struct {
	Screen geometry.ScreenInfo
	Source geometry.SourceSize
}

// Degraded reports whether Follow, Window and RectCapture will fail until
// the display configuration is fixed.
func (rt *Runtime) Degraded() bool { return rt.Layout == nil }

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	newHost := opts.NewHost
	if newHost == nil {
		newHost = desktop.New
	}
	host := newHost(desktop.Options{
		DisplayIndex: cfg.DisplayIndex,
		Source:       geometry.SourceSize{Width: cfg.SourceWidth, Height: cfg.SourceHeight},
	})

	rt := &Runtime{Config: cfg, Host: host}
	layout, err := resolveLayout(host, cfg.DisplayIndex)
	switch {
	case err == nil:
		rt.Layout = layout
		log.Printf("Display %d: %dx%d at %s, source %dx%d", cfg.DisplayIndex,
			layout.Screen.Width, layout.Screen.Height, layout.Screen.Origin, layout.Source.Width, layout.Source.Height)
	case geometry.IsConfigurationError(err):
		// Idle and Reset keep working; the zoom modes report the error per command.
		rt.LayoutErr = err
		log.Printf("WARNING: %v; follow, window and rect zoom are disabled", err)
	default:
		return nil, err
	}

	if opts.InitClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, copy disabled: %v", err)
		} else {
			rt.ClipboardReady = true
		}
	}
	return rt, nil
}

func resolveLayout(host *desktop.Host, displayIndex int) (*Layout, error) {
	screen, err := host.ActiveScreen()
	if err != nil {
		return nil, fmt.Errorf("display %d unavailable: %w", displayIndex, err)
	}
	src, err := host.SourceSize()
	if err != nil {
		return nil, fmt.Errorf("invalid capture source: %w", err)
	}
	return &Layout{Screen: screen, Source: src}, nil
}
