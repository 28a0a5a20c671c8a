package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"zoom-follow/src/clipboard"
	"zoom-follow/src/config"
	"zoom-follow/src/engine"
	"zoom-follow/src/eventloop"
	"zoom-follow/src/geometry"
	"zoom-follow/src/hotkey"
	"zoom-follow/src/logutil"
	"zoom-follow/src/mode"
	"zoom-follow/src/notification"
	"zoom-follow/src/runtimeinit"
	"zoom-follow/src/singleinstance"
	"zoom-follow/src/sink"
	"zoom-follow/src/tray"
)

const appTitle = "Zoom Follow"

type mainOptions struct {
	sink    string
	display int
	envFile string
	verbose bool
	noTray  bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"zoom-follow"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zoom-follow",
		Short:         "Resident zoom overlay: follow the mouse, a rectangle or the active window",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.sink, "sink", "", "Crop sink: log|stdout|preview (overrides CROP_SINK)")
	cmd.Flags().IntVar(&opts.display, "display", -1, "Display index to zoom (overrides DISPLAY_INDEX)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to .env file (highest precedence)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Run without the tray icon")

	return cmd
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		EnvPathOverride:      o.envFile,
		SinkOverride:         o.sink,
		DisplayIndexOverride: o.display,
	}
}

func runResident(opts mainOptions) error {
	// Ensure DPI awareness before querying display metrics
	enableDPIAwareness()

	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	early, _ := config.LoadWithOptions(opts.loadOptions())
	pingCtx, cancelPing := context.WithTimeout(context.Background(), time.Second)
	err := preflight(pingCtx)
	cancelPing()
	if err != nil {
		return err
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   opts.loadOptions(),
		SetupLogging:  func(enableFileLogging bool) { logutil.Setup(enableFileLogging, opts.verbose) },
		InitClipboard: true,
	})
	if err != nil {
		// Tray builds have no console.
		if early != nil && early.EnableTray && !opts.noTray {
			notification.ShowBlockingError(appTitle, fmt.Sprintf("Startup failed: %v", err))
		}
		return err
	}
	cfg := rt.Config
	if rt.Degraded() && early != nil && early.EnableTray && !opts.noTray {
		go notification.ShowInfo(appTitle, fmt.Sprintf("Zoom disabled until the display is fixed: %v", rt.LayoutErr))
	}
	logMonitorConfiguration()
	log.Printf("Zoom Follow initialized: sink=%s tick=%v sample=%v", cfg.Sink, cfg.TickInterval, cfg.SampleInterval)
	log.Printf("Hotkeys: follow=%s rect=%s window=%s reset=%s", cfg.Hotkeys.Follow, cfg.Hotkeys.Rect, cfg.Hotkeys.Window, cfg.Hotkeys.Reset)

	cropSink, err := sink.New(cfg, rt.Host)
	if err != nil {
		return err
	}
	defer cropSink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var copyCrop func(geometry.Crop) error
	if rt.ClipboardReady {
		copyCrop = clipboard.WriteCrop
	}
	srv := singleinstance.NewServer()
	defer srv.Close()

	loop := eventloop.New(eventloop.Options{
		Host:           rt.Host,
		Sink:           cropSink,
		Mode:           mode.Options{FollowHalfSize: cfg.FollowHalfSize, WindowMargin: cfg.WindowMargin},
		TickInterval:   cfg.TickInterval,
		SampleInterval: cfg.SampleInterval,
		Server:         srv,
		OnStatus: func(s engine.Status) {
			tray.UpdateTooltip(tray.StatusTooltip(appTitle, s))
		},
		Copy: copyCrop,
	})

	listener, err := hotkey.Listen(hotkeyBindings(cfg.Hotkeys, loop.Post))
	if err != nil {
		log.Printf("Hotkeys disabled: %v", err)
	} else {
		defer listener.Stop()
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	if !cfg.EnableTray || opts.noTray {
		return ignoreCancel(loop.Run(ctx))
	}

	items := tray.CommandItems(loop.Post)
	if copyCrop != nil {
		items = append(items, tray.Item{Title: "Copy crop", Tooltip: "Copy the current crop to the clipboard", OnClick: loop.RequestCopy})
	}
	trayIcon := tray.New(tray.Config{
		Title:   appTitle,
		Tooltip: appTitle,
		Items:   items,
		About:   func() string { return aboutText(cfg, srv.Port()) },
		OnExit:  cancel,
	})

	// systray owns the main goroutine; the loop runs beside it.
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(ctx)
		trayIcon.Quit()
	}()
	trayIcon.Run()
	cancel()
	return ignoreCancel(<-errCh)
}

// preflight fails fast when another resident already owns the start port.
// A resident that answers PING is reported by port; a port held by an
// unrelated process is reported as busy.
func preflight(ctx context.Context) error {
	if port, err := singleinstance.FindResident(ctx); err == nil {
		log.Printf("Pre-flight: resident answered on port %d", port)
		return fmt.Errorf("one is already running on port %d", port)
	}
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy without a resident: %v", startPort, err)
		return fmt.Errorf("port %d is in use by another program", startPort)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free → we are the one true resident", startPort)
	return nil
}

func hotkeyBindings(h config.Hotkeys, post func(mode.Command) bool) []hotkey.Binding {
	combos := map[mode.Command]string{
		mode.FollowToggle: h.Follow,
		mode.SetRect:      h.Rect,
		mode.SetWindow:    h.Window,
		mode.Reset:        h.Reset,
	}
	bindings := make([]hotkey.Binding, 0, len(mode.Commands))
	for _, cmd := range mode.Commands {
		bindings = append(bindings, hotkey.Binding{
			Name:    cmd.String(),
			Combo:   combos[cmd],
			OnPress: func() { post(cmd) },
		})
	}
	return bindings
}

func aboutText(cfg *config.Config, port int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Follow mouse: %s\n", cfg.Hotkeys.Follow)
	fmt.Fprintf(&b, "Set rectangle corner: %s\n", cfg.Hotkeys.Rect)
	fmt.Fprintf(&b, "Zoom to active window: %s\n", cfg.Hotkeys.Window)
	fmt.Fprintf(&b, "Reset: %s\n", cfg.Hotkeys.Reset)
	fmt.Fprintf(&b, "Crop sink: %s\n", cfg.Sink)
	if port > 0 {
		fmt.Fprintf(&b, "Resident TCP port: %d", port)
	}
	return b.String()
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"sink", "display", "env-file", "verbose", "no-tray"} {
			single := "-" + name
			switch {
			case arg == single:
				normalized[i] = "-" + single
			case strings.HasPrefix(arg, single+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
