package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPathVar = "ZOOM_FOLLOW"

	SinkLog     = "log"
	SinkStdout  = "stdout"
	SinkPreview = "preview"
)

type LoadOptions struct {
	EnvPathOverride string
	SinkOverride    string
	// DisplayIndexOverride is ignored when negative.
	DisplayIndexOverride int
}

// Hotkeys holds one key combination per command, e.g. "Ctrl+Alt+F".
type Hotkeys struct {
	Follow string
	Rect   string
	Window string
	Reset  string
}

type Config struct {
	Hotkeys           Hotkeys
	DisplayIndex      int
	SourceWidth       int
	SourceHeight      int
	FollowHalfSize    int
	WindowMargin      int
	TickInterval      time.Duration
	SampleInterval    time.Duration
	Sink              string
	PreviewPath       string
	EnableTray        bool
	EnableFileLogging bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{DisplayIndexOverride: -1})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) explicit override path
	// 2) .env in the application (executable) directory
	// 3) ZOOM_FOLLOW env var as a path to a config file
	if envPath := resolveEnvPath(opts.EnvPathOverride); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkeys: Hotkeys{
			Follow: getEnvWithDefault("HOTKEY_FOLLOW", "Ctrl+Alt+F"),
			Rect:   getEnvWithDefault("HOTKEY_RECT", "Ctrl+Alt+R"),
			Window: getEnvWithDefault("HOTKEY_WINDOW", "Ctrl+Alt+W"),
			Reset:  getEnvWithDefault("HOTKEY_RESET", "Ctrl+Alt+0"),
		},
		DisplayIndex:      getIntWithDefault("DISPLAY_INDEX", 0, 0),
		SourceWidth:       getIntWithDefault("SOURCE_WIDTH", 0, 0),
		SourceHeight:      getIntWithDefault("SOURCE_HEIGHT", 0, 0),
		FollowHalfSize:    getIntWithDefault("FOLLOW_HALF_SIZE", 100, 1),
		WindowMargin:      getIntWithDefault("WINDOW_MARGIN", 20, 0),
		TickInterval:      time.Duration(getIntWithDefault("TICK_INTERVAL_MS", 16, 1)) * time.Millisecond,
		SampleInterval:    time.Duration(getIntWithDefault("SAMPLE_INTERVAL_MS", 50, 1)) * time.Millisecond,
		Sink:              resolveSink(os.Getenv("CROP_SINK")),
		PreviewPath:       getEnvWithDefault("PREVIEW_PATH", "zoom_preview.png"),
		EnableTray:        strings.ToLower(getEnvWithDefault("ENABLE_TRAY", "true")) == "true",
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}

	if override := strings.TrimSpace(opts.SinkOverride); override != "" {
		cfg.Sink = resolveSink(override)
	}
	if opts.DisplayIndexOverride >= 0 {
		cfg.DisplayIndex = opts.DisplayIndexOverride
	}

	return cfg, nil
}

func resolveEnvPath(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntWithDefault parses key as an integer, falling back to defaultValue
// when unset, malformed or below minValue.
func getIntWithDefault(key string, defaultValue, minValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minValue {
		return defaultValue
	}
	return n
}

func resolveSink(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case SinkStdout, "json":
		return SinkStdout
	case SinkPreview, "png":
		return SinkPreview
	default:
		return SinkLog
	}
}
