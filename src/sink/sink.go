package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"zoom-follow/src/animator"
	"zoom-follow/src/config"
	"zoom-follow/src/geometry"
	"zoom-follow/src/screenshot"
)

// Closer is a crop sink that owns background resources.
type Closer interface {
	animator.Sink
	Close() error
}

// Log writes every applied crop to the standard logger.
type Log struct{}

func (Log) ApplyCrop(c geometry.Crop) error {
	log.Printf("Crop applied: %s", c)
	return nil
}

func (Log) Close() error { return nil }

// Frame is one line of the JSON stream.
type Frame struct {
	Seq  uint64        `json:"seq"`
	Time time.Time     `json:"time"`
	Crop geometry.Crop `json:"crop"`
}

// JSON writes applied crops as newline-delimited JSON frames.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
	seq uint64
	now func() time.Time
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w), now: time.Now}
}

func (j *JSON) ApplyCrop(c geometry.Crop) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	if err := j.enc.Encode(Frame{Seq: j.seq, Time: j.now().UTC(), Crop: c}); err != nil {
		return fmt.Errorf("write crop frame: %w", err)
	}
	return nil
}

func (j *JSON) Close() error { return nil }

// Layout supplies the geometry needed to map a crop back to the screen.
type Layout interface {
	ActiveScreen() (geometry.ScreenInfo, error)
	SourceSize() (geometry.SourceSize, error)
}

// New builds the sink selected by cfg.
func New(cfg *config.Config, layout Layout) (Closer, error) {
	switch cfg.Sink {
	case config.SinkLog:
		return Log{}, nil
	case config.SinkStdout:
		return NewJSON(os.Stdout), nil
	case config.SinkPreview:
		return NewPreview(layout, screenshot.System(), cfg.PreviewPath), nil
	default:
		return nil, &geometry.ConfigurationError{Op: "sink", Msg: fmt.Sprintf("unknown sink %q", cfg.Sink)}
	}
}
