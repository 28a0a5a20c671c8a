package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"

	"zoom-follow/src/geometry"
)

// Capturer grabs a screen rectangle in global coordinates.
type Capturer interface {
	CaptureRect(r image.Rectangle) (*image.RGBA, error)
}

type system struct{}

func (system) CaptureRect(r image.Rectangle) (*image.RGBA, error) { return screenshot.CaptureRect(r) }

// System returns the capturer for the real desktop.
func System() Capturer { return system{} }

// CaptureRegion captures a specific region of the screen and encodes it as PNG.
func CaptureRegion(c Capturer, region geometry.Rect) ([]byte, error) {
	region = region.Normalize()
	if region.Width() <= 0 || region.Height() <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width(), region.Height())
	}

	bounds := image.Rect(region.X0, region.Y0, region.X1, region.Y1)
	img, err := c.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic writes data next to path and renames it into place so
// readers never observe a partial image.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
