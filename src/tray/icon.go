package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 16

var (
	iconOnce sync.Once
	iconData []byte
)

// Icon returns the 16x16 PNG tray icon: a magnifier lens over a crop frame.
func Icon() []byte {
	iconOnce.Do(func() {
		iconData = renderIcon()
	})
	return iconData
}

func renderIcon() []byte {
	frame := color.RGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	lens := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	// Dashed crop frame.
	for i := 1; i < iconSize-1; i++ {
		if i%3 == 2 {
			continue
		}
		img.SetRGBA(i, 1, frame)
		img.SetRGBA(i, iconSize-2, frame)
		img.SetRGBA(1, i, frame)
		img.SetRGBA(iconSize-2, i, frame)
	}
	// Lens ring centered at (7,7) with radius ~3.5, handle towards bottom-right.
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := x-7, y-7
			d := dx*dx + dy*dy
			if d >= 9 && d <= 16 {
				img.SetRGBA(x, y, lens)
			}
		}
	}
	for i := 10; i <= 13; i++ {
		img.SetRGBA(i, i, lens)
		img.SetRGBA(i+1, i, lens)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
