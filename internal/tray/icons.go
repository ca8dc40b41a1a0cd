package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

// Icon data, generated at init time.
var (
	iconDirect []byte // gray
	iconManual []byte // green
	iconAuto   []byte // blue
	iconError  []byte // red
)

func init() {
	iconDirect = createIcon(color.RGBA{R: 158, G: 158, B: 158, A: 255})
	iconManual = createIcon(color.RGBA{R: 76, G: 175, B: 80, A: 255})
	iconAuto = createIcon(color.RGBA{R: 33, G: 150, B: 243, A: 255})
	iconError = createIcon(color.RGBA{R: 244, G: 67, B: 54, A: 255})
}

func iconFor(mode sysproxy.Mode, failed bool) []byte {
	if failed {
		return iconError
	}
	switch mode {
	case sysproxy.ModeManual:
		return iconManual
	case sysproxy.ModeAuto:
		return iconAuto
	default:
		return iconDirect
	}
}

// createIcon creates a 64x64 PNG icon with a filled circle of the given color.
// Larger icons scale better on Windows high-DPI displays.
func createIcon(c color.RGBA) []byte {
	const size = 64
	const radius = 28
	const centerX, centerY = size / 2, size / 2

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r2 := float64(radius * radius)
	edge := float64((radius + 1) * (radius + 1))

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x - centerX)
			dy := float64(y - centerY)
			dist := dx*dx + dy*dy

			switch {
			case dist <= r2:
				img.SetRGBA(x, y, c)
			case dist <= edge:
				// Anti-aliased edge
				alpha := 1.0 - (dist-r2)/float64(2*radius+1)
				if alpha > 0 {
					img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha * 255)})
				}
			}
		}
	}

	// Subtle highlight in the upper half
	for y := centerY - radius + 4; y < centerY-4; y++ {
		for x := centerX - radius/2; x < centerX+radius/2; x++ {
			dx := float64(x - centerX)
			dy := float64(y - (centerY - radius/2))
			if dx*dx+dy*dy*2 < float64(radius*radius/4) {
				existing := img.RGBAAt(x, y)
				if existing.A > 0 {
					img.SetRGBA(x, y, color.RGBA{
						R: lighten(existing.R),
						G: lighten(existing.G),
						B: lighten(existing.B),
						A: existing.A,
					})
				}
			}
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func lighten(v uint8) uint8 {
	if v > 235 {
		return 255
	}
	return v + 20
}
