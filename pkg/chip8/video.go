package chip8

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// rgbaBytes expands c into four 8-bit channels.
func rgbaBytes(c color.Color) (r, g, b, a byte) {
	cr, cg, cb, ca := c.RGBA()
	return byte(cr >> 8), byte(cg >> 8), byte(cb >> 8), byte(ca >> 8)
}

// FramebufferRGBA renders the 64×32 bitmap into an RGBA8888 byte slice
// (length 64*32*4), painting lit pixels with on and the rest with off.
func (m *Machine) FramebufferRGBA(on, off color.Color) []byte {
	pixels := make([]byte, DisplaySize*4)
	FillRGBA(pixels, m.display, on, off)
	return pixels
}

// FillRGBA writes bitmap into dst, which must hold DisplaySize*4 bytes.
// Front ends that keep their own bitmap copy use it to avoid allocating.
func FillRGBA(dst []byte, bitmap [DisplaySize]bool, on, off color.Color) {
	onR, onG, onB, onA := rgbaBytes(on)
	offR, offG, offB, offA := rgbaBytes(off)
	for i, lit := range bitmap {
		p := dst[i*4 : i*4+4]
		if lit {
			p[0], p[1], p[2], p[3] = onR, onG, onB, onA
		} else {
			p[0], p[1], p[2], p[3] = offR, offG, offB, offA
		}
	}
}

// FramebufferImage returns the current bitmap as an *image.RGBA.
func (m *Machine) FramebufferImage(on, off color.Color) *image.RGBA {
	return &image.RGBA{
		Pix:    m.FramebufferRGBA(on, off),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// SaveScreenshot encodes the bitmap as a PNG and writes it to filename.
func (m *Machine) SaveScreenshot(filename string, on, off color.Color) error {
	img := m.FramebufferImage(on, off)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
