// pkg/escpos/raster.go
package escpos

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

// Raster limits for 203 DPI thermal heads: 58mm rolls print 288 dots wide,
// 80mm rolls 384 dots.
const (
	MaxDots58 = 288
	MaxDots80 = 384
)

// Raster converts an image into a GS v 0 raster bitmap command, scaling it
// down to maxDots when wider and thresholding to 1-bit.
func Raster(img image.Image, maxDots int) []byte {
	img = composeOnWhite(img)

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxDots {
		ratio := float64(width) / float64(maxDots)
		newHeight := int(float64(height) / ratio)
		resized := image.NewRGBA(image.Rect(0, 0, maxDots, newHeight))
		for y := 0; y < newHeight; y++ {
			for x := 0; x < maxDots; x++ {
				resized.Set(x, y, img.At(int(float64(x)*ratio), int(float64(y)*ratio)))
			}
		}
		img = resized
		width = maxDots
		height = newHeight
	}

	widthBytes := (width + 7) / 8

	var buf bytes.Buffer
	// GS v 0 m xL xH yL yH
	buf.Write([]byte{0x1D, 0x76, 0x30, 0x00})
	buf.WriteByte(byte(widthBytes % 256))
	buf.WriteByte(byte(widthBytes / 256))
	buf.WriteByte(byte(height % 256))
	buf.WriteByte(byte(height / 256))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 8 {
			var b byte
			for bit := 0; bit < 8; bit++ {
				px := x + bit
				if px >= width {
					continue
				}
				r, g, bl, _ := img.At(px, y).RGBA()
				gray := (299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000
				if gray < 128 {
					b |= 1 << uint(7-bit)
				}
			}
			buf.WriteByte(b)
		}
	}

	return buf.Bytes()
}

// RasterFromFile reads and decodes an image file into a raster command.
func RasterFromFile(path string, maxDots int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return Raster(img, maxDots), nil
}

// QRRaster renders content as a QR code raster sized for the roll width.
func QRRaster(content string, maxDots int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	size := maxDots / 2
	if size < 128 {
		size = 128
	}
	return Raster(qr.Image(size), maxDots), nil
}

// composeOnWhite flattens transparency onto a white background so
// transparent pixels print white instead of black.
func composeOnWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0xFFFF {
				out.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
				continue
			}
			alpha := float64(a) / 65535.0
			blend := func(c uint32) uint8 {
				return uint8(uint32(float64(c)*alpha+65535*(1-alpha)) >> 8)
			}
			out.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{
				R: blend(r), G: blend(g), B: blend(b), A: 0xFF,
			})
		}
	}
	return out
}
