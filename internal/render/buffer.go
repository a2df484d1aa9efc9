package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	apperrors "github.com/furiview/furiview/internal/errors"
)

// Buffer is a packed RGB pixel buffer decoded from an uploaded image.
// Channels is carried explicitly so the layout engine can reject buffers
// that are not 3-channel before drawing.
type Buffer struct {
	W        int
	H        int
	Channels int
	Pix      []byte
}

// Decode reads a PNG or JPEG stream into a 3-channel Buffer.
func Decode(r io.Reader) (*Buffer, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	return FromImage(img), nil
}

// FromImage converts any image.Image into a 3-channel Buffer, dropping alpha.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	buf := &Buffer{
		W:        b.Dx(),
		H:        b.Dy(),
		Channels: 3,
		Pix:      make([]byte, b.Dx()*b.Dy()*3),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			buf.Pix[i] = byte(r >> 8)
			buf.Pix[i+1] = byte(g >> 8)
			buf.Pix[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return buf
}

// ToRGBA expands the buffer into an opaque image.RGBA for drawing.
// Returns an error when the buffer is not 3-channel or its pixel slice
// does not match its declared shape.
func (b *Buffer) ToRGBA() (*image.RGBA, error) {
	if b.Channels != 3 {
		return nil, apperrors.NewInvalidImageError(b.Channels)
	}
	if len(b.Pix) != b.W*b.H*3 {
		return nil, fmt.Errorf("pixel buffer size %d does not match %dx%dx3", len(b.Pix), b.W, b.H)
	}
	img := image.NewRGBA(image.Rect(0, 0, b.W, b.H))
	si := 0
	for y := 0; y < b.H; y++ {
		di := y * img.Stride
		for x := 0; x < b.W; x++ {
			img.Pix[di] = b.Pix[si]
			img.Pix[di+1] = b.Pix[si+1]
			img.Pix[di+2] = b.Pix[si+2]
			img.Pix[di+3] = 0xFF
			si += 3
			di += 4
		}
	}
	return img, nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{W: b.W, H: b.H, Channels: b.Channels, Pix: pix}
}

// EncodePNG serializes the buffer as PNG.
func (b *Buffer) EncodePNG() ([]byte, error) {
	img, err := b.ToRGBA()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return out.Bytes(), nil
}

// EncodeJPEG serializes the buffer as JPEG at the given quality.
func (b *Buffer) EncodeJPEG(quality int) ([]byte, error) {
	img, err := b.ToRGBA()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return out.Bytes(), nil
}
