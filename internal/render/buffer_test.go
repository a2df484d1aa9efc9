package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/furiview/furiview/internal/errors"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: byte(x), G: byte(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeProducesThreeChannelBuffer(t *testing.T) {
	buf, err := Decode(bytes.NewReader(encodeTestPNG(t, 20, 10)))
	require.NoError(t, err)

	assert.Equal(t, 20, buf.W)
	assert.Equal(t, 10, buf.H)
	assert.Equal(t, 3, buf.Channels)
	assert.Len(t, buf.Pix, 20*10*3)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestToRGBARejectsWrongChannelCount(t *testing.T) {
	buf := &Buffer{W: 4, H: 4, Channels: 4, Pix: make([]byte, 4*4*4)}
	_, err := buf.ToRGBA()
	require.Error(t, err)

	var pe *apperrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, apperrors.ErrorInvalidImage, pe.Code)
	assert.Equal(t, 4, pe.Details["channels"])
}

func TestToRGBARejectsShapeMismatch(t *testing.T) {
	buf := &Buffer{W: 4, H: 4, Channels: 3, Pix: make([]byte, 7)}
	_, err := buf.ToRGBA()
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	buf, err := Decode(bytes.NewReader(encodeTestPNG(t, 8, 8)))
	require.NoError(t, err)

	clone := buf.Clone()
	clone.Pix[0] = ^clone.Pix[0]

	assert.NotEqual(t, buf.Pix[0], clone.Pix[0])
	assert.Equal(t, buf.W, clone.W)
	assert.Equal(t, buf.H, clone.H)
}

func TestRoundTripPreservesPixels(t *testing.T) {
	buf, err := Decode(bytes.NewReader(encodeTestPNG(t, 6, 5)))
	require.NoError(t, err)

	img, err := buf.ToRGBA()
	require.NoError(t, err)
	again := FromImage(img)

	assert.Equal(t, buf.Pix, again.Pix)
}

func TestEncodePNGDecodable(t *testing.T) {
	buf, err := Decode(bytes.NewReader(encodeTestPNG(t, 6, 5)))
	require.NoError(t, err)

	data, err := buf.EncodePNG()
	require.NoError(t, err)

	again, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, buf.W, again.W)
	assert.Equal(t, buf.H, again.H)
}
