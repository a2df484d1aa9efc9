package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	apperrors "github.com/furiview/furiview/internal/errors"
	"github.com/furiview/furiview/internal/logging"
)

func testFaces() *FaceSet {
	face := basicfont.Face7x13
	return &FaceSet{
		Small:    face,
		Medium:   face,
		Large:    face,
		Gloss:    face,
		Title:    face,
		Degraded: true,
	}
}

func newTestEngine() *Engine {
	return NewEngine(testFaces(), logging.NewLogger("RendererTest"))
}

func TestAnnotatePreservesShape(t *testing.T) {
	e := newTestEngine()
	src, err := Decode(bytes.NewReader(encodeTestPNG(t, 200, 100)))
	require.NoError(t, err)

	out, err := e.Annotate(src, []Annotation{
		{SourceText: "日本語", Reading: "にほんご", X: 20, Y: 40, W: 80, H: 20},
	}, "Title")
	require.NoError(t, err)

	assert.Equal(t, src.W, out.W)
	assert.Equal(t, src.H, out.H)
	assert.Equal(t, src.Channels, out.Channels)
	assert.Len(t, out.Pix, len(src.Pix))
}

func TestAnnotateDoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	src, err := Decode(bytes.NewReader(encodeTestPNG(t, 120, 80)))
	require.NoError(t, err)
	before := make([]byte, len(src.Pix))
	copy(before, src.Pix)

	_, err = e.Annotate(src, []Annotation{
		{SourceText: "語", Reading: "ご", X: 10, Y: 30, W: 30, H: 20},
	}, "Title")
	require.NoError(t, err)

	assert.Equal(t, before, src.Pix)
}

func TestAnnotateRejectsWrongChannelCount(t *testing.T) {
	e := newTestEngine()
	src := &Buffer{W: 10, H: 10, Channels: 4, Pix: make([]byte, 10*10*4)}

	_, err := e.Annotate(src, nil, "Title")
	require.Error(t, err)

	var pe *apperrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, apperrors.ErrorInvalidImage, pe.Code)
}

func TestAnnotateEmptyAnnotationsSucceeds(t *testing.T) {
	e := newTestEngine()
	src, err := Decode(bytes.NewReader(encodeTestPNG(t, 50, 50)))
	require.NoError(t, err)

	out, err := e.Annotate(src, nil, "")
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix, "nothing to draw leaves pixels unchanged")
}

func TestAnnotateSkipsDegenerateBoxes(t *testing.T) {
	e := newTestEngine()
	src, err := Decode(bytes.NewReader(encodeTestPNG(t, 60, 60)))
	require.NoError(t, err)

	out, err := e.Annotate(src, []Annotation{
		{SourceText: "零", Reading: "れい", X: 10, Y: 10, W: 0, H: 20},
		{SourceText: "負", Reading: "ふ", X: 10, Y: 30, W: 20, H: -4},
		{SourceText: "空", Reading: "", X: 10, Y: 50, W: 20, H: 10},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix, "all annotations skipped, nothing drawn")
}

func TestLineSpacingMeanOfDistinctRows(t *testing.T) {
	anns := []Annotation{
		{Y: 10}, {Y: 30}, {Y: 52}, {Y: 30},
	}
	assert.InDelta(t, 21.0, lineSpacing(anns), 0.001)
}

func TestLineSpacingDefaultBelowTwoRows(t *testing.T) {
	assert.Equal(t, defaultLineSpacing, lineSpacing(nil))
	assert.Equal(t, defaultLineSpacing, lineSpacing([]Annotation{{Y: 10}, {Y: 10}}))
}

func TestForSpacingTiers(t *testing.T) {
	small := &basicfont.Face{Advance: 6}
	medium := &basicfont.Face{Advance: 7}
	large := &basicfont.Face{Advance: 8}
	fs := &FaceSet{Small: small, Medium: medium, Large: large}

	assert.Same(t, fs.Small, fs.ForSpacing(21))
	assert.Same(t, fs.Medium, fs.ForSpacing(30))
	assert.Same(t, fs.Large, fs.ForSpacing(50))
	assert.Same(t, fs.Large, fs.ForSpacing(120))
}

func TestLoadFacesFallsBackToBuiltin(t *testing.T) {
	fs := LoadFaces([]string{"/nonexistent/font.ttc"}, logging.NewLogger("RendererTest"))
	require.NotNil(t, fs)
	assert.True(t, fs.Degraded)
	assert.NotNil(t, fs.Small)
}
