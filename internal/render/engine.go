package render

import (
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/furiview/furiview/internal/logging"
)

// Annotation is a reading (and optional gloss) pinned to a source text box.
// The engine adjusts placement only; it never edits the text fields.
type Annotation struct {
	SourceText string
	Reading    string
	Gloss      string
	X          int
	Y          int
	W          int
	H          int
}

const (
	defaultLineSpacing = 40.0
	boxPadding         = 2.0
	minTopMargin       = 5.0
	maxGlossRunes      = 30
)

// Engine draws reading annotations onto image buffers.
type Engine struct {
	faces  *FaceSet
	logger *logging.Logger
}

// NewEngine creates a layout engine using the given face set.
func NewEngine(faces *FaceSet, logger *logging.Logger) *Engine {
	return &Engine{faces: faces, logger: logger}
}

// Annotate draws every annotation plus a title banner onto a copy of src
// and returns the copy. src is never mutated. A non-3-channel buffer is
// rejected before any drawing. Degenerate annotations are logged and
// skipped; an unexpected panic during drawing yields an untouched copy of
// the original.
func (e *Engine) Annotate(src *Buffer, anns []Annotation, title string) (out *Buffer, err error) {
	img, err := src.ToRGBA()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Annotation rendering panicked, returning original image", "panic", r)
			out = src.Clone()
			err = nil
		}
	}()

	dc := gg.NewContextForRGBA(img)

	spacing := lineSpacing(anns)
	face := e.faces.ForSpacing(spacing)
	e.logger.Debug("Computed annotation layout", "line_spacing", spacing, "annotations", len(anns))

	drawn := 0
	for _, a := range anns {
		if a.W <= 0 || a.H <= 0 {
			e.logger.Warn("Skipping annotation with degenerate box",
				"text", a.SourceText, "w", a.W, "h", a.H)
			continue
		}
		if a.Reading == "" {
			e.logger.Warn("Skipping annotation with empty reading", "text", a.SourceText)
			continue
		}
		e.drawReading(dc, face, a)
		if a.Gloss != "" {
			e.drawGloss(dc, a)
		}
		drawn++
	}

	if title != "" {
		e.drawBanner(dc, title)
	}

	e.logger.Info("Rendered annotations", "drawn", drawn, "skipped", len(anns)-drawn)
	return FromImage(img), nil
}

// lineSpacing is the mean gap between sorted distinct annotation rows.
// Fewer than two distinct rows gives the fixed default.
func lineSpacing(anns []Annotation) float64 {
	seen := map[int]bool{}
	ys := make([]int, 0, len(anns))
	for _, a := range anns {
		if !seen[a.Y] {
			seen[a.Y] = true
			ys = append(ys, a.Y)
		}
	}
	if len(ys) < 2 {
		return defaultLineSpacing
	}
	for i := 1; i < len(ys); i++ {
		for j := i; j > 0 && ys[j] < ys[j-1]; j-- {
			ys[j], ys[j-1] = ys[j-1], ys[j]
		}
	}
	total := 0
	for i := 1; i < len(ys); i++ {
		total += ys[i] - ys[i-1]
	}
	return float64(total) / float64(len(ys)-1)
}

// drawReading places the reading centered above the source box, clamped to
// the top margin, on a semi-transparent white backing rectangle.
func (e *Engine) drawReading(dc *gg.Context, face font.Face, a Annotation) {
	dc.SetFontFace(face)
	textW, textH := dc.MeasureString(a.Reading)

	x := float64(a.X) + (float64(a.W)-textW)/2
	y := float64(a.Y) - textH - boxPadding
	if y < minTopMargin {
		y = minTopMargin
	}

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRectangle(x-boxPadding, y-boxPadding, textW+2*boxPadding, textH+2*boxPadding)
	dc.Fill()

	dc.SetRGB(0.86, 0.08, 0.24)
	dc.DrawString(a.Reading, x, y+textH)
}

// drawGloss places the English gloss below the source box, truncated so
// long dictionary entries do not spill across the page.
func (e *Engine) drawGloss(dc *gg.Context, a Annotation) {
	gloss := a.Gloss
	if runes := []rune(gloss); len(runes) > maxGlossRunes {
		gloss = string(runes[:maxGlossRunes]) + "..."
	}

	dc.SetFontFace(e.faces.Gloss)
	textW, textH := dc.MeasureString(gloss)

	x := float64(a.X) + (float64(a.W)-textW)/2
	y := float64(a.Y+a.H) + boxPadding

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRectangle(x-boxPadding, y-boxPadding, textW+2*boxPadding, textH+2*boxPadding)
	dc.Fill()

	dc.SetRGB(0.1, 0.25, 0.8)
	dc.DrawString(gloss, x, y+textH)
}

// drawBanner paints the title once, centered at the top, on its own panel.
func (e *Engine) drawBanner(dc *gg.Context, title string) {
	dc.SetFontFace(e.faces.Title)
	textW, textH := dc.MeasureString(title)

	x := (float64(dc.Width()) - textW) / 2
	if x < minTopMargin {
		x = minTopMargin
	}
	y := minTopMargin + textH

	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawRectangle(x-2*boxPadding, y-textH-boxPadding, textW+4*boxPadding, textH+2*boxPadding)
	dc.Fill()

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString(title, x, y)
}
