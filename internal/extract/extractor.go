package extract

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/furiview/furiview/internal/logging"
	"github.com/furiview/furiview/internal/render"
)

// Fragment is one recognized word box. Fragments are never mutated after
// extraction.
type Fragment struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
	Confidence float64 `json:"confidence"`
}

// Result is the extraction output for one image.
type Result struct {
	Image     *render.Buffer
	Fragments []Fragment
	Lines     [][]Fragment
	FullText  string
	Duration  time.Duration
}

// Extractor runs OCR over uploaded images and groups recognized word boxes
// into lines.
type Extractor struct {
	language      string
	minConfidence float64
	sameLineBand  int
	timeout       time.Duration
	recognize     func(imageData []byte) ([]Fragment, error)
	logger        *logging.Logger
}

// ExtractorConfig holds OCR extraction settings.
type ExtractorConfig struct {
	Language      string
	MinConfidence float64
	SameLineBand  int
	Timeout       time.Duration
}

// NewExtractor creates an extractor. Zero-value config fields get sensible
// defaults.
func NewExtractor(cfg *ExtractorConfig, logger *logging.Logger) *Extractor {
	if cfg.Language == "" {
		cfg.Language = "jpn"
	}
	if cfg.SameLineBand <= 0 {
		cfg.SameLineBand = 15
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	e := &Extractor{
		language:      cfg.Language,
		minConfidence: cfg.MinConfidence,
		sameLineBand:  cfg.SameLineBand,
		timeout:       cfg.Timeout,
		logger:        logger,
	}
	e.recognize = e.recognizeTesseract
	return e
}

// Extract decodes imageData and recognizes word fragments in it.
//
// A decode failure is fatal: without a valid buffer nothing downstream can
// run. A recognition failure is not: it degrades to an empty fragment list
// so the pipeline can still return the untouched image.
func (e *Extractor) Extract(ctx context.Context, imageData []byte) (*Result, error) {
	startTime := time.Now()

	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	buf, err := render.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragments, err := e.boundedRecognize(ctx, imageData)
	if err != nil {
		e.logger.Warn("OCR recognition failed, continuing without fragments", "error", err)
		fragments = nil
	}

	fragments = collapseDuplicates(fragments, e.sameLineBand)
	lines := groupLines(fragments, e.sameLineBand)

	result := &Result{
		Image:     buf,
		Fragments: fragments,
		Lines:     lines,
		FullText:  joinText(fragments),
		Duration:  time.Since(startTime),
	}

	e.logger.Info("Extracted text from image",
		"fragments", len(fragments),
		"lines", len(lines),
		"duration", result.Duration)
	return result, nil
}

type recognition struct {
	fragments []Fragment
	err       error
}

// boundedRecognize runs recognition under the configured deadline. The
// tesseract call itself cannot be cancelled mid-flight, so an expired
// deadline abandons the goroutine and degrades to zero fragments.
func (e *Extractor) boundedRecognize(ctx context.Context, imageData []byte) ([]Fragment, error) {
	done := make(chan recognition, 1)
	go func() {
		fragments, err := e.recognize(imageData)
		done <- recognition{fragments: fragments, err: err}
	}()

	select {
	case res := <-done:
		return res.fragments, res.err
	case <-time.After(e.timeout):
		return nil, fmt.Errorf("recognition timed out after %v", e.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recognizeTesseract runs tesseract over the image bytes. A fresh client
// per call keeps recognition state isolated between requests.
func (e *Extractor) recognizeTesseract(imageData []byte) ([]Fragment, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	fragments := make([]Fragment, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		if box.Confidence <= e.minConfidence {
			continue
		}
		fragments = append(fragments, Fragment{
			Text:       text,
			X:          box.Box.Min.X,
			Y:          box.Box.Min.Y,
			W:          box.Box.Dx(),
			H:          box.Box.Dy(),
			Confidence: box.Confidence,
		})
	}
	return fragments, nil
}

// collapseDuplicates drops consecutive fragments that repeat the same text
// within the same vertical band. Tesseract sometimes reports the same word
// twice on a line boundary; repeats at clearly different positions survive.
func collapseDuplicates(fragments []Fragment, band int) []Fragment {
	out := make([]Fragment, 0, len(fragments))
	for i, f := range fragments {
		if i > 0 {
			prev := fragments[i-1]
			if f.Text == prev.Text && abs(f.Y-prev.Y) <= band {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// groupLines buckets fragments into lines by vertical proximity, each line
// sorted left to right.
func groupLines(fragments []Fragment, band int) [][]Fragment {
	if len(fragments) == 0 {
		return nil
	}

	byY := make([]Fragment, len(fragments))
	copy(byY, fragments)
	sort.SliceStable(byY, func(i, j int) bool { return byY[i].Y < byY[j].Y })

	var lines [][]Fragment
	current := []Fragment{byY[0]}
	lineY := byY[0].Y
	for _, f := range byY[1:] {
		if abs(f.Y-lineY) <= band {
			current = append(current, f)
			continue
		}
		lines = append(lines, current)
		current = []Fragment{f}
		lineY = f.Y
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// joinText concatenates fragment text in recognition order.
func joinText(fragments []Fragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
