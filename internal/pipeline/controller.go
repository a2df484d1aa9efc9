package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/furiview/furiview/internal/analyze"
	apperrors "github.com/furiview/furiview/internal/errors"
	"github.com/furiview/furiview/internal/extract"
	"github.com/furiview/furiview/internal/logging"
	"github.com/furiview/furiview/internal/render"
	"github.com/furiview/furiview/internal/tokenize"
)

// maxVocabularyEntries caps the report's vocabulary section.
const maxVocabularyEntries = 100

// Extractor recognizes text fragments in image bytes.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte) (*extract.Result, error)
}

// Tokenizer segments text into tokens with readings.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]tokenize.Token, error)
}

// Analyzer produces a translation and grammar notes. It must degrade
// internally and never error.
type Analyzer interface {
	Analyze(ctx context.Context, text string) analyze.Analysis
}

// Reconciler pairs fragments with tokens into annotations.
type Reconciler interface {
	Reconcile(fragments []extract.Fragment, tokens []tokenize.Token, vocab map[string]string) []render.Annotation
}

// Renderer draws annotations onto an image buffer.
type Renderer interface {
	Annotate(src *render.Buffer, anns []render.Annotation, title string) (*render.Buffer, error)
}

// Controller runs the annotation pipeline for one request at a time.
type Controller struct {
	extractor    Extractor
	tokenizer    Tokenizer
	analyzer     Analyzer
	reconciler   Reconciler
	renderer     Renderer
	outputDir    string
	outputPrefix string
	logger       *logging.Logger
}

// ControllerConfig wires the pipeline stages together.
type ControllerConfig struct {
	Extractor    Extractor
	Tokenizer    Tokenizer
	Analyzer     Analyzer
	Reconciler   Reconciler
	Renderer     Renderer
	OutputDir    string
	OutputPrefix string
}

// NewController creates a pipeline controller and ensures the output
// directory exists.
func NewController(cfg *ControllerConfig, logger *logging.Logger) (*Controller, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	prefix := cfg.OutputPrefix
	if prefix == "" {
		prefix = "annotated"
	}
	return &Controller{
		extractor:    cfg.Extractor,
		tokenizer:    cfg.Tokenizer,
		analyzer:     cfg.Analyzer,
		reconciler:   cfg.Reconciler,
		renderer:     cfg.Renderer,
		outputDir:    cfg.OutputDir,
		outputPrefix: prefix,
		logger:       logger,
	}, nil
}

// Process runs the full pipeline over one uploaded image.
//
// Extraction, tokenization, reconciliation and rendering run in strict
// sequence on the record. Analysis runs concurrently as soon as the full
// text is known and is joined before the report is assembled; its failures
// degrade inside the analyzer and never fail the render branch. Any
// unrecovered stage error aborts the whole request.
func (c *Controller) Process(ctx context.Context, imageData []byte, filename string) (*Report, error) {
	startTime := time.Now()
	rec := &Record{
		Input: InputInfo{
			RequestID:  uuid.NewString()[:8],
			Filename:   filename,
			Size:       len(imageData),
			ReceivedAt: startTime,
		},
	}
	log := c.logger.With("request_id", rec.Input.RequestID)
	log.Info("Pipeline started", "filename", filename, "bytes", len(imageData))

	ext, err := c.extractor.Extract(ctx, imageData)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(rec.Input.RequestID, err)
	}
	rec.Extraction = ext

	tokens, err := c.tokenizer.Tokenize(ctx, ext.FullText)
	if err != nil {
		return nil, apperrors.NewTokenizeFailedError(rec.Input.RequestID, err)
	}
	rec.Tokens = tokens

	analysisCh := make(chan analyze.Analysis, 1)
	go func() {
		analysisCh <- c.analyzer.Analyze(ctx, ext.FullText)
	}()

	rec.Vocabulary = buildVocabulary(tokens)
	rec.Rendering.Annotations = c.reconciler.Reconcile(ext.Fragments, tokens, rec.Vocabulary)

	rendered, err := c.renderer.Annotate(ext.Image, rec.Rendering.Annotations, "Furiview")
	if err != nil {
		return nil, apperrors.NewRenderFailedError(rec.Input.RequestID, err)
	}
	rec.Rendering.Image = rendered

	outputPath, err := c.saveImage(rendered)
	if err != nil {
		return nil, apperrors.NewRenderFailedError(rec.Input.RequestID, err)
	}
	rec.Rendering.OutputPath = outputPath

	rec.Analysis = <-analysisCh

	reportVocab := reportVocabulary(rec.Rendering.Annotations)
	elapsed := time.Since(startTime)
	log.Info("Pipeline finished",
		"annotations", len(rec.Rendering.Annotations),
		"output", outputPath,
		"duration", elapsed)

	return &Report{
		Success:        true,
		Timestamp:      startTime.Format(time.RFC3339),
		ProcessingTime: elapsed.Seconds(),
		ExtractedText: &ExtractedText{
			FullText:       ext.FullText,
			CharacterCount: len([]rune(ext.FullText)),
			ElementsCount:  len(ext.Fragments),
			LinesCount:     len(ext.Lines),
		},
		Vocabulary:     reportVocab,
		Analysis:       &rec.Analysis,
		AnnotatedImage: outputPath,
		Stats: &Stats{
			TotalAnnotations: len(rec.Rendering.Annotations),
			VocabularyWords:  len(reportVocab),
			GrammarPatterns:  len(rec.Analysis.GrammarPatterns),
		},
	}, nil
}

// buildVocabulary collects every kanji-bearing token with a known gloss.
// This is the uncapped map the reconciler resolves glosses against.
func buildVocabulary(tokens []tokenize.Token) map[string]string {
	vocab := make(map[string]string)
	for _, tok := range tokens {
		if !tok.HasKanji || tok.Gloss == "" {
			continue
		}
		if _, ok := vocab[tok.Text]; ok {
			continue
		}
		vocab[tok.Text] = tok.Gloss
	}
	return vocab
}

// reportVocabulary lists the glossed words that actually made it onto the
// image, capped so huge pages do not balloon the report.
func reportVocabulary(anns []render.Annotation) map[string]string {
	vocab := make(map[string]string)
	for _, a := range anns {
		if a.Gloss == "" {
			continue
		}
		if _, ok := vocab[a.SourceText]; ok {
			continue
		}
		vocab[a.SourceText] = a.Gloss
		if len(vocab) >= maxVocabularyEntries {
			break
		}
	}
	return vocab
}

// saveImage writes the annotated image with a collision-resistant name.
// A PNG write failure is retried once as JPEG before giving up.
func (c *Controller) saveImage(img *render.Buffer) (string, error) {
	name := fmt.Sprintf("%s_%s_%s",
		c.outputPrefix,
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8])

	pngPath := filepath.Join(c.outputDir, name+".png")
	data, err := img.EncodePNG()
	if err == nil {
		if writeErr := os.WriteFile(pngPath, data, 0o644); writeErr == nil {
			return pngPath, nil
		} else {
			err = writeErr
		}
	}
	c.logger.Warn("PNG save failed, retrying as JPEG", "error", err)

	jpgPath := filepath.Join(c.outputDir, name+".jpg")
	data, jerr := img.EncodeJPEG(90)
	if jerr != nil {
		return "", fmt.Errorf("failed to encode annotated image: %w", jerr)
	}
	if jerr := os.WriteFile(jpgPath, data, 0o644); jerr != nil {
		return "", fmt.Errorf("failed to save annotated image: %w", jerr)
	}
	return jpgPath, nil
}
