package pipeline

import (
	"errors"
	"time"

	"github.com/furiview/furiview/internal/analyze"
	apperrors "github.com/furiview/furiview/internal/errors"
	"github.com/furiview/furiview/internal/extract"
	"github.com/furiview/furiview/internal/render"
	"github.com/furiview/furiview/internal/tokenize"
)

// InputInfo describes the accepted request before any processing.
type InputInfo struct {
	RequestID  string
	Filename   string
	Size       int
	ReceivedAt time.Time
}

// RenderingInfo is written once by the rendering stage.
type RenderingInfo struct {
	Annotations []render.Annotation
	Image       *render.Buffer
	OutputPath  string
}

// Record carries one request through the pipeline. Each block is written
// exactly once by its owning stage and read-only afterwards.
type Record struct {
	Input      InputInfo
	Extraction *extract.Result
	Tokens     []tokenize.Token
	Vocabulary map[string]string
	Analysis   analyze.Analysis
	Rendering  RenderingInfo
}

// Report is the JSON document returned to the caller.
type Report struct {
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	ErrorCode      string            `json:"error_code,omitempty"`
	Timestamp      string            `json:"timestamp"`
	ProcessingTime float64           `json:"processing_time,omitempty"`
	ExtractedText  *ExtractedText    `json:"extracted_text,omitempty"`
	Vocabulary     map[string]string `json:"vocabulary,omitempty"`
	Analysis       *analyze.Analysis `json:"analysis,omitempty"`
	AnnotatedImage string            `json:"annotated_image,omitempty"`
	Stats          *Stats            `json:"stats,omitempty"`
}

// ExtractedText summarizes the OCR stage for the report.
type ExtractedText struct {
	FullText       string `json:"full_text"`
	CharacterCount int    `json:"character_count"`
	ElementsCount  int    `json:"elements_count"`
	LinesCount     int    `json:"lines_count"`
}

// Stats counts what the pipeline produced.
type Stats struct {
	TotalAnnotations int `json:"total_annotations"`
	VocabularyWords  int `json:"vocabulary_words"`
	GrammarPatterns  int `json:"grammar_patterns"`
}

// FailureReport builds the structured failure document for a fatal
// pipeline error. Partial results are never included.
func FailureReport(err error) *Report {
	code := apperrors.ErrorPipelineAborted
	var pe *apperrors.PipelineError
	if errors.As(err, &pe) {
		code = pe.Code
	}
	return &Report{
		Success:   false,
		Error:     err.Error(),
		ErrorCode: string(code),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
