package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/furiview/furiview/internal/logging"
)

// Reading text sizes per line-spacing tier.
const (
	smallFontSize  = 11
	mediumFontSize = 14
	largeFontSize  = 18
)

// FaceSet holds the three reading faces plus the face used for glosses and
// the title banner. Degraded is true when no candidate font file could be
// loaded and the built-in bitmap face is in use; kanji readings will not
// render legibly in that mode, but layout geometry is still exercised.
type FaceSet struct {
	Small    font.Face
	Medium   font.Face
	Large    font.Face
	Gloss    font.Face
	Title    font.Face
	Path     string
	Degraded bool
}

// ForSpacing picks the reading face for a computed line spacing.
func (fs *FaceSet) ForSpacing(spacing float64) font.Face {
	switch {
	case spacing < 30:
		return fs.Small
	case spacing < 50:
		return fs.Medium
	default:
		return fs.Large
	}
}

// LoadFaces tries each candidate font path in order and builds a FaceSet
// from the first file that parses. Collection files (.ttc) are handled by
// taking the first face in the collection. When no candidate loads, the
// built-in bitmap face is used and a warning is logged.
func LoadFaces(paths []string, logger *logging.Logger) *FaceSet {
	for _, path := range paths {
		fs, err := loadFacesFromFile(path)
		if err != nil {
			logger.Debug("Font candidate rejected", "path", path, "error", err)
			continue
		}
		logger.Info("Loaded annotation font", "path", path)
		return fs
	}

	logger.Warn("No annotation font found, falling back to built-in bitmap face; readings may be illegible",
		"candidates", len(paths))
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

func loadFacesFromFile(path string) (*FaceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if coll.NumFonts() < 1 {
		return nil, fmt.Errorf("%s contains no fonts", path)
	}
	fnt, err := coll.Font(0)
	if err != nil {
		return nil, fmt.Errorf("font 0 of %s: %w", path, err)
	}

	newFace := func(size float64) (font.Face, error) {
		return opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	small, err := newFace(smallFontSize)
	if err != nil {
		return nil, err
	}
	medium, err := newFace(mediumFontSize)
	if err != nil {
		return nil, err
	}
	large, err := newFace(largeFontSize)
	if err != nil {
		return nil, err
	}
	gloss, err := newFace(mediumFontSize)
	if err != nil {
		return nil, err
	}
	title, err := newFace(largeFontSize + 4)
	if err != nil {
		return nil, err
	}

	return &FaceSet{
		Small:  small,
		Medium: medium,
		Large:  large,
		Gloss:  gloss,
		Title:  title,
		Path:   path,
	}, nil
}
