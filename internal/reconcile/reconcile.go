package reconcile

import (
	"strings"

	"github.com/furiview/furiview/internal/extract"
	"github.com/furiview/furiview/internal/logging"
	"github.com/furiview/furiview/internal/render"
	"github.com/furiview/furiview/internal/tokenize"
)

// MatchKind names how a fragment was paired with a token.
type MatchKind int

const (
	NoMatch MatchKind = iota
	Exact
	TokenContainsFragment
	FragmentContainsToken
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case TokenContainsFragment:
		return "token_contains_fragment"
	case FragmentContainsToken:
		return "fragment_contains_token"
	default:
		return "no_match"
	}
}

// ReadingLookup resolves a hiragana reading for raw text. Used as the
// fallback when no token matches a fragment.
type ReadingLookup interface {
	Reading(text string) (string, error)
}

// Reconciler pairs OCR fragments with tokenizer output to produce
// positioned reading annotations.
type Reconciler struct {
	readings ReadingLookup
	logger   *logging.Logger
}

// NewReconciler creates a reconciler with the given fallback reading source.
func NewReconciler(readings ReadingLookup, logger *logging.Logger) *Reconciler {
	return &Reconciler{readings: readings, logger: logger}
}

type fragmentKey struct {
	x, y int
	text string
}

// MatchToken scans tokens for the best pairing with fragment text.
//
// An exact text match wins immediately. Otherwise containment matches in
// either direction compete on one shared score: a token containing the
// fragment scores the token's rune length, a fragment containing the token
// scores the fragment's rune length. Highest score wins; the first token
// reaching a score keeps it on ties. Tokens without kanji never match.
func MatchToken(fragText string, tokens []tokenize.Token) (tokenize.Token, MatchKind) {
	var best tokenize.Token
	bestKind := NoMatch
	bestScore := 0

	for _, tok := range tokens {
		if !tok.HasKanji {
			continue
		}
		if tok.Text == fragText {
			return tok, Exact
		}
		if strings.Contains(tok.Text, fragText) {
			if score := len([]rune(tok.Text)); score > bestScore {
				best, bestKind, bestScore = tok, TokenContainsFragment, score
			}
		} else if strings.Contains(fragText, tok.Text) {
			if score := len([]rune(fragText)); score > bestScore {
				best, bestKind, bestScore = tok, FragmentContainsToken, score
			}
		}
	}

	return best, bestKind
}

// Reconcile produces one annotation per distinct kanji-bearing fragment.
//
// Fragments are deduplicated on (X, Y, Text) before anything else, so a
// fragment OCR reported twice at the same position annotates once while
// the same text at another position still annotates. Fragments without
// kanji are skipped. A matched token is used as-is, even when its reading
// is empty; only an unmatched fragment falls back to a standalone reading
// lookup, and when that also fails the fragment is dropped, never surfaced
// as an error.
func (r *Reconciler) Reconcile(fragments []extract.Fragment, tokens []tokenize.Token, vocab map[string]string) []render.Annotation {
	seen := map[fragmentKey]bool{}
	anns := make([]render.Annotation, 0, len(fragments))

	for _, frag := range fragments {
		key := fragmentKey{x: frag.X, y: frag.Y, text: frag.Text}
		if seen[key] {
			continue
		}
		seen[key] = true

		if !tokenize.ContainsKanji(frag.Text) {
			continue
		}

		tok, kind := MatchToken(frag.Text, tokens)
		if kind != NoMatch {
			anns = append(anns, render.Annotation{
				SourceText: frag.Text,
				Reading:    tok.Hiragana,
				Gloss:      glossFor(tok, vocab),
				X:          frag.X,
				Y:          frag.Y,
				W:          frag.W,
				H:          frag.H,
			})
			r.logger.Debug("Matched fragment", "fragment", frag.Text, "token", tok.Text, "kind", kind)
			continue
		}

		reading, err := r.readings.Reading(frag.Text)
		if err != nil {
			r.logger.Debug("Dropping fragment without reading", "fragment", frag.Text, "error", err)
			continue
		}
		anns = append(anns, render.Annotation{
			SourceText: frag.Text,
			Reading:    reading,
			X:          frag.X,
			Y:          frag.Y,
			W:          frag.W,
			H:          frag.H,
		})
		r.logger.Debug("Annotated fragment via fallback reading", "fragment", frag.Text)
	}

	r.logger.Info("Reconciled fragments", "fragments", len(fragments), "annotations", len(anns))
	return anns
}

// glossFor prefers the shared vocabulary entry, then the token's own gloss.
func glossFor(tok tokenize.Token, vocab map[string]string) string {
	if g, ok := vocab[tok.Text]; ok && g != "" {
		return g
	}
	return tok.Gloss
}
