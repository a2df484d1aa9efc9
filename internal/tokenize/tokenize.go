package tokenize

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/furiview/furiview/internal/logging"
)

// Token is one morpheme with its readings in three scripts. Gloss is the
// dictionary meaning when one is known, empty otherwise.
type Token struct {
	Text     string `json:"text"`
	POS      string `json:"pos"`
	Hiragana string `json:"hiragana"`
	Katakana string `json:"katakana"`
	Romaji   string `json:"romaji"`
	HasKanji bool   `json:"has_kanji"`
	Gloss    string `json:"gloss,omitempty"`
}

// Glosser resolves a surface form to an English gloss. An empty string
// means no entry.
type Glosser interface {
	Lookup(word string) string
}

// Tokenizer segments Japanese text into morphemes with readings.
type Tokenizer struct {
	kg      *tokenizer.Tokenizer
	glosser Glosser
	logger  *logging.Logger
}

// NewTokenizer builds a morphological tokenizer over the bundled IPA
// dictionary. glosser may be nil when no gloss source is configured.
func NewTokenizer(glosser Glosser, logger *logging.Logger) (*Tokenizer, error) {
	kg, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to build tokenizer: %w", err)
	}
	return &Tokenizer{kg: kg, glosser: glosser, logger: logger}, nil
}

// Tokenize segments text into tokens, skipping whitespace-only morphemes.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]Token, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ktoks := t.kg.Tokenize(text)
	out := make([]Token, 0, len(ktoks))
	for _, kt := range ktoks {
		surface := kt.Surface
		if strings.TrimSpace(surface) == "" {
			continue
		}

		katakana, ok := kt.Reading()
		if !ok {
			katakana = ""
		}
		hiragana := KatakanaToHiragana(katakana)
		if hiragana == "" && !ContainsKanji(surface) {
			// kana and latin tokens read as themselves
			hiragana = KatakanaToHiragana(surface)
			katakana = surface
		}

		tok := Token{
			Text:     surface,
			POS:      strings.Join(kt.POS(), ","),
			Hiragana: hiragana,
			Katakana: katakana,
			Romaji:   ToRomaji(hiragana),
			HasKanji: ContainsKanji(surface),
		}
		if tok.HasKanji && t.glosser != nil {
			tok.Gloss = t.glosser.Lookup(surface)
		}
		out = append(out, tok)
	}

	t.logger.Debug("Tokenized text", "chars", len([]rune(text)), "tokens", len(out))
	return out, nil
}

// Reading resolves the hiragana reading of a standalone piece of text by
// tokenizing it and joining per-morpheme readings. It errors when any
// kanji-bearing morpheme has no known reading.
func (t *Tokenizer) Reading(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text")
	}

	var sb strings.Builder
	for _, kt := range t.kg.Tokenize(text) {
		katakana, ok := kt.Reading()
		if !ok || katakana == "" {
			if ContainsKanji(kt.Surface) {
				return "", fmt.Errorf("no reading for %q", kt.Surface)
			}
			sb.WriteString(KatakanaToHiragana(kt.Surface))
			continue
		}
		sb.WriteString(KatakanaToHiragana(katakana))
	}

	reading := sb.String()
	if reading == "" {
		return "", fmt.Errorf("no reading derived for %q", text)
	}
	return reading, nil
}
