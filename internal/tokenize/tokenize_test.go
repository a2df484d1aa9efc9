package tokenize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furiview/furiview/internal/logging"
)

type mapGlosser map[string]string

func (g mapGlosser) Lookup(word string) string { return g[word] }

func newTestTokenizer(t *testing.T, glosser Glosser) *Tokenizer {
	t.Helper()
	tok, err := NewTokenizer(glosser, logging.NewLogger("TokenizerTest"))
	require.NoError(t, err)
	return tok
}

func TestTokenizeJapaneseSentence(t *testing.T) {
	tk := newTestTokenizer(t, mapGlosser{"日本語": "Japanese language"})

	tokens, err := tk.Tokenize(context.Background(), "日本語を勉強します")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	var nihongo *Token
	for i := range tokens {
		if tokens[i].Text == "日本語" {
			nihongo = &tokens[i]
			break
		}
	}
	require.NotNil(t, nihongo, "expected a 日本語 token")

	assert.True(t, nihongo.HasKanji)
	assert.Equal(t, "にほんご", nihongo.Hiragana)
	assert.Equal(t, "ニホンゴ", nihongo.Katakana)
	assert.Equal(t, "nihongo", nihongo.Romaji)
	assert.Equal(t, "Japanese language", nihongo.Gloss)
}

func TestTokenizeEmptyText(t *testing.T) {
	tk := newTestTokenizer(t, nil)

	tokens, err := tk.Tokenize(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenizeKanaOnlyTokenReadsAsItself(t *testing.T) {
	tk := newTestTokenizer(t, nil)

	tokens, err := tk.Tokenize(context.Background(), "こんにちは")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	assert.False(t, tokens[0].HasKanji)
	assert.NotEmpty(t, tokens[0].Hiragana)
}

func TestReadingResolvesKanjiWord(t *testing.T) {
	tk := newTestTokenizer(t, nil)

	reading, err := tk.Reading("日本語")
	require.NoError(t, err)
	assert.Equal(t, "にほんご", reading)
}

func TestReadingMixedScript(t *testing.T) {
	tk := newTestTokenizer(t, nil)

	reading, err := tk.Reading("勉強します")
	require.NoError(t, err)
	assert.Equal(t, "べんきょうします", reading)
}

func TestReadingEmptyTextErrors(t *testing.T) {
	tk := newTestTokenizer(t, nil)

	_, err := tk.Reading(" ")
	assert.Error(t, err)
}
