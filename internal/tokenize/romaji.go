package tokenize

import "strings"

// Modified Hepburn romanization tables. Digraphs are checked before single
// kana so きょ becomes "kyo" rather than "kiyo".
var hepburnDigraphs = map[string]string{
	"きゃ": "kya", "きゅ": "kyu", "きょ": "kyo",
	"しゃ": "sha", "しゅ": "shu", "しょ": "sho",
	"ちゃ": "cha", "ちゅ": "chu", "ちょ": "cho",
	"にゃ": "nya", "にゅ": "nyu", "にょ": "nyo",
	"ひゃ": "hya", "ひゅ": "hyu", "ひょ": "hyo",
	"みゃ": "mya", "みゅ": "myu", "みょ": "myo",
	"りゃ": "rya", "りゅ": "ryu", "りょ": "ryo",
	"ぎゃ": "gya", "ぎゅ": "gyu", "ぎょ": "gyo",
	"じゃ": "ja", "じゅ": "ju", "じょ": "jo",
	"びゃ": "bya", "びゅ": "byu", "びょ": "byo",
	"ぴゃ": "pya", "ぴゅ": "pyu", "ぴょ": "pyo",
}

var hepburnSingles = map[rune]string{
	'あ': "a", 'い': "i", 'う': "u", 'え': "e", 'お': "o",
	'か': "ka", 'き': "ki", 'く': "ku", 'け': "ke", 'こ': "ko",
	'さ': "sa", 'し': "shi", 'す': "su", 'せ': "se", 'そ': "so",
	'た': "ta", 'ち': "chi", 'つ': "tsu", 'て': "te", 'と': "to",
	'な': "na", 'に': "ni", 'ぬ': "nu", 'ね': "ne", 'の': "no",
	'は': "ha", 'ひ': "hi", 'ふ': "fu", 'へ': "he", 'ほ': "ho",
	'ま': "ma", 'み': "mi", 'む': "mu", 'め': "me", 'も': "mo",
	'や': "ya", 'ゆ': "yu", 'よ': "yo",
	'ら': "ra", 'り': "ri", 'る': "ru", 'れ': "re", 'ろ': "ro",
	'わ': "wa", 'を': "wo", 'ん': "n",
	'が': "ga", 'ぎ': "gi", 'ぐ': "gu", 'げ': "ge", 'ご': "go",
	'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
	'だ': "da", 'ぢ': "ji", 'づ': "zu", 'で': "de", 'ど': "do",
	'ば': "ba", 'び': "bi", 'ぶ': "bu", 'べ': "be", 'ぼ': "bo",
	'ぱ': "pa", 'ぴ': "pi", 'ぷ': "pu", 'ぺ': "pe", 'ぽ': "po",
	'ぁ': "a", 'ぃ': "i", 'ぅ': "u", 'ぇ': "e", 'ぉ': "o",
	'ゃ': "ya", 'ゅ': "yu", 'ょ': "yo",
}

// ToRomaji renders a kana reading in modified Hepburn. Katakana input is
// normalized to hiragana first. The sokuon doubles the following consonant
// ("t" before "ch"); the chōon repeats the previous vowel. Runes with no
// mapping pass through unchanged.
func ToRomaji(kana string) string {
	runes := []rune(KatakanaToHiragana(kana))
	var sb strings.Builder
	sokuon := false

	emit := func(syll string) {
		if sokuon {
			if strings.HasPrefix(syll, "ch") {
				sb.WriteString("t")
			} else if len(syll) > 0 && !isVowel(syll[0]) {
				sb.WriteByte(syll[0])
			}
			sokuon = false
		}
		sb.WriteString(syll)
	}

	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) {
			if syll, ok := hepburnDigraphs[string(runes[i:i+2])]; ok {
				emit(syll)
				i++
				continue
			}
		}
		r := runes[i]
		switch {
		case r == 'っ' || r == 'ッ':
			sokuon = true
		case r == 'ー':
			s := sb.String()
			if len(s) > 0 && isVowel(s[len(s)-1]) {
				sb.WriteByte(s[len(s)-1])
			}
		default:
			if syll, ok := hepburnSingles[r]; ok {
				emit(syll)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	}
	return false
}
