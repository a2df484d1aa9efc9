package tokenize

// isKanji reports whether r falls in the CJK unified ideograph block.
func isKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// isKana reports whether r is hiragana or katakana.
func isKana(r rune) bool {
	return (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF)
}

// ContainsKanji reports whether s holds at least one ideograph.
func ContainsKanji(s string) bool {
	for _, r := range s {
		if isKanji(r) {
			return true
		}
	}
	return false
}

// KatakanaToHiragana converts katakana runes to their hiragana equivalents.
// Non-katakana runes pass through unchanged.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
