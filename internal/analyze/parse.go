package analyze

import (
	"regexp"
	"strings"
)

var (
	translationRe = regexp.MustCompile(`(?is)translation\s*:?\s*(.+?)(?:grammar|$)`)
	patternRe     = regexp.MustCompile(`(?m)^\s*[-*]\s*(.+)$`)
)

// ParseAnalysis extracts the TRANSLATION and GRAMMAR_PATTERNS sections from
// a completion. A line-based parse runs first; when it finds no translation
// a looser regex pass is tried. If neither yields a translation the result
// degrades to Unavailable().
func ParseAnalysis(content string) Analysis {
	result := Analysis{GrammarPatterns: []string{}}

	section := ""
	var translation []string
	for _, raw := range strings.Split(content, "\n") {
		line := stripMarkdown(strings.TrimSpace(raw))
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "TRANSLATION"):
			section = "translation"
			if rest := restAfterColon(line); rest != "" {
				translation = append(translation, rest)
			}
		case strings.HasPrefix(upper, "GRAMMAR_PATTERNS") || strings.HasPrefix(upper, "GRAMMAR PATTERNS") || strings.HasPrefix(upper, "GRAMMAR"):
			section = "grammar"
		case line == "":
		case section == "translation":
			translation = append(translation, line)
		case section == "grammar":
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
				if p := strings.TrimSpace(strings.TrimLeft(line, "-* ")); p != "" {
					result.GrammarPatterns = append(result.GrammarPatterns, p)
				}
			}
		}
	}
	result.Translation = strings.TrimSpace(strings.Join(translation, " "))

	if result.Translation == "" {
		if m := translationRe.FindStringSubmatch(content); len(m) > 1 {
			result.Translation = strings.TrimSpace(stripMarkdown(m[1]))
		}
		if len(result.GrammarPatterns) == 0 {
			for _, m := range patternRe.FindAllStringSubmatch(content, -1) {
				if p := strings.TrimSpace(stripMarkdown(m[1])); p != "" {
					result.GrammarPatterns = append(result.GrammarPatterns, p)
				}
			}
		}
	}

	if result.Translation == "" {
		return Unavailable()
	}
	return result
}

func restAfterColon(line string) string {
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

func stripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}
