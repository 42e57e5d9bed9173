package document

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Language tags reported by DetectLanguage.
const (
	LangKorean  = "korean"
	LangEnglish = "english"
	LangMixed   = "mixed"
)

// CleanText normalizes purchase-order text before it is handed to the
// extraction backend: line endings unified, trailing whitespace stripped,
// runs of blank lines collapsed to one.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// DetectLanguage classifies text as korean, english or mixed based on the
// share of hangul among letter runes.
func DetectLanguage(text string) string {
	var hangul, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if letters == 0 {
		return LangEnglish
	}
	ratio := float64(hangul) / float64(letters)
	switch {
	case ratio >= 0.7:
		return LangKorean
	case ratio <= 0.3:
		return LangEnglish
	default:
		return LangMixed
	}
}

var currencySymbols = map[rune]string{
	'₩': "KRW ",
	'$': "USD ",
	'€': "EUR ",
	'¥': "JPY ",
}

// NormalizeCurrencySymbols rewrites currency glyphs to ISO codes so the
// backend sees one consistent notation.
func NormalizeCurrencySymbols(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if code, ok := currencySymbols[r]; ok {
			b.WriteString(code)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LoadTextFile reads a purchase-order text file and runs it through the
// cleanup pipeline. Non-UTF-8 content is rejected rather than guessed at.
func LoadTextFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("document %s is not valid UTF-8", path)
	}
	return CleanText(NormalizeCurrencySymbols(string(raw))), nil
}
