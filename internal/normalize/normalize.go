package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// Config controls which normalization steps are applied. The trained
// artifact embeds the Config it was produced with; inference must use that
// exact copy or feature extraction silently drifts from training.
type Config struct {
	StripHeaders      bool `json:"strip_headers" mapstructure:"strip_headers"`
	Lowercase         bool `json:"lowercase" mapstructure:"lowercase"`
	ReplaceURLs       bool `json:"replace_urls" mapstructure:"replace_urls"`
	ReplaceNumbers    bool `json:"replace_numbers" mapstructure:"replace_numbers"`
	RemovePunctuation bool `json:"remove_punctuation" mapstructure:"remove_punctuation"`
	DoStemming        bool `json:"do_stemming" mapstructure:"do_stemming"`
}

// DefaultConfig returns the configuration the canonical training pipeline
// uses: everything on except stemming.
func DefaultConfig() Config {
	return Config{
		StripHeaders:      true,
		Lowercase:         true,
		ReplaceURLs:       true,
		ReplaceNumbers:    true,
		RemovePunctuation: true,
		DoStemming:        false,
	}
}

// RE2's \w, \s and \b shorthands are ASCII-only, unlike the Unicode-aware
// classes the canonical transform was trained with, so the character
// classes are spelled out: a word character is a letter, a number or the
// underscore; whitespace is ASCII whitespace plus the Unicode separators
// and NEL.
const (
	spaceClass = `\s\p{Z}\x{85}`
	wordClass  = `\p{L}\p{N}_`
)

var (
	headerSplitRe = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
	urlRe         = regexp.MustCompile(`https?://[^` + spaceClass + `]+|www\.[^` + spaceClass + `]+`)
	numberRe      = regexp.MustCompile(`\p{Nd}+(?:[.,]\p{Nd}+)?`)
	punctRe       = regexp.MustCompile(`[^` + wordClass + spaceClass + `]`)
	whitespaceRe  = regexp.MustCompile(`[` + spaceClass + `]+`)
)

// Normalize maps raw email text to its canonical form. The step order is
// part of the contract with the trained artifact and must not change.
// The function is pure and idempotent for any fixed Config.
func Normalize(text string, cfg Config) string {
	if cfg.StripHeaders {
		text = stripHeaders(text)
	}
	if cfg.Lowercase {
		text = strings.ToLower(text)
	}
	if cfg.ReplaceURLs {
		text = urlRe.ReplaceAllString(text, sentinel("URL", cfg))
	}
	if cfg.ReplaceNumbers {
		text = replaceNumbers(text, sentinel("NUMBER", cfg))
	}
	if cfg.RemovePunctuation {
		text = punctRe.ReplaceAllString(text, " ")
	}
	if cfg.DoStemming {
		text = stem(text)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// stripHeaders drops everything up to and including the first blank line.
// Only the first split point counts; a message with no blank line is
// returned unchanged.
func stripHeaders(text string) string {
	parts := headerSplitRe.Split(text, 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return text
}

// sentinel returns the replacement token, padded with single spaces. The
// token case follows the Lowercase toggle so that re-normalizing canonical
// text leaves the tokens intact.
func sentinel(token string, cfg Config) string {
	if cfg.Lowercase {
		token = strings.ToLower(token)
	}
	return " " + token + " "
}

// replaceNumbers swaps whole-word numeric tokens for the sentinel. The
// word-boundary check is done per match because RE2's \b only knows ASCII
// word characters; a digit run glued to a letter like "café42" must stay.
func replaceNumbers(text, token string) string {
	matches := numberRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if wordAdjacent(text, m[0], m[1]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(token)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// wordAdjacent reports whether the match at [start, end) touches a word
// character, disqualifying it as a whole-word token.
func wordAdjacent(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return true
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func stem(text string) string {
	tokens := strings.Fields(text)
	for i, t := range tokens {
		tokens[i] = english.Stem(t, true)
	}
	return strings.Join(tokens, " ")
}
