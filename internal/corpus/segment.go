package corpus

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// Segmenter splits text into linguistic tokens.
type Segmenter interface {
	Segment(text string) []string
}

// WordSegmenter splits text on Unicode word boundaries (UAX #29). No
// language-specific rules are applied: words, numbers and punctuation marks
// each become separate tokens and whitespace is discarded.
type WordSegmenter struct{}

func (WordSegmenter) Segment(text string) []string {
	var tokens []string

	state := -1
	for text != "" {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		if isBlank(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// Normalizer turns a raw chunk into normalized corpus lines.
type Normalizer struct {
	Segmenter Segmenter
	// Form is an optional Unicode normalization form applied before
	// segmentation: "nfc", "nfkc" or "" for none.
	Form string
	// PreserveLines emits one line per non-blank source line instead of one
	// line for the whole chunk.
	PreserveLines bool
}

// Lines returns the normalized lines for chunk. Without PreserveLines the
// result always holds exactly one line, possibly empty.
func (n Normalizer) Lines(chunk string) []string {
	chunk = applyForm(n.Form, chunk)

	if !n.PreserveLines {
		return []string{n.line(chunk)}
	}

	var lines []string
	for _, raw := range strings.FieldsFunc(chunk, isLineBreak) {
		if line := n.line(raw); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

func (n Normalizer) line(text string) string {
	seg := n.Segmenter
	if seg == nil {
		seg = WordSegmenter{}
	}

	return strings.Join(seg.Segment(text), " ")
}

func applyForm(form, s string) string {
	switch form {
	case "nfc":
		return norm.NFC.String(s)
	case "nfkc":
		return norm.NFKC.String(s)
	default:
		return s
	}
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x85, 0x2028, 0x2029:
		return true
	}

	return false
}
