package repository

import (
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// MaxTextRunes caps extracted text to fit the LLM context budget
const MaxTextRunes = 30000

// extractableTags is the allow-list of structural elements whose direct text
// is collected, in document order, to approximate reading order.
var extractableTags = map[string]struct{}{
	"LawTitle":               {},
	"ArticleTitle":           {},
	"ParagraphSentence":      {},
	"ItemSentence":           {},
	"Subitem1Sentence":       {},
	"Subitem2Sentence":       {},
	"SupplProvisionLabel":    {},
	"SupplProvisionSentence": {},
	"Sentence":               {},
}

// fallbackTextTag holds the raw full text used when the structured walk finds nothing
const fallbackTextTag = "LawFullText"

// ExtractText returns the cleaned, truncated text of a lawdata payload and
// whether it came from the raw full-text fallback.
func ExtractText(payload *etree.Element) (string, bool, error) {
	if payload == nil {
		return "", false, ErrNoExtractableText
	}

	var fragments []string
	collectText(payload, &fragments)
	if text := collapseWhitespace(strings.Join(fragments, "\n")); text != "" {
		return truncateRunes(text, MaxTextRunes), false, nil
	}

	if node := payload.SelectElement(fallbackTextTag); node != nil {
		if text := collapseWhitespace(node.Text()); text != "" {
			return truncateRunes(text, MaxTextRunes), true, nil
		}
	}
	return "", false, ErrNoExtractableText
}

func collectText(el *etree.Element, out *[]string) {
	if _, ok := extractableTags[el.Tag]; ok {
		if text := strings.TrimSpace(el.Text()); text != "" {
			*out = append(*out, text)
		}
	}
	for _, child := range el.ChildElements() {
		collectText(child, out)
	}
}

// collapseWhitespace replaces every run of Unicode whitespace, including the
// ideographic space, with one ASCII space and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
