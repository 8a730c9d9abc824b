package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// kanjiNumeral matches the numerals used in Japanese article titles
const kanjiNumeral = `[一二三四五六七八九十百千]+`

var (
	// citationMarker finds the source marker the chat instruction asks for,
	// in either its English or its Japanese form.
	citationMarker = regexp.MustCompile(`(?s)\[Source[:：]\s*(.+?)\s*\]|【引用元[:：]\s*(.+?)\s*】`)

	// articleReference matches one cited article: 第N条, 第N条のM, Article N, Article N-M
	articleReference = regexp.MustCompile(
		`第(?:` + kanjiNumeral + `|[0-9]+)(?:条(?:の(?:` + kanjiNumeral + `|[0-9]+))*)?` +
			`|Article\s+[0-9]+(?:-[0-9]+)?`)

	// articleBoundary matches the start of the next article title
	articleBoundary = regexp.MustCompile(
		`第(?:` + kanjiNumeral + `|[0-9]+)条(?:の(?:` + kanjiNumeral + `|[0-9]+))*` +
			`|Article\s+[0-9]+(?:-[0-9]+)?`)

	// numberContinuation matches text that extends an article number, so
	// "Article 1" is not found inside "Article 10" or 第一条 inside 第一条の二
	numberContinuation = regexp.MustCompile(`^(?:[0-9]|-[0-9]|の(?:` + kanjiNumeral + `|[0-9]))`)
	kanjiContinuation  = regexp.MustCompile(`^` + kanjiNumeral)
)

// CitationDisclaimer accompanies every displayed citation list
const CitationDisclaimer = "Citations are the AI's own attribution; their accuracy is not guaranteed."

// Citation is one article cited by an answer and its text in the statute
type Citation struct {
	Article string `json:"article"`
	Text    string `json:"text,omitempty"`
	Found   bool   `json:"found"`
}

// ExtractCitations returns the article references listed in the answer's
// source marker, in order and with duplicates. A "none" marker or a missing
// marker yields nil.
func ExtractCitations(answer string) []string {
	m := citationMarker.FindStringSubmatch(answer)
	if m == nil {
		return nil
	}
	source := m[1]
	if source == "" {
		source = m[2]
	}
	source = strings.TrimSpace(source)
	if strings.EqualFold(source, "none") || source == "なし" {
		return nil
	}
	return articleReference.FindAllString(source, -1)
}

// LocateArticle returns the span of fullText that starts at the literal
// title and runs up to the next article title or the end of the text.
// For the last article the span includes everything after it, such as
// supplementary provisions.
func LocateArticle(fullText, title string) (string, bool) {
	if fullText == "" || title == "" {
		return "", false
	}

	anchor := regexp.MustCompile(regexp.QuoteMeta(title))
	var loc []int
	for _, m := range anchor.FindAllStringIndex(fullText, -1) {
		if !continuesNumber(title, fullText[m[1]:]) {
			loc = m
			break
		}
	}
	if loc == nil {
		return "", false
	}

	start, bodyStart := loc[0], loc[1]
	end := len(fullText)
	if next := articleBoundary.FindStringIndex(fullText[bodyStart:]); next != nil {
		end = bodyStart + next[0]
	}
	return strings.TrimSpace(fullText[start:end]), true
}

func continuesNumber(title, rest string) bool {
	if numberContinuation.MatchString(rest) {
		return true
	}
	// a bare 第十 must not match the start of 第十一条
	r, size := utf8.DecodeLastRuneInString(title)
	return size > 0 && kanjiContinuation.MatchString(string(r)) && kanjiContinuation.MatchString(rest)
}

// ResolveCitations pairs every article cited by answer with its text
func ResolveCitations(fullText, answer string) []Citation {
	articles := ExtractCitations(answer)
	if len(articles) == 0 {
		return nil
	}
	out := make([]Citation, 0, len(articles))
	for _, article := range articles {
		text, found := LocateArticle(fullText, article)
		out = append(out, Citation{Article: article, Text: text, Found: found})
	}
	return out
}
