package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Sentence length bounds in runes
const (
	MinSentence = 20
	MaxSentence = 600
)

// VisibleText parses HTML and returns its visible text, skipping scripts and styles
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	return visibleText(doc), nil
}

func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg", "template":
				return
			case "p", "li", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "section", "article":
				// block boundaries end a sentence even without punctuation
				defer buf.WriteString("\n\n")
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '॥':
		return true
	}
	return false
}

// SplitSentences splits text on sentence terminators followed by whitespace and
// on blank lines. Sentences outside [minLen, maxLen] runes are dropped; bounds <= 0
// disable the corresponding check.
func SplitSentences(text string, minLen, maxLen int) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.Join(strings.Fields(current.String()), " ")
		current.Reset()
		n := utf8.RuneCountInString(sentence)
		if n == 0 || (minLen > 0 && n < minLen) || (maxLen > 0 && n > maxLen) {
			return
		}
		sentences = append(sentences, sentence)
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			flush()
			continue
		}
		if r == '\n' || r == '\r' || r == '\t' {
			current.WriteRune(' ')
			continue
		}

		current.WriteRune(r)

		if isTerminator(r) && (i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t') {
			flush()
		}
	}
	flush()

	return sentences
}

// Dedupe drops case-insensitive duplicates, keeping first occurrences in order
func Dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	unique := make([]string, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}

	return unique
}
