package llm

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	newlineRe     = regexp.MustCompile(`[\r\n]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// normalizeText prepares raw model output for bracket scanning. If the text
// contains a fenced code block, only the fenced content is kept, since models
// routinely wrap JSON in markdown. Newlines become spaces and whitespace runs
// collapse to one space; JSON whitespace is insignificant outside string
// literals, so nothing structural is lost.
func normalizeText(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = newlineRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
