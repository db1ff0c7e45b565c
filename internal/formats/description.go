package formats

import (
	"regexp"
	"strings"
)

var (
	escapedBreaks  = regexp.MustCompile(`(\\r\\n|\\n|\\r)+`)
	emptyParagraph = regexp.MustCompile(`<p>(\s|&nbsp;)*</p>`)
	runsOfBreaks   = regexp.MustCompile(`(<br\s*/?>\s*){3,}`)
	runsOfSpaces   = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanDescription normalizes product description HTML before it is sent
// to the target catalog: literal escaped line breaks become real breaks,
// empty paragraphs are dropped, and runs of breaks and spaces collapse.
func CleanDescription(s string) string {
	if s == "" {
		return s
	}
	s = escapedBreaks.ReplaceAllString(s, "<br>")
	s = emptyParagraph.ReplaceAllString(s, "")
	s = runsOfBreaks.ReplaceAllString(s, "<br><br>")
	s = runsOfSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
