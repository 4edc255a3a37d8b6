package ingest

import (
	"regexp"
	"strings"
)

// PDF and OCR extractors reliably produce these artifacts, so they are fixed
// here once instead of in every extractor.
var (
	ligatures = strings.NewReplacer(
		"ﬀ", "ff",
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
	)

	// hyphen at a line wrap followed by a letter, e.g. "exa-\nmple"
	wrapHyphen  = regexp.MustCompile(`-\n(\p{L})`)
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans raw extracted text: line endings become "\n", non-breaking
// spaces become plain spaces, soft hyphens are dropped, ligature code points
// are expanded, line-wrap hyphenation is joined back together, space/tab runs
// collapse to one space and runs of 3+ newlines collapse to two. Pure and
// idempotent; empty input yields empty output. Step order matters: later
// steps rely on the unified line endings from the first.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "­", "")
	text = ligatures.Replace(text)
	text = wrapHyphen.ReplaceAllString(text, "$1")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
