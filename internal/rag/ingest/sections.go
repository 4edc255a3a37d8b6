package ingest

import (
	"strings"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
)

// ExtractSections splits text into titled sections on markdown style
// headings: 1-6 '#' markers, a space, then the title. Lines before the first
// heading belong to no section, and text without any headings yields an
// empty list. Callers treat "no sections" as a normal case, not an error.
func ExtractSections(text string) []commonModels.Section {
	var sections []commonModels.Section
	var open *commonModels.Section
	var body []string

	closeSection := func() {
		if open == nil {
			return
		}
		open.Content = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *open)
		open = nil
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if level, title, ok := parseHeading(line); ok {
			closeSection()
			open = &commonModels.Section{Title: title, Level: level}
			continue
		}
		if open != nil {
			body = append(body, line)
		}
	}
	closeSection()

	return sections
}

func parseHeading(line string) (level int, title string, ok bool) {
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < 1 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	title = strings.TrimSpace(line[level+1:])
	if title == "" {
		return 0, "", false
	}
	return level, title, true
}
