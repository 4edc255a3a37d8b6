package mockLLM

import (
	"context"
	"fmt"
	"strings"

	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm"
)

// Marker prefixes every mock answer so it can never be mistaken for a real
// model completion.
const Marker = "[offline demo mode]"

const maxSummarySentences = 3

type client struct{}

// NewProvider returns the offline completion provider: an extractive
// summary of the first few context sentences, no model call involved.
func NewProvider() llm.Provider {
	return &client{}
}

func (c *client) Generate(ctx context.Context, question string, contextBlock string, domainLabel string, messageHistory []string) (string, error) {
	summary := summarize(contextBlock)
	if summary == "" {
		return fmt.Sprintf("%s No context was retrieved for %q.", Marker, question), nil
	}
	if domainLabel == "" {
		domainLabel = "the provided knowledge base"
	}
	return fmt.Sprintf("%s Based on %s: %s", Marker, domainLabel, summary), nil
}

// summarize picks the first few sentences out of the context blocks,
// skipping source headers and dividers.
func summarize(contextBlock string) string {
	var picked []string
	for _, line := range strings.Split(contextBlock, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[Source") || strings.HasPrefix(line, "---") {
			continue
		}
		for _, sentence := range strings.SplitAfter(line, ". ") {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			picked = append(picked, sentence)
			if len(picked) >= maxSummarySentences {
				return strings.Join(picked, " ")
			}
		}
	}
	return strings.Join(picked, " ")
}
