package llm

import "strings"

// BuildSystemPrompt phrases the grounding rules around the domain label
// ("the uploaded documents", a named corpus, ...). The model must never
// contradict the supplied context without disclosing it; outside knowledge
// only enters through the explicitly configured escape hatch, and then only
// under its own label.
func BuildSystemPrompt(domainLabel string, allowGeneralKnowledge bool) string {
	if domainLabel == "" {
		domainLabel = "the provided knowledge base"
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant answering questions using ")
	b.WriteString(domainLabel)
	b.WriteString(".\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Ground every claim in the numbered context blocks and cite them as [Source N].\n")
	b.WriteString("- If the context does not cover the question, say so plainly instead of guessing.\n")
	b.WriteString("- Never contradict the provided context without explicitly disclosing that you are doing so.\n")
	if allowGeneralKnowledge {
		b.WriteString("- You may append a short, clearly separated section titled \"General knowledge (not from the knowledge base)\" when it genuinely helps.\n")
	} else {
		b.WriteString("- Do not use knowledge from outside the provided context.\n")
	}
	return b.String()
}

func BuildUserPrompt(question string, contextBlock string, messageHistory []string) string {
	var b strings.Builder
	if len(messageHistory) > 0 {
		b.WriteString("Conversation so far (question/answer pairs, most recent first):\n")
		b.WriteString(strings.Join(messageHistory, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Context:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	return b.String()
}
