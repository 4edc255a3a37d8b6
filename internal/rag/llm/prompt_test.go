package llm

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt_UsesDomainLabel(t *testing.T) {
	prompt := BuildSystemPrompt("the uploaded documents", false)
	if !strings.Contains(prompt, "the uploaded documents") {
		t.Errorf("domain label missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "Never contradict the provided context") {
		t.Errorf("no-contradiction rule missing: %q", prompt)
	}
	if !strings.Contains(prompt, "Do not use knowledge from outside") {
		t.Errorf("outside-knowledge ban missing when escape hatch is closed: %q", prompt)
	}
}

func TestBuildSystemPrompt_GeneralKnowledgeEscapeHatch(t *testing.T) {
	prompt := BuildSystemPrompt("", true)
	if !strings.Contains(prompt, "General knowledge (not from the knowledge base)") {
		t.Errorf("escape hatch section missing: %q", prompt)
	}
	if strings.Contains(prompt, "Do not use knowledge from outside") {
		t.Errorf("outside-knowledge ban should be lifted: %q", prompt)
	}
	if !strings.Contains(prompt, "the provided knowledge base") {
		t.Errorf("empty domain label should fall back to the generic phrase: %q", prompt)
	}
}

func TestBuildUserPrompt_IncludesHistoryAndContext(t *testing.T) {
	got := BuildUserPrompt("what is X?", "[Source 1: doc]\nX is Y.", []string{"Q: earlier", "A: earlier answer"})

	if !strings.Contains(got, "Conversation so far") {
		t.Errorf("history section missing: %q", got)
	}
	if !strings.Contains(got, "X is Y.") {
		t.Errorf("context missing: %q", got)
	}
	if !strings.Contains(got, "User Question: what is X?") {
		t.Errorf("question missing: %q", got)
	}
}

func TestBuildUserPrompt_NoHistory(t *testing.T) {
	got := BuildUserPrompt("q", "ctx", nil)
	if strings.Contains(got, "Conversation so far") {
		t.Errorf("history header should be absent: %q", got)
	}
}
