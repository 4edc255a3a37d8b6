package mockLLM

import (
	"context"
	"strings"
	"testing"
)

func TestGenerate_AlwaysCarriesMarker(t *testing.T) {
	provider := NewProvider()

	withContext, _ := provider.Generate(context.Background(), "q", "[Source 1: doc]\nSome fact. Another fact.", "the uploaded documents", nil)
	if !strings.HasPrefix(withContext, Marker) {
		t.Errorf("answer missing offline marker: %q", withContext)
	}

	empty, _ := provider.Generate(context.Background(), "q", "", "", nil)
	if !strings.HasPrefix(empty, Marker) {
		t.Errorf("empty-context answer missing offline marker: %q", empty)
	}
}

func TestGenerate_ExtractsContextSentences(t *testing.T) {
	contextBlock := "[Source 1: handbook]\n" +
		"Widgets ship weekly. Gadgets ship monthly. Gizmos are discontinued. This sentence is past the cutoff.\n" +
		"---\n" +
		"[Source 2: faq]\n" +
		"Never surfaces either."

	provider := NewProvider()
	answer, err := provider.Generate(context.Background(), "when do widgets ship?", contextBlock, "the uploaded documents", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(answer, "Widgets ship weekly.") {
		t.Errorf("summary missing first sentence: %q", answer)
	}
	if strings.Contains(answer, "past the cutoff") {
		t.Errorf("summary should stop after a few sentences: %q", answer)
	}
	if strings.Contains(answer, "[Source 1") {
		t.Errorf("source headers should not leak into the summary: %q", answer)
	}
}
