package llm

import "context"

// Provider produces the final natural-language answer from a question, the
// formatted retrieval context and a domain label describing where that
// context came from. Implementations are picked once at composition time.
type Provider interface {
	Generate(ctx context.Context, question string, contextBlock string, domainLabel string, messageHistory []string) (string, error)
}
