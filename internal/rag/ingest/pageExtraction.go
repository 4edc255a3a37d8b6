package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// Transcriber turns an audio file into plain text. The live implementation
// calls the provider's speech to text endpoint; a nil Transcriber disables
// audio ingestion.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// extractPDF pulls text page by page. A page that fails or times out is
// skipped and counted in the trace, the rest of the document still goes
// through.
func extractPDF(path string) (string, string, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file")
		return "", "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	skipped := 0
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			skipped++
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Warn("Error parsing page content", "page", i, "error", err)
			skipped++
			continue
		}
		pages = append(pages, content)
	}

	trace := fmt.Sprintf("pdf: %d pages, %d skipped", numPages, skipped)
	return strings.Join(pages, "\n\n"), trace, nil
}

// extractDocLike reads a .docx, .odt or .rtf file through the cat converter.
func extractDocLike(path string) (string, string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc")
		return "", "", fmt.Errorf("failed to extract document: %w", err)
	}
	return text, fmt.Sprintf("doc: %d chars", len(text)), nil
}

// extractPlain reads markdown and plain text files as-is.
func extractPlain(path string) (string, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(raw), fmt.Sprintf("plain: %d chars", len(raw)), nil
}

func extractAudio(ctx context.Context, path string, transcriber Transcriber) (string, string, error) {
	if transcriber == nil {
		return "", "", errors.New("audio ingestion requires a transcription provider")
	}
	text, err := transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return text, fmt.Sprintf("audio: transcribed %d chars", len(text)), nil
}

// protectExtract guards against pdf pages whose parsing hangs.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}
