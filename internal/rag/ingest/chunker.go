package ingest

import "strings"

// SplitText splits text into overlapping chunks of at most size characters.
// When more text remains past a window, the cut prefers the last sentence
// terminator, newline or space inside the window, but only when that break
// sits past the window midpoint, so chunks never end on a severed word
// unless the window has no usable break. Emitted chunks are trimmed and
// empty ones dropped. The cursor always moves forward, so the loop
// terminates even when overlap >= size.
func SplitText(text string, size int, overlap int) []string {
	if size < 1 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			if piece := strings.TrimSpace(text[start:]); piece != "" {
				chunks = append(chunks, piece)
			}
			break
		}

		window := text[start:end]
		if lastBreak := breakPoint(window); lastBreak > size/2 {
			// cut inclusive of the break character
			end = start + lastBreak + 1
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, piece)
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// breakPoint returns the index of the best split position in the window:
// the rightmost of the last '.', '\n' and ' ', or -1 when none exist.
func breakPoint(window string) int {
	best := strings.LastIndexByte(window, '.')
	if i := strings.LastIndexByte(window, '\n'); i > best {
		best = i
	}
	if i := strings.LastIndexByte(window, ' '); i > best {
		best = i
	}
	return best
}
