package summarizer

import (
	"context"
	"strings"
)

// extractiveSentences is how many leading sentences the fallback keeps.
const extractiveSentences = 3

// Extractive is the no-dependency fallback summarizer: it keeps the first few
// sentences of the text verbatim. Crude, but deterministic and always
// available — local development and tests run without an API key, and the
// rest of the pipeline (storage, search, caching) behaves identically.
type Extractive struct{}

var _ Summarizer = Extractive{}

// Summarize returns up to the first three sentences of text.
func (Extractive) Summarize(_ context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	var (
		b     strings.Builder
		count int
	)
	for i, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Sentence ends only where the terminator is followed by
			// whitespace or end-of-text. "3.14" stays intact.
			rest := text[i+len(string(r)):]
			if rest == "" || rest[0] == ' ' || rest[0] == '\n' || rest[0] == '\t' {
				count++
				if count == extractiveSentences {
					break
				}
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
