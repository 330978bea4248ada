// Package summarizer defines the text-summarization boundary.
//
// Summarization is the one step of an upload that leaves the process: the
// real implementation calls a hosted language model. Everything else in the
// service treats it as this one-method interface, so tests swap in a stub and
// deployments without an API key fall back to the extractive summarizer.
package summarizer

import "context"

// Summarizer produces a summary for a piece of text.
//
// IMPLEMENTATIONS:
//   - openai.Client  — chat-completion call to a hosted model
//   - Extractive     — local, deterministic fallback (no network)
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Func adapts a plain function to the Summarizer interface, the same trick
// as http.HandlerFunc. Tests use it to stub summarization in one line.
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
