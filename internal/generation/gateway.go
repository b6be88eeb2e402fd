// Package generation is the single seam to the external generation
// backend. All prompt construction, safety policy, and structured-response
// parsing live here; callers never talk to the backend directly.
package generation

import (
	"context"
	"fmt"

	"github.com/studyloom/studyloom/internal/model"
)

// Gateway is the generation capability consumed by the processing state
// machine, the conversation log, and the quiz engine. Implementations
// perform no retries; retry policy belongs to callers.
type Gateway interface {
	// Explain produces an explanation of topicText shaped by the
	// customization schema.
	Explain(ctx context.Context, topicText string, c model.Customizations) (string, error)

	// ProcessDocument answers prompt against document content. PDF bytes
	// are passed to the backend as an inline binary part; anything else is
	// treated as already-extracted plain text.
	ProcessDocument(ctx context.Context, content []byte, mimeType, prompt string) (string, error)

	// GenerateQuiz requests a strictly-typed JSON quiz. The returned draft
	// always satisfies the question contract: exactly the requested count,
	// four options each, correctOption in [0,3].
	GenerateQuiz(ctx context.Context, content string, settings model.QuizSettings) (*QuizDraft, error)

	// ChatReply continues a conversation. History is an already-capped
	// recent-message window, most recent last. A non-empty contextText is
	// prepended as an additional leading user turn and does not count
	// against the window.
	ChatReply(ctx context.Context, history []model.Message, contextText string) (string, error)
}

// QuizDraft is the structured quiz result returned by the backend before
// it is attached to an owner and a source.
type QuizDraft struct {
	Title     string           `json:"title"`
	Questions []model.Question `json:"questions"`
}

// Error reports a failed backend call: transport error, timeout, or a
// policy block.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FormatError reports a structured response that did not parse as the
// expected JSON shape. It is never retried silently.
type FormatError struct {
	Reason string
	Raw    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed generation result: %s", e.Reason)
}
