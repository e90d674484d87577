package generation

import (
	"context"

	"github.com/quillcards/quill-api/internal/domain"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a provider-agnostic chat message. A well-formed conversation
// has exactly one system message first, followed by ordered user/assistant
// turns; adapters that need the system message separated out of the turn
// list perform that split themselves.
type Message struct {
	Role    Role
	Content string
}

// Generator defines the uniform call surface for LLM backends. This
// interface is the boundary between the pipeline core and external AI
// services: one implementation per backend wire format, each hiding its
// authentication location, payload shape, and response unwrapping.
//
// Implementations make a single call with no retry and no streaming. A
// non-success backend response yields a *ProviderError carrying the status
// code and raw body; a success response with no completion content returns
// an empty string rather than an error, so callers fail at the parsing
// stage with a clear message.
type Generator interface {
	Generate(ctx context.Context, messages []Message, settings domain.GenerationSettings) (string, error)
}

// SplitSystem separates the leading system message from the remaining
// turns. Backends that carry the system instruction as a distinct
// top-level field use this before building their wire payload.
func SplitSystem(messages []Message) (system string, turns []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem && system == "" {
			system = m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
