package llm

import "context"

// Message roles accepted by every backend.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a backend conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the uniform interface over interchangeable text-generation
// backends. Implementations differ only in endpoint, credential handling and
// how the system message is folded into the request.
type Client interface {
	// Chat sends an ordered conversation and returns the raw response text.
	Chat(ctx context.Context, messages []Message) (string, error)
	// TestConnection performs a minimal round trip. It never returns an
	// error; any failure becomes false.
	TestConnection(ctx context.Context) bool
}

// ChatOptions are the generation knobs shared by all backends.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

func (o ChatOptions) withDefaults() ChatOptions {
	if o.MaxTokens <= 0 {
		o.MaxTokens = 2000
	}
	return o
}

// splitSystem separates the system message from the conversational turns.
// The Anthropic API carries the system prompt outside the message list.
func splitSystem(messages []Message) (system string, rest []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem && system == "" {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
