package brain

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is a provider-neutral message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
	// JSON asks providers that support it for a JSON object response.
	JSON bool
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// PinModel returns a client that always sends model, whatever the request
// carries. Providers in a fallback chain each need their own model id.
func PinModel(client LLMClient, model string) LLMClient {
	if client == nil || model == "" {
		return client
	}
	return pinnedClient{next: client, model: model}
}

type pinnedClient struct {
	next  LLMClient
	model string
}

func (c pinnedClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	req.Model = c.model
	return c.next.Complete(ctx, req)
}
