package brain

import (
	"context"
	"encoding/json"
)

// StubLLMClient answers with a fixed in-character reply. Local runs use it
// when no provider credentials are configured.
type StubLLMClient struct{}

func (StubLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return LLMResponse{}, err
	}
	body, err := json.Marshal(map[string]any{
		"analysis":       "stub provider",
		"strategy":       "stalling",
		"reply":          "hello? sorry beta, who is this? my phone is very slow",
		"extractedIntel": map[string][]string{},
	})
	if err != nil {
		return LLMResponse{}, err
	}
	return LLMResponse{Text: string(body), StopReason: "stub"}, nil
}
