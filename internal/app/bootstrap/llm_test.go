package bootstrap

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/wolfman30/vigilante/internal/brain"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/pkg/logging"
)

func TestBuildGeneratorRequiresConfig(t *testing.T) {
	if _, err := BuildGenerator(context.Background(), nil, aws.Config{}, logging.New("error")); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildLLMClientUnknownProvider(t *testing.T) {
	if _, _, err := BuildLLMClient(context.Background(), "carrier-pigeon", &appconfig.Config{}, aws.Config{}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestBuildLLMClientMissingCredentials(t *testing.T) {
	cfg := &appconfig.Config{GroqModelID: "llama"}
	for _, provider := range []string{ProviderGemini, ProviderBedrock, ProviderGroq} {
		if _, _, err := BuildLLMClient(context.Background(), provider, cfg, aws.Config{}); err == nil {
			t.Fatalf("expected error for %s without credentials", provider)
		}
	}
}

func TestBuildLLMClientBedrockAndGroq(t *testing.T) {
	cfg := &appconfig.Config{
		BedrockModelID: "anthropic.claude-3-haiku",
		GroqAPIKey:     "gsk_test",
		GroqModelID:    "llama-3.3-70b-versatile",
		GroqBaseURL:    "https://api.groq.com/openai/v1",
	}
	client, model, err := BuildLLMClient(context.Background(), ProviderBedrock, cfg, aws.Config{Region: "ap-south-1"})
	if err != nil || client == nil {
		t.Fatalf("bedrock: client=%v err=%v", client, err)
	}
	if model != "anthropic.claude-3-haiku" {
		t.Fatalf("unexpected bedrock model %q", model)
	}

	client, model, err = BuildLLMClient(context.Background(), " GROQ ", cfg, aws.Config{})
	if err != nil || client == nil {
		t.Fatalf("groq: client=%v err=%v", client, err)
	}
	if model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected groq model %q", model)
	}
}

func TestBuildGeneratorDegradesToStub(t *testing.T) {
	cfg := &appconfig.Config{LLMProvider: ProviderGemini, LLMFallbackProvider: ProviderGroq}

	gen, err := BuildGenerator(context.Background(), cfg, aws.Config{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	personas, err := BuildPersonas(nil)
	if err != nil {
		t.Fatalf("personas: %v", err)
	}
	reply, err := gen.Generate(context.Background(), brain.Request{
		Persona:     personas.Default(),
		Message:     "hello",
		Accumulated: intel.NewRecord(),
	})
	if err != nil {
		t.Fatalf("stub generate: %v", err)
	}
	if reply.Reply == "" {
		t.Fatalf("expected stub reply")
	}
}
