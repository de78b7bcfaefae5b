package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/vigilante/internal/brain"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// Provider names accepted by LLM_PROVIDER and LLM_FALLBACK_PROVIDER.
const (
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
	ProviderGroq    = "groq"
	ProviderStub    = "stub"
)

// BuildLLMClient returns the named provider pinned to its model id.
func BuildLLMClient(ctx context.Context, provider string, cfg *appconfig.Config, awsCfg aws.Config) (brain.LLMClient, string, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		client, err := brain.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, "", err
		}
		return brain.PinModel(client, cfg.GeminiModelID), cfg.GeminiModelID, nil
	case ProviderBedrock:
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, "", fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for provider %q", provider)
		}
		client := brain.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		return brain.PinModel(client, cfg.BedrockModelID), cfg.BedrockModelID, nil
	case ProviderGroq:
		client, err := brain.NewOpenAICompatClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModelID)
		if err != nil {
			return nil, "", err
		}
		return brain.PinModel(client, cfg.GroqModelID), cfg.GroqModelID, nil
	case ProviderStub:
		return brain.StubLLMClient{}, "stub", nil
	default:
		return nil, "", fmt.Errorf("bootstrap: unknown llm provider %q", provider)
	}
}

// BuildGenerator wires the persona reply generator. A primary provider that
// cannot be built degrades to the stub so the service still answers; a
// broken fallback provider is skipped.
func BuildGenerator(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*brain.Brain, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	primary, model, err := BuildLLMClient(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		logger.Warn("llm provider unavailable; using stub replies", "provider", cfg.LLMProvider, "error", err)
		primary, model = brain.StubLLMClient{}, "stub"
	}

	client := primary
	if fb := cfg.LLMFallbackProvider; fb != "" && fb != cfg.LLMProvider {
		secondary, fbModel, err := BuildLLMClient(ctx, fb, cfg, awsCfg)
		if err != nil {
			logger.Warn("fallback llm provider unavailable", "provider", fb, "error", err)
		} else {
			client = brain.NewFallbackLLMClient(primary, secondary, logger.Logger)
			logger.Info("llm fallback enabled", "provider", fb, "model", fbModel)
		}
	}

	logger.Info("persona generator ready", "provider", cfg.LLMProvider, "model", model, "timeout", cfg.LLMTimeout.String())
	return brain.New(client, model, logger, brain.WithTimeout(cfg.LLMTimeout)), nil
}
