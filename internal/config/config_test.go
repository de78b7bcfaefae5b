package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "API_KEYS", "LLM_PROVIDER", "SESSION_STORE", "LLM_TIMEOUT", "CALLBACK_TIMEOUT", "CORS_ALLOWED_ORIGINS", "VOICE_NORMALIZATION", "DEFAULT_PERSONA", "CALLBACK_QUEUE_URL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if len(cfg.APIKeys) != 0 {
		t.Fatalf("expected no api keys by default, got %v", cfg.APIKeys)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %s", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 12*time.Second {
		t.Fatalf("expected 12s llm timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.CallbackTimeout != 5*time.Second {
		t.Fatalf("expected 5s callback timeout, got %s", cfg.CallbackTimeout)
	}
	if cfg.DefaultPersona != "grandma" {
		t.Fatalf("expected grandma default persona, got %s", cfg.DefaultPersona)
	}
	if !cfg.VoiceNormalization {
		t.Fatalf("expected voice normalization enabled by default")
	}
	if cfg.RedisEnabled() {
		t.Fatalf("expected memory session store by default")
	}
	if cfg.UsesSQS() {
		t.Fatalf("expected in-process callback queue by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("API_KEYS", " key-one, ,key-two ")
	t.Setenv("LLM_PROVIDER", " Bedrock ")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CALLBACK_QUEUE_URL", "https://sqs.example/queue")
	t.Setenv("CALLBACK_WORKERS", "4")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("VOICE_NORMALIZATION", "false")
	t.Setenv("DEFAULT_PERSONA", "Colonel")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "key-one" || cfg.APIKeys[1] != "key-two" {
		t.Fatalf("unexpected api keys %v", cfg.APIKeys)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Fatalf("expected bedrock provider, got %s", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.LLMTimeout)
	}
	if !cfg.RedisEnabled() {
		t.Fatalf("expected redis session store")
	}
	if !cfg.UsesSQS() {
		t.Fatalf("expected sqs callback queue")
	}
	if cfg.CallbackWorkers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.CallbackWorkers)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.VoiceNormalization {
		t.Fatalf("expected voice normalization disabled")
	}
	if cfg.DefaultPersona != "colonel" {
		t.Fatalf("expected lowercased persona, got %s", cfg.DefaultPersona)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CALLBACK_WORKERS", "many")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.CallbackWorkers != 2 {
		t.Fatalf("expected default workers, got %d", cfg.CallbackWorkers)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default ttl, got %s", cfg.SessionTTL)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected tls disabled")
	}
}
