package brain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

var providerSwitches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigilante",
		Subsystem: "brain",
		Name:      "provider_switches_total",
		Help:      "Completions handed to the secondary provider, by cause",
	},
	[]string{"cause"}, // cause: error, malformed
)

// FallbackLLMClient chains a secondary provider behind the primary. The
// secondary is tried when the primary errors, and for JSON requests also
// when the primary's answer holds no usable persona reply.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *slog.Logger
}

// NewFallbackLLMClient returns a chain. A nil fallback leaves the primary alone.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *slog.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackLLMClient{primary: primary, fallback: fallback, logger: logger}
}

// Complete never retries on a cancelled context. When both providers fail
// the secondary's error is returned wrapped with the primary's.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if c.fallback == nil || ctx.Err() != nil {
		return resp, err
	}

	switch {
	case err != nil:
		providerSwitches.WithLabelValues("error").Inc()
		c.logger.Warn("primary LLM failed, trying secondary", "error", err)
		second, secondErr := c.fallback.Complete(ctx, req)
		if secondErr != nil {
			return LLMResponse{}, fmt.Errorf("secondary after primary error (%v): %w", err, secondErr)
		}
		return second, nil

	case req.JSON && !usableReply(resp.Text):
		providerSwitches.WithLabelValues("malformed").Inc()
		c.logger.Warn("primary LLM answer unusable, trying secondary", "stop_reason", resp.StopReason)
		second, secondErr := c.fallback.Complete(ctx, req)
		if secondErr != nil || !usableReply(second.Text) {
			// The caller classifies the primary's answer as malformed.
			return resp, nil
		}
		return second, nil
	}
	return resp, nil
}

func usableReply(text string) bool {
	_, err := ParseReply(text)
	return err == nil
}
