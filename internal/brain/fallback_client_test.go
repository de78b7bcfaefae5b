package brain

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackLLMClient(t *testing.T) {
	ok := &fakeLLM{text: "from fallback"}
	broken := &fakeLLM{err: errors.New("throttled")}

	t.Run("primary succeeds", func(t *testing.T) {
		c := NewFallbackLLMClient(&fakeLLM{text: "from primary"}, ok, nil)
		resp, err := c.Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "from primary", resp.Text)
	})

	t.Run("fallback used", func(t *testing.T) {
		c := NewFallbackLLMClient(broken, ok, nil)
		resp, err := c.Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "from fallback", resp.Text)
	})

	t.Run("no fallback", func(t *testing.T) {
		c := NewFallbackLLMClient(broken, nil, nil)
		_, err := c.Complete(context.Background(), LLMRequest{})
		assert.EqualError(t, err, "throttled")
	})

	t.Run("both fail", func(t *testing.T) {
		c := NewFallbackLLMClient(broken, &fakeLLM{err: errors.New("quota")}, nil)
		_, err := c.Complete(context.Background(), LLMRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
		assert.Contains(t, err.Error(), "quota")
	})

	t.Run("cancelled context skips fallback", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		spare := &fakeLLM{text: "unused"}
		c := NewFallbackLLMClient(broken, spare, nil)
		_, err := c.Complete(ctx, LLMRequest{})
		assert.Error(t, err)
		assert.Zero(t, spare.calls)
	})
}

func TestPinModelOverridesRequest(t *testing.T) {
	primary := &fakeLLM{err: errors.New("down")}
	secondary := &fakeLLM{text: "ok"}
	c := NewFallbackLLMClient(PinModel(primary, "gemini-2.0-flash"), PinModel(secondary, "llama-3.3-70b-versatile"), nil)

	_, err := c.Complete(context.Background(), LLMRequest{Model: "gemini-2.0-flash"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", primary.lastReq.Model)
	assert.Equal(t, "llama-3.3-70b-versatile", secondary.lastReq.Model)

	assert.Nil(t, PinModel(nil, "m"))
	assert.Same(t, secondary, PinModel(secondary, ""))
}

func TestFallbackLLMClientRetriesUnusableJSON(t *testing.T) {
	valid := `{"analysis":"kyc scam","strategy":"stall","reply":"which branch beta?"}`
	switches := func() float64 {
		var m dto.Metric
		require.NoError(t, providerSwitches.WithLabelValues("malformed").Write(&m))
		return m.GetCounter().GetValue()
	}

	t.Run("secondary answers", func(t *testing.T) {
		before := switches()
		secondary := &fakeLLM{text: valid}
		c := NewFallbackLLMClient(&fakeLLM{text: "I cannot help with that"}, secondary, nil)

		resp, err := c.Complete(context.Background(), LLMRequest{JSON: true})
		require.NoError(t, err)
		assert.Equal(t, valid, resp.Text)
		assert.Equal(t, 1, secondary.calls)
		assert.Equal(t, before+1, switches())
	})

	t.Run("secondary also unusable keeps primary answer", func(t *testing.T) {
		c := NewFallbackLLMClient(&fakeLLM{text: "no json here"}, &fakeLLM{text: `{"reply":""}`}, nil)
		resp, err := c.Complete(context.Background(), LLMRequest{JSON: true})
		require.NoError(t, err)
		assert.Equal(t, "no json here", resp.Text)
	})

	t.Run("plain text requests are not inspected", func(t *testing.T) {
		secondary := &fakeLLM{text: valid}
		c := NewFallbackLLMClient(&fakeLLM{text: "plain answer"}, secondary, nil)
		resp, err := c.Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "plain answer", resp.Text)
		assert.Zero(t, secondary.calls)
	})
}
