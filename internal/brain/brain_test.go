package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/pkg/logging"
)

type fakeLLM struct {
	text    string
	err     error
	delay   time.Duration
	calls   int
	lastReq LLMRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	f.calls++
	f.lastReq = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return LLMResponse{}, ctx.Err()
		}
	}
	if f.err != nil {
		return LLMResponse{}, f.err
	}
	return LLMResponse{Text: f.text, Usage: TokenUsage{InputTokens: 10, OutputTokens: 5}}, nil
}

func testPersona() persona.Persona {
	return persona.Persona{
		ID:           "grandma",
		Instructions: "You are a grandmother.",
		Targets:      []intel.Category{intel.UPIIDs, intel.PhoneNumbers},
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantReply string
		wantErr   error
	}{
		{"plain", `{"analysis":"a","strategy":"s","reply":"hello beta","extractedIntel":{"upiIds":["x@ybl"]}}`, "hello beta", nil},
		{"fenced", "```json\n{\"reply\":\"wait wait\"}\n```", "wait wait", nil},
		{"prose around", "Sure! here you go: {\"reply\":\"ok ji\"} hope that helps", "ok ji", nil},
		{"missing reply", `{"analysis":"a"}`, "", ErrEmptyReply},
		{"garbage", "I cannot help with that", "", ErrMalformedReply},
		{"broken json", `{"reply": "x"`, "", ErrMalformedReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.raw)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrMalformedReply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReply, got.Reply)
			assert.NotNil(t, got.Intel)
		})
	}
}

func TestGenerate_DecodesCandidate(t *testing.T) {
	llm := &fakeLLM{text: `{"analysis":"wants money","strategy":"stalling","reply":"which upi beta?","extractedIntel":{"upi_ids":["fraud@ybl"],"bogus":["x"]}}`}
	b := New(llm, "test-model", logging.Discard())

	acc := intel.NewRecord()
	acc.Add(intel.PhoneNumbers, "9876543210")
	reply, err := b.Generate(context.Background(), Request{
		Persona:     testPersona(),
		History:     []Line{{FromCounterpart: true, Text: "pay now"}},
		Message:     "send to fraud@ybl",
		Accumulated: acc,
	})
	require.NoError(t, err)

	assert.Equal(t, "which upi beta?", reply.Reply)
	assert.Equal(t, "stalling", reply.Strategy)
	assert.Equal(t, []string{"fraud@ybl"}, reply.Intel[intel.UPIIDs])
	assert.Len(t, reply.Intel, 1)

	require.Len(t, llm.lastReq.System, 1)
	assert.Contains(t, llm.lastReq.System[0], PhaseExtraction)
	assert.Contains(t, llm.lastReq.System[0], "9876543210")
	assert.True(t, llm.lastReq.JSON)
	assert.Equal(t, "test-model", llm.lastReq.Model)
}

func TestGenerate_TransportErrorIsNotMalformed(t *testing.T) {
	b := New(&fakeLLM{err: errors.New("connection refused")}, "m", logging.Discard())

	_, err := b.Generate(context.Background(), Request{Persona: testPersona(), Message: "hi"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedReply))

	fb := Fallback(err)
	assert.Equal(t, TransportFallbackReply, fb.Reply)
	assert.Equal(t, TransportFallbackStrategy, fb.Strategy)
	assert.Empty(t, fb.Intel)
}

func TestGenerate_TimesOut(t *testing.T) {
	b := New(&fakeLLM{delay: time.Second, text: `{"reply":"late"}`}, "m", logging.Discard(), WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := b.Generate(context.Background(), Request{Persona: testPersona(), Message: "hi"})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGenerate_MalformedFallsBackToRepeat(t *testing.T) {
	b := New(&fakeLLM{text: "not json"}, "m", logging.Discard())

	_, err := b.Generate(context.Background(), Request{Persona: testPersona(), Message: "hi"})
	require.ErrorIs(t, err, ErrMalformedReply)

	fb := Fallback(err)
	assert.Equal(t, ParseFallbackReply, fb.Reply)
	assert.Equal(t, ParseFallbackStrategy, fb.Strategy)
}

func TestNew_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() { New(nil, "m", nil) })
}
