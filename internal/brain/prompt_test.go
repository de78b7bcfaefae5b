package brain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/vigilante/internal/intel"
)

func TestPhase(t *testing.T) {
	assert.Equal(t, PhaseEngagement, Phase(intel.NewRecord()))
	assert.Equal(t, PhaseEngagement, Phase(nil))

	acc := intel.NewRecord()
	acc.Add(intel.ScammerName, "Vinod")
	assert.Equal(t, PhaseExtraction, Phase(acc))
}

func TestBuildSystemPrompt_ListsMissingTargets(t *testing.T) {
	acc := intel.NewRecord()
	acc.Add(intel.UPIIDs, "a@ybl")

	prompt := BuildSystemPrompt(testPersona(), acc)

	assert.True(t, strings.HasPrefix(prompt, "You are a grandmother."))
	assert.Contains(t, prompt, "STILL MISSING: phoneNumbers")
	assert.Contains(t, prompt, `"upiIds":["a@ybl"]`)
	assert.Contains(t, prompt, `"extractedIntel"`)
}

func TestBuildUserPrompt_WindowAndLabels(t *testing.T) {
	var history []Line
	for i := 0; i < 14; i++ {
		history = append(history, Line{FromCounterpart: i%2 == 0, Text: fmt.Sprintf("line-%02d", i)})
	}

	prompt := BuildUserPrompt(history, "pay now")

	assert.NotContains(t, prompt, "line-03")
	assert.Contains(t, prompt, "line-04")
	assert.Contains(t, prompt, "SCAMMER: line-04")
	assert.Contains(t, prompt, "YOU: line-13")
	assert.True(t, strings.HasSuffix(prompt, `LATEST SCAMMER MESSAGE: "pay now"`))
}

func TestBuildUserPrompt_NoHistory(t *testing.T) {
	prompt := BuildUserPrompt(nil, "hello")
	assert.NotContains(t, prompt, "CONVERSATION SO FAR")
}
