package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vigilante/internal/intel"
)

func TestBuiltinRegistry(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)

	assert.Equal(t, []string{"colonel", "grandma", "priya", "ramesh", "student", "uncle"}, reg.IDs())
	assert.Equal(t, "grandma", reg.Default().ID)
	for _, id := range reg.IDs() {
		p := reg.Get(id)
		assert.NotEmpty(t, p.Instructions, id)
		assert.NotEmpty(t, p.Targets, id)
	}
}

func TestRegistry_GetIsCaseInsensitiveWithFallback(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"Colonel", "colonel"},
		{"  UNCLE ", "uncle"},
		{"", "grandma"},
		{"pirate", "grandma"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.Get(tt.in).ID)
		})
	}

	_, ok := reg.Lookup("pirate")
	assert.False(t, ok)
}

func TestLoad_OverlayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	overlay := `
default: auntie
personas:
  - id: Auntie
    name: Sunita Auntie
    instructions: gossip endlessly
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o600))

	reg, err := Load(path, "")
	require.NoError(t, err)

	p := reg.Default()
	assert.Equal(t, "auntie", p.ID)
	assert.Contains(t, p.Targets, intel.UPIIDs)
	_, ok := reg.Lookup("grandma")
	assert.True(t, ok, "built-ins stay available")
}

func TestLoad_UnknownDefault(t *testing.T) {
	_, err := Load("", "pirate")
	assert.Error(t, err)
}

func TestParse_RejectsEmptyDocument(t *testing.T) {
	_, err := Parse([]byte("personas: []"))
	assert.Error(t, err)
}
