package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Key
		ok       bool
	}{
		{name: "home", raw: "home", expected: Home, ok: true},
		{name: "hyphenated slug", raw: "ciclo-vida", expected: CicloVida, ok: true},
		{name: "v model", raw: "v-model", expected: VModel, ok: true},
		{name: "hash prefix", raw: "#cascada", expected: Home, ok: false},
		{name: "upper case", raw: "CASCADA", expected: Home, ok: false},
		{name: "surrounding spaces", raw: " rad ", expected: Home, ok: false},
		{name: "unknown", raw: "foo", expected: Home, ok: false},
		{name: "empty", raw: "", expected: Home, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := Parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, k)
		})
	}
}

func TestKeysAreComplete(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range All() {
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.String(), "key %d has no slug", k)
		assert.NotEmpty(t, k.Label(), "key %s has no label", k)
		assert.NotEmpty(t, k.Icon(), "key %s has no icon", k)
		assert.False(t, seen[k.String()], "duplicate slug %s", k)
		seen[k.String()] = true
	}
	assert.Len(t, seen, 9)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "Modelo en Cascada", LabelFor("cascada"))
	assert.Equal(t, "Información del Docente", LabelFor("docente"))
	assert.Equal(t, "foo", LabelFor("foo"))
	assert.Equal(t, "CASCADA", LabelFor("CASCADA"))
}

func TestInvalidKey(t *testing.T) {
	k := Key(42)
	assert.False(t, k.Valid())
	assert.Empty(t, k.String())
	assert.Empty(t, k.Label())
}

func TestAllReturnsCopy(t *testing.T) {
	keys := All()
	keys[0] = Docente
	assert.Equal(t, Home, All()[0])
}
