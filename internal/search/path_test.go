package search

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "empty", path: nil, want: ""},
		{name: "single key", path: Path{DictStep("Root")}, want: "->Root"},
		{
			name: "keys and indexes",
			path: Path{DictStep("Root"), DictStep("Pages"), DictStep("Kids"), ArrayStep(0), DictStep("Type")},
			want: "->Root->Pages->Kids[0]->Type",
		},
		{name: "leading index", path: Path{ArrayStep(3), ArrayStep(12)}, want: "[3][12]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestPathJSONPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "root", path: nil, want: "$"},
		{name: "plain", path: Path{DictStep("Root"), ArrayStep(1)}, want: "$['Root'][1]"},
		{name: "quote and backslash", path: Path{DictStep(`it's\`)}, want: `$['it\'s\\']`},
		{name: "control characters", path: Path{DictStep("a\tb\x01")}, want: `$['a\tb\u0001']`},
		{name: "unicode kept", path: Path{DictStep("clé")}, want: "$['clé']"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.path.JSONPath())
		})
	}
}

func TestPathKeyAndEqual(t *testing.T) {
	t.Parallel()

	p := Path{DictStep("a"), ArrayStep(0), DictStep("b")}
	assert.Equal(t, "b", p.Key())
	assert.Equal(t, "", Path{DictStep("a"), ArrayStep(0)}.Key())
	assert.Equal(t, "", Path(nil).Key())

	assert.True(t, p.Equal(Path{DictStep("a"), ArrayStep(0), DictStep("b")}))
	assert.False(t, p.Equal(Path{DictStep("a"), ArrayStep(1), DictStep("b")}))
	assert.False(t, p.Equal(p[:2]))
}

func TestStepJSON(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(Path{DictStep("Kids"), ArrayStep(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"Kids"},{"index":0}]`, string(payload))

	var decoded Path
	require.NoError(t, json.Unmarshal([]byte(`[{"key":""},{"index":7}]`), &decoded))
	assert.Equal(t, Path{DictStep(""), ArrayStep(7)}, decoded)

	var step Step
	assert.ErrorContains(t, json.Unmarshal([]byte(`{"key":"a","index":1}`), &step), "exactly one of key or index")
	assert.ErrorContains(t, json.Unmarshal([]byte(`{}`), &step), "exactly one of key or index")
}
