package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/objsearch/internal/object"
	"github.com/jacoelho/objsearch/internal/search"
)

func sampleResult() *search.Result {
	return &search.Result{
		ID:  "3f0c",
		Key: "Type",
		Paths: []search.Path{
			{search.DictStep("Root"), search.DictStep("Type")},
			{search.DictStep("Root"), search.DictStep("Kids"), search.ArrayStep(1), search.DictStep("Type")},
		},
		Failures: []search.Failure{{
			Path: search.Path{search.DictStep("Info")},
			Ref:  object.Reference{ID: 9},
			Err:  errors.New("object not found"),
		}},
		Followed: 3,
		Elapsed:  1500 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: " table ", want: FormatTable},
		{input: "yaml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(tt.input)), got.String())
		})
	}
}

func TestWriteResultText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, FormatText, sampleResult(), Options{}))

	assert.Equal(t, "->Root->Type\n->Root->Kids[1]->Type\n", out.String())
}

func TestWriteResultTextColor(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, FormatText, sampleResult(), Options{Color: true}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "->Root->\x1b["), lines[0])
	assert.Contains(t, lines[0], "Type\x1b[0m")
}

func TestWriteResultJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, FormatJSON, sampleResult(), Options{}))

	var payload struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Paths []struct {
			Path     string      `json:"path"`
			JSONPath string      `json:"jsonpath"`
			Steps    search.Path `json:"steps"`
		} `json:"paths"`
		Failures []map[string]string `json:"failures"`
		Followed int                 `json:"followed"`
		Elapsed  int64               `json:"elapsed_ms"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	assert.Equal(t, "3f0c", payload.ID)
	assert.Equal(t, "Type", payload.Key)
	require.Len(t, payload.Paths, 2)
	assert.Equal(t, "->Root->Kids[1]->Type", payload.Paths[1].Path)
	assert.Equal(t, "$['Root']['Kids'][1]['Type']", payload.Paths[1].JSONPath)
	assert.Equal(t, sampleResult().Paths[1], payload.Paths[1].Steps)
	assert.Equal(t, []map[string]string{{"path": "->Info", "ref": "9 0 R", "error": "object not found"}}, payload.Failures)
	assert.Equal(t, 3, payload.Followed)
	assert.Equal(t, int64(1500), payload.Elapsed)
}

func TestWriteResultJSONEmpty(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, FormatJSON, &search.Result{Key: "X"}, Options{}))

	assert.Contains(t, out.String(), `"paths": []`)
	assert.Contains(t, out.String(), `"failures": []`)
	assert.NotContains(t, out.String(), "truncated")
}

func TestWriteResultTable(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, FormatTable, sampleResult(), Options{}))

	text := out.String()
	for _, want := range []string{"#", "Path", "JSONPath", "->Root->Type", "$['Root']['Type']", "->Root->Kids[1]->Type"} {
		assert.Contains(t, text, want)
	}
}
