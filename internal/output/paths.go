package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jacoelho/objsearch/internal/search"
)

// Options tunes result rendering.
type Options struct {
	// Color highlights the matched key in text output.
	Color bool
}

// WriteResult writes the paths of result in the given format.
func WriteResult(w io.Writer, format Format, result *search.Result, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatTable:
		return writeTable(w, result)
	case FormatText:
		fallthrough
	default:
		return writeText(w, result, opts)
	}
}

// writeText prints one path per line with the final key highlighted.
func writeText(w io.Writer, result *search.Result, opts Options) error {
	key := color.New(color.FgGreen, color.Bold)
	if opts.Color {
		key.EnableColor()
	} else {
		key.DisableColor()
	}

	for _, path := range result.Paths {
		if len(path) == 0 {
			continue
		}
		prefix := path[:len(path)-1].String()
		if _, err := fmt.Fprintf(w, "%s->%s\n", prefix, key.Sprint(path.Key())); err != nil {
			return err
		}
	}
	return nil
}

type jsonPath struct {
	Path     string      `json:"path"`
	JSONPath string      `json:"jsonpath"`
	Steps    search.Path `json:"steps"`
}

type jsonFailure struct {
	Path  string `json:"path"`
	Ref   string `json:"ref"`
	Error string `json:"error"`
}

type jsonResult struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Paths     []jsonPath    `json:"paths"`
	Failures  []jsonFailure `json:"failures"`
	Followed  int           `json:"followed"`
	Truncated bool          `json:"truncated,omitempty"`
	Canceled  bool          `json:"canceled,omitempty"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

func toJSONResult(result *search.Result) jsonResult {
	paths := make([]jsonPath, 0, len(result.Paths))
	for _, path := range result.Paths {
		paths = append(paths, jsonPath{
			Path:     path.String(),
			JSONPath: path.JSONPath(),
			Steps:    path,
		})
	}

	failures := make([]jsonFailure, 0, len(result.Failures))
	for _, failure := range result.Failures {
		item := jsonFailure{
			Path: failure.Path.String(),
			Ref:  failure.Ref.String(),
		}
		if failure.Err != nil {
			item.Error = failure.Err.Error()
		}
		failures = append(failures, item)
	}

	return jsonResult{
		ID:        result.ID,
		Key:       result.Key,
		Paths:     paths,
		Failures:  failures,
		Followed:  result.Followed,
		Truncated: result.Truncated,
		Canceled:  result.Canceled,
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
}

func writeJSON(w io.Writer, result *search.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toJSONResult(result))
}

func writeTable(w io.Writer, result *search.Result) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})))
	table.Header("#", "Path", "JSONPath")

	data := make([][]any, len(result.Paths))
	for i, path := range result.Paths {
		data[i] = []any{strconv.Itoa(i + 1), path.String(), path.JSONPath()}
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error formatting paths: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering paths: %w", err)
	}
	return nil
}
