// Package output renders search results and object trees for the terminal.
package output

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFormat = errors.New("output: invalid format")

// Format selects how search results are written.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatTable
)

var formatNames = map[Format]string{
	FormatText:  "text",
	FormatJSON:  "json",
	FormatTable: "table",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts text, json or table, ignoring case.
func ParseFormat(input string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for format, name := range formatNames {
		if name == normalized {
			return format, nil
		}
	}
	return FormatText, fmt.Errorf("%w: %q (want text, json or table)", ErrInvalidFormat, input)
}
