package reporter

import "fmt"

// Format represents an output format.
type Format string

// Output formats supported by the reporter.
const (
	FormatText    Format = "text"
	FormatConcise Format = "concise"
	FormatGrouped Format = "grouped"
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatSARIF   Format = "sarif"
	FormatJUnit   Format = "junit"
	FormatGitLab  Format = "gitlab"
	FormatGitHub  Format = "github"
	FormatAzure   Format = "azure"
	FormatPylint  Format = "pylint"
	FormatFull    Format = "full"
	FormatDiff    Format = "diff"
	FormatSummary Format = "summary"
)

// allFormats lists every valid format, in the order presented to users.
//
//nolint:gochecknoglobals // Read-only lookup table.
var allFormats = []Format{
	FormatText, FormatConcise, FormatGrouped, FormatTable, FormatJSON, FormatJSONL,
	FormatSARIF, FormatJUnit, FormatGitLab, FormatGitHub, FormatAzure, FormatPylint,
	FormatFull, FormatDiff, FormatSummary,
}

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(formatStr string) (Format, error) {
	if formatStr == "" {
		return FormatText, nil
	}
	for _, f := range allFormats {
		if string(f) == formatStr {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", formatStr, joinFormats())
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	for _, valid := range allFormats {
		if f == valid {
			return true
		}
	}
	return false
}

func joinFormats() string {
	names := make([]string, len(allFormats))
	for i, f := range allFormats {
		names[i] = string(f)
	}
	result := names[0]
	for _, n := range names[1:] {
		result += ", " + n
	}
	return result
}
