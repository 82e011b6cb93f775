package repository

import (
	"errors"
	"path/filepath"
	"strings"
)

// DefaultTemplate is the template path used when none is given.
const DefaultTemplate = "template.html"

// Paths names the three files of a conversion job.
type Paths struct {
	Input    string `json:"input" validate:"required"`
	Template string `json:"template" validate:"required"`
	Output   string `json:"output" validate:"required"`
}

// DefaultOutputPath derives the output path from input by cutting at the
// FIRST dot and appending ".html": "notes.md" -> "notes.html", but
// "a.b.md" -> "a.html" and "./notes.md" -> ".html".
func DefaultOutputPath(input string) string {
	stem, _, _ := strings.Cut(input, ".")
	return stem + ".html"
}

// TruncatesName reports whether DefaultOutputPath drops more than the final
// extension of input.
func TruncatesName(input string) bool {
	stem, _, _ := strings.Cut(input, ".")
	return stem != strings.TrimSuffix(input, filepath.Ext(input))
}

// ResolvePaths fills in the template and output defaults.
func ResolvePaths(input, template, output string) (Paths, error) {
	if input == "" {
		return Paths{}, errors.New("input path is required")
	}
	if template == "" {
		template = DefaultTemplate
	}
	if output == "" {
		output = DefaultOutputPath(input)
	}
	return Paths{Input: input, Template: template, Output: output}, nil
}
