package io

import (
	"encoding/json"
	"fmt"
	stdio "io"
	"os"

	"github.com/williampepple1/vibe-scout/internal/config"
)

// ResultWriter writes reports to a file or standard output
type ResultWriter struct {
	Config *config.IOConfig
	// Stdout receives output when no output file is configured
	Stdout stdio.Writer
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.IOConfig) *ResultWriter {
	return &ResultWriter{
		Config: config,
		Stdout: os.Stdout,
	}
}

// Write serializes v in the configured format. v is typically one
// models.Report or a slice of them.
func (w *ResultWriter) Write(v any) error {
	switch w.Config.OutputFormat {
	case "", "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if w.Config.OutputFile == "" {
			_, err = w.Stdout.Write(data)
			return err
		}
		return os.WriteFile(w.Config.OutputFile, data, 0644)

	default:
		return fmt.Errorf("unsupported output format: %s", w.Config.OutputFormat)
	}
}

// Payload returns the value to write for items: the single element when there
// is exactly one and asArray is false, otherwise the whole slice.
func Payload[T any](items []T, asArray bool) any {
	if len(items) == 1 && !asArray {
		return items[0]
	}
	return items
}
