package persist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding used by Export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks an export format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Export writes v to w. YAML output goes through the JSON encoding first so
// both formats share the json field names.
func Export(w io.Writer, format Format, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	switch format {
	case FormatJSON:
		bytes = append(bytes, '\n')
	case FormatYAML:
		var generic any
		if err := json.Unmarshal(bytes, &generic); err != nil {
			return fmt.Errorf("convert export: %w", err)
		}
		bytes, err = yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	if _, err := w.Write(bytes); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ExportFile writes v to path using the format implied by its extension.
func ExportFile(path string, v any) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	file, err := os.Create(resolved)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := Export(file, format, v); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
