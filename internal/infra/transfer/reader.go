package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"toolcatalog/internal/domain"
)

// ReadFile reads legacy records from path. The format follows the extension.
func ReadFile(path string) (Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Path: path, Format: format}, ErrNotFound
		}
		return Result{}, fmt.Errorf("read source: %w", err)
	}
	result, err := ReadRecords(data, format)
	if err != nil {
		return Result{}, err
	}
	result.Path = path
	return result, nil
}

// ReadRecords decodes data into raw records. JSON and YAML accept either a
// top-level list or an object holding the list under "tools"; TOML expects
// [[tools]] tables. Non-object entries are reported as issues and skipped.
func ReadRecords(data []byte, format Format) (Result, error) {
	var entries []any
	var err error
	switch format {
	case FormatJSON:
		entries, err = readJSON(data)
	case FormatYAML:
		entries, err = readYAML(data)
	case FormatTOML:
		entries, err = readTOML(data)
	default:
		return Result{}, ErrUnknownFormat
	}
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Format:  format,
		Records: make([]domain.RawRecord, 0, len(entries)),
	}
	for i, entry := range entries {
		record, ok := entry.(map[string]any)
		if !ok {
			result.Issues = append(result.Issues, Issue{
				Index:   i,
				Kind:    IssueInvalid,
				Message: "entry must be an object",
			})
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func readJSON(data []byte) ([]any, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return recordList(payload)
}

func readYAML(data []byte) ([]any, error) {
	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return recordList(payload)
}

func readTOML(data []byte) ([]any, error) {
	var payload map[string]any
	if err := toml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	raw, ok := payload[RecordsKey]
	if !ok {
		return []any{}, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of tables", RecordsKey)
	}
	return entries, nil
}

func recordList(payload any) ([]any, error) {
	switch v := payload.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	case map[string]any:
		raw, ok := v[RecordsKey]
		if !ok {
			return nil, fmt.Errorf("object must hold a %q list", RecordsKey)
		}
		entries, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s must be a list", RecordsKey)
		}
		return entries, nil
	default:
		return nil, errors.New("records must be a list")
	}
}
