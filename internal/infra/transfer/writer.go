package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/catalog/normalizer"
)

// WriteTools encodes tools to w. JSON and YAML write a top-level list; TOML
// writes [[tools]] tables so the output can be imported again.
func WriteTools(w io.Writer, tools []domain.Tool, format Format) error {
	if tools == nil {
		tools = []domain.Tool{}
	}
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(tools); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(tools); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return encoder.Close()
	case FormatTOML:
		tables := make([]map[string]any, 0, len(tools))
		for _, tool := range tools {
			tables = append(tables, normalizer.ToRaw(tool))
		}
		if err := toml.NewEncoder(w).Encode(map[string]any{RecordsKey: tables}); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		return ErrUnknownFormat
	}
}
