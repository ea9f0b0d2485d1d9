package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/catalog/normalizer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadFileJSONList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	writeFile(t, path, `[
  {"id": 7, "title": "Legacy", "type": "Chat", "keywords": "a, b"},
  "not a record",
  {"name": "Second", "published": "no"}
]`)

	result, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, FormatJSON, result.Format)
	require.Equal(t, path, result.Path)
	require.Len(t, result.Records, 2)
	require.Equal(t, []Issue{{Index: 1, Kind: IssueInvalid, Message: "entry must be an object"}}, result.Issues)

	tools := normalizer.NormalizeTools(result.Records)
	require.Equal(t, "Legacy", tools[0].Name)
	require.Equal(t, "Chat", tools[0].Category)
	require.Equal(t, []string{"a", "b"}, tools[0].Tags)
	require.False(t, tools[1].Published)
}

func TestReadFileJSONObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	writeFile(t, path, `{"tools": [{"name": "A"}]}`)

	result, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "A", result.Records[0]["name"])
}

func TestReadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.yml")
	writeFile(t, path, `
tools:
  - id: "3"
    name: Writer
    capabilities:
      - drafts
      - edits
    published: false
  - 42
`)

	result, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, FormatYAML, result.Format)
	require.Len(t, result.Records, 1)
	require.Len(t, result.Issues, 1)

	tool := normalizer.NormalizeTool(result.Records[0])
	require.Equal(t, 3, tool.ID)
	require.Equal(t, []string{"drafts", "edits"}, tool.Features)
	require.False(t, tool.Published)
}

func TestReadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.toml")
	writeFile(t, path, `
[[tools]]
id = 1
title = "Painter"
cost = "Paid"
keywords = ["art", "images"]

[[tools]]
name = "Draft"
published = false
`)

	result, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, FormatTOML, result.Format)
	require.Len(t, result.Records, 2)

	tools := normalizer.NormalizeTools(result.Records)
	require.Equal(t, 1, tools[0].ID)
	require.Equal(t, "Painter", tools[0].Name)
	require.Equal(t, "Paid", tools[0].Pricing)
	require.Equal(t, []string{"art", "images"}, tools[0].Tags)
	require.False(t, tools[1].Published)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "absent.json"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = ReadFile(filepath.Join(dir, "legacy.csv"))
	require.ErrorIs(t, err, ErrUnknownFormat)

	broken := filepath.Join(dir, "broken.json")
	writeFile(t, broken, `[{`)
	_, err = ReadFile(broken)
	require.Error(t, err)

	scalar := filepath.Join(dir, "scalar.yaml")
	writeFile(t, scalar, `just text`)
	_, err = ReadFile(scalar)
	require.Error(t, err)

	wrongKey := filepath.Join(dir, "wrong.json")
	writeFile(t, wrongKey, `{"items": []}`)
	_, err = ReadFile(wrongKey)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat(" YML ")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	_, err = ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteToolsRoundTrip(t *testing.T) {
	tools := []domain.Tool{
		{ID: 1, Name: "A", Category: "Chat", Pricing: "Free", Tags: []string{"x"}, Features: []string{}, Published: true},
		{ID: 2, Name: "B", Tags: []string{}, Features: []string{"f"}},
	}

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTools(&buf, tools, format))

			result, err := ReadRecords(buf.Bytes(), format)
			require.NoError(t, err)
			require.Empty(t, result.Issues)
			require.Equal(t, tools, normalizer.NormalizeTools(result.Records))
		})
	}
}

func TestWriteToolsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTools(&buf, nil, FormatJSON))
	require.Equal(t, "[]\n", buf.String())

	require.ErrorIs(t, WriteTools(&buf, nil, Format("xml")), ErrUnknownFormat)
}
