package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"toolcatalog/internal/app"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(app.NewNopLogging())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCmd(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"id", "name", "description", "category", "pricing", "tags", "features", "website", "published"} {
		require.Contains(t, properties, field)
	}
}

func TestImportValidateExportCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "toolcatalog.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf("store:\n  path: %s\n", filepath.Join(dir, "tools.json"))), 0o644))
	source := filepath.Join(dir, "legacy.yaml")
	require.NoError(t, os.WriteFile(source, []byte("- title: A\n- title: B\n  published: no\n"), 0o644))

	out, err := runCmd(t, "--config", configPath, "import", source)
	require.NoError(t, err)
	require.Equal(t, "imported 2 tools\n", out)

	out, err = runCmd(t, "--config", configPath, "validate")
	require.NoError(t, err)
	require.Contains(t, out, "tools=2 published=1")

	exportPath := filepath.Join(dir, "export.yaml")
	_, err = runCmd(t, "--config", configPath, "export", "--format", "yaml", "-o", exportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "name: A")

	_, err = runCmd(t, "--config", configPath, "export", "--format", "xml")
	require.Error(t, err)

	_, err = runCmd(t, "--config", configPath, "import")
	require.Error(t, err)
}

func TestExportCommandLeavesNoFileOnConfigError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "toolcatalog.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: shouting\n"), 0o644))
	exportPath := filepath.Join(dir, "export.json")

	_, err := runCmd(t, "--config", configPath, "export", "-o", exportPath)
	require.Error(t, err)
	require.NoFileExists(t, exportPath)
}
