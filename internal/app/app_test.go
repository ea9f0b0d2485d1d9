package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/transfer"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "toolcatalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fileBackendConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeConfig(t, dir, fmt.Sprintf("store:\n  path: %s\n", filepath.Join(dir, "tools.json")))
}

func TestApp_ImportExportValidate(t *testing.T) {
	dir := t.TempDir()
	configPath := fileBackendConfig(t, dir)
	source := filepath.Join(dir, "legacy.toml")
	require.NoError(t, os.WriteFile(source, []byte(`
[[tools]]
title = "Painter"
type = "Image"
cost = "Paid"

[[tools]]
name = "Draft"
published = false
`), 0o644))

	application := New(NewNopLogging())
	ctx := context.Background()

	created, err := application.Import(ctx, ImportConfig{ConfigPath: configPath, SourcePath: source})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, 1, created[0].ID)
	require.Equal(t, 2, created[1].ID)

	report, err := application.ValidateConfig(ctx, ValidateConfig{ConfigPath: configPath})
	require.NoError(t, err)
	require.Equal(t, 2, report.Records)
	require.Equal(t, 1, report.Published)
	require.Equal(t, domain.StoreBackendFile, report.Config.Store.Backend)

	var out bytes.Buffer
	require.NoError(t, application.Export(ctx, ExportConfig{ConfigPath: configPath, Format: transfer.FormatJSON, Output: &out}))
	var exported []domain.Tool
	require.NoError(t, json.Unmarshal(out.Bytes(), &exported))
	require.Equal(t, created, exported)
}

func TestApp_ImportIntoBoltBackend(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, fmt.Sprintf("store:\n  backend: bolt\n  path: %s\n", filepath.Join(dir, "tools.db")))
	source := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(source, []byte(`[{"name": "A"}, {"name": "B"}]`), 0o644))

	application := New(NewNopLogging())
	_, err := application.Import(context.Background(), ImportConfig{ConfigPath: configPath, SourcePath: source})
	require.NoError(t, err)

	report, err := application.ValidateConfig(context.Background(), ValidateConfig{ConfigPath: configPath})
	require.NoError(t, err)
	require.Equal(t, 2, report.Records)
}

func TestApp_ImportErrors(t *testing.T) {
	dir := t.TempDir()
	configPath := fileBackendConfig(t, dir)
	application := New(NewNopLogging())

	_, err := application.Import(context.Background(), ImportConfig{ConfigPath: configPath, SourcePath: filepath.Join(dir, "absent.json")})
	require.ErrorIs(t, err, transfer.ErrNotFound)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = application.Import(context.Background(), ImportConfig{ConfigPath: configPath, SourcePath: empty})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeInvalidArgument, code)
}

func TestApp_ValidateRejectsBadConfig(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "store:\n  backend: sqlite\n")
	_, err := New(NewNopLogging()).ValidateConfig(context.Background(), ValidateConfig{ConfigPath: configPath})
	require.Error(t, err)
}

func TestLogging_ApplyLevel(t *testing.T) {
	logging := Logging{Logger: zap.NewNop(), Level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}

	logging.ApplyLevel("debug")
	require.Equal(t, zapcore.DebugLevel, logging.Level.Level())

	logging.ApplyLevel("nonsense")
	require.Equal(t, zapcore.DebugLevel, logging.Level.Level())
}

func TestApp_ExportCreatesOutputOnlyAfterConfigLoads(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "export.json")
	application := New(NewNopLogging())

	badConfig := writeConfig(t, dir, "store:\n  backend: sqlite\n")
	err := application.Export(context.Background(), ExportConfig{ConfigPath: badConfig, Format: transfer.FormatJSON, OutputPath: outputPath})
	require.Error(t, err)
	require.NoFileExists(t, outputPath)

	goodConfig := fileBackendConfig(t, dir)
	require.NoError(t, application.Export(context.Background(), ExportConfig{ConfigPath: goodConfig, Format: transfer.FormatJSON, OutputPath: outputPath}))
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(data))
}
