package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"toolcatalog/internal/app"
	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/transfer"
)

type rootOptions struct {
	configPath string
}

func main() {
	os.Exit(run())
}

func run() int {
	logging, err := app.NewLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logging.Logger.Sync() }()

	if err := newRootCmd(logging).Execute(); err != nil {
		logging.Logger.Error("command failed", zap.Error(err))
		return 1
	}
	return 0
}

func newRootCmd(logging app.Logging) *cobra.Command {
	opts := rootOptions{
		configPath: domain.DefaultConfigPath,
	}

	root := &cobra.Command{
		Use:           "toolcatalogd",
		Short:         "AI tool catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to config file")

	root.AddCommand(
		newServeCmd(logging, &opts),
		newValidateCmd(logging, &opts),
		newImportCmd(logging, &opts),
		newExportCmd(logging, &opts),
		newSchemaCmd(),
	)

	return root
}

func newServeCmd(logging app.Logging, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application := app.New(logging)
			return application.Serve(ctx, app.ServeConfig{
				ConfigPath: opts.configPath,
			})
		},
	}
}

func newValidateCmd(logging app.Logging, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and report the catalog size",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.New(logging)
			report, err := application.ValidateConfig(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "config ok: backend=%s path=%s tools=%d published=%d\n",
				report.Config.Store.Backend, report.Config.Store.Path, report.Records, report.Published)
			return err
		},
	}
}

func newImportCmd(logging app.Logging, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append legacy records from a JSON, YAML or TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.New(logging)
			created, err := application.Import(cmd.Context(), app.ImportConfig{
				ConfigPath: opts.configPath,
				SourcePath: args[0],
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d tools\n", len(created))
			return err
		},
	}
}

func newExportCmd(logging app.Logging, opts *rootOptions) *cobra.Command {
	format := formatValue(transfer.FormatJSON)
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every tool to stdout or a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.New(logging)
			return application.Export(cmd.Context(), app.ExportConfig{
				ConfigPath: opts.configPath,
				Format:     transfer.Format(format),
				Output:     cmd.OutOrStdout(),
				OutputPath: output,
			})
		},
	}

	cmd.Flags().Var(&format, "format", "output format: json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

// formatValue validates --format while flags are parsed.
type formatValue transfer.Format

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(raw string) error {
	parsed, err := transfer.ParseFormat(raw)
	if err != nil {
		return err
	}
	*f = formatValue(parsed)
	return nil
}

func (f *formatValue) Type() string { return "format" }

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a catalog record",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := jsonschema.For[domain.Tool](nil)
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(schema)
		},
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
