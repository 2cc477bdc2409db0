package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ddlsync/internal/config"
	"ddlsync/internal/core"
	"ddlsync/internal/designer"
	"ddlsync/internal/dialect"
	"ddlsync/internal/logutil"
	"ddlsync/internal/output"
)

// app holds the flags shared by every command and what is resolved from
// them before a command runs.
type app struct {
	configPath string
	dialect    string
	format     string
	logLevel   string

	cfg     config.Config
	service *designer.Service
	log     *slog.Logger
}

// invalidSQLError makes the process exit with status 1 after the problems
// were already printed.
type invalidSQLError struct {
	count int
}

func (e *invalidSQLError) Error() string {
	return fmt.Sprintf("%d syntax error(s)", e.count)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "ddlsync",
		Short:         "Parse, generate and reconcile SQL DDL across PostgreSQL, MySQL and SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file (default ./ddlsync.toml)")
	rootCmd.PersistentFlags().StringVarP(&a.dialect, "dialect", "d", "", "SQL dialect: postgresql, mysql or sqlite")
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "f", "", "Output format: human, json or yaml")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		parseCmd(a),
		validateCmd(a),
		generateCmd(a),
		convertCmd(a),
		reconcileCmd(a),
		typesCmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dialect != "" {
		cfg.Dialect = a.dialect
	}
	if a.format != "" {
		cfg.Output.Format = a.format
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logutil.New(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(a.log)

	a.service, err = designer.New(designer.Options{
		IDs:       cfg.IDs(),
		CacheSize: cfg.CacheSize,
		Generate:  dialect.Options{Header: cfg.Generate.Header},
	})
	if err != nil {
		return err
	}
	a.log.Debug("configuration loaded", "dialect", cfg.Dialect, "id_format", cfg.IDFormat, "format", cfg.Output.Format)
	return nil
}

func (a *app) dialectValue() core.Dialect {
	return a.cfg.DialectValue()
}

func (a *app) formatter() (output.Formatter, error) {
	return output.NewFormatter(a.cfg.Output.Format)
}

// printInfo writes status lines to stdout, or to stderr when stdout carries
// a machine-readable document.
func (a *app) printInfo(cmd *cobra.Command, msg string) {
	if output.IsMachineReadable(a.cfg.Output.Format) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), msg)
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
}

// emit writes text to path, or to stdout when path is empty.
func (a *app) emit(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.log.Debug("output written", "path", path, "bytes", len(text))
	a.printInfo(cmd, fmt.Sprintf("Output saved to %s", path))
	return nil
}

// readSQL reads a script from path, or from stdin when path is "-".
func readSQL(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func parseDialectFlag(name string, fallback core.Dialect) (core.Dialect, error) {
	if name == "" {
		return fallback, nil
	}
	return core.ParseDialect(name)
}
