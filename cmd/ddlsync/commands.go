package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ddlsync/internal/core"
	"ddlsync/internal/document"
	"ddlsync/internal/extract"
	"ddlsync/internal/output"
	"ddlsync/internal/parser"
)

func parseCmd(a *app) *cobra.Command {
	var dumpAST bool
	var saveFile string
	cmd := &cobra.Command{
		Use:   "parse <schema.sql>",
		Short: "Extract tables and relations from DDL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args[0])
			if err != nil {
				return err
			}
			d := a.dialectValue()
			if dumpAST {
				return a.dumpAST(cmd, sql, d)
			}

			res, err := a.service.ParseSQL(sql, d)
			if err != nil {
				return err
			}
			a.log.Debug("parsed", "dialect", d, "tables", len(res.Tables), "relations", len(res.Relations))
			if err := a.printParse(cmd, res); err != nil {
				return err
			}
			if !res.Success {
				return &invalidSQLError{count: len(res.Errors)}
			}
			if saveFile == "" {
				return nil
			}
			if err := document.Save(saveFile, document.New(d, sql, res.Schema())); err != nil {
				return err
			}
			a.printInfo(cmd, fmt.Sprintf("Schema saved to %s", saveFile))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dumpAST, "ast", false, "Print the raw syntax tree instead of the schema")
	cmd.Flags().StringVarP(&saveFile, "save", "s", "", "Save the schema as a document (.toml, .json, .yaml)")
	return cmd
}

func (a *app) printParse(cmd *cobra.Command, res extract.Result) error {
	formatter, err := a.formatter()
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatParse(res)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return a.emit(cmd, "", formatted)
}

func (a *app) dumpAST(cmd *cobra.Command, sql string, d core.Dialect) error {
	p, err := parser.ForDialect(d)
	if err != nil {
		return err
	}
	nodes, err := p.Parse(sql)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	out := cmd.OutOrStdout()
	printer := pp.New()
	printer.SetOutput(out)
	f, ok := out.(*os.File)
	printer.SetColoringEnabled(ok && term.IsTerminal(int(f.Fd())))
	for _, n := range nodes {
		if _, err := printer.Println(n); err != nil {
			return err
		}
	}
	return nil
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.sql>",
		Short: "Check that DDL parses; exits with status 1 otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args[0])
			if err != nil {
				return err
			}
			v, err := a.service.ValidateSQL(sql, a.dialectValue())
			if err != nil {
				return err
			}
			formatter, err := a.formatter()
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatValidation(v)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			if err := a.emit(cmd, "", formatted); err != nil {
				return err
			}
			if !v.Valid {
				return &invalidSQLError{count: len(v.Errors)}
			}
			return nil
		},
	}
}

func generateCmd(a *app) *cobra.Command {
	var toDialect string
	var outFile string
	cmd := &cobra.Command{
		Use:   "generate <schema.(toml|json|yaml)>",
		Short: "Generate DDL from a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			fallback := doc.Dialect
			if fallback == "" {
				fallback = a.dialectValue()
			}
			d, err := parseDialectFlag(toDialect, fallback)
			if err != nil {
				return err
			}
			sql, err := a.service.GenerateSQL(doc.Schema(), d)
			if err != nil {
				return err
			}
			a.log.Debug("generated", "dialect", d, "tables", len(doc.Tables))
			return a.emit(cmd, outFile, sql)
		},
	}
	cmd.Flags().StringVarP(&toDialect, "to", "t", "", "Target dialect (defaults to the document's dialect)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file for the generated SQL")
	return cmd
}

func convertCmd(a *app) *cobra.Command {
	var fromDialect string
	var toDialect string
	var outFile string
	cmd := &cobra.Command{
		Use:   "convert <schema.sql>",
		Short: "Translate DDL from one dialect to another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args[0])
			if err != nil {
				return err
			}
			from, err := parseDialectFlag(fromDialect, a.dialectValue())
			if err != nil {
				return err
			}
			if toDialect == "" {
				return fmt.Errorf("--to is required")
			}
			to, err := core.ParseDialect(toDialect)
			if err != nil {
				return err
			}

			a.printInfo(cmd, fmt.Sprintf("Converting %s from %s to %s", args[0], from, to))
			out, res, err := a.service.Convert(sql, from, to)
			if err != nil {
				return err
			}
			if !res.Success {
				for _, e := range res.Errors {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), output.ErrorLocation(e))
				}
				return &invalidSQLError{count: len(res.Errors)}
			}
			return a.emit(cmd, outFile, out)
		},
	}
	cmd.Flags().StringVar(&fromDialect, "from", "", "Source dialect (defaults to --dialect)")
	cmd.Flags().StringVarP(&toDialect, "to", "t", "", "Target dialect (required)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file for the converted SQL")
	return cmd
}

func reconcileCmd(a *app) *cobra.Command {
	var originalFile string
	var outFile string
	cmd := &cobra.Command{
		Use:   "reconcile <previous.(toml|json|yaml)> <edited.sql>",
		Short: "Re-parse edited DDL and keep the identity of existing tables",
		Long: strings.TrimSpace(`
Reconcile parses the edited script and merges it into the previous schema
document. Table identifiers, canvas positions and colors survive edits; a
table renamed in place keeps its identity. The original script is taken
from the document's source field unless --original is given.`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := document.Load(args[0])
			if err != nil {
				return err
			}
			edited, err := readSQL(cmd, args[1])
			if err != nil {
				return err
			}
			original := prev.Source
			if originalFile != "" {
				if original, err = readSQL(cmd, originalFile); err != nil {
					return err
				}
			}
			d := prev.Dialect
			if d == "" || a.dialect != "" {
				d = a.dialectValue()
			}

			merged, parsed, err := a.service.Edit(prev.Schema(), original, edited, d)
			if err != nil {
				return err
			}
			if !parsed.Success {
				if err := a.printParse(cmd, parsed); err != nil {
					return err
				}
				return &invalidSQLError{count: len(parsed.Errors)}
			}

			formatter, err := a.formatter()
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatReconcile(merged)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			if err := a.emit(cmd, "", formatted); err != nil {
				return err
			}
			if outFile == "" {
				return nil
			}
			if err := document.Save(outFile, document.New(d, edited, merged.Schema)); err != nil {
				return err
			}
			a.printInfo(cmd, fmt.Sprintf("Merged schema saved to %s", outFile))
			return nil
		},
	}
	cmd.Flags().StringVar(&originalFile, "original", "", "Original SQL the previous document was extracted from")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Save the merged schema as a document")
	return cmd
}

func typesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the column type catalog and its spelling in a dialect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := a.formatter()
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatTypes(a.dialectValue(), core.AllColumnTypes())
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return a.emit(cmd, "", formatted)
		},
	}
}
