package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/dbmlgen/compiler/gen"
	"github.com/syssam/dbmlgen/compiler/gen/golang"
	"github.com/syssam/dbmlgen/compiler/load"
	"github.com/syssam/dbmlgen/dbml"
)

// defaultSchema is read when neither an argument nor the config file names
// a schema.
const defaultSchema = "database/schema.dbml"

// run holds the settings of one generate invocation.
type run struct {
	schema string
	strict bool
	opts   []gen.Option
}

// newRun merges the config file, the flags and the schema argument. Flags
// override file values.
func newRun(cmd *cobra.Command, args []string, logger *slog.Logger) (*run, error) {
	fc := &gen.FileConfig{}
	if path := mustFlagString(cmd, "config"); path != "" {
		var err error
		if fc, err = gen.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("target") {
		fc.Target = mustFlagString(cmd, "target")
	}
	if flags.Changed("package") {
		fc.Package = mustFlagString(cmd, "package")
	}
	if flags.Changed("inflector") {
		fc.Inflector = mustFlagString(cmd, "inflector")
	}
	if flags.Changed("strict") {
		fc.Strict = mustFlagBool(cmd, "strict")
	}
	r := &run{schema: fc.Schema, strict: fc.Strict}
	if len(args) > 0 {
		r.schema = args[0]
	}
	if r.schema == "" {
		r.schema = defaultSchema
	}
	r.opts = append(fc.Options(),
		gen.WithStrict(fc.Strict),
		gen.WithQuiet(mustFlagBool(cmd, "quiet")),
		gen.WithOutput(cmd.OutOrStdout()),
		gen.WithLogger(logger),
	)
	return r, nil
}

// generate runs the whole pipeline once: load, analyze and write.
func (r *run) generate(ctx context.Context) error {
	var parseOpts []dbml.Option
	if r.strict {
		parseOpts = append(parseOpts, dbml.Strict())
	}
	s, err := load.Load(r.schema, parseOpts...)
	if err != nil {
		return err
	}
	cfg, err := gen.NewConfig(r.opts...)
	if err != nil {
		return err
	}
	g, err := gen.NewGraph(cfg, s)
	if err != nil {
		return err
	}
	_, err = golang.Generate(ctx, g)
	return err
}

var generateCmd = &cobra.Command{
	Use:   "generate [schema.dbml]",
	Short: "generate migrations, models, services and controllers",
	Long: `Generate migrations, models, services and controllers from a DBML schema.

Generate from the default schema (database/schema.dbml):

	dbmlgen generate

Generate into another project with the rules inflector:

	dbmlgen generate --target ../shop --package example.com/shop --inflector rules schema.dbml

Regenerate whenever the schema is saved:

	dbmlgen generate --watch schema.dbml
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		r, err := newRun(cmd, args, logger)
		if err != nil {
			fatal(err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watch := mustFlagBool(cmd, "watch")
		if err := r.generate(ctx); err != nil {
			// A broken schema is fixed while watching; a missing one never shows up.
			if !watch || errors.Is(err, load.ErrSchemaNotFound) {
				fatal(err)
			}
			logger.Error("generate failed", "schema", r.schema, "error", err)
		}
		if !watch {
			return
		}
		logger.Info("watching for changes", "schema", r.schema)
		if err := load.NewWatcher(r.schema, r.generate).WithLogger(logger).Run(ctx); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("config", "", "YAML configuration file")
	generateCmd.Flags().String("target", ".", "project root the files are written to")
	generateCmd.Flags().String("package", gen.DefaultPackage, "Go import path of the target project")
	generateCmd.Flags().String("inflector", "simple", "singularization rules: simple or rules")
	generateCmd.Flags().Bool("strict", false, "reject malformed lines and unresolved references")
	generateCmd.Flags().Bool("watch", false, "regenerate when the schema changes")
	generateCmd.Flags().Bool("quiet", false, "do not print the progress transcript")
}
