package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/dbmlgen/compiler/gen"
	"github.com/syssam/dbmlgen/compiler/load"
	"github.com/syssam/dbmlgen/dbml"
	"github.com/syssam/dbmlgen/naming"
)

// report is the document printed by inspect.
type report struct {
	Tables        []*dbml.Table        `json:"tables" yaml:"tables"`
	Relationships []*dbml.Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Relations     gen.Relations        `json:"relations" yaml:"relations"`
}

func inspect(w io.Writer, s *dbml.Schema, inf naming.Inflector, format string) error {
	rep := report{
		Tables:        s.Tables,
		Relationships: s.Relationships,
		Relations:     gen.AnalyzeRelationships(s, inf),
	}
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return fmt.Errorf("unknown format %q, want yaml or json", format)
	}
}

var inspectCmd = &cobra.Command{
	Use:   "inspect schema.dbml",
	Short: "print the parsed tables and the analyzed relations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var opts []dbml.Option
		if mustFlagBool(cmd, "strict") {
			opts = append(opts, dbml.Strict())
		}
		s, err := load.Load(args[0], opts...)
		if err != nil {
			fatal(err)
		}
		inf, err := naming.ByName(mustFlagString(cmd, "inflector"))
		if err != nil {
			fatal(err)
		}
		if err := inspect(cmd.OutOrStdout(), s, inf, mustFlagString(cmd, "format")); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("format", "yaml", "output format: yaml or json")
	inspectCmd.Flags().String("inflector", "simple", "singularization rules: simple or rules")
	inspectCmd.Flags().Bool("strict", false, "reject malformed lines")
}
