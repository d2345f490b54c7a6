package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Output formats shared by the listing commands.
const (
	FormatTable = "table"
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// formatValue is a pflag.Value restricted to a set of formats, so a typo is
// reported while flags are parsed instead of after the command has run.
type formatValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*formatValue)(nil)

func newFormatValue(def string, allowed ...string) *formatValue {
	return &formatValue{value: def, allowed: allowed}
}

func (f *formatValue) String() string { return f.value }

func (f *formatValue) Type() string { return "format" }

func (f *formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range f.allowed {
		if s == a {
			f.value = s
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", s, strings.Join(f.allowed, ", "))
}

// addFormatFlag registers --format/-f on cmd.
func addFormatFlag(cmd *cobra.Command, def string, allowed ...string) *formatValue {
	f := newFormatValue(def, allowed...)
	cmd.Flags().VarP(f, "format", "f", "output format ("+strings.Join(allowed, "|")+")")
	return f
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
