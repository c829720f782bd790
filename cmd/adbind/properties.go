package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/adbind/pkg/property"
)

var propertiesRaw bool

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List binding properties, their dsconfigad labels and flags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		md := propertiesMarkdown()
		if propertiesRaw {
			fmt.Print(md)
			return nil
		}
		fmt.Println(renderMarkdown(md))
		return nil
	},
}

// propertiesMarkdown renders the property table as a Markdown table.
func propertiesMarkdown() string {
	var b strings.Builder
	b.WriteString("| Key | Label | Flag | Kind | Clears with |\n")
	b.WriteString("|-----|-------|------|------|-------------|\n")
	for _, d := range property.All() {
		kind := string(d.Kind)
		if len(d.Enum) > 0 {
			kind = strings.Join(d.Enum, " / ")
		}
		clears := ""
		if d.NoFlag {
			clears = "`-no" + d.Flag + "`"
		}
		flag := "`-" + d.Flag + "`"
		if !d.Configurable {
			flag += " (bind only)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", d.Key, d.Label, flag, kind, clears)
	}
	return b.String()
}

// renderMarkdown styles md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func init() {
	propertiesCmd.Flags().BoolVar(&propertiesRaw, "raw", false, "Print Markdown without terminal styling")
}
