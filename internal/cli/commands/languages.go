package commands

import (
	"fmt"
	"strings"

	"github.com/emmetio/lorem/pkg/dictionary"
	"github.com/spf13/cobra"
)

// NewLanguagesCommand creates the languages command.
func NewLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List bundled dictionaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range dictionary.Names() {
				d := dictionary.Lookup(name)
				if _, err := fmt.Fprintf(out, "%-6s %-3s %4d words  %s\n",
					d.Lang, d.Tag, len(d.Words), strings.Join(d.Common, " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
