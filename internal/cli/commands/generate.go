package commands

import (
	"fmt"

	"github.com/emmetio/lorem/pkg/generator"
	"github.com/emmetio/lorem/pkg/implicittag"
	"github.com/emmetio/lorem/pkg/node"
	"github.com/emmetio/lorem/pkg/snippet"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var (
		parent string
		repeat int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "generate [abbreviation]",
		Short: "Expand a lorem abbreviation",
		Long: `Expand a lorem abbreviation and print the resulting markup.

The abbreviation has the form lorem[lang][count], e.g. "lorem", "lorem10" or
"loremru25". With --parent the text is nested in that element; with --repeat
the snippet is repeated and each copy gets an implicit element name.`,
		Example: `  lorem generate lorem20
  lorem generate --parent p
  lorem generate loremru10 --parent ul --repeat 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())

			abbr := "lorem"
			if len(args) == 1 {
				abbr = args[0]
			}

			filler := node.NewFiller()
			if seed != 0 {
				filler = &node.Filler{
					Generator: generator.NewLoremGeneratorWithSeed(seed),
					Resolve:   implicittag.Resolve,
				}
			}

			logger.Debug("expanding", "abbreviation", abbr, "parent", parent, "repeat", repeat)
			t, err := snippet.Expand(filler, snippet.Request{
				Abbreviation: abbr,
				Parent:       parent,
				Repeat:       repeat,
				Options:      cfg.Options(),
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), t.String())
			return err
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Wrap the generated text in this element")
	cmd.Flags().IntVarP(&repeat, "repeat", "r", 0, "Repeat the snippet this many times")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible output (0 picks a random seed)")

	return cmd
}
