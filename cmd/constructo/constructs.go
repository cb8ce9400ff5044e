package main

import (
	"fmt"

	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/config"
	"github.com/Veraticus/constructo/internal/construct"
	"github.com/spf13/cobra"
)

func constructsCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "constructs <file>",
		Short: "Show the constructs defined in a spreadsheet or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.InputFile(args[0], config.ConstructExts...)
			if err != nil {
				return err
			}
			store := construct.NewStore()
			constructs, err := store.LoadFromFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if markdown {
				_, err = fmt.Fprint(out, store.FormattedSummary())
				return err
			}
			_, err = fmt.Fprintf(out, "%s\n%s\n",
				cli.FormatTitle(fmt.Sprintf("Constructos (%d)", len(constructs))),
				cli.RenderConstructs(constructs))
			return err
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the markdown summary used in prompts")

	return cmd
}
