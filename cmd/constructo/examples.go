package main

import (
	"fmt"

	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/spf13/cobra"
)

func examplesCmd() *cobra.Command {
	cols := dataset.DefaultExampleColumns

	cmd := &cobra.Command{
		Use:   "examples <file>",
		Short: "Preview a few-shot example spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			examples, err := dataset.ReadExamplesWithColumns(args[0], cols)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n",
				cli.FormatSuccess(fmt.Sprintf("%d exemplo(s) carregado(s) com sucesso.", len(examples))),
				cli.RenderExamples(examples))
			return err
		},
	}

	cmd.Flags().StringVar(&cols.Quote, "quote-col", cols.Quote, "header of the quote column")
	cmd.Flags().StringVar(&cols.Construct, "construct-col", cols.Construct, "header of the construct column")
	cmd.Flags().StringVar(&cols.Justification, "justification-col", cols.Justification, "header of the justification column")

	return cmd
}
