package main

import (
	"fmt"

	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/spf13/cobra"
)

func columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>",
		Short: "List the columns of a quote spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := dataset.NewStore()
			columns, err := store.LoadSpreadsheet(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "%s\n%s\n",
				cli.FormatTitle(fmt.Sprintf("%s (%d linhas)", store.BaseName(), store.Table().Len())),
				cli.RenderList(columns)); err != nil {
				return err
			}
			if guess := store.ClassificationColumn(); guess != "" {
				_, err = fmt.Fprintln(out, cli.FormatInfo("Coluna de classificação sugerida: "+guess))
			}
			return err
		},
	}
}
