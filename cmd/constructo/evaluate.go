package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/engine"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	path         string
	manualColumn string
	autoColumn   string
	resultColumn string
	mirror       bool
}

func evaluateCmd() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compare automatic labels against a manual classification",
		Long: `Mark each row of a classified spreadsheet as correct or incorrect, append the
accuracy row and write the evaluated spreadsheet plus PDF and HTML reports.

Without --auto-col the first column whose name contains "class" is used.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "results", "r", "", "classified spreadsheet")
	cmd.Flags().StringVar(&opts.manualColumn, "manual-col", "", "column with the manual classification")
	cmd.Flags().StringVar(&opts.autoColumn, "auto-col", "", "column with the automatic classification")
	cmd.Flags().StringVar(&opts.resultColumn, "result-col", "", "column receiving Certa/Errada (default: Resultado)")
	cmd.Flags().BoolVar(&opts.mirror, "sheets", false, "also upload the evaluated table to Google Sheets")

	_ = cmd.MarkFlagRequired("results")
	_ = cmd.MarkFlagRequired("manual-col")

	return cmd
}

func runEvaluate(ctx context.Context, out io.Writer, opts evaluateOptions) error {
	ctrl, err := newController(ctx, opts.mirror)
	if err != nil {
		return err
	}
	if _, err := ctrl.LoadQuotes(opts.path); err != nil {
		return err
	}

	result, err := ctrl.Evaluate(ctx, engine.EvaluateRequest{
		ManualColumn: opts.manualColumn,
		AutoColumn:   opts.autoColumn,
		ResultColumn: opts.resultColumn,
		Mirror:       opts.mirror,
	})
	if err != nil {
		return err
	}

	printEvaluateResult(out, result)
	return nil
}

func printEvaluateResult(out io.Writer, result *engine.EvaluateResult) {
	_, _ = fmt.Fprintf(out, "\n%s\n\n%s\n\n", cli.FormatTitle(cli.ChartIcon+" Avaliação"), cli.RenderOutcome(result.Outcome))
	for _, path := range []string{result.SpreadsheetPath, result.PDFPath, result.HTMLPath} {
		if path != "" {
			_, _ = fmt.Fprintf(out, "%s %s\n", cli.FolderIcon, path)
		}
	}
	printMirror(out, result.MirrorURL, result.MirrorErr)
}
