package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/constructo/internal/classifier"
	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/engine"
	"github.com/Veraticus/constructo/internal/pipeline"
	"github.com/Veraticus/constructo/internal/service"
	"github.com/Veraticus/constructo/internal/tui"
	"github.com/spf13/cobra"
)

type classifyOptions struct {
	quotesPath     string
	constructsPath string
	examplesPath   string
	scope          string
	quoteColumn    string
	classColumn    string
	classifierID   string
	evaluateColumn string
	constructs     []string
	createColumn   bool
	mirror         bool
	useTUI         bool
}

func classifyCmd() *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify the quotes of a spreadsheet into constructs",
		Long: `Classify every quote of a spreadsheet column into one of the loaded constructs.

Constructs come from a spreadsheet or YAML file (--constructs) or from repeated
--construct "Name=Definition" flags. Press Ctrl+C once to stop after the current
quote; the quotes classified so far are still saved.

Classifiers: ` + strings.Join(classifier.Selections, ", "),
		Example: `  constructo classify --quotes entrevistas.xlsx --constructs constructos.yaml \
    --quote-col Quote --class-col Classificacao --create-column --classifier openai-4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.quotesPath, "quotes", "q", "", "spreadsheet with the quotes to classify")
	cmd.Flags().StringVarP(&opts.constructsPath, "constructs", "c", "", "construct file (.xlsx or .yaml)")
	cmd.Flags().StringArrayVar(&opts.constructs, "construct", nil, `construct as "Name=Definition" (repeatable)`)
	cmd.Flags().StringVarP(&opts.examplesPath, "examples", "e", "", "few-shot example spreadsheet")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "research scope added to language model prompts")
	cmd.Flags().StringVar(&opts.quoteColumn, "quote-col", "", "column holding the quotes")
	cmd.Flags().StringVar(&opts.classColumn, "class-col", "", "column receiving the labels")
	cmd.Flags().BoolVar(&opts.createColumn, "create-column", false, "add --class-col when the sheet does not have it")
	cmd.Flags().StringVar(&opts.classifierID, "classifier", classifier.Selections[0], "classifier to use")
	cmd.Flags().StringVar(&opts.evaluateColumn, "evaluate", "", "evaluate the labels against this manual column afterwards")
	cmd.Flags().BoolVar(&opts.mirror, "sheets", false, "also upload results to Google Sheets")
	cmd.Flags().BoolVar(&opts.useTUI, "tui", false, "show an interactive progress view")

	_ = cmd.MarkFlagRequired("quotes")
	_ = cmd.MarkFlagRequired("quote-col")
	_ = cmd.MarkFlagRequired("class-col")
	cmd.MarkFlagsOneRequired("constructs", "construct")

	return cmd
}

func runClassify(ctx context.Context, out io.Writer, opts classifyOptions) error {
	ctrl, err := newController(ctx, opts.mirror)
	if err != nil {
		return err
	}

	if err := loadSession(ctrl, out, opts); err != nil {
		return err
	}

	req := engine.ClassifyRequest{
		QuoteColumn:  opts.quoteColumn,
		ClassColumn:  opts.classColumn,
		Classifier:   opts.classifierID,
		CreateColumn: opts.createColumn,
		Mirror:       opts.mirror,
	}

	ctrl.ResetInterrupt()
	var result *engine.ClassifyResult
	if opts.useTUI && cli.IsTerminal(os.Stdout) {
		result, err = tui.RunClassification(ctx,
			func(ctx context.Context, progress service.ProgressFunc) (*engine.ClassifyResult, error) {
				req.Progress = progress
				return ctrl.Classify(ctx, req)
			},
			tui.WithTitle(fmt.Sprintf("%s Classificando com %s", cli.BrainIcon, opts.classifierID)),
			tui.WithInterrupt(ctrl.RequestInterrupt),
		)
	} else {
		result, err = classifyWithProgress(ctx, ctrl, out, req)
	}
	if err != nil {
		return err
	}

	printClassifyResult(out, result)

	if opts.evaluateColumn == "" {
		return nil
	}
	if result.State != pipeline.StateCompleted {
		_, _ = fmt.Fprintln(out, cli.FormatWarning("Avaliação ignorada: a classificação não terminou."))
		return nil
	}
	evaluated, err := ctrl.Evaluate(ctx, engine.EvaluateRequest{
		ManualColumn: opts.evaluateColumn,
		AutoColumn:   opts.classColumn,
		Mirror:       opts.mirror,
	})
	if err != nil {
		return err
	}
	printEvaluateResult(out, evaluated)
	return nil
}

// loadSession feeds constructs, quotes, examples and scope to the controller.
func loadSession(ctrl *engine.Controller, out io.Writer, opts classifyOptions) error {
	if opts.constructsPath != "" {
		if _, err := ctrl.LoadConstructsFromFile(opts.constructsPath); err != nil {
			return err
		}
	} else {
		pairs, err := parseConstructFlags(opts.constructs)
		if err != nil {
			return err
		}
		ctrl.LoadConstructsManual(pairs)
	}
	constructs := ctrl.Session().Constructs.All()
	_, _ = fmt.Fprintf(out, "%s\n%s\n\n", cli.FormatTitle(fmt.Sprintf("Constructos (%d)", len(constructs))), cli.RenderConstructs(constructs))

	columns, err := ctrl.LoadQuotes(opts.quotesPath)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d quotes carregados. Colunas: %s",
		ctrl.Session().Dataset.Table().Len(), strings.Join(columns, ", "))))

	if opts.examplesPath != "" {
		msg, err := ctrl.LoadExamples(opts.examplesPath, dataset.DefaultExampleColumns)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, msg)
	}

	if strings.TrimSpace(opts.scope) != "" {
		_, _ = fmt.Fprintln(out, ctrl.SaveScope(opts.scope))
	}
	return nil
}

func classifyWithProgress(ctx context.Context, ctrl *engine.Controller, out io.Writer, req engine.ClassifyRequest) (*engine.ClassifyResult, error) {
	handler := cli.NewInterruptHandler(out, ctrl.RequestInterrupt)
	ctx, stop := handler.HandleInterrupts(ctx)
	defer stop()

	reporter := cli.NewProgressReporter(os.Stderr, "Classificando quotes...")
	req.Progress = reporter.Update
	result, err := ctrl.Classify(ctx, req)
	reporter.Finish()
	return result, err
}

func printClassifyResult(out io.Writer, result *engine.ClassifyResult) {
	message := cli.FormatSuccess(result.Message)
	if result.State != pipeline.StateCompleted {
		message = cli.FormatWarning(result.Message)
	}
	_, _ = fmt.Fprintf(out, "\n%s\n\n%s\n", message,
		cli.RenderRunSummary(result.Classifier, result.Model, result.Recorded, result.Total, result.Durations, result.Path))
	printMirror(out, result.MirrorURL, result.MirrorErr)
}

func printMirror(out io.Writer, url string, err error) {
	switch {
	case err != nil:
		_, _ = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Falha ao enviar para o Google Sheets: %v", err)))
	case url != "":
		_, _ = fmt.Fprintln(out, cli.FormatInfo("Google Sheets: "+url))
	}
}
