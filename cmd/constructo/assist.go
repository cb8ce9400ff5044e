package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/constructo/internal/assistant"
	"github.com/Veraticus/constructo/internal/cli"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/spf13/cobra"
)

func assistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assist [question]",
		Short: "Ask the assistant which classifier and model fit your data",
		Long: `Chat with an assistant that recommends a classification strategy and model.
With a question as argument it answers once; otherwise it starts a conversation.
Type "sair" to leave or "/limpar" to forget the conversation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := llm.NewClient(assistant.ConfigFor(llmConfig()), slog.Default())
			if err != nil {
				return err
			}
			defer llm.Close(client)

			a := assistant.New(client)
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				return askOnce(cmd.Context(), a, out, strings.Join(args, " "))
			}
			return chat(cmd.Context(), a, cli.NewLineReader(os.Stdin), out)
		},
	}
}

func askOnce(ctx context.Context, a *assistant.Assistant, out io.Writer, question string) error {
	answer, err := a.Ask(ctx, question)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, answer)
	return err
}

func chat(ctx context.Context, a *assistant.Assistant, reader *cli.LineReader, out io.Writer) error {
	_, _ = fmt.Fprintln(out, cli.FormatTitle(cli.BrainIcon+" Assistente de classificação"))

	for {
		question, err := reader.Ask(ctx, out, "Você")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
				return nil
			}
			return err
		}

		switch strings.ToLower(question) {
		case "":
			continue
		case "sair", "exit", "quit":
			return nil
		case "/limpar":
			a.Reset()
			_, _ = fmt.Fprintln(out, cli.FormatInfo("Conversa reiniciada."))
			continue
		}

		answer, err := a.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_, _ = fmt.Fprintln(out, cli.FormatError(err.Error()))
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s\n\n", answer)
	}
}
