package classifier

import (
	"strings"

	"github.com/Veraticus/constructo/internal/model"
)

const (
	defaultSimilarityScope = "Sem escopo definido."
	exampleSeparator       = "\n\n"
)

// quoted wraps s in double quotes without escaping its contents.
func quoted(s string) string {
	return "\"" + s + "\""
}

func constructLines(constructs []model.Construct) string {
	lines := make([]string, len(constructs))
	for i, c := range constructs {
		lines[i] = c.Name + ": " + c.Definition
	}
	return strings.Join(lines, "\n")
}

func renderExample(ex model.Example) string {
	return "Quote: " + quoted(ex.Quote) + "\nConstructo: " + ex.Construct + "\nJustificativa: " + ex.Justification + "\n"
}

// fewShot joins prefix, rendered examples and suffix with blank lines.
func fewShot(prefix string, examples []model.Example, suffix string) string {
	parts := make([]string, 0, len(examples)+2)
	parts = append(parts, prefix)
	for _, ex := range examples {
		parts = append(parts, renderExample(ex))
	}
	parts = append(parts, suffix)
	return strings.Join(parts, exampleSeparator)
}

func llmPrompt(scope string, constructs []model.Construct, examples []model.Example, quote string) string {
	if len(examples) > 0 {
		prefix := "Com base no escopo: " + scope + "\n" +
			"E nos constructos com suas definições no formato [constructo]:[definição]:\n" +
			constructLines(constructs) + "\n" +
			"A seguir, veja alguns exemplos de classificação de quotes com base no escopo e constructos:\n"
		suffix := "Agora classifique o seguinte trecho:\n" +
			quoted(quote) + "\n" +
			"Retorne: Constructo: <nome> | Justificativa: <explicação>"
		return fewShot(prefix, examples, suffix)
	}

	return "Com base no escopo: " + scope + "\n" +
		"E nos constructos com suas definições no formato [constructo]:[definição]:\n" +
		constructLines(constructs) + "\n" +
		"Classifique o seguinte trecho:\n" +
		quoted(quote) + "\n" +
		"Retorne: Constructo: <nome> | Justificativa: <explicação>"
}

func hybridSystemPrompt(scope string, candidates []scored) string {
	lines := make([]string, len(candidates))
	for i, s := range candidates {
		lines[i] = s.construct.Name + ": " + s.construct.Definition
	}
	return "Você é um assistente treinado em análise qualitativa.\n" +
		"Escopo: " + scope + "\n" +
		"Constructos mais similares:\n" + strings.Join(lines, "\n")
}

func hybridExampleTurns(ex model.Example) (human, assistant string) {
	return "Quote: " + quoted(ex.Quote),
		"Constructo: " + ex.Construct + "\nJustificativa: " + ex.Justification
}

func hybridQuestion(quote string) string {
	return "Quote: " + quoted(quote) + "\nClassifique o trecho com Constructo e Justificativa."
}

func similarityPrompt(scope, definition string, examples []model.Example, quote string) string {
	if scope == "" {
		scope = defaultSimilarityScope
	}

	if len(examples) > 0 {
		prefix := "Contexto da pesquisa: " + scope + "\n\n" +
			"Avalie o grau de correspondência entre a definição de um constructo teórico e um trecho de entrevista (quote).\n" +
			"Veja os exemplos abaixo para entender o padrão de resposta.\n"
		suffix := "Agora avalie este novo trecho:\n" +
			"Definição do Constructo:\n" + definition + "\n\n" +
			"Quote: " + quoted(quote) + "\n" +
			"Responda com o seguinte formato:\n" +
			"Similaridade: <número>%\nJustificativa: <texto explicativo>"
		return fewShot(prefix, examples, suffix)
	}

	return "Contexto da pesquisa: " + scope + "\n\n" +
		"Avalie o grau de correspondência entre a definição de um constructo teórico e um trecho de entrevista (quote).\n" +
		"Indique:\n" +
		"- Um valor percentual de similaridade (0 a 100)\n" +
		"- Uma justificativa breve explicando por que esse constructo se aplica ao quote\n\n" +
		"Definição do Constructo:\n" + definition + "\n\n" +
		"Trecho de entrevista (quote):\n" + quote + "\n\n" +
		"Responda com o seguinte formato:\n" +
		"Similaridade: <número>%\n" +
		"Justificativa: <texto explicativo>"
}
