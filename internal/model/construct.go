package model

// Construct is a named theoretical category with its textual definition.
type Construct struct {
	Name       string `yaml:"name"`
	Definition string `yaml:"definition"`
}

// EmbeddingText is the text embedded for a construct by strategies that
// compare quotes against the name and the definition together.
func (c Construct) EmbeddingText() string {
	return c.Name + ". " + c.Definition
}

// Example is an annotated quote used for few-shot prompting.
type Example struct {
	Quote         string
	Construct     string
	Justification string
}
