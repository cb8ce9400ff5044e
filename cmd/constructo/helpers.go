package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/model"
)

// parseConstructFlags turns "Name=Definition" values into constructs.
func parseConstructFlags(values []string) ([]model.Construct, error) {
	pairs := make([]model.Construct, 0, len(values))
	for _, v := range values {
		name, definition, ok := strings.Cut(v, "=")
		if !ok {
			return nil, common.NewUserError(
				fmt.Sprintf("construto inválido %q: use Nome=Definição", v),
				fmt.Errorf("%w: construct flag %q", common.ErrInvalidConfig, v),
			)
		}
		pairs = append(pairs, model.Construct{Name: name, Definition: definition})
	}
	return pairs, nil
}
