package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "successful read", input: "qual classificador?\n", expected: "qual classificador?"},
		{name: "read with extra whitespace", input: "  openai-4  \n", expected: "openai-4"},
		{name: "empty line", input: "\n", expected: ""},
		{name: "last line without newline", input: "sair", expected: "sair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewLineReader(strings.NewReader(tt.input)).ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLineReader_EOF(t *testing.T) {
	_, err := NewLineReader(strings.NewReader("")).ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_ContextCancellation(t *testing.T) {
	t.Run("immediate cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLineReader(strings.NewReader("x\n")).ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})

	t.Run("cancellation during read", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()
		defer func() { _ = pw.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewLineReader(pr).ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})
}

func TestLineReader_Ask(t *testing.T) {
	var out bytes.Buffer
	r := NewLineReader(strings.NewReader("primeira\nsegunda\n"))

	first, err := r.Ask(context.Background(), &out, "Pergunta")
	require.NoError(t, err)
	second, err := r.ReadLine(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "primeira", first)
	assert.Equal(t, "segunda", second)
	assert.Contains(t, out.String(), "Pergunta")
}
