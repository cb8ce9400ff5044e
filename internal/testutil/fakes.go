// Package testutil provides fakes and fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/stretchr/testify/mock"
)

// FakeEmbedder returns fixed vectors by text. Unknown texts fall back to
// Default, or fail when Default is nil.
type FakeEmbedder struct {
	Vectors map[string][]float64
	Default []float64
	mu      sync.Mutex
	calls   []string
}

// Embed implements llm.Embedder.
func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if vec, ok := f.Vectors[text]; ok {
		return vec, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return nil, fmt.Errorf("no fake embedding for %q", text)
}

// Calls returns every text embedded so far.
func (f *FakeEmbedder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// MockClient is a testify mock of llm.Client.
type MockClient struct {
	mock.Mock
}

// Complete implements llm.Client.
func (m *MockClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// StaticClient answers every completion with the same reply and counts calls.
type StaticClient struct {
	Reply string
	Err   error
	mu    sync.Mutex
	Seen  [][]llm.Message
}

// Complete implements llm.Client.
func (s *StaticClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.Seen = append(s.Seen, messages)
	s.mu.Unlock()
	return s.Reply, s.Err
}

// CallCount is how many completions were requested.
func (s *StaticClient) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Seen)
}

// WriteSheet stores a table as an .xlsx file under t.TempDir() and returns its path.
func WriteSheet(t *testing.T, name string, columns []string, rows ...[]string) string {
	t.Helper()
	table := model.NewTable(columns)
	for _, r := range rows {
		table.AppendRow(r)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := dataset.WriteSpreadsheet(table, path); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
