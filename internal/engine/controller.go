// Package engine holds the session state and the controller that the command
// line drives: loading constructs, quotes and examples, running a classifier
// over the quotes and evaluating the results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/classifier"
	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/config"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/evaluation"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/Veraticus/constructo/internal/pipeline"
	"github.com/Veraticus/constructo/internal/service"
)

// FewShotTag marks output files produced with few-shot examples.
const FewShotTag = "FEW-SHOT"

// Status messages shown after a classification run.
const (
	MessageCompleted   = "✅ Classificação concluída!"
	MessageInterrupted = "⚠️ Classificação interrompida"
)

// ClientFactory builds the chat client for a run.
type ClientFactory func(cfg llm.Config, logger *slog.Logger) (llm.Client, error)

// EmbedderFactory builds the embedder for a run.
type EmbedderFactory func(cfg llm.EmbeddingConfig, logger *slog.Logger) (llm.Embedder, error)

// Config holds the model and output settings of a controller.
type Config struct {
	LLM       llm.Config
	Embedding llm.EmbeddingConfig
	OutputDir string
	// TopN and the weights tune the hybrid and similarity strategies. A zero
	// TopN or a nil weight selects the default.
	TopN            int
	EmbeddingWeight *float64
	LLMWeight       *float64
	// OverrideTemperature uses LLM.Temperature instead of each strategy's own.
	OverrideTemperature bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClientFactory replaces how chat clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(c *Controller) { c.newClient = f }
}

// WithEmbedderFactory replaces how embedders are built.
func WithEmbedderFactory(f EmbedderFactory) Option {
	return func(c *Controller) { c.newEmbedder = f }
}

// WithMirror uploads result tables through w when a request asks for it.
func WithMirror(w service.TableWriter) Option {
	return func(c *Controller) { c.mirror = w }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock replaces time.Now for output file names.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller is the narrow API between the presentation layer and the
// classification machinery. It owns exactly one Session.
type Controller struct {
	mirror      service.TableWriter
	session     *Session
	logger      *slog.Logger
	newClient   ClientFactory
	newEmbedder EmbedderFactory
	now         func() time.Time
	config      Config
}

// NewController creates a controller with a fresh session.
func NewController(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		config:      cfg,
		session:     NewSession(),
		logger:      slog.Default(),
		newClient:   llm.NewClient,
		newEmbedder: llm.NewEmbedder,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.config.OutputDir == "" {
		c.config.OutputDir = config.DefaultOutputDir
	}
	return c
}

// Session returns the controller's session.
func (c *Controller) Session() *Session {
	return c.session
}

// SaveScope stores the research scope and returns a confirmation in markdown.
func (c *Controller) SaveScope(text string) string {
	c.session.Scope = strings.TrimSpace(text)
	return fmt.Sprintf("Escopo salvo:\n\n**%s**", c.session.Scope)
}

// LoadConstructsManual replaces the construct set with the complete pairs
// and returns its formatted summary.
func (c *Controller) LoadConstructsManual(pairs []model.Construct) string {
	c.session.Constructs.LoadManual(pairs)
	return c.session.Constructs.FormattedSummary()
}

// LoadConstructsFromFile replaces the construct set from a spreadsheet or
// YAML file and returns its formatted summary.
func (c *Controller) LoadConstructsFromFile(path string) (string, error) {
	path, err := config.InputFile(path, config.ConstructExts...)
	if err != nil {
		return "", err
	}
	constructs, err := c.session.Constructs.LoadFromFile(path)
	if err != nil {
		return "", err
	}
	c.logger.Info("Loaded constructs", "count", len(constructs), "path", path)
	return c.session.Constructs.FormattedSummary(), nil
}

// LoadQuotes loads the quote spreadsheet and returns its column names.
func (c *Controller) LoadQuotes(path string) ([]string, error) {
	path, err := config.InputFile(path, config.SpreadsheetExts...)
	if err != nil {
		return nil, err
	}
	columns, err := c.session.Dataset.LoadSpreadsheet(path)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Loaded quotes",
		"rows", c.session.Dataset.Table().Len(),
		"columns", len(columns),
		"path", path)
	return columns, nil
}

// LoadExamples reads few-shot examples and keeps them for later runs. It
// returns a confirmation message.
func (c *Controller) LoadExamples(path string, cols dataset.ExampleColumns) (string, error) {
	path, err := config.InputFile(path, config.SpreadsheetExts...)
	if err != nil {
		return "", err
	}
	examples, err := dataset.ReadExamplesWithColumns(path, cols)
	if err != nil {
		return "", err
	}
	c.session.Examples = examples
	return fmt.Sprintf("✅ %d exemplo(s) carregado(s) com sucesso.", len(examples)), nil
}

// SetExamples replaces the few-shot examples.
func (c *Controller) SetExamples(examples []model.Example) {
	c.session.Examples = examples
}

// ClassificationColumn guesses the automatic-label column of the loaded quotes.
func (c *Controller) ClassificationColumn() string {
	return c.session.Dataset.ClassificationColumn()
}

// RequestInterrupt asks a running classification to stop.
func (c *Controller) RequestInterrupt() {
	c.session.RequestInterrupt()
}

// ResetInterrupt clears a pending interruption request.
func (c *Controller) ResetInterrupt() {
	c.session.ResetInterrupt()
}

// ShouldInterrupt reports whether an interruption was requested.
func (c *Controller) ShouldInterrupt() bool {
	return c.session.ShouldInterrupt()
}

// Reset starts over with an empty session.
func (c *Controller) Reset() {
	c.session.Reset()
}

// ClassifyRequest describes one classification run.
type ClassifyRequest struct {
	Progress    service.ProgressFunc
	QuoteColumn string
	ClassColumn string
	// Classifier is a selection identifier such as "openai-4".
	Classifier string
	// CreateColumn adds ClassColumn when the table does not have it yet.
	CreateColumn bool
	// Mirror also uploads the result table when a mirror is configured.
	Mirror bool
}

// ClassifyResult reports a finished or interrupted run.
type ClassifyResult struct {
	MirrorErr  error
	Message    string
	Path       string
	MirrorURL  string
	Classifier string
	Model      string
	Durations  []time.Duration
	State      pipeline.State
	Recorded   int
	Total      int
}

// Classify runs the selected classifier over the loaded quotes, writes the
// labels into the working table and exports it. An interrupted run still
// exports the rows classified so far.
func (c *Controller) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResult, error) {
	s := c.session
	if !s.Dataset.Loaded() {
		return nil, common.ErrDataNotLoaded
	}
	if s.Constructs.Len() == 0 {
		return nil, common.ErrNoConstructs
	}
	// A created class column lives on a copy until the run's result is adopted.
	table := s.Dataset.Table()
	if req.CreateColumn && req.ClassColumn != "" && !table.HasColumn(req.ClassColumn) {
		if !table.HasColumn(req.QuoteColumn) {
			return nil, common.ColumnNotFound(req.QuoteColumn)
		}
		table = table.Clone()
		table.AddColumn(req.ClassColumn)
	} else if err := s.Dataset.ValidateColumns(req.QuoteColumn, req.ClassColumn); err != nil {
		return nil, err
	}

	sel, err := classifier.ParseSelection(req.Classifier)
	if err != nil {
		return nil, err
	}

	var examples []model.Example
	if sel.Kind.UsesExamples() {
		examples = s.Examples
	}

	deps, modelName, release, err := c.buildDeps(sel)
	if err != nil {
		return nil, err
	}
	defer release()

	clf, err := classifier.New(sel.Kind, s.Constructs.All(), deps, classifier.Options{
		Scope:           s.Scope,
		Examples:        examples,
		TopN:            c.config.TopN,
		EmbeddingWeight: c.config.EmbeddingWeight,
		LLMWeight:       c.config.LLMWeight,
		Logger:          c.logger,
	})
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(table, req.QuoteColumn, req.ClassColumn, clf, c.logger)
	if err != nil {
		return nil, err
	}
	table, err = p.Run(ctx, pipeline.RunOptions{
		Progress:        req.Progress,
		ShouldInterrupt: s.ShouldInterrupt,
	})
	if err != nil {
		return nil, err
	}
	s.Dataset.Adopt(table)

	fewShot := ""
	if len(examples) > 0 {
		fewShot = FewShotTag
	}
	if err := config.EnsureDir(c.config.OutputDir); err != nil {
		return nil, err
	}
	path := config.OutputPath(c.config.OutputDir, s.Dataset.SourcePath(),
		[]string{strings.ReplaceAll(sel.ID, "-", "_"), fewShot},
		config.Stamp(c.now(), config.MinuteStamp), ".xlsx")
	if _, err := p.Export(path); err != nil {
		return nil, err
	}

	quotes, _ := table.Column(req.QuoteColumn)
	result := &ClassifyResult{
		Message:    MessageCompleted,
		Path:       path,
		Classifier: clf.Name(),
		Model:      modelName,
		Durations:  p.Durations(),
		State:      p.State(),
		Recorded:   p.Recorded(),
		Total:      len(quotes),
	}
	if result.State == pipeline.StateInterrupted {
		result.Message = fmt.Sprintf("%s: %d de %d quotes classificados.", MessageInterrupted, result.Recorded, result.Total)
	}

	if req.Mirror {
		result.MirrorURL, result.MirrorErr = c.mirrorTable(ctx, config.BaseName(path), table)
	}
	return result, nil
}

// buildDeps creates the model services sel needs. release closes them.
func (c *Controller) buildDeps(sel classifier.Selection) (classifier.Deps, string, func(), error) {
	var (
		deps      classifier.Deps
		modelName string
	)
	release := func() {
		llm.Close(deps.Client)
		llm.Close(deps.Embedder)
	}

	if sel.Kind.UsesEmbeddings() {
		embedder, err := c.newEmbedder(c.config.Embedding, c.logger)
		if err != nil {
			return deps, "", release, fmt.Errorf("failed to create embedder: %w", err)
		}
		deps.Embedder = embedder
	}

	if sel.Kind.UsesLLM() {
		cfg := c.chatConfig(sel)
		client, err := c.newClient(cfg, c.logger)
		if err != nil {
			release()
			return deps, "", func() {}, fmt.Errorf("failed to create language model client: %w", err)
		}
		deps.Client = client
		modelName = cfg.Model
	}
	return deps, modelName, release, nil
}

// chatConfig resolves the model and temperature for sel. A model fixed by
// the selection wins over the configured one.
func (c *Controller) chatConfig(sel classifier.Selection) llm.Config {
	cfg := c.config.LLM
	if sel.Pinned || cfg.Model == "" {
		cfg.Model = sel.Model
	}
	if !c.config.OverrideTemperature {
		cfg.Temperature = sel.Kind.Temperature()
	}
	return cfg
}

func (c *Controller) mirrorTable(ctx context.Context, title string, table *model.Table) (string, error) {
	if c.mirror == nil {
		return "", errors.New("no spreadsheet mirror configured")
	}
	url, err := c.mirror.WriteTable(ctx, title, table)
	if err != nil {
		c.logger.Warn("Failed to mirror results", "title", title, "error", err)
		return "", err
	}
	c.logger.Info("Mirrored results", "url", url)
	return url, nil
}

// EvaluateRequest names the columns of an evaluation.
type EvaluateRequest struct {
	ManualColumn string
	AutoColumn   string
	ResultColumn string
	Mirror       bool
}

// EvaluateResult wraps the evaluation outcome with the optional mirror upload.
type EvaluateResult struct {
	*evaluation.Outcome
	MirrorErr error
	MirrorURL string
}

// Evaluate compares the manual and automatic columns of the loaded quotes.
// When AutoColumn is empty the guessed classification column is used.
func (c *Controller) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	s := c.session
	if !s.Dataset.Loaded() {
		return nil, common.ErrDataNotLoaded
	}
	if req.AutoColumn == "" {
		req.AutoColumn = s.Dataset.ClassificationColumn()
	}
	if req.ResultColumn == "" {
		req.ResultColumn = evaluation.DefaultResultColumn
	}

	evaluator := evaluation.New(c.config.OutputDir, c.logger)
	evaluator.Now = c.now
	outcome, err := evaluator.Evaluate(s.Dataset.Table(), s.Dataset.SourcePath(), evaluation.Columns{
		Manual: req.ManualColumn,
		Auto:   req.AutoColumn,
		Result: req.ResultColumn,
	})
	if err != nil {
		return nil, err
	}

	result := &EvaluateResult{Outcome: outcome}
	if req.Mirror {
		result.MirrorURL, result.MirrorErr = c.mirrorTable(ctx, config.BaseName(outcome.SpreadsheetPath), s.Dataset.Table())
	}
	return result, nil
}
