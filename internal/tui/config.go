// Package tui renders a live progress view for long classification runs.
package tui

import (
	"io"
	"time"

	"github.com/Veraticus/constructo/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Output    io.Writer
	Input     io.Reader
	Interrupt func()
	Now       func() time.Time
	Title     string
	Width     int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme: themes.Default,
		Title: "Classificando quotes",
		Width: 60,
		Now:   time.Now,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithTitle sets the heading shown above the progress bar.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithWidth sets the initial progress bar width.
func WithWidth(width int) Option {
	return func(c *Config) {
		c.Width = width
	}
}

// WithInterrupt registers the hook called when the user asks to stop after
// the current quote.
func WithInterrupt(fn func()) Option {
	return func(c *Config) {
		c.Interrupt = fn
	}
}

// WithIO overrides the terminal streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
	}
}

// WithAltScreen runs the view in the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithClock replaces time.Now for elapsed time rendering.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}
