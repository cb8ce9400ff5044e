// Package model defines the core domain models used throughout the application.
package model

import "time"

// Result is the classification of a single quote.
type Result struct {
	Label         string
	Justification string
	Elapsed       time.Duration
}

// Batch holds aligned per-quote outputs of a classifier run.
type Batch struct {
	Labels         []string
	Justifications []string
	Durations      []time.Duration
}

// Append records one result at the end of the batch.
func (b *Batch) Append(r Result) {
	b.Labels = append(b.Labels, r.Label)
	b.Justifications = append(b.Justifications, r.Justification)
	b.Durations = append(b.Durations, r.Elapsed)
}

// Len returns the number of recorded results.
func (b *Batch) Len() int {
	return len(b.Labels)
}
