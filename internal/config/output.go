package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutputDir is where result spreadsheets and reports are written.
const DefaultOutputDir = "results"

// Timestamp layouts used in generated file names.
const (
	MinuteStamp = "20060102_1504"
	SecondStamp = "20060102_150405"
)

// EnsureDir creates dir (and parents) if it does not exist yet.
func EnsureDir(dir string) error {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(ExpandPath(dir), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// BaseName returns the file name of path without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath joins dir with "<base>_<parts...>_<stamp><ext>".
func OutputPath(dir, sourcePath string, parts []string, stamp string, ext string) string {
	if dir == "" {
		dir = DefaultOutputDir
	}
	name := BaseName(sourcePath)
	for _, p := range parts {
		if p != "" {
			name += "_" + p
		}
	}
	name += "_" + stamp + ext
	return filepath.Join(ExpandPath(dir), name)
}

// Stamp formats t with layout.
func Stamp(t time.Time, layout string) string {
	return t.Format(layout)
}
