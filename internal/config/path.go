// Package config holds the file-system and credential settings shared by the
// commands: where inputs are read from and where results are written.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
)

// File extensions accepted by the input loaders.
var (
	SpreadsheetExts = []string{".xlsx", ".xlsm"}
	ConstructExts   = []string{".xlsx", ".xlsm", ".yaml", ".yml"}
)

// ExpandPath resolves a leading ~ to the home directory and then expands
// $VAR references.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

// InputFile expands path and checks that it names an existing file whose
// extension is one of exts. Extensions compare case-insensitively; no exts
// accepts any file.
func InputFile(path string, exts ...string) (string, error) {
	resolved := ExpandPath(strings.TrimSpace(path))
	if resolved == "" {
		return "", fmt.Errorf("%w: no input file given", common.ErrMissingConfig)
	}
	if ext := strings.ToLower(filepath.Ext(resolved)); len(exts) > 0 && !slices.Contains(exts, ext) {
		return "", common.FormatError(resolved, fmt.Errorf("unsupported file type %q", filepath.Ext(resolved)))
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to open input file: %w", err)
	}
	if info.IsDir() {
		return "", common.FormatError(resolved, errors.New("is a directory"))
	}
	return resolved, nil
}
