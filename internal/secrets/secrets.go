// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from plain-text files. The file contents
// (trimmed) are the key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Find returns the trimmed contents of the first file called name in dirs,
// together with the path it was read from. A key that exists nowhere is not
// an error; Find returns "" for both values.
func Find(fs afero.Fs, dirs []string, name string) (key, path string, err error) {
	for _, d := range dirs {
		p := filepath.Join(d, name)
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", "", fmt.Errorf("reading %s: %w", p, err)
		}
		slog.Debug("Loaded API key", "path", p)
		return strings.TrimSpace(string(data)), p, nil
	}
	return "", "", nil
}

// Lookup prefers the environment variable env over the key file name in
// dirs. The returned source names where the key came from for diagnostics.
func Lookup(fs afero.Fs, dirs []string, name, env string) (key, source string, err error) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, "$" + env, nil
	}
	return Find(fs, dirs, name)
}
