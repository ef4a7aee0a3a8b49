// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config locates, bootstraps and loads darus_config.json.
//
// The configuration is searched in the base directory (normally the
// directory holding the executable) and its two parent directories. The
// first file found wins.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/pdiddy/darus-fetch/pkg/types"
)

const (
	// FileName is the name of the configuration file.
	FileName = "darus_config.json"

	// DefaultDataverseURL is the installation written into new templates.
	DefaultDataverseURL = "https://darus.uni-stuttgart.de/"

	// PlaceholderDataset is the identifier written into new templates.
	PlaceholderDataset = "doi:10.18419/darus-????"

	// EnvPrefix prefixes environment overrides, e.g. DARUS_DATAVERSE_URL.
	EnvPrefix = "DARUS"

	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "darus-fetch/0.1"
)

// ErrNotFound is returned by Load when no candidate directory holds a
// configuration file.
var ErrNotFound = errors.New("no " + FileName + " found")

// Template returns the configuration written on first run.
func Template() types.Config {
	return types.Config{
		DataverseURL: DefaultDataverseURL,
		Datasets:     []string{PlaceholderDataset},
		Options: types.Options{
			DownloadExistingData: types.OverwriteNever,
		},
	}
}

// SearchDirs returns the candidate directories for baseDir in search order.
func SearchDirs(baseDir string) []string {
	return []string{
		baseDir,
		filepath.Join(baseDir, ".."),
		filepath.Join(baseDir, "..", ".."),
	}
}

// ExecutableDir returns the directory of the running binary with symlinks
// resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Find returns the path of the first configuration file in dirs, or "" if
// none exists.
func Find(fs afero.Fs, dirs []string) (string, error) {
	for _, d := range dirs {
		path := filepath.Join(d, FileName)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
		if exists {
			return path, nil
		}
	}
	return "", nil
}

// CreateTemplateIfNeeded writes a template configuration to baseDir when no
// candidate directory holds one. It reports whether a template was created;
// the caller is expected to stop so the user can edit it.
func CreateTemplateIfNeeded(fs afero.Fs, baseDir string, w io.Writer) (bool, error) {
	existing, err := Find(fs, SearchDirs(baseDir))
	if err != nil {
		return false, err
	}
	if existing != "" {
		slog.Debug("Found configuration", "path", existing)
		return false, nil
	}

	fmt.Fprintln(w, "No configuration file exists.")

	data, err := json.MarshalIndent(Template(), "", "    ")
	if err != nil {
		return false, fmt.Errorf("marshaling template: %w", err)
	}
	path := filepath.Join(baseDir, FileName)
	if err := fs.MkdirAll(baseDir, 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", baseDir, err)
	}
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o644); err != nil {
		return false, fmt.Errorf("writing template %s: %w", path, err)
	}

	fmt.Fprintf(w, "Created a config template at %s.\n", path)
	fmt.Fprintf(w, "Remember to fill in your dataset identifiers and create a %s file for your API key.\n", APIKeyFileName)
	return true, nil
}

// Load reads the first darus_config.json found in the candidate
// directories of baseDir. Values can be overridden through DARUS_*
// environment variables. A malformed file is an error.
func Load(fs afero.Fs, baseDir string) (types.Config, string, error) {
	path, err := Find(fs, SearchDirs(baseDir))
	if err != nil {
		return types.Config{}, "", err
	}
	if path == "" {
		return types.Config{}, "", ErrNotFound
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("options.timeout", DefaultTimeout)
	v.SetDefault("options.userAgent", DefaultUserAgent)
	v.SetDefault("options.authScheme", string(types.AuthHeader))

	if err := v.ReadInConfig(); err != nil {
		return types.Config{}, "", fmt.Errorf("reading configuration: %w", err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, "", fmt.Errorf("decoding %s: %w", v.ConfigFileUsed(), err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, "", fmt.Errorf("%s: %w", v.ConfigFileUsed(), err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

// Validate checks the fields every run needs.
func Validate(cfg types.Config) error {
	if strings.TrimSpace(cfg.DataverseURL) == "" {
		return errors.New("dataverse_url is empty")
	}
	switch cfg.Options.AuthScheme {
	case "", types.AuthHeader, types.AuthBearer:
	default:
		return fmt.Errorf("unknown options.authScheme %q (want %q or %q)", cfg.Options.AuthScheme, types.AuthHeader, types.AuthBearer)
	}
	if cfg.Options.MaxRetries < 0 {
		return fmt.Errorf("options.maxRetries must not be negative, got %d", cfg.Options.MaxRetries)
	}
	return nil
}
