// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/darus-fetch/pkg/types"
)

const baseDir = "/repo/scripts/bin"

func writeConfig(t *testing.T, fs afero.Fs, dir, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestSearchDirs(t *testing.T) {
	want := []string{baseDir, "/repo/scripts", "/repo"}
	if diff := cmp.Diff(want, SearchDirs(baseDir)); diff != "" {
		t.Errorf("SearchDirs mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateTemplateIfNeeded_EmptyDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out bytes.Buffer

	created, err := CreateTemplateIfNeeded(fs, baseDir, &out)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, out.String(), "Created a config template")

	var files []string
	require.NoError(t, afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return err
	}))
	assert.Equal(t, []string{filepath.Join(baseDir, FileName)}, files)

	data, err := afero.ReadFile(fs, filepath.Join(baseDir, FileName))
	require.NoError(t, err)
	var got types.Config
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, DefaultDataverseURL, got.DataverseURL)
	assert.Equal(t, []string{PlaceholderDataset}, got.Datasets)
	assert.Equal(t, types.OverwriteNever, got.Options.DownloadExistingData)
}

func TestCreateTemplateIfNeeded_ExistingInAncestor(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/repo", `{"dataverse_url": "https://example.org/", "datasets": []}`)

	created, err := CreateTemplateIfNeeded(fs, baseDir, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, created)

	exists, err := afero.Exists(fs, filepath.Join(baseDir, FileName))
	require.NoError(t, err)
	assert.False(t, exists, "no template should be written when a config exists")
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/repo/scripts", `{
		"dataverse_url": "https://darus.example.org/",
		"datasets": ["doi:10.18419/darus-1", "doi:10.18419/darus-2"],
		"options": {"downloadExistingData": "Y", "timeout": "5s", "catalog": false, "maxRetries": 2, "unicodeFolders": true}
	}`)
	writeConfig(t, fs, "/repo", `{"dataverse_url": "https://ignored.example.org/", "datasets": []}`)

	cfg, path, err := Load(fs, baseDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/repo/scripts", FileName), path)

	catalog := false
	want := types.Config{
		DataverseURL: "https://darus.example.org/",
		Datasets:     []string{"doi:10.18419/darus-1", "doi:10.18419/darus-2"},
		Options: types.Options{
			HTTPConfig: types.HTTPConfig{
				Timeout:    5 * time.Second,
				UserAgent:  DefaultUserAgent,
				MaxRetries: 2,
			},
			DownloadExistingData: types.OverwriteAlways,
			AuthScheme:           types.AuthHeader,
			Catalog:              &catalog,
			UnicodeFolders:       true,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, cfg.Options.CatalogEnabled())
}

func TestLoad_IgnoresOtherConfigFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(baseDir, "darus_config.yaml"), []byte("dataverse_url: https://yaml.example.org/\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(baseDir, "darus_config"), []byte("not json"), 0o644))
	writeConfig(t, fs, "/repo/scripts", `{"dataverse_url": "https://json.example.org/", "datasets": ["a"]}`)

	cfg, path, err := Load(fs, baseDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/repo/scripts", FileName), path)
	assert.Equal(t, "https://json.example.org/", cfg.DataverseURL)
}

func TestLoad_Defaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, baseDir, `{"dataverse_url": "https://darus.example.org/", "datasets": ["a"], "options": {"downloadExistingData": "ask"}}`)

	cfg, _, err := Load(fs, baseDir)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.Options.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.Options.UserAgent)
	assert.Equal(t, types.AuthHeader, cfg.Options.AuthScheme)
	assert.Equal(t, types.OverwritePolicy("ask"), cfg.Options.DownloadExistingData)
	assert.True(t, cfg.Options.CatalogEnabled())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, baseDir, `{"dataverse_url": "https://darus.example.org/", "datasets": ["a"]}`)
	t.Setenv("DARUS_DATAVERSE_URL", "https://override.example.org/")

	cfg, _, err := Load(fs, baseDir)
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.org/", cfg.DataverseURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, _, err := Load(afero.NewMemMapFs(), baseDir)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed json", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeConfig(t, fs, baseDir, `{"dataverse_url": `)
		_, _, err := Load(fs, baseDir)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "reading configuration")
	})

	t.Run("unknown auth scheme", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeConfig(t, fs, baseDir, `{"dataverse_url": "https://x.org/", "datasets": [], "options": {"authScheme": "basic"}}`)
		_, _, err := Load(fs, baseDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "authScheme")
	})

	t.Run("negative retries", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeConfig(t, fs, baseDir, `{"dataverse_url": "https://x.org/", "datasets": [], "options": {"maxRetries": -1}}`)
		_, _, err := Load(fs, baseDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "maxRetries")
	})

	t.Run("empty url", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeConfig(t, fs, baseDir, `{"dataverse_url": " ", "datasets": []}`)
		_, _, err := Load(fs, baseDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dataverse_url is empty")
	})
}

func TestLoadAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	t.Run("from file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/repo", APIKeyFileName), []byte("secret\n"), 0o600))
		var out bytes.Buffer
		key, err := LoadAPIKey(fs, baseDir, &out)
		require.NoError(t, err)
		assert.Equal(t, "secret", key)
		assert.Empty(t, out.String())
	})

	t.Run("anonymous", func(t *testing.T) {
		var out bytes.Buffer
		key, err := LoadAPIKey(afero.NewMemMapFs(), baseDir, &out)
		require.NoError(t, err)
		assert.Empty(t, key)
		assert.Contains(t, out.String(), "Proceeding with public authentication")
	})
}
