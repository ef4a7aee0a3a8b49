package config

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/pdiddy/darus-fetch/internal/secrets"
)

const (
	// APIKeyFileName is the hidden file holding the Dataverse API token.
	APIKeyFileName = ".darus_apikey"

	// APIKeyEnv overrides the key file when set.
	APIKeyEnv = EnvPrefix + "_API_KEY"
)

// LoadAPIKey returns the API key from $DARUS_API_KEY or the first
// .darus_apikey found in the candidate directories of baseDir. When no key
// exists it prints a notice to w and returns "": the run continues with
// anonymous access.
func LoadAPIKey(fs afero.Fs, baseDir string, w io.Writer) (string, error) {
	key, _, err := secrets.Lookup(fs, SearchDirs(baseDir), APIKeyFileName, APIKeyEnv)
	if err != nil {
		return "", err
	}
	if key == "" {
		fmt.Fprintf(w, "no file %s found. Proceeding with public authentication.\n", APIKeyFileName)
	}
	return key, nil
}
