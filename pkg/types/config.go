package types

import "time"

// OverwritePolicy controls what happens when a dataset folder already exists.
type OverwritePolicy string

const (
	// OverwriteNever skips datasets whose folder exists.
	OverwriteNever OverwritePolicy = "N"

	// OverwriteAlways downloads again, replacing existing files.
	OverwriteAlways OverwritePolicy = "Y"
)

// AuthScheme selects how the API key is presented to the Dataverse server.
type AuthScheme string

const (
	// AuthHeader sends the key in the X-Dataverse-key header.
	AuthHeader AuthScheme = "header"

	// AuthBearer sends the key as an OAuth2 bearer token.
	AuthBearer AuthScheme = "bearer"
)

// HTTPConfig holds shared HTTP settings used by the Dataverse clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"userAgent,omitempty" yaml:"user_agent,omitempty" mapstructure:"userAgent"`

	// MaxRetries bounds the retries of rate-limited (HTTP 429) requests.
	MaxRetries int `json:"maxRetries,omitempty" yaml:"max_retries,omitempty" mapstructure:"maxRetries" jsonschema:"minimum=0"`
}

// Options holds the optional settings of darus_config.json.
type Options struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DownloadExistingData is "N" to skip existing folders, "Y" to download
	// them again, anything else to ask on the console.
	DownloadExistingData OverwritePolicy `json:"downloadExistingData" yaml:"download_existing_data" mapstructure:"downloadExistingData" jsonschema:"description=N skips existing dataset folders; Y downloads them again; any other value asks interactively."`

	// AuthScheme is "header" (default) or "bearer".
	AuthScheme AuthScheme `json:"authScheme,omitempty" yaml:"auth_scheme,omitempty" mapstructure:"authScheme" jsonschema:"enum=header,enum=bearer"`

	// Catalog disables the local download catalog when set to false.
	Catalog *bool `json:"catalog,omitempty" yaml:"catalog,omitempty" mapstructure:"catalog"`

	// UnicodeFolders keeps non-ASCII letters in dataset folder names.
	UnicodeFolders bool `json:"unicodeFolders,omitempty" yaml:"unicode_folders,omitempty" mapstructure:"unicodeFolders"`
}

// CatalogEnabled reports whether completed downloads are recorded in the
// local catalog. The catalog is on unless explicitly disabled.
func (o Options) CatalogEnabled() bool {
	return o.Catalog == nil || *o.Catalog
}

// Config is the content of darus_config.json.
type Config struct {
	// DataverseURL is the base URL of the Dataverse installation.
	DataverseURL string `json:"dataverse_url" yaml:"dataverse_url" mapstructure:"dataverse_url" jsonschema:"required,format=uri"`

	// Datasets lists the persistent identifiers to download when no --doi
	// flag is given.
	Datasets []string `json:"datasets" yaml:"datasets" mapstructure:"datasets" jsonschema:"required"`

	Options Options `json:"options" yaml:"options" mapstructure:"options"`
}
