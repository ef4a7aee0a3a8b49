// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// StatusOK is the status value of a successful Dataverse API response.
const StatusOK = "OK"

// DatasetResponse is returned by the Dataverse native dataset API.
type DatasetResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Data    Dataset `json:"data"`
}

// Dataset is the typed view of a dataset's "data" object. Raw holds the
// object exactly as the server sent it so it can be persisted unchanged.
type Dataset struct {
	ID            int64           `json:"id"`
	PersistentURL string          `json:"persistentUrl"`
	LatestVersion DatasetVersion  `json:"latestVersion"`
	Raw           json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps a copy of the raw bytes.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	type plain Dataset
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = Dataset(p)
	d.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// DatasetVersion is the representation of a dataset version.
type DatasetVersion struct {
	VersionNumber      int            `json:"versionNumber"`
	VersionMinorNumber int            `json:"versionMinorNumber"`
	LastUpdateTime     string         `json:"lastUpdateTime"`
	MetadataBlocks     MetadataBlocks `json:"metadataBlocks"`
	Files              []File         `json:"files"`
}

// MetadataBlocks holds the metadata blocks of a version. Only the citation
// block is interpreted.
type MetadataBlocks struct {
	Citation MetadataBlock `json:"citation"`
}

// MetadataBlock is a named list of metadata fields.
type MetadataBlock struct {
	DisplayName string          `json:"displayName"`
	Fields      []MetadataField `json:"fields"`
}

// MetadataField is one entry of a metadata block. Value is kept raw because
// its shape depends on the field type (string, list, compound).
type MetadataField struct {
	TypeName  string          `json:"typeName"`
	Multiple  bool            `json:"multiple"`
	TypeClass string          `json:"typeClass"`
	Value     json.RawMessage `json:"value"`
}

// Index indexes a metadata block by field name. The first occurrence of a
// name wins.
func (b MetadataBlock) Index() map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(b.Fields))
	for _, f := range b.Fields {
		if _, ok := m[f.TypeName]; !ok {
			m[f.TypeName] = f.Value
		}
	}
	return m
}

// Title returns the citation title of the version, or "" if it has none or
// the value is not a plain string.
func (v DatasetVersion) Title() string {
	raw, ok := v.MetadataBlocks.Citation.Index()["title"]
	if !ok {
		return ""
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return ""
	}
	return title
}

// File is the representation of a file found in a dataset.
type File struct {
	Label          string   `json:"label"`
	DirectoryLabel string   `json:"directoryLabel,omitempty"`
	Restricted     bool     `json:"restricted"`
	DataFile       DataFile `json:"dataFile"`
}

// DataFile represents file metadata details.
type DataFile struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"filesize"`
	MD5         string `json:"md5"`
}
