// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DatasetRecord describes one completed dataset download.
type DatasetRecord struct {
	// Identifier is the persistent identifier the dataset was requested by.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the citation title ("" when the dataset has none).
	Title string `json:"title" yaml:"title"`

	// Slug is the folder name derived from Title.
	Slug string `json:"slug" yaml:"slug"`

	// Folder is the local directory the files were written to.
	Folder string `json:"folder" yaml:"folder"`

	// Files lists the downloaded files in dataset order.
	Files []FileRecord `json:"files,omitempty" yaml:"files,omitempty"`

	// FetchedAt is when the download finished.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// TotalBytes sums the sizes of all downloaded files.
func (r DatasetRecord) TotalBytes() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Size
	}
	return n
}

// FileRecord describes one downloaded file.
type FileRecord struct {
	FileID int64  `json:"file_id" yaml:"file_id"`
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	MD5    string `json:"md5,omitempty" yaml:"md5,omitempty"`
}
