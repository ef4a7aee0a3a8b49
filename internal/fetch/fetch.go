// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads Dataverse datasets into per-dataset folders.
//
// Each dataset lands in <data-root>/<slug of title>/ with its files laid out
// by directory label and the full dataset metadata written to info.json.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/pdiddy/darus-fetch/internal/dataverse"
	"github.com/pdiddy/darus-fetch/internal/slug"
	"github.com/pdiddy/darus-fetch/pkg/types"
)

// InfoFile is the name of the metadata file written into each dataset folder.
const InfoFile = "info.json"

// MetadataClient resolves dataset metadata by persistent identifier.
type MetadataClient interface {
	GetDataset(ctx context.Context, identifier string) (*types.DatasetResponse, error)
}

// FileClient streams file content by file id.
type FileClient interface {
	GetDatafile(ctx context.Context, fileID int64, w io.Writer) (int64, error)
}

// Recorder stores completed downloads.
type Recorder interface {
	Record(ctx context.Context, rec types.DatasetRecord) error
}

// ConfirmFunc decides whether an existing folder is downloaded again.
type ConfirmFunc func(folder string) (bool, error)

// Outcome classifies what happened to one identifier.
type Outcome int

const (
	Downloaded Outcome = iota
	SkippedStatus
	SkippedExisting
	Unauthorized
)

func (o Outcome) String() string {
	switch o {
	case Downloaded:
		return "downloaded"
	case SkippedStatus:
		return "skipped (status not OK)"
	case SkippedExisting:
		return "skipped (folder exists)"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Fetcher holds everything one run needs. Metadata, Files, Fs and DataRoot
// are required; Catalog is optional. Confirm is consulted only when Policy
// is neither "Y" nor "N".
type Fetcher struct {
	Metadata MetadataClient
	Files    FileClient
	Fs       afero.Fs
	DataRoot string
	Policy   types.OverwritePolicy
	Confirm  ConfirmFunc
	Catalog  Recorder

	// UnicodeFolders keeps non-ASCII letters in folder names.
	UnicodeFolders bool

	// Authenticated is true when the clients carry an API key. It only
	// affects the message printed for authorization failures.
	Authenticated bool

	// Out receives user-facing progress lines.
	Out io.Writer
}

// BatchResult holds the outcome of a run.
type BatchResult struct {
	Downloaded   int
	Skipped      int
	Unauthorized int
	Records      []types.DatasetRecord
}

// Total returns the number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Unauthorized
}

// Run processes identifiers in order. Authorization failures are reported
// and the run continues with the next identifier; any other error stops the
// run and is returned together with the partial result.
func (f *Fetcher) Run(ctx context.Context, identifiers []string) (BatchResult, error) {
	var result BatchResult
	for _, id := range identifiers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rec, outcome, err := f.FetchDataset(ctx, id)
		if err != nil {
			return result, fmt.Errorf("fetching %s: %w", id, err)
		}
		switch outcome {
		case Downloaded:
			result.Downloaded++
			result.Records = append(result.Records, *rec)
		case Unauthorized:
			result.Unauthorized++
		default:
			result.Skipped++
		}
	}
	fmt.Fprintf(f.out(), "\nSummary: %d downloaded, %d skipped, %d unauthorized (total: %d)\n",
		result.Downloaded, result.Skipped, result.Unauthorized, result.Total())
	return result, nil
}

// FetchDataset downloads a single dataset. The record is non-nil only for
// the Downloaded outcome.
func (f *Fetcher) FetchDataset(ctx context.Context, identifier string) (*types.DatasetRecord, Outcome, error) {
	rec, outcome, err := f.fetch(ctx, identifier)
	if err != nil && dataverse.IsAuthorizationError(err) {
		f.reportUnauthorized(identifier, err)
		return nil, Unauthorized, nil
	}
	return rec, outcome, err
}

func (f *Fetcher) fetch(ctx context.Context, identifier string) (*types.DatasetRecord, Outcome, error) {
	resp, err := f.Metadata.GetDataset(ctx, identifier)
	if err != nil {
		return nil, 0, err
	}
	if resp.Status != types.StatusOK {
		slog.Debug("Dataset not available", "identifier", identifier, "status", resp.Status, "message", resp.Message)
		return nil, SkippedStatus, nil
	}

	version := resp.Data.LatestVersion
	title := version.Title()
	name := f.folderName(title)
	folder := filepath.Join(f.DataRoot, name)

	proceed, err := f.shouldDownload(folder)
	if err != nil {
		return nil, 0, err
	}
	if !proceed {
		slog.Debug("Skipping existing dataset folder", "identifier", identifier, "folder", folder)
		return nil, SkippedExisting, nil
	}

	if err := f.Fs.MkdirAll(folder, 0o755); err != nil {
		return nil, 0, fmt.Errorf("creating %s: %w", folder, err)
	}

	out := f.out()
	fmt.Fprintln(out, "Downloading...")
	rec := &types.DatasetRecord{
		Identifier: identifier,
		Title:      title,
		Slug:       name,
		Folder:     folder,
	}
	for _, file := range version.Files {
		fmt.Fprintf(out, "File: %s\n", file.DataFile.Filename)
		fr, err := f.downloadFile(ctx, folder, file)
		if err != nil {
			return nil, 0, err
		}
		rec.Files = append(rec.Files, fr)
	}

	if err := f.writeInfo(folder, resp.Data.Raw); err != nil {
		return nil, 0, err
	}
	rec.FetchedAt = time.Now().UTC()
	fmt.Fprintln(out, "Done.")

	if f.Catalog != nil {
		if err := f.Catalog.Record(ctx, *rec); err != nil {
			return nil, 0, fmt.Errorf("recording %s in catalog: %w", identifier, err)
		}
	}
	return rec, Downloaded, nil
}

func (f *Fetcher) folderName(title string) string {
	if f.UnicodeFolders {
		return slug.MakeUnicode(title)
	}
	return slug.Make(title)
}

// shouldDownload applies the overwrite policy to folder.
func (f *Fetcher) shouldDownload(folder string) (bool, error) {
	exists, err := afero.DirExists(f.Fs, folder)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", folder, err)
	}
	if !exists {
		return true, nil
	}
	switch f.Policy {
	case types.OverwriteNever:
		return false, nil
	case types.OverwriteAlways:
		return true, nil
	}
	if f.Confirm == nil {
		return false, fmt.Errorf("%s exists and no confirmation is available (set options.downloadExistingData to Y or N)", folder)
	}
	return f.Confirm(folder)
}

// FilePath returns where a dataset file is stored below folder. The path
// must stay inside folder.
func FilePath(folder string, file types.File) (string, error) {
	rel := filepath.Join(filepath.FromSlash(file.DirectoryLabel), file.DataFile.Filename)
	if file.DataFile.Filename == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("unsafe file path %q (directory label %q)", file.DataFile.Filename, file.DirectoryLabel)
	}
	return filepath.Join(folder, rel), nil
}

// downloadFile streams one file into a temporary file next to its
// destination and renames it into place, replacing any existing file.
func (f *Fetcher) downloadFile(ctx context.Context, folder string, file types.File) (types.FileRecord, error) {
	dest, err := FilePath(folder, file)
	if err != nil {
		return types.FileRecord{}, err
	}
	dir := filepath.Dir(dest)
	if err := f.Fs.MkdirAll(dir, 0o755); err != nil {
		return types.FileRecord{}, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(f.Fs, dir, ".darus-*.tmp")
	if err != nil {
		return types.FileRecord{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, copyErr := f.Files.GetDatafile(ctx, file.DataFile.ID, tmp)
	closeErr := tmp.Close()
	if copyErr != nil {
		f.Fs.Remove(tmpPath)
		return types.FileRecord{}, copyErr
	}
	if closeErr != nil {
		f.Fs.Remove(tmpPath)
		return types.FileRecord{}, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := f.Fs.Rename(tmpPath, dest); err != nil {
		f.Fs.Remove(tmpPath)
		return types.FileRecord{}, fmt.Errorf("renaming temp file to %s: %w", dest, err)
	}

	rel, _ := filepath.Rel(folder, dest)
	return types.FileRecord{
		FileID: file.DataFile.ID,
		Path:   filepath.ToSlash(rel),
		Size:   n,
		MD5:    file.DataFile.MD5,
	}, nil
}

// writeInfo stores the dataset metadata as sent by the server, indented
// with four spaces.
func (f *Fetcher) writeInfo(folder string, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("formatting metadata: %w", err)
	}
	buf.WriteByte('\n')
	path := filepath.Join(folder, InfoFile)
	if err := afero.WriteFile(f.Fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (f *Fetcher) reportUnauthorized(identifier string, err error) {
	qualifier := ""
	if !f.Authenticated {
		qualifier = " without API key"
	}
	out := f.out()
	fmt.Fprintf(out, "Cannot access data with id: %s%s.\n", identifier, qualifier)
	fmt.Fprintln(out, err)
	slog.Debug("Authorization failed", "identifier", identifier, "authenticated", f.Authenticated, "error", err)
}

func (f *Fetcher) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}
